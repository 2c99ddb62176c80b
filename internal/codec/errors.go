package codec

import "errors"

var (
	// ErrUnsupportedConstraintLength is returned for constraint lengths other than 2 and 5
	ErrUnsupportedConstraintLength = errors.New("codec: unsupported constraint length")

	// ErrInvalidBitstring is returned when a bitstring holds anything but '0' and '1'
	ErrInvalidBitstring = errors.New("codec: invalid bitstring")

	// ErrInvalidLength is returned when an encoded stream cannot be split into whole symbols
	ErrInvalidLength = errors.New("codec: invalid encoded length")

	// ErrInvalidSoftValue is returned for soft values that are not finite probabilities
	ErrInvalidSoftValue = errors.New("codec: invalid soft value")
)
