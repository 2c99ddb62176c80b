package correction

import "errors"

var (
	// ErrInvalidParameters is returned for an RS(n,k) outside 1 <= k < n <= 255
	ErrInvalidParameters = errors.New("correction: invalid Reed-Solomon parameters")

	// ErrInvalidLength is returned when a message or codeword has the wrong size
	ErrInvalidLength = errors.New("correction: invalid length")

	// ErrUncorrectable is returned when a codeword holds more symbol errors
	// than the code can correct. The accompanying output is a best-effort
	// estimate and must be treated as unreliable.
	ErrUncorrectable = errors.New("correction: uncorrectable codeword")
)
