package correction

import "fmt"

// ReedSolomon implements a systematic RS(n,k) code over GF(2^8)
//
// Code parameters:
// - n total symbols (bytes) per codeword, k data symbols, n-k parity symbols
// - Generator g(x) = (x - a^0)(x - a^1)...(x - a^(n-k-1))
// - Corrects up to (n-k)/2 symbol errors per codeword
// - Decoder: syndromes, Berlekamp-Massey, Chien search, Forney
//
// Codeword byte 0 is the highest degree coefficient, so the message occupies
// the first k bytes and the parity the last n-k.
type ReedSolomon struct {
	n         int
	k         int
	field     *Field
	generator []uint8 // Highest degree first, generator[0] == 1
}

// NewReedSolomon creates an RS(n,k) codec on the default field
func NewReedSolomon(n, k int) (*ReedSolomon, error) {
	return NewReedSolomonWithField(n, k, DefaultField())
}

// NewReedSolomonWithField creates an RS(n,k) codec on a caller supplied field
func NewReedSolomonWithField(n, k int, field *Field) (*ReedSolomon, error) {
	if k < 1 || n <= k || n > GF_ORDER {
		return nil, fmt.Errorf("%w: n=%d, k=%d (need 1 <= k < n <= %d)", ErrInvalidParameters, n, k, GF_ORDER)
	}

	gen := []uint8{1}
	for i := 0; i < n-k; i++ {
		gen = field.polyMul(gen, []uint8{1, field.Exp(i)})
	}

	return &ReedSolomon{
		n:         n,
		k:         k,
		field:     field,
		generator: gen,
	}, nil
}

// N returns the codeword length in bytes
func (rs *ReedSolomon) N() int { return rs.n }

// K returns the message length in bytes
func (rs *ReedSolomon) K() int { return rs.k }

// ParitySymbols returns n-k
func (rs *ReedSolomon) ParitySymbols() int { return rs.n - rs.k }

// Strength returns the number of symbol errors the code can correct
func (rs *ReedSolomon) Strength() int { return (rs.n - rs.k) / 2 }

// Generator returns a copy of the generator polynomial, highest degree first
func (rs *ReedSolomon) Generator() []uint8 {
	g := make([]uint8, len(rs.generator))
	copy(g, rs.generator)
	return g
}

// String implements fmt.Stringer
func (rs *ReedSolomon) String() string {
	return fmt.Sprintf("ReedSolomon(n=%d, k=%d)", rs.n, rs.k)
}

// Encode appends n-k parity bytes to a k byte message
func (rs *ReedSolomon) Encode(message []uint8) ([]uint8, error) {
	if len(message) != rs.k {
		return nil, fmt.Errorf("%w: message has %d bytes, want %d", ErrInvalidLength, len(message), rs.k)
	}

	nsym := rs.n - rs.k
	out := make([]uint8, rs.n)
	copy(out, message)

	// Feedback shift register division by g(x); the register ends up holding
	// the remainder of message(x)*x^(n-k)
	parity := out[rs.k:]
	for _, b := range message {
		feedback := b ^ parity[0]
		copy(parity, parity[1:])
		parity[nsym-1] = 0

		if feedback != 0 {
			for j := 0; j < nsym; j++ {
				parity[j] ^= rs.field.Mul(rs.generator[j+1], feedback)
			}
		}
	}

	return out, nil
}

// Syndromes evaluates the received polynomial at each root of the generator.
// The result has n-k entries, all zero for a valid codeword.
func (rs *ReedSolomon) Syndromes(received []uint8) []uint8 {
	nsym := rs.n - rs.k
	syndromes := make([]uint8, nsym)
	for j := 0; j < nsym; j++ {
		syndromes[j] = rs.field.polyEval(received, rs.field.Exp(j))
	}
	return syndromes
}

// Check reports whether received is a valid codeword
func (rs *ReedSolomon) Check(received []uint8) bool {
	if len(received) != rs.n {
		return false
	}
	return allZero(rs.Syndromes(received))
}

// Decode corrects up to Strength() symbol errors and returns the message and
// the number of corrected symbols. When the codeword cannot be corrected the
// uncorrected data bytes are returned together with ErrUncorrectable.
func (rs *ReedSolomon) Decode(received []uint8) ([]uint8, int, error) {
	if len(received) != rs.n {
		return nil, 0, fmt.Errorf("%w: codeword has %d bytes, want %d", ErrInvalidLength, len(received), rs.n)
	}

	bestEffort := func() []uint8 {
		msg := make([]uint8, rs.k)
		copy(msg, received[:rs.k])
		return msg
	}

	syndromes := rs.Syndromes(received)
	if allZero(syndromes) {
		return bestEffort(), 0, nil
	}

	locator, nErrors := rs.berlekampMassey(syndromes)
	if nErrors > rs.Strength() || degree(locator) != nErrors {
		return bestEffort(), 0, fmt.Errorf("%w: error locator degree %d exceeds capacity %d", ErrUncorrectable, nErrors, rs.Strength())
	}

	positions := rs.chienSearch(locator)
	if len(positions) != nErrors {
		return bestEffort(), 0, fmt.Errorf("%w: found %d locator roots, want %d", ErrUncorrectable, len(positions), nErrors)
	}

	magnitudes, ok := rs.forney(syndromes, locator, positions)
	if !ok {
		return bestEffort(), 0, fmt.Errorf("%w: degenerate error locator derivative", ErrUncorrectable)
	}

	corrected := make([]uint8, rs.n)
	copy(corrected, received)
	for i, pos := range positions {
		corrected[pos] ^= magnitudes[i]
	}

	if !allZero(rs.Syndromes(corrected)) {
		return bestEffort(), 0, fmt.Errorf("%w: syndromes non-zero after correction", ErrUncorrectable)
	}

	return corrected[:rs.k], len(positions), nil
}

// The locator, syndrome and evaluator polynomials below are stored lowest
// degree first, which is the natural order for the key equation.

// berlekampMassey solves the key equation for the error locator Lambda(x).
// Returns Lambda and the linear complexity L (the assumed error count).
func (rs *ReedSolomon) berlekampMassey(syndromes []uint8) ([]uint8, int) {
	f := rs.field

	current := []uint8{1}
	previous := []uint8{1}
	l := 0
	m := 1
	b := uint8(1)

	for n := 0; n < len(syndromes); n++ {
		d := syndromes[n]
		for i := 1; i <= l && i < len(current); i++ {
			d ^= f.Mul(current[i], syndromes[n-i])
		}

		if d == 0 {
			m++
			continue
		}

		coef := f.Div(d, b)
		size := len(current)
		if len(previous)+m > size {
			size = len(previous) + m
		}
		next := make([]uint8, size)
		copy(next, current)
		for i, c := range previous {
			next[i+m] ^= f.Mul(coef, c)
		}

		if 2*l <= n {
			previous = current
			l = n + 1 - l
			b = d
			m = 1
		} else {
			m++
		}
		current = next
	}

	if len(current) > l+1 {
		current = current[:l+1]
	}
	return current, l
}

// chienSearch returns the codeword indices whose locator X satisfies Lambda(X^-1) == 0
func (rs *ReedSolomon) chienSearch(locator []uint8) []int {
	var positions []int
	for i := 0; i < rs.n; i++ {
		power := rs.n - 1 - i
		if evalLow(rs.field, locator, rs.field.Exp(-power)) == 0 {
			positions = append(positions, i)
		}
	}
	return positions
}

// forney computes error magnitudes e = X * Omega(X^-1) / Lambda'(X^-1)
func (rs *ReedSolomon) forney(syndromes, locator []uint8, positions []int) ([]uint8, bool) {
	f := rs.field
	nsym := len(syndromes)

	// Omega(x) = S(x) * Lambda(x) mod x^(n-k)
	omega := make([]uint8, nsym)
	for i, s := range syndromes {
		if s == 0 {
			continue
		}
		for j, c := range locator {
			if i+j >= nsym {
				break
			}
			omega[i+j] ^= f.Mul(s, c)
		}
	}

	// Formal derivative: only odd powers survive in characteristic 2
	derivative := make([]uint8, len(locator))
	for i := 1; i < len(locator); i += 2 {
		derivative[i-1] = locator[i]
	}

	magnitudes := make([]uint8, len(positions))
	for idx, pos := range positions {
		power := rs.n - 1 - pos
		x := f.Exp(power)
		xInv := f.Exp(-power)

		denom := evalLow(f, derivative, xInv)
		if denom == 0 {
			return nil, false
		}
		magnitudes[idx] = f.Mul(x, f.Div(evalLow(f, omega, xInv), denom))
	}
	return magnitudes, true
}

// evalLow evaluates a lowest-degree-first polynomial at x
func evalLow(f *Field, p []uint8, x uint8) uint8 {
	var y uint8
	for i := len(p) - 1; i >= 0; i-- {
		y = f.Mul(y, x) ^ p[i]
	}
	return y
}

// degree returns the degree of a lowest-degree-first polynomial, -1 for zero
func degree(p []uint8) int {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] != 0 {
			return i
		}
	}
	return -1
}

func allZero(values []uint8) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}
