package correction

import "sync"

// GF(2^8) field used by the Reed-Solomon codec
//
// Field parameters:
// - Primitive polynomial x^8 + x^4 + x^3 + x^2 + 1 (0x11D)
// - Primitive element alpha = 2
// - EXP table doubled to 512 entries so log sums never need a modulo
const (
	GF_PRIMITIVE_POLY = 0x11D
	GF_ORDER          = 255 // Number of non-zero field elements
	GF_EXP_TABLE_SIZE = 512
	GF_LOG_TABLE_SIZE = 256
)

// Field holds the log/antilog tables for GF(2^8) under one primitive polynomial.
// Tables are filled once in NewField and only read afterwards.
type Field struct {
	poly uint16
	exp  [GF_EXP_TABLE_SIZE]uint8
	log  [GF_LOG_TABLE_SIZE]uint8
}

var (
	defaultField     *Field
	defaultFieldOnce sync.Once
)

// DefaultField returns the shared 0x11D field
func DefaultField() *Field {
	defaultFieldOnce.Do(func() {
		defaultField = NewField(GF_PRIMITIVE_POLY)
	})
	return defaultField
}

// NewField builds the EXP and LOG tables for the given primitive polynomial
func NewField(poly uint16) *Field {
	f := &Field{poly: poly}

	x := uint16(1)
	for i := 0; i < GF_ORDER; i++ {
		f.exp[i] = uint8(x)
		f.log[x] = uint8(i)

		x <<= 1
		if x&0x100 != 0 {
			x ^= poly
		}
	}

	for i := GF_ORDER; i < GF_EXP_TABLE_SIZE; i++ {
		f.exp[i] = f.exp[i-GF_ORDER]
	}

	return f
}

// Poly returns the primitive polynomial of the field
func (f *Field) Poly() uint16 { return f.poly }

// Add returns a + b (XOR in characteristic 2, also subtraction)
func (f *Field) Add(a, b uint8) uint8 {
	return a ^ b
}

// Mul multiplies two field elements via the log tables
func (f *Field) Mul(a, b uint8) uint8 {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[int(f.log[a])+int(f.log[b])]
}

// Div returns a / b. Division by zero is a programming error and panics.
func (f *Field) Div(a, b uint8) uint8 {
	if b == 0 {
		panic("correction: GF(2^8) division by zero")
	}
	if a == 0 {
		return 0
	}
	return f.exp[int(f.log[a])+GF_ORDER-int(f.log[b])]
}

// Inverse returns the multiplicative inverse of a (a must be non-zero)
func (f *Field) Inverse(a uint8) uint8 {
	if a == 0 {
		panic("correction: GF(2^8) inverse of zero")
	}
	return f.exp[GF_ORDER-int(f.log[a])]
}

// Pow returns a^n; negative exponents use the inverse
func (f *Field) Pow(a uint8, n int) uint8 {
	if n == 0 {
		return 1
	}
	if a == 0 {
		return 0
	}
	e := (int(f.log[a]) * n) % GF_ORDER
	if e < 0 {
		e += GF_ORDER
	}
	return f.exp[e]
}

// Exp returns alpha^i for any integer i
func (f *Field) Exp(i int) uint8 {
	i %= GF_ORDER
	if i < 0 {
		i += GF_ORDER
	}
	return f.exp[i]
}

// Log returns the discrete logarithm of a non-zero element
func (f *Field) Log(a uint8) int {
	if a == 0 {
		panic("correction: GF(2^8) log of zero")
	}
	return int(f.log[a])
}

// Polynomials below are stored highest degree first, matching codeword byte order.

// polyEval evaluates p at x using Horner's method
func (f *Field) polyEval(p []uint8, x uint8) uint8 {
	if len(p) == 0 {
		return 0
	}
	y := p[0]
	for i := 1; i < len(p); i++ {
		y = f.Mul(y, x) ^ p[i]
	}
	return y
}

// polyMul multiplies two polynomials
func (f *Field) polyMul(p, q []uint8) []uint8 {
	if len(p) == 0 || len(q) == 0 {
		return nil
	}
	r := make([]uint8, len(p)+len(q)-1)
	for j := range q {
		for i := range p {
			r[i+j] ^= f.Mul(p[i], q[j])
		}
	}
	return r
}
