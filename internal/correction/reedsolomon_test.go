package correction

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"testing"
)

func randomMessage(rng *rand.Rand, k int) []uint8 {
	msg := make([]uint8, k)
	for i := range msg {
		msg[i] = uint8(rng.IntN(256))
	}
	return msg
}

// corrupt flips count distinct bytes of a copy of codeword with non-zero error values
func corrupt(rng *rand.Rand, codeword []uint8, count int) ([]uint8, []int) {
	out := make([]uint8, len(codeword))
	copy(out, codeword)
	positions := rng.Perm(len(codeword))[:count]
	for _, pos := range positions {
		out[pos] ^= uint8(1 + rng.IntN(255))
	}
	return out, positions
}

// TestNewReedSolomonParameters tests constructor validation
func TestNewReedSolomonParameters(t *testing.T) {
	tests := []struct {
		name  string
		n, k  int
		valid bool
	}{
		{"RS(15,11)", 15, 11, true},
		{"RS(5,3)", 5, 3, true},
		{"RS(255,223)", 255, 223, true},
		{"RS(2,1)", 2, 1, true},
		{"k equals n", 10, 10, false},
		{"k greater than n", 5, 7, false},
		{"k zero", 5, 0, false},
		{"n too large", 256, 200, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := NewReedSolomon(tt.n, tt.k)
			if tt.valid {
				if err != nil {
					t.Fatalf("NewReedSolomon(%d, %d) error = %v", tt.n, tt.k, err)
				}
				if len(rs.Generator()) != tt.n-tt.k+1 {
					t.Errorf("generator degree = %d, want %d", len(rs.Generator())-1, tt.n-tt.k)
				}
				return
			}
			if !errors.Is(err, ErrInvalidParameters) {
				t.Errorf("NewReedSolomon(%d, %d) error = %v, want ErrInvalidParameters", tt.n, tt.k, err)
			}
		})
	}
}

// TestReedSolomonGeneratorRoots checks g(a^i) == 0 for every generator root
func TestReedSolomonGeneratorRoots(t *testing.T) {
	rs, err := NewReedSolomon(15, 11)
	if err != nil {
		t.Fatal(err)
	}
	g := rs.Generator()
	if g[0] != 1 {
		t.Errorf("generator should be monic, leading coefficient 0x%02X", g[0])
	}
	for i := 0; i < rs.ParitySymbols(); i++ {
		if v := rs.field.polyEval(g, rs.field.Exp(i)); v != 0 {
			t.Errorf("g(a^%d) = 0x%02X, expected 0", i, v)
		}
	}
}

// TestReedSolomonRoundTrip tests decode(encode(m)) == (m, 0)
func TestReedSolomonRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	params := [][2]int{{15, 11}, {5, 3}, {12, 9}, {255, 223}, {204, 188}, {2, 1}}
	for _, p := range params {
		rs, err := NewReedSolomon(p[0], p[1])
		if err != nil {
			t.Fatal(err)
		}
		for trial := 0; trial < 20; trial++ {
			msg := randomMessage(rng, rs.K())
			codeword, err := rs.Encode(msg)
			if err != nil {
				t.Fatalf("%s Encode error = %v", rs, err)
			}
			if !bytes.Equal(codeword[:rs.K()], msg) {
				t.Fatalf("%s codeword is not systematic", rs)
			}
			if !rs.Check(codeword) {
				t.Fatalf("%s encoded codeword failed Check", rs)
			}

			decoded, corrected, err := rs.Decode(codeword)
			if err != nil {
				t.Fatalf("%s Decode error = %v", rs, err)
			}
			if corrected != 0 {
				t.Errorf("%s corrected = %d, want 0", rs, corrected)
			}
			if !bytes.Equal(decoded, msg) {
				t.Errorf("%s decoded %X, want %X", rs, decoded, msg)
			}
		}
	}
}

// TestReedSolomonZeroMessage checks the all-zero message encodes to the all-zero codeword
func TestReedSolomonZeroMessage(t *testing.T) {
	rs, _ := NewReedSolomon(15, 11)
	codeword, err := rs.Encode(make([]uint8, 11))
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range codeword {
		if b != 0 {
			t.Errorf("zero message produced non-zero byte %d: 0x%02X", i, b)
		}
	}
}

// TestReedSolomonCorrectsUpToStrength injects t' <= t errors at arbitrary positions
func TestReedSolomonCorrectsUpToStrength(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))

	params := [][2]int{{15, 11}, {15, 9}, {5, 3}, {32, 16}, {255, 223}}
	for _, p := range params {
		rs, _ := NewReedSolomon(p[0], p[1])
		for nErr := 1; nErr <= rs.Strength(); nErr++ {
			for trial := 0; trial < 25; trial++ {
				msg := randomMessage(rng, rs.K())
				codeword, _ := rs.Encode(msg)
				received, positions := corrupt(rng, codeword, nErr)

				decoded, corrected, err := rs.Decode(received)
				if err != nil {
					t.Fatalf("%s with %d errors at %v: Decode error = %v", rs, nErr, positions, err)
				}
				if corrected != nErr {
					t.Errorf("%s corrected = %d, want %d", rs, corrected, nErr)
				}
				if !bytes.Equal(decoded, msg) {
					t.Fatalf("%s with errors at %v decoded %X, want %X", rs, positions, decoded, msg)
				}
			}
		}
	}
}

// TestReedSolomonParityErrors checks errors confined to parity bytes are also counted
func TestReedSolomonParityErrors(t *testing.T) {
	rs, _ := NewReedSolomon(15, 11)
	msg := []uint8("HELLO WORLD")
	codeword, _ := rs.Encode(msg)

	received := make([]uint8, len(codeword))
	copy(received, codeword)
	received[11] ^= 0xFF
	received[14] ^= 0x01

	decoded, corrected, err := rs.Decode(received)
	if err != nil {
		t.Fatalf("Decode error = %v", err)
	}
	if corrected != 2 {
		t.Errorf("corrected = %d, want 2", corrected)
	}
	if string(decoded) != "HELLO WORLD" {
		t.Errorf("decoded %q", decoded)
	}
}

// TestReedSolomonTwoByteErrors is RS(15,11) with exactly two corrupted bytes
func TestReedSolomonTwoByteErrors(t *testing.T) {
	rs, err := NewReedSolomon(15, 11)
	if err != nil {
		t.Fatal(err)
	}

	msg := []uint8{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF, 0x10, 0x32, 0x54}
	codeword, err := rs.Encode(msg)
	if err != nil {
		t.Fatal(err)
	}
	if len(codeword) != 15 {
		t.Fatalf("codeword length = %d, want 15", len(codeword))
	}

	codeword[2] ^= 0x5A
	codeword[9] ^= 0xC3

	decoded, corrected, err := rs.Decode(codeword)
	if err != nil {
		t.Fatalf("Decode error = %v", err)
	}
	if corrected != 2 {
		t.Errorf("ErrorCount = %d, want 2", corrected)
	}
	if !bytes.Equal(decoded, msg) {
		t.Errorf("decoded %X, want %X", decoded, msg)
	}
	t.Logf("Corrupted syndromes: %X", rs.Syndromes(codeword))
}

// TestReedSolomonUncorrectable uses RS(15,10): d = 6, so t+1 = 3 errors are
// never within distance t of another codeword and must always be detected.
func TestReedSolomonUncorrectable(t *testing.T) {
	rng := rand.New(rand.NewPCG(99, 3))
	rs, _ := NewReedSolomon(15, 10)

	for trial := 0; trial < 200; trial++ {
		msg := randomMessage(rng, rs.K())
		codeword, _ := rs.Encode(msg)
		received, positions := corrupt(rng, codeword, rs.Strength()+1)

		decoded, corrected, err := rs.Decode(received)
		if !errors.Is(err, ErrUncorrectable) {
			t.Fatalf("errors at %v: Decode error = %v, want ErrUncorrectable", positions, err)
		}
		if corrected != 0 {
			t.Errorf("corrected = %d on failure, want 0", corrected)
		}
		if !bytes.Equal(decoded, received[:rs.K()]) {
			t.Errorf("best-effort output should be the uncorrected data bytes")
		}
	}
}

// TestReedSolomonNeverReliablyWrong checks heavy corruption is never reported
// as a successful decode of a different message without a valid codeword.
func TestReedSolomonNeverReliablyWrong(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5))
	rs, _ := NewReedSolomon(15, 11)

	for trial := 0; trial < 300; trial++ {
		msg := randomMessage(rng, rs.K())
		codeword, _ := rs.Encode(msg)
		received, _ := corrupt(rng, codeword, 3+rng.IntN(8))

		decoded, corrected, err := rs.Decode(received)
		if err != nil {
			continue
		}
		// A success must describe a real codeword within the correction radius
		reencoded, _ := rs.Encode(decoded)
		diff := 0
		for i := range reencoded {
			if reencoded[i] != received[i] {
				diff++
			}
		}
		if diff != corrected || corrected > rs.Strength() {
			t.Fatalf("decode claimed %d corrections but codeword differs in %d bytes", corrected, diff)
		}
	}
}

// TestReedSolomonInvalidLength tests size validation on both directions
func TestReedSolomonInvalidLength(t *testing.T) {
	rs, _ := NewReedSolomon(15, 11)

	if _, err := rs.Encode(make([]uint8, 10)); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("Encode short message error = %v, want ErrInvalidLength", err)
	}
	if _, _, err := rs.Decode(make([]uint8, 16)); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("Decode long codeword error = %v, want ErrInvalidLength", err)
	}
	if rs.Check(make([]uint8, 3)) {
		t.Error("Short data should fail check")
	}
}

// TestReedSolomonCustomField makes sure a different primitive polynomial works end to end
func TestReedSolomonCustomField(t *testing.T) {
	field := NewField(0x187)
	if field.Poly() != 0x187 || DefaultField().Poly() != GF_PRIMITIVE_POLY {
		t.Errorf("Poly = 0x%X, default 0x%X", field.Poly(), DefaultField().Poly())
	}
	rs, err := NewReedSolomonWithField(10, 6, field)
	if err != nil {
		t.Fatal(err)
	}
	msg := []uint8{9, 8, 7, 6, 5, 4}
	codeword, _ := rs.Encode(msg)
	codeword[0] ^= 0x44
	decoded, corrected, err := rs.Decode(codeword)
	if err != nil || corrected != 1 || !bytes.Equal(decoded, msg) {
		t.Errorf("Decode = %X, %d, %v", decoded, corrected, err)
	}
}
