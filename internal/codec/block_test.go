package codec

import (
	"errors"
	"math/rand/v2"
	"testing"
)

// TestBlockCodecRoundTrip tests padding and systematic output
func TestBlockCodecRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 1))

	tests := []struct {
		n, k    int
		msgBits int
	}{
		{15, 11, 88},
		{15, 11, 24},
		{15, 11, 5},
		{5, 3, 100},
		{255, 223, 1000},
	}

	for _, tt := range tests {
		c, err := NewBlockCodec(tt.n, tt.k)
		if err != nil {
			t.Fatal(err)
		}
		msg := randomBits(rng, tt.msgBits)
		encoded, err := c.Encode(msg)
		if err != nil {
			t.Fatal(err)
		}
		if len(encoded) != c.EncodedLength(tt.msgBits) {
			t.Errorf("%s encoded length = %d, want %d", c.Name(), len(encoded), c.EncodedLength(tt.msgBits))
		}

		result, err := c.DecodeHard(encoded)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Reliable || result.CorrectedSymbols != 0 {
			t.Errorf("%s clean decode = %+v", c.Name(), result)
		}
		if result.Bits[:tt.msgBits].String() != msg.String() {
			t.Errorf("%s decoded prefix mismatch", c.Name())
		}
		for _, bit := range result.Bits[tt.msgBits:] {
			if bit != 0 {
				t.Errorf("%s padding should decode to zeros", c.Name())
				break
			}
		}
	}
}

// TestBlockCodecCorrectsAndFlagsBlocks corrupts one block past its strength
func TestBlockCodecCorrectsAndFlagsBlocks(t *testing.T) {
	rng := rand.New(rand.NewPCG(6, 6))
	c, _ := NewBlockCodec(15, 10)
	if c.Name() != "ReedSolomon(n=15, k=10)" {
		t.Errorf("Name = %q", c.Name())
	}

	msg := randomBits(rng, 3*10*8)
	encoded, _ := c.Encode(msg)

	// Block 1: three byte errors (uncorrectable, d=6 guarantees detection)
	for _, b := range []int{15 + 1, 15 + 6, 15 + 12} {
		encoded[b*8+3] ^= 1
	}
	// Block 2: one byte error with several flipped bits
	for bit := 0; bit < 5; bit++ {
		encoded[(30+4)*8+bit] ^= 1
	}

	result, err := c.DecodeHard(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if result.Reliable {
		t.Error("result should be unreliable")
	}
	if result.FailedBlocks != 1 {
		t.Errorf("FailedBlocks = %d, want 1", result.FailedBlocks)
	}
	if result.CorrectedSymbols != 1 {
		t.Errorf("CorrectedSymbols = %d, want 1", result.CorrectedSymbols)
	}
	if result.Bits[:80].String() != msg[:80].String() {
		t.Error("block 0 should decode cleanly")
	}
	if result.Bits[160:].String() != msg[160:].String() {
		t.Error("block 2 should be corrected")
	}
}

// TestBlockCodecInvalidLength requires whole codewords
func TestBlockCodecInvalidLength(t *testing.T) {
	c, _ := NewBlockCodec(15, 11)
	if _, err := c.DecodeHard(make(Bitstream, 119)); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("DecodeHard error = %v, want ErrInvalidLength", err)
	}
	if _, err := NewBlockCodec(11, 15); err == nil {
		t.Error("NewBlockCodec(11, 15) should fail")
	}
	if _, err := c.Encode(Bitstream{0, 5}); !errors.Is(err, ErrInvalidBitstring) {
		t.Errorf("Encode error = %v, want ErrInvalidBitstring", err)
	}
}

// TestConcatenatedRoundTrip tests clean and lightly corrupted frames
func TestConcatenatedRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(77, 1))

	for _, soft := range []bool{false, true} {
		c, err := NewConcatenatedCodec(15, 11, CONV_K5, soft)
		if err != nil {
			t.Fatal(err)
		}
		msg := randomBits(rng, 88)
		encoded, _ := c.Encode(msg)
		if len(encoded) != c.EncodedLength(88) || len(encoded) != 240 {
			t.Fatalf("encoded length = %d, want 240", len(encoded))
		}

		outer, _ := c.EncodeOuter(msg)
		if len(outer) != 120 {
			t.Errorf("outer length = %d, want 120", len(outer))
		}

		encoded[50] ^= 1
		encoded[150] ^= 1

		var result *Result
		if soft {
			result, err = c.DecodeSoft(encoded.Probabilities())
		} else {
			result, err = c.DecodeHard(encoded)
		}
		if err != nil {
			t.Fatal(err)
		}
		if !result.Reliable {
			t.Errorf("%s should be reliable", c.Name())
		}
		if result.Inner == nil {
			t.Fatal("missing inner stage result")
		}
		if result.Inner.Bits.String() != outer.String() {
			t.Error("inner stage should recover the RS codeword bits")
		}
		if result.CorrectedBits != 2 {
			t.Errorf("CorrectedBits = %d, want 2", result.CorrectedBits)
		}
		if result.Bits[:88].String() != msg.String() {
			t.Errorf("%s decoded mismatch", c.Name())
		}
	}
}

// TestConcatenatedConstruction propagates component errors
func TestConcatenatedConstruction(t *testing.T) {
	if _, err := NewConcatenatedCodec(15, 11, 3, false); !errors.Is(err, ErrUnsupportedConstraintLength) {
		t.Errorf("error = %v, want ErrUnsupportedConstraintLength", err)
	}
	if _, err := NewConcatenatedCodec(5, 5, CONV_K2, false); err == nil {
		t.Error("invalid RS parameters should fail")
	}

	c, _ := NewConcatenatedCodec(15, 11, CONV_K2, true)
	want := "Concatenated(ReedSolomon(n=15, k=11), Viterbi(constraint length k=2, soft decoding=true))"
	if c.Name() != want || !c.Soft() {
		t.Errorf("Name = %q, Soft = %t", c.Name(), c.Soft())
	}

	rs := c.Outer().ReedSolomon()
	if rs.N() != 15 || rs.K() != 11 || rs.Strength() != 2 {
		t.Errorf("outer code = %s", rs)
	}
	if c.Inner().ConstraintLength() != CONV_K2 || !c.Inner().Soft() {
		t.Errorf("inner code = %s", c.Inner().Name())
	}
}
