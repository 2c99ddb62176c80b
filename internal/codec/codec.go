package codec

// Result is the output of a bitstream decode
type Result struct {
	// Bits is the decoded bitstream, best effort when Reliable is false
	Bits Bitstream

	// CorrectedBits is the number of received channel bits the Viterbi stage overrode
	CorrectedBits int

	// CorrectedSymbols is the number of bytes repaired by Reed-Solomon
	CorrectedSymbols int

	// FailedBlocks counts Reed-Solomon blocks that could not be corrected
	FailedBlocks int

	// Reliable is false when any block was uncorrectable
	Reliable bool

	// Inner is the inner stage result of a concatenated decode
	Inner *Result
}
