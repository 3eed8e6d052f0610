package format

// AlignWord returns n aligned up to the next word boundary. The second
// result is false when the aligned value would overflow.
//
// Example:
//
//	AlignWord(1)  = 8
//	AlignWord(8)  = 8
//	AlignWord(9)  = 16
func AlignWord(n uint64) (uint64, bool) {
	if n > ^uint64(0)-WordMask {
		return 0, false
	}
	return (n + WordMask) &^ WordMask, true
}

// IsWordAligned reports whether n is a multiple of WordSize.
func IsWordAligned(n uint64) bool {
	return n&WordMask == 0
}

// RoundRequest turns a caller request into the payload size actually carved:
// word aligned and never below MinPayload. Zero stays zero.
func RoundRequest(n uint64) (uint64, bool) {
	if n == 0 {
		return 0, true
	}
	aligned, ok := AlignWord(n)
	if !ok {
		return 0, false
	}
	if aligned < MinPayload {
		aligned = MinPayload
	}
	return aligned, true
}
