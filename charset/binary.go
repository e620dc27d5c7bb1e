package charset

// sniffLen is how much of the content IsBinaryContent inspects.
const sniffLen = 512

// IsBinaryContent reports whether data looks binary: a NUL byte within the
// first 512 bytes. UTF-16 and UTF-32 text also contains NULs, so callers
// must rule those out first.
func IsBinaryContent(data []byte) bool {
	checkSize := sniffLen
	if len(data) < checkSize {
		checkSize = len(data)
	}

	for i := 0; i < checkSize; i++ {
		if data[i] == 0 {
			return true
		}
	}
	return false
}

// isASCII reports whether every byte is 7-bit.
func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}
