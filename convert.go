package retroframe

// SwapRedBlue swaps the first and third byte of every complete 4-byte group
// in buf, turning XRGB8888 words (BGRX in memory) into RGBX bytes.
// Bytes past the last complete group are left untouched. Applying it twice
// restores the original contents.
func SwapRedBlue(buf []byte) {
	n := len(buf) - len(buf)%4
	for i := 0; i < n; i += 4 {
		buf[i], buf[i+2] = buf[i+2], buf[i]
	}
}
