// Package pixconv converts pixel rows between the encodings produced by
// emulation cores and the formats GPU APIs accept.
package pixconv

import "encoding/binary"

// Expand565 converts width little-endian RGB565 pixels from src into RGBA8
// pixels in dst. Alpha is set to 0xFF. Channels are widened by bit
// replication so full intensity maps to 0xFF.
//
// src must hold at least 2*width bytes and dst at least 4*width bytes.
func Expand565(dst, src []byte, width int) {
	if width <= 0 {
		return
	}
	_ = src[2*width-1]
	_ = dst[4*width-1]
	for x := 0; x < width; x++ {
		p := binary.LittleEndian.Uint16(src[2*x:])
		r := byte(p>>11) & 0x1f
		g := byte(p>>5) & 0x3f
		b := byte(p) & 0x1f
		d := dst[4*x : 4*x+4]
		d[0] = r<<3 | r>>2
		d[1] = g<<2 | g>>4
		d[2] = b<<3 | b>>2
		d[3] = 0xff
	}
}

// Expand565Rows converts rows of RGB565 pixels into a tightly packed RGBA8
// buffer. Source rows start srcStride bytes apart; dst rows are width*4
// bytes apart.
func Expand565Rows(dst, src []byte, width, rows, srcStride int) {
	dstStride := width * 4
	for y := 0; y < rows; y++ {
		Expand565(dst[y*dstStride:], src[y*srcStride:], width)
	}
}

// Pack565 encodes an 8-bit RGB triple as a little-endian RGB565 pixel.
func Pack565(dst []byte, r, g, b byte) {
	p := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
	binary.LittleEndian.PutUint16(dst, p)
}
