package transfer

import "bytes"

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
)

// StripMetadata removes embedded metadata segments from JPEG and PNG
// payloads when metadata stripping is enabled, detecting file type by
// magic bytes. Any other file type passes through unchanged.
func StripMetadata(data []byte) []byte {
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return stripJPEG(data)
	case bytes.HasPrefix(data, pngMagic):
		return stripPNG(data)
	default:
		return data
	}
}

// stripJPEG removes APP1 (0xE1, EXIF/XMP), APP2 (0xE2, ICC profile), and
// APP13 (0xED, Photoshop IRB) segments, copying every other segment
// through unchanged.
func stripJPEG(data []byte) []byte {
	out := make([]byte, 0, len(data))
	i := 0
	for i < len(data) {
		if i+1 >= len(data) || data[i] != 0xFF {
			out = append(out, data[i:]...)
			break
		}
		marker := data[i+1]
		if marker == 0xD8 || marker == 0xD9 || (marker >= 0xD0 && marker <= 0xD7) {
			out = append(out, data[i], data[i+1])
			i += 2
			continue
		}
		if i+3 >= len(data) {
			out = append(out, data[i:]...)
			break
		}
		segLen := int(data[i+2])<<8 | int(data[i+3])
		segEnd := i + 2 + segLen
		if segEnd > len(data) {
			out = append(out, data[i:]...)
			break
		}
		if marker == 0xE1 || marker == 0xE2 || marker == 0xED {
			i = segEnd
			continue
		}
		out = append(out, data[i:segEnd]...)
		i = segEnd
		if marker == 0xDA { // start of scan: copy the rest verbatim
			out = append(out, data[i:]...)
			break
		}
	}
	return out
}

var pngStrippedChunks = map[string]bool{
	"tEXt": true,
	"zTXt": true,
	"iTXt": true,
	"eXIf": true,
}

// stripPNG removes tEXt/zTXt/iTXt/eXIf chunks, preserving every other
// chunk (including CRCs) byte-for-byte.
func stripPNG(data []byte) []byte {
	out := make([]byte, 0, len(data))
	out = append(out, data[:8]...) // signature
	i := 8
	for i+8 <= len(data) {
		length := int(data[i])<<24 | int(data[i+1])<<16 | int(data[i+2])<<8 | int(data[i+3])
		typ := string(data[i+4 : i+8])
		chunkEnd := i + 8 + length + 4 // length + type + data + crc
		if chunkEnd > len(data) {
			out = append(out, data[i:]...)
			break
		}
		if !pngStrippedChunks[typ] {
			out = append(out, data[i:chunkEnd]...)
		}
		i = chunkEnd
		if typ == "IEND" {
			break
		}
	}
	return out
}
