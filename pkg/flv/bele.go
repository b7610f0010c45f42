package flv

// DecodeBE treats b as a big-endian unsigned integer. len(b) is 2, 3 or 4.
func DecodeBE(b []byte) uint32 {
	ret := uint32(0)
	for i := 0; i < len(b); i++ {
		ret = ret<<8 + uint32(b[i])
	}

	return ret
}

// EncodeBE is the inverse of DecodeBE, returning the low n bytes of v.
func EncodeBE(v uint32, n int) []byte {
	b := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}

	return b
}

func u32BE(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// PutU24BE writes the low 3 bytes of v into b[0:3].
func PutU24BE(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// PutU32BE writes v into b[0:4].
func PutU32BE(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
