package flv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeBE(t *testing.T) {
	tests := []struct {
		in   []byte
		want uint32
	}{
		{[]byte{0x01, 0x02}, 0x0102},
		{[]byte{0x00, 0x02, 0x27}, 551},
		{[]byte{0xff, 0xff, 0xff}, 0xffffff},
		{[]byte{0x00, 0x00, 0x00, 0x09}, 9},
		{[]byte{0x12, 0x34, 0x56, 0x78}, 0x12345678},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DecodeBE(tt.in), "% x", tt.in)
	}
}

func TestEncodeBE(t *testing.T) {
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, EncodeBE(0, 4))
	assert.Equal(t, []byte{0x00, 0x02, 0x27}, EncodeBE(551, 3))
	assert.Equal(t, []byte{0x01, 0x02}, EncodeBE(0x0102, 2))

	// high bytes that do not fit are dropped
	assert.Equal(t, []byte{0x34, 0x56, 0x78}, EncodeBE(0x12345678, 3))

	for _, n := range []int{2, 3, 4} {
		v := uint32(0xa1b2c3d4) >> uint(8*(4-n))
		assert.Equal(t, v, DecodeBE(EncodeBE(v, n)))
	}
}

func TestPutBE(t *testing.T) {
	b := make([]byte, 7)
	PutU24BE(b, 0x0a0b0c)
	PutU32BE(b[3:], 0x01020304)
	assert.Equal(t, []byte{0x0a, 0x0b, 0x0c, 0x01, 0x02, 0x03, 0x04}, b)
}
