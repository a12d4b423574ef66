package levels

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parquet_schema/footer"
)

func TestBitWidth(t *testing.T) {
	for maxLevel, want := range map[int16]int{0: 0, 1: 1, 2: 2, 3: 2, 4: 3, 7: 3, 255: 8, 256: 9} {
		assert.Equal(t, want, BitWidth(maxLevel), "max level %d", maxLevel)
	}
}

func TestDecode(t *testing.T) {
	for _, tc := range []struct {
		name     string
		src      []byte
		n        int
		bitWidth int
		want     []int16
		consumed int
	}{
		{
			name:     "rle run",
			src:      []byte{0x0A, 0x01},
			n:        5,
			bitWidth: 1,
			want:     []int16{1, 1, 1, 1, 1},
			consumed: 2,
		},
		{
			name:     "bit-packed width 1",
			src:      []byte{0x03, 0b10110010},
			n:        8,
			bitWidth: 1,
			want:     []int16{0, 1, 0, 0, 1, 1, 0, 1},
			consumed: 2,
		},
		{
			name:     "bit-packed width 3",
			src:      []byte{0x03, 0x88, 0xC6, 0xFA},
			n:        8,
			bitWidth: 3,
			want:     []int16{0, 1, 2, 3, 4, 5, 6, 7},
			consumed: 4,
		},
		{
			name:     "two byte rle value",
			src:      []byte{0x04, 0x2C, 0x01},
			n:        2,
			bitWidth: 9,
			want:     []int16{300, 300},
			consumed: 3,
		},
		{
			name:     "rle then bit-packed padding dropped",
			src:      []byte{0x06, 0x02, 0x03, 0xB1, 0x00},
			n:        5,
			bitWidth: 2,
			want:     []int16{2, 2, 2, 1, 0},
			consumed: 5,
		},
		{
			name:     "zero width",
			src:      []byte{0x08},
			n:        4,
			bitWidth: 0,
			want:     []int16{0, 0, 0, 0},
			consumed: 1,
		},
		{
			name:     "stops at n",
			src:      []byte{0x14, 0x01, 0xFF},
			n:        3,
			bitWidth: 1,
			want:     []int16{1, 1, 1},
			consumed: 2,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, consumed, err := Decode(tc.src, tc.n, tc.bitWidth)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.consumed, consumed)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	for _, tc := range []struct {
		name     string
		src      []byte
		n        int
		bitWidth int
	}{
		{name: "missing rle value", src: []byte{0x0A}, n: 5, bitWidth: 1},
		{name: "truncated bit-packed run", src: []byte{0x03, 0x01, 0x02, 0x03}, n: 8, bitWidth: 8},
		{name: "fewer values than requested", src: []byte{0x02, 0x01}, n: 5, bitWidth: 1},
		{name: "empty input", src: nil, n: 1, bitWidth: 1},
		{name: "unterminated header", src: []byte{0x80}, n: 1, bitWidth: 1},
		{name: "negative count", src: []byte{0x02, 0x01}, n: -1, bitWidth: 1},
		{name: "count far beyond input", src: []byte{0x02, 0x01}, n: math.MaxInt32, bitWidth: 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(tc.src, tc.n, tc.bitWidth)
			assert.ErrorIs(t, err, footer.ErrCorrupt)
		})
	}

	_, _, err := Decode([]byte{0x02, 0x01}, 1, 17)
	assert.Error(t, err)
}

func TestDecodeWithLength(t *testing.T) {
	got, rest, err := DecodeWithLength([]byte{2, 0, 0, 0, 0x0A, 0x01, 0xFF}, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 1, 1, 1, 1}, got)
	assert.Equal(t, []byte{0xFF}, rest)

	_, _, err = DecodeWithLength([]byte{9, 0, 0, 0, 0x0A}, 5, 1)
	assert.ErrorIs(t, err, footer.ErrCorrupt)

	_, _, err = DecodeWithLength([]byte{1, 0}, 5, 1)
	assert.ErrorIs(t, err, footer.ErrCorrupt)
}
