// Package levels decodes the repetition and definition levels stored in the
// data pages of a column chunk.
package levels

import (
	"encoding/binary"
	"math/bits"

	"github.com/pkg/errors"

	"parquet_schema/footer"
)

// maxRunLength bounds the value count of a single run header.
const maxRunLength = 16 * 1024 * 1024

// BitWidth returns the number of bits used to encode levels up to maxLevel.
func BitWidth(maxLevel int16) int {
	return bits.Len16(uint16(maxLevel))
}

// Decode decodes n levels in the RLE/bit-packed hybrid encoding and returns
// them along with the number of bytes of src consumed.
func Decode(src []byte, n, bitWidth int) ([]int16, int, error) {
	if bitWidth < 0 || bitWidth > 16 {
		return nil, 0, errors.Errorf("level bit width %d out of range", bitWidth)
	}
	if n < 0 {
		return nil, 0, errors.Wrapf(footer.ErrCorrupt, "negative level count %d", n)
	}
	byteWidth := (bitWidth + 7) / 8
	// n comes from a page header; size by the input until runs prove it.
	dst := make([]int16, 0, min(n, 8*len(src)))

	i := 0
	for len(dst) < n {
		if i >= len(src) {
			return nil, i, errors.Wrapf(footer.ErrCorrupt, "level data ends after %d of %d values", len(dst), n)
		}
		u, k := binary.Uvarint(src[i:])
		if k <= 0 {
			return nil, i, errors.Wrapf(footer.ErrCorrupt, "invalid run header at byte %d", i)
		}
		i += k

		count := u >> 1
		if count > maxRunLength {
			return nil, i, errors.Wrapf(footer.ErrCorrupt, "run of %d values exceeds limit of %d", count, maxRunLength)
		}

		if u&1 != 0 {
			// bit-packed: count groups of 8 values
			count *= 8
			size := int(count) * bitWidth / 8
			if i+size > len(src) {
				return nil, i, errors.Wrapf(footer.ErrCorrupt, "bit-packed run of %d values is truncated", count)
			}
			dst = unpack(dst, src[i:i+size], int(count), bitWidth, n)
			i += size
			continue
		}

		if i+byteWidth > len(src) {
			return nil, i, errors.Wrapf(footer.ErrCorrupt, "run of %d values is truncated", count)
		}
		var v int
		for b := 0; b < byteWidth; b++ {
			v |= int(src[i+b]) << (8 * b)
		}
		i += byteWidth
		for ; count > 0 && len(dst) < n; count-- {
			dst = append(dst, int16(v))
		}
	}
	return dst, i, nil
}

// DecodeWithLength decodes n levels preceded by their 4 byte little-endian
// length, as stored in data pages v1, and returns the bytes following them.
func DecodeWithLength(src []byte, n, bitWidth int) ([]int16, []byte, error) {
	if len(src) < 4 {
		return nil, src, errors.Wrap(footer.ErrCorrupt, "missing level length prefix")
	}
	size := binary.LittleEndian.Uint32(src)
	if uint64(size) > uint64(len(src)-4) {
		return nil, src, errors.Wrapf(footer.ErrCorrupt, "level length %d exceeds page size %d", size, len(src)-4)
	}
	end := 4 + int(size)
	out, _, err := Decode(src[4:end], n, bitWidth)
	if err != nil {
		return nil, src, err
	}
	return out, src[end:], nil
}

// unpack appends count values of bitWidth bits, packed least significant
// bit first, stopping once dst holds limit values.
func unpack(dst []int16, src []byte, count, bitWidth, limit int) []int16 {
	mask := uint32(1)<<bitWidth - 1
	var buf uint32
	var nbits, j int
	for c := 0; c < count && len(dst) < limit; c++ {
		for nbits < bitWidth {
			buf |= uint32(src[j]) << nbits
			j++
			nbits += 8
		}
		dst = append(dst, int16(buf&mask))
		buf >>= bitWidth
		nbits -= bitWidth
	}
	return dst
}
