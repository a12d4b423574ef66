package levels

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"

	"parquet_schema/footer"
)

// ErrUnsupportedCodec is returned for pages compressed with a codec that
// cannot be decoded.
var ErrUnsupportedCodec = errors.New("unsupported compression codec")

// decompress returns the page body decoded with codec. size is the
// uncompressed size recorded in the page header.
func decompress(codec footer.Codec, src []byte, size int) ([]byte, error) {
	switch codec {
	case footer.Uncompressed:
		return src, nil
	case footer.Snappy:
		return snappy.Decode(make([]byte, size), src)
	case footer.Gzip:
		r, err := gzip.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, errors.Wrap(err, "create gzip reader")
		}
		defer r.Close()
		return readAll(r, size)
	case footer.Brotli:
		return readAll(brotli.NewReader(bytes.NewReader(src)), size)
	case footer.Zstd:
		r, err := zstd.NewReader(nil)
		if err != nil {
			return nil, errors.Wrap(err, "create zstd reader")
		}
		defer r.Close()
		return r.DecodeAll(src, make([]byte, 0, size))
	case footer.LZ4Raw:
		return lz4Block(src, size)
	case footer.LZ4:
		return lz4Hadoop(src, size)
	default:
		return nil, errors.Wrapf(ErrUnsupportedCodec, "%s", codec)
	}
}

func readAll(r io.Reader, size int) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, size))
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lz4Block(src []byte, size int) ([]byte, error) {
	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// lz4Hadoop decodes the Hadoop framing of the deprecated LZ4 codec: blocks
// prefixed with big-endian uncompressed and compressed lengths. Files whose
// body does not parse as such frames hold a single raw block.
func lz4Hadoop(src []byte, size int) ([]byte, error) {
	out := make([]byte, 0, size)
	rest := src
	for len(rest) >= 8 {
		rawLen := binary.BigEndian.Uint32(rest)
		blockLen := binary.BigEndian.Uint32(rest[4:])
		if uint64(blockLen) > uint64(len(rest)-8) || len(out)+int(rawLen) > size {
			return lz4Block(src, size)
		}
		block, err := lz4Block(rest[8:8+blockLen], int(rawLen))
		if err != nil {
			return lz4Block(src, size)
		}
		out = append(out, block...)
		rest = rest[8+blockLen:]
	}
	if len(rest) != 0 {
		return lz4Block(src, size)
	}
	return out, nil
}
