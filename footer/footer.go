// Package footer reads the metadata footer of a parquet file.
//
// The file frame and the Thrift Compact encoded FileMetaData are parsed
// through a kaitai stream; no column data is read.
package footer

import (
	"bytes"
	"io"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
	"github.com/pkg/errors"
)

const magic = "PAR1"

// ErrCorrupt is returned for malformed file frames and metadata encodings.
var ErrCorrupt = errors.New("corrupt parquet metadata")

// Open reads the footer of the parquet file r.
func Open(r io.ReadSeeker) (*FileMetaData, error) {
	ks := kaitai.NewStream(r)

	size, err := ks.Size()
	if err != nil {
		return nil, errors.Wrap(err, "reading file size")
	}
	if size < int64(2*len(magic)+4) {
		return nil, errors.Wrapf(ErrCorrupt, "file of %d bytes is too small", size)
	}

	head, err := ks.ReadBytes(len(magic))
	if err != nil {
		return nil, errors.Wrap(err, "reading magic header")
	}
	if string(head) != magic {
		return nil, errors.Wrapf(ErrCorrupt, "invalid magic header %q", head)
	}

	if _, err := ks.Seek(size-8, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seeking to footer length")
	}
	footerLen, err := ks.ReadU4le()
	if err != nil {
		return nil, errors.Wrap(err, "reading footer length")
	}
	tail, err := ks.ReadBytes(len(magic))
	if err != nil {
		return nil, errors.Wrap(err, "reading magic footer")
	}
	if string(tail) != magic {
		return nil, errors.Wrapf(ErrCorrupt, "invalid magic footer %q", tail)
	}
	if int64(footerLen) > size-int64(2*len(magic)+4) {
		return nil, errors.Wrapf(ErrCorrupt, "footer length %d exceeds file size %d", footerLen, size)
	}

	if _, err := ks.Seek(size-8-int64(footerLen), io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seeking to footer")
	}
	data, err := ks.ReadBytes(int(footerLen))
	if err != nil {
		return nil, errors.Wrap(err, "reading footer")
	}
	return Decode(data)
}

// Decode decodes a Thrift Compact encoded FileMetaData.
func Decode(data []byte) (*FileMetaData, error) {
	r, err := newCompactReader(kaitai.NewStream(bytes.NewReader(data)))
	if err != nil {
		return nil, err
	}
	st, err := r.readStruct(0)
	if err != nil {
		return nil, errors.Wrap(asCorrupt(err), "parsing file metadata")
	}
	meta, err := decodeFileMetaData(st)
	if err != nil {
		return nil, errors.Wrap(err, "decoding file metadata")
	}
	return meta, nil
}

// ReadPageHeader reads the page header at the current position of ks and
// leaves ks at the first byte of the page body.
func ReadPageHeader(ks *kaitai.Stream) (*PageHeader, error) {
	r, err := newCompactReader(ks)
	if err != nil {
		return nil, err
	}
	st, err := r.readStruct(0)
	if err != nil {
		return nil, errors.Wrap(asCorrupt(err), "parsing page header")
	}
	return decodePageHeader(st)
}

// asCorrupt reports stream errors as corruption; the only way the parser
// fails to read is running past the end of the encoded struct.
func asCorrupt(err error) error {
	if errors.Is(err, ErrCorrupt) {
		return err
	}
	return errors.Wrap(ErrCorrupt, err.Error())
}

// CheckColumns verifies every row group stores one column chunk per leaf
// of the resolved schema, so physical column indices can address chunks.
func (m *FileMetaData) CheckColumns(numLeaves int) error {
	for i, rg := range m.RowGroups {
		if len(rg.Columns) != numLeaves {
			return errors.Wrapf(ErrCorrupt, "row group %d contains %d columns but the schema has %d leaves",
				i, len(rg.Columns), numLeaves)
		}
	}
	return nil
}
