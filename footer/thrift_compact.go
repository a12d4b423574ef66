package footer

import (
	"math"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
	"github.com/pkg/errors"
)

// Thrift Compact protocol type ids.
const (
	compactStop         = 0
	compactBooleanTrue  = 1
	compactBooleanFalse = 2
	compactByte         = 3
	compactI16          = 4
	compactI32          = 5
	compactI64          = 6
	compactDouble       = 7
	compactBinary       = 8
	compactList         = 9
	compactSet          = 10
	compactMap          = 11
	compactStruct       = 12
)

// maxNesting bounds struct/list nesting while parsing untrusted footers.
const maxNesting = 64

type compactValue struct {
	Type   uint8
	Int    int64
	Bool   bool
	Double float64
	Binary []byte
	List   []compactValue
	Struct *compactStructValue
}

type compactField struct {
	ID  int16
	Val compactValue
}

type compactStructValue struct {
	Fields []compactField
}

// compactReader parses a Thrift Compact encoded struct from a kaitai stream.
type compactReader struct {
	ks *kaitai.Stream
	// remaining bytes in the stream, bounds every length prefix.
	size int64
}

func newCompactReader(ks *kaitai.Stream) (*compactReader, error) {
	size, err := ks.Size()
	if err != nil {
		return nil, err
	}
	return &compactReader{ks: ks, size: size}, nil
}

func (r *compactReader) remaining() (int64, error) {
	pos, err := r.ks.Pos()
	if err != nil {
		return 0, err
	}
	return r.size - pos, nil
}

func (r *compactReader) readUvarint() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.ks.ReadU1()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, errors.Wrap(ErrCorrupt, "varint too long")
		}
	}
}

func (r *compactReader) readZigzag() (int64, error) {
	u, err := r.readUvarint()
	if err != nil {
		return 0, err
	}
	return int64(u>>1) ^ -int64(u&1), nil
}

func (r *compactReader) readBinary() ([]byte, error) {
	n, err := r.readUvarint()
	if err != nil {
		return nil, err
	}
	rem, err := r.remaining()
	if err != nil {
		return nil, err
	}
	if n > uint64(rem) {
		return nil, errors.Wrapf(ErrCorrupt, "binary length %d exceeds remaining %d bytes", n, rem)
	}
	return r.ks.ReadBytes(int(n))
}

func (r *compactReader) readStruct(depth int) (*compactStructValue, error) {
	if depth > maxNesting {
		return nil, errors.Wrapf(ErrCorrupt, "thrift nesting deeper than %d", maxNesting)
	}
	st := &compactStructValue{}
	var prevID int16
	for {
		header, err := r.ks.ReadU1()
		if err != nil {
			return nil, err
		}
		if header == compactStop {
			return st, nil
		}

		typ := header & 0x0F
		var id int16
		if delta := header >> 4; delta != 0 {
			id = prevID + int16(delta)
		} else {
			v, err := r.readZigzag()
			if err != nil {
				return nil, err
			}
			id = int16(v)
		}
		prevID = id

		val, err := r.readValue(typ, depth)
		if err != nil {
			return nil, errors.WithMessagef(err, "field %d", id)
		}
		st.Fields = append(st.Fields, compactField{ID: id, Val: val})
	}
}

func (r *compactReader) readValue(typ uint8, depth int) (compactValue, error) {
	v := compactValue{Type: typ}
	var err error
	switch typ {
	case compactBooleanTrue:
		v.Bool = true
	case compactBooleanFalse:
	case compactByte:
		var b int8
		b, err = r.ks.ReadS1()
		v.Int = int64(b)
	case compactI16, compactI32, compactI64:
		v.Int, err = r.readZigzag()
	case compactDouble:
		var bits uint64
		bits, err = r.ks.ReadU8le()
		v.Double = math.Float64frombits(bits)
	case compactBinary:
		v.Binary, err = r.readBinary()
	case compactList, compactSet:
		v.List, err = r.readList(depth + 1)
	case compactMap:
		v.List, err = r.readMap(depth + 1)
	case compactStruct:
		v.Struct, err = r.readStruct(depth + 1)
	default:
		err = errors.Wrapf(ErrCorrupt, "unknown thrift compact type %d", typ)
	}
	return v, err
}

// readElement reads one list/map element; booleans inside collections are
// encoded as a full byte instead of in the field header.
func (r *compactReader) readElement(typ uint8, depth int) (compactValue, error) {
	if typ != compactBooleanTrue && typ != compactBooleanFalse {
		return r.readValue(typ, depth)
	}
	b, err := r.ks.ReadU1()
	return compactValue{Type: compactBooleanTrue, Bool: b == compactBooleanTrue}, err
}

func (r *compactReader) readList(depth int) ([]compactValue, error) {
	if depth > maxNesting {
		return nil, errors.Wrapf(ErrCorrupt, "thrift nesting deeper than %d", maxNesting)
	}
	header, err := r.ks.ReadU1()
	if err != nil {
		return nil, err
	}
	size := uint64(header >> 4)
	if size == 15 {
		if size, err = r.readUvarint(); err != nil {
			return nil, err
		}
	}
	if err := r.checkCount(size); err != nil {
		return nil, err
	}
	elemType := header & 0x0F
	out := make([]compactValue, 0, size)
	for i := uint64(0); i < size; i++ {
		v, err := r.readElement(elemType, depth)
		if err != nil {
			return nil, errors.WithMessagef(err, "list element %d", i)
		}
		out = append(out, v)
	}
	return out, nil
}

// readMap returns keys and values interleaved.
func (r *compactReader) readMap(depth int) ([]compactValue, error) {
	if depth > maxNesting {
		return nil, errors.Wrapf(ErrCorrupt, "thrift nesting deeper than %d", maxNesting)
	}
	size, err := r.readUvarint()
	if err != nil || size == 0 {
		return nil, err
	}
	if err := r.checkCount(size); err != nil {
		return nil, err
	}
	types, err := r.ks.ReadU1()
	if err != nil {
		return nil, err
	}
	out := make([]compactValue, 0, 2*size)
	for i := uint64(0); i < size; i++ {
		k, err := r.readElement(types>>4, depth)
		if err != nil {
			return nil, err
		}
		v, err := r.readElement(types&0x0F, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, k, v)
	}
	return out, nil
}

// checkCount rejects collection sizes that cannot fit in the remaining bytes;
// every element takes at least one byte.
func (r *compactReader) checkCount(n uint64) error {
	rem, err := r.remaining()
	if err != nil {
		return err
	}
	if n > uint64(rem) {
		return errors.Wrapf(ErrCorrupt, "collection of %d elements exceeds remaining %d bytes", n, rem)
	}
	return nil
}
