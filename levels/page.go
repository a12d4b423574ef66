package levels

import (
	"encoding/binary"
	"io"
	"log/slog"
	"strings"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
	"github.com/pkg/errors"

	"parquet_schema/footer"
	"parquet_schema/schema"
)

// Page holds the levels of one data page. Rep and Def are nil when the
// column's maximum level is 0.
type Page struct {
	Type      footer.PageType
	NumValues int
	Rep       []int16
	Def       []int16
}

// ReadFirstPage reads the levels of the first data page of a column chunk,
// skipping any dictionary or index page stored before it. field is the leaf
// the chunk stores.
func ReadFirstPage(r io.ReaderAt, chunk *footer.ColumnMetaData, field *schema.Field) (*Page, error) {
	if chunk == nil {
		return nil, errors.Wrap(footer.ErrCorrupt, "column chunk has no metadata")
	}
	if !field.IsLeaf() {
		return nil, errors.Errorf("field %q is not a leaf column", field.Name)
	}
	column := strings.Join(chunk.PathInSchema, ".")

	ks := kaitai.NewStream(io.NewSectionReader(r, chunk.StartOffset(), chunk.TotalCompressedSize))
	for {
		eof, err := ks.EOF()
		if err != nil {
			return nil, err
		}
		if eof {
			return nil, errors.Errorf("column %s has no data page", column)
		}

		h, err := footer.ReadPageHeader(ks)
		if err != nil {
			return nil, errors.WithMessagef(err, "column %s", column)
		}
		if h.CompressedPageSize < 0 || h.UncompressedPageSize < 0 {
			return nil, errors.Wrapf(footer.ErrCorrupt, "column %s: negative page size", column)
		}
		body, err := ks.ReadBytes(int(h.CompressedPageSize))
		if err != nil {
			return nil, errors.Wrapf(footer.ErrCorrupt, "column %s: reading %d byte page: %v", column, h.CompressedPageSize, err)
		}

		switch h.Type {
		case footer.DataPage:
			return decodeV1(h, body, chunk.Codec, field)
		case footer.DataPageV2:
			return decodeV2(h, body, field)
		default:
			slog.Debug("skipping page", "column", column, "type", h.Type, "size", h.CompressedPageSize)
		}
	}
}

func decodeV1(h *footer.PageHeader, body []byte, codec footer.Codec, field *schema.Field) (*Page, error) {
	dh := h.DataPageHeader
	if dh == nil {
		return nil, errors.Wrap(footer.ErrCorrupt, "data page without data_page_header")
	}
	if dh.NumValues < 0 {
		return nil, errors.Wrapf(footer.ErrCorrupt, "negative value count %d", dh.NumValues)
	}
	data, err := decompress(codec, body, int(h.UncompressedPageSize))
	if err != nil {
		return nil, errors.Wrapf(err, "decompressing %s page", codec)
	}

	p := &Page{Type: h.Type, NumValues: int(dh.NumValues)}
	if field.MaxRepLevel() > 0 {
		if dh.RepetitionLevelEncoding != footer.RLE {
			return nil, errors.Errorf("unsupported repetition level encoding %d", dh.RepetitionLevelEncoding)
		}
		if p.Rep, data, err = DecodeWithLength(data, p.NumValues, BitWidth(field.MaxRepLevel())); err != nil {
			return nil, errors.WithMessage(err, "repetition levels")
		}
	} else if field.MaxDefLevel() > 0 && p.NumValues > 0 && emptyLevelPrefix(data) {
		// parquet-go writes an empty repetition level section for flat
		// optional columns. Non-empty definition levels cannot be 0 bytes.
		data = data[4:]
	}
	if field.MaxDefLevel() > 0 {
		if dh.DefinitionLevelEncoding != footer.RLE {
			return nil, errors.Errorf("unsupported definition level encoding %d", dh.DefinitionLevelEncoding)
		}
		if p.Def, _, err = DecodeWithLength(data, p.NumValues, BitWidth(field.MaxDefLevel())); err != nil {
			return nil, errors.WithMessage(err, "definition levels")
		}
	}
	if err := p.check(field.Levels); err != nil {
		return nil, err
	}
	return p, nil
}

// decodeV2 reads the level sections of a v2 data page; they are stored
// uncompressed ahead of the values and carry explicit byte lengths.
func decodeV2(h *footer.PageHeader, body []byte, field *schema.Field) (*Page, error) {
	dh := h.DataPageHeaderV2
	if dh == nil {
		return nil, errors.Wrap(footer.ErrCorrupt, "data page v2 without data_page_header_v2")
	}
	if dh.NumValues < 0 {
		return nil, errors.Wrapf(footer.ErrCorrupt, "negative value count %d", dh.NumValues)
	}
	repLen, defLen := int(dh.RepetitionLevelsByteLength), int(dh.DefinitionLevelsByteLength)
	if repLen < 0 || defLen < 0 || repLen+defLen > len(body) {
		return nil, errors.Wrapf(footer.ErrCorrupt, "level sections of %d and %d bytes exceed page of %d bytes",
			repLen, defLen, len(body))
	}

	p := &Page{Type: h.Type, NumValues: int(dh.NumValues)}
	var err error
	if field.MaxRepLevel() > 0 {
		if p.Rep, _, err = Decode(body[:repLen], p.NumValues, BitWidth(field.MaxRepLevel())); err != nil {
			return nil, errors.WithMessage(err, "repetition levels")
		}
	}
	if field.MaxDefLevel() > 0 {
		if p.Def, _, err = Decode(body[repLen:repLen+defLen], p.NumValues, BitWidth(field.MaxDefLevel())); err != nil {
			return nil, errors.WithMessage(err, "definition levels")
		}
	}
	if err := p.check(field.Levels); err != nil {
		return nil, err
	}
	return p, nil
}

// emptyLevelPrefix reports whether data starts with a zero length prefix
// followed by another level section.
func emptyLevelPrefix(data []byte) bool {
	return len(data) >= 8 && binary.LittleEndian.Uint32(data) == 0
}

func (p *Page) check(info schema.LevelInfo) error {
	for _, l := range p.Rep {
		if l < 0 || l > info.MaxRepLevel {
			return errors.Wrapf(footer.ErrCorrupt, "repetition level %d exceeds maximum %d", l, info.MaxRepLevel)
		}
	}
	for _, l := range p.Def {
		if l < 0 || l > info.MaxDefLevel {
			return errors.Wrapf(footer.ErrCorrupt, "definition level %d exceeds maximum %d", l, info.MaxDefLevel)
		}
	}
	return nil
}
