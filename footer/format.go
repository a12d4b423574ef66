package footer

import (
	"github.com/parquet-go/parquet-go/format"

	"parquet_schema/schema"
)

// FromFormat converts file metadata decoded by parquet-go.
func FromFormat(m *format.FileMetaData) *FileMetaData {
	out := &FileMetaData{
		Version:          m.Version,
		Schema:           schema.FromFormat(m.Schema),
		NumRows:          m.NumRows,
		RowGroups:        make([]RowGroup, len(m.RowGroups)),
		KeyValueMetadata: fromFormatKeyValues(m.KeyValueMetadata),
		CreatedBy:        m.CreatedBy,
	}
	for i, rg := range m.RowGroups {
		out.RowGroups[i] = RowGroup{
			Columns:             make([]ColumnChunk, len(rg.Columns)),
			TotalByteSize:       rg.TotalByteSize,
			NumRows:             rg.NumRows,
			FileOffset:          rg.FileOffset,
			TotalCompressedSize: rg.TotalCompressedSize,
			Ordinal:             int32(rg.Ordinal),
		}
		for j := range rg.Columns {
			out.RowGroups[i].Columns[j] = fromFormatColumnChunk(&rg.Columns[j])
		}
	}
	return out
}

func fromFormatColumnChunk(c *format.ColumnChunk) ColumnChunk {
	md := &c.MetaData
	meta := &ColumnMetaData{
		Type:                  schema.PhysicalType(md.Type),
		PathInSchema:          append([]string(nil), md.PathInSchema...),
		Codec:                 Codec(md.Codec),
		NumValues:             md.NumValues,
		TotalUncompressedSize: md.TotalUncompressedSize,
		TotalCompressedSize:   md.TotalCompressedSize,
		KeyValueMetadata:      fromFormatKeyValues(md.KeyValueMetadata),
		DataPageOffset:        md.DataPageOffset,
	}
	for _, e := range md.Encoding {
		meta.Encodings = append(meta.Encodings, Encoding(e))
	}
	// parquet-go leaves absent offsets at zero; no page can start there.
	if off := md.IndexPageOffset; off != 0 {
		meta.IndexPageOffset = &off
	}
	if off := md.DictionaryPageOffset; off != 0 {
		meta.DictionaryPageOffset = &off
	}
	return ColumnChunk{FilePath: c.FilePath, FileOffset: c.FileOffset, MetaData: meta}
}

func fromFormatKeyValues(kvs []format.KeyValue) []KeyValue {
	if len(kvs) == 0 {
		return nil
	}
	out := make([]KeyValue, len(kvs))
	for i, kv := range kvs {
		v := kv.Value
		out[i] = KeyValue{Key: kv.Key, Value: &v}
	}
	return out
}
