package footer_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/encoding/thrift"
	"github.com/parquet-go/parquet-go/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parquet_schema/footer"
	"parquet_schema/schema"
)

type row struct {
	ID    int64            `parquet:"id"`
	Name  *string          `parquet:"name"`
	Tags  []int32          `parquet:"tags,list"`
	Attrs map[string]int32 `parquet:"attrs"`
}

func writeFile(t *testing.T, opts ...parquet.WriterOption) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[row](&buf, opts...)
	name := "a"
	_, err := w.Write([]row{
		{ID: 1, Name: &name, Tags: []int32{1, 2}, Attrs: map[string]int32{"k": 1}},
		{ID: 2},
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestOpen(t *testing.T) {
	data := writeFile(t, parquet.Compression(&parquet.Snappy))

	meta, err := footer.Open(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.NumRows)
	assert.NotEmpty(t, meta.CreatedBy)
	require.Len(t, meta.RowGroups, 1)

	d, err := schema.FromThrift(meta.Schema, false)
	require.NoError(t, err)
	require.Equal(t, 5, d.NumColumns())
	require.NoError(t, meta.CheckColumns(d.NumColumns()))

	for i, chunk := range meta.RowGroups[0].Columns {
		require.NotNil(t, chunk.MetaData)
		leaf := d.StoredColumnByIdx(i)
		assert.Equal(t, leaf.Path, chunk.MetaData.PathInSchema, "column %d", i)
		assert.Equal(t, leaf.PhysicalType, chunk.MetaData.Type, "column %d", i)
		assert.Equal(t, footer.Snappy, chunk.MetaData.Codec)
		assert.Positive(t, chunk.MetaData.DataPageOffset)
	}
}

func TestOpen_MatchesParquetGo(t *testing.T) {
	data := writeFile(t)

	meta, err := footer.Open(bytes.NewReader(data))
	require.NoError(t, err)
	ours, err := schema.FromThrift(meta.Schema, true)
	require.NoError(t, err)

	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	theirs, err := schema.FromThrift(schema.FromFormat(f.Metadata().Schema), true)
	require.NoError(t, err)

	assert.Equal(t, theirs.String(), ours.String())
	assert.Equal(t, f.NumRows(), meta.NumRows)
}

func TestDecode(t *testing.T) {
	data, err := thrift.Marshal(new(thrift.CompactProtocol), &format.FileMetaData{
		Version: 2,
		Schema: []format.SchemaElement{
			{Name: "root", NumChildren: 2},
			{
				Name:           "price",
				Type:           ptr(format.FixedLenByteArray),
				TypeLength:     ptr(int32(8)),
				RepetitionType: ptr(format.Optional),
				LogicalType:    &format.LogicalType{Decimal: &format.DecimalType{Scale: 2, Precision: 18}},
			},
			{
				Name:           "ts",
				Type:           ptr(format.Int64),
				RepetitionType: ptr(format.Required),
				LogicalType: &format.LogicalType{Timestamp: &format.TimestampType{
					IsAdjustedToUTC: true,
					Unit:            format.TimeUnit{Micros: &format.MicroSeconds{}},
				}},
			},
		},
		NumRows:   42,
		CreatedBy: "unit test",
		KeyValueMetadata: []format.KeyValue{
			{Key: "origin", Value: "test"},
		},
	})
	require.NoError(t, err)

	meta, err := footer.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, int32(2), meta.Version)
	assert.Equal(t, int64(42), meta.NumRows)
	assert.Equal(t, "unit test", meta.CreatedBy)
	require.Len(t, meta.KeyValueMetadata, 1)
	assert.Equal(t, "origin", meta.KeyValueMetadata[0].Key)
	require.Len(t, meta.Schema, 3)

	price := meta.Schema[1]
	require.NotNil(t, price.LogicalType)
	assert.Equal(t, schema.LogicalDecimal, price.LogicalType.Kind)
	assert.Equal(t, int32(18), price.LogicalType.Precision)
	assert.Equal(t, int32(2), price.LogicalType.Scale)
	assert.Equal(t, int32(8), *price.TypeLength)

	ts := meta.Schema[2]
	require.NotNil(t, ts.LogicalType)
	assert.Equal(t, schema.LogicalTimestamp, ts.LogicalType.Kind)
	assert.Equal(t, schema.Micros, ts.LogicalType.Unit)
	assert.True(t, ts.LogicalType.IsAdjustedToUTC)

	d, err := schema.FromThrift(meta.Schema, false)
	require.NoError(t, err)
	assert.Equal(t, "DECIMAL(18,2)", d.ResolveByName("price").Type.String())
	assert.Equal(t, "DATETIME", d.ResolveByName("ts").Type.String())
}

func TestReadPageHeader(t *testing.T) {
	data, err := thrift.Marshal(new(thrift.CompactProtocol), &format.PageHeader{
		Type:                 format.DataPage,
		UncompressedPageSize: 100,
		CompressedPageSize:   80,
		DataPageHeader: &format.DataPageHeader{
			NumValues:               10,
			Encoding:                format.Plain,
			DefinitionLevelEncoding: format.RLE,
			RepetitionLevelEncoding: format.RLE,
		},
	})
	require.NoError(t, err)
	body := []byte{1, 2, 3}

	ks := kaitai.NewStream(bytes.NewReader(append(data, body...)))
	h, err := footer.ReadPageHeader(ks)
	require.NoError(t, err)
	assert.Equal(t, footer.DataPage, h.Type)
	assert.Equal(t, int32(80), h.CompressedPageSize)
	require.NotNil(t, h.DataPageHeader)
	assert.Equal(t, int32(10), h.DataPageHeader.NumValues)
	assert.Equal(t, footer.RLE, h.DataPageHeader.DefinitionLevelEncoding)

	pos, err := ks.Pos()
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), pos)
}

func frame(footerBytes []byte) []byte {
	out := append([]byte("PAR1"), footerBytes...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(footerBytes)))
	return append(out, "PAR1"...)
}

func TestOpen_Corrupt(t *testing.T) {
	valid := writeFile(t)

	badHead := bytes.Clone(valid)
	copy(badHead, "PAR0")
	badTail := bytes.Clone(valid)
	copy(badTail[len(badTail)-4:], "PARX")
	hugeLen := bytes.Clone(valid)
	binary.LittleEndian.PutUint32(hugeLen[len(hugeLen)-8:], 1<<30)

	for _, tc := range []struct {
		name string
		data []byte
	}{
		{name: "too small", data: []byte("PAR1PAR1")},
		{name: "bad header magic", data: badHead},
		{name: "bad footer magic", data: badTail},
		{name: "footer longer than file", data: hugeLen},
		{name: "truncated metadata", data: frame([]byte{0x15})},
		{name: "string past end", data: frame([]byte{0x68, 0x7f})},
		{name: "unknown thrift type", data: frame([]byte{0x1d, 0x00})},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := footer.Open(bytes.NewReader(tc.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, footer.ErrCorrupt)
		})
	}
}

func TestDecode_WrongFieldType(t *testing.T) {
	// field 3 (num_rows) encoded as a binary instead of an i64.
	_, err := footer.Decode([]byte{0x38, 0x01, 'x', 0x00})
	assert.ErrorIs(t, err, footer.ErrCorrupt)
}

func TestCheckColumns(t *testing.T) {
	meta := &footer.FileMetaData{RowGroups: []footer.RowGroup{
		{Columns: make([]footer.ColumnChunk, 3)},
		{Columns: make([]footer.ColumnChunk, 2)},
	}}
	assert.NoError(t, (&footer.FileMetaData{}).CheckColumns(3))
	err := meta.CheckColumns(3)
	assert.ErrorIs(t, err, footer.ErrCorrupt)
	assert.Contains(t, err.Error(), "row group 1")
}

func ptr[T any](v T) *T { return &v }

func TestFromFormat(t *testing.T) {
	data := writeFile(t, parquet.Compression(&parquet.Zstd))

	ours, err := footer.Open(bytes.NewReader(data))
	require.NoError(t, err)

	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	theirs := footer.FromFormat(f.Metadata())

	assert.Equal(t, ours.NumRows, theirs.NumRows)
	assert.Equal(t, ours.CreatedBy, theirs.CreatedBy)
	require.Len(t, theirs.RowGroups, len(ours.RowGroups))
	for i, chunk := range theirs.RowGroups[0].Columns {
		want := ours.RowGroups[0].Columns[i].MetaData
		got := chunk.MetaData
		assert.Equal(t, want.PathInSchema, got.PathInSchema)
		assert.Equal(t, want.Type, got.Type)
		assert.Equal(t, footer.Zstd, got.Codec)
		assert.Equal(t, want.NumValues, got.NumValues)
		assert.Equal(t, want.StartOffset(), got.StartOffset())
		assert.Equal(t, want.TotalCompressedSize, got.TotalCompressedSize)
		assert.Equal(t, want.Encodings, got.Encodings)
	}
}
