package schema

import (
	"bytes"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/deprecated"
	"github.com/parquet-go/parquet-go/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFormat(t *testing.T) {
	elements := FromFormat([]format.SchemaElement{
		{Name: "schema", NumChildren: 2},
		{
			Name:           "name",
			Type:           ptr(format.ByteArray),
			RepetitionType: ptr(format.Optional),
			ConvertedType:  ptr(deprecated.UTF8),
			LogicalType:    &format.LogicalType{UTF8: &format.StringType{}},
			FieldID:        7,
		},
		{
			Name:           "amount",
			Type:           ptr(format.Int64),
			RepetitionType: ptr(format.Required),
			LogicalType:    &format.LogicalType{Decimal: &format.DecimalType{Scale: 2, Precision: 12}},
		},
	})
	require.Len(t, elements, 3)

	assert.True(t, elements[0].IsGroup())
	assert.Equal(t, int32(2), *elements[0].NumChildren)

	name := elements[1]
	assert.False(t, name.IsGroup())
	assert.Equal(t, ByteArray, *name.Type)
	assert.Equal(t, Optional, name.Repetition())
	assert.Equal(t, UTF8, *name.ConvertedType)
	assert.Equal(t, LogicalString, name.LogicalType.Kind)
	assert.Equal(t, int32(7), *name.FieldID)

	amount := elements[2]
	assert.Nil(t, amount.FieldID)
	assert.Equal(t, LogicalDecimal, amount.LogicalType.Kind)
	assert.Equal(t, int32(12), amount.LogicalType.Precision)

	d, err := FromThrift(elements, false)
	require.NoError(t, err)
	assert.Equal(t, "DECIMAL(12,2)", d.ResolveByName("amount").Type.String())
}

type formatRow struct {
	ID    int64            `parquet:"id"`
	Name  *string          `parquet:"name"`
	Tags  []int32          `parquet:"tags,list"`
	Attrs map[string]int32 `parquet:"attrs"`
}

func TestFromFormat_WrittenFile(t *testing.T) {
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[formatRow](&buf)
	name := "a"
	_, err := w.Write([]formatRow{
		{ID: 1, Name: &name, Tags: []int32{1, 2}, Attrs: map[string]int32{"k": 1}},
		{ID: 2},
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	f, err := parquet.OpenFile(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	d, err := FromThrift(FromFormat(f.Metadata().Schema), false)
	require.NoError(t, err)
	require.Equal(t, 5, d.NumColumns())
	require.Equal(t, d.NumColumns(), len(f.Metadata().RowGroups[0].Columns))

	for i, chunk := range f.Metadata().RowGroups[0].Columns {
		assert.Equal(t, chunk.MetaData.PathInSchema, d.StoredColumnByIdx(i).Path)
	}

	id := d.ResolveByName("id")
	require.NotNil(t, id)
	assert.Equal(t, TypeBigInt, id.Type.Kind)
	assert.False(t, id.IsNullable)

	n := d.ResolveByName("name")
	require.NotNil(t, n)
	assert.Equal(t, TypeVarchar, n.Type.Kind)
	assert.Equal(t, levels(1, 0, 0), n.Levels)

	tags := d.ResolveByName("tags")
	require.NotNil(t, tags)
	assert.Equal(t, "ARRAY<INT>", tags.Type.String())
	assert.Equal(t, levels(1, 1, 1), tags.Children[0].Levels)

	attrs := d.ResolveByName("attrs")
	require.NotNil(t, attrs)
	assert.Equal(t, "MAP<VARCHAR,INT>", attrs.Type.String())
	assert.Equal(t, levels(1, 1, 1), attrs.Children[1].Levels)
}
