package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeafType(t *testing.T) {
	for _, tc := range []struct {
		name string
		elem Element
		want string
	}{
		{"boolean", leaf("b", Required, Boolean), "BOOLEAN"},
		{"int32", leaf("i", Required, Int32), "INT"},
		{"int64", leaf("i", Required, Int64), "BIGINT"},
		{"int96", leaf("ts", Required, Int96), "DATETIME"},
		{"float", leaf("f", Required, Float), "FLOAT"},
		{"double", leaf("d", Required, Double), "DOUBLE"},
		{"binary", leaf("b", Required, ByteArray), "VARBINARY"},
		{"fixed", Element{Name: "f", Type: ptr(FixedLenByteArray), TypeLength: ptr(int32(12))}, "VARBINARY(12)"},
		{"utf8", stringLeaf("s", Optional), "VARCHAR"},
		{"int8", Element{Name: "i", Type: ptr(Int32), ConvertedType: ptr(Int8)}, "TINYINT"},
		{"uint8", Element{Name: "i", Type: ptr(Int32), ConvertedType: ptr(Uint8)}, "SMALLINT"},
		{"uint32", Element{Name: "i", Type: ptr(Int32), ConvertedType: ptr(Uint32)}, "BIGINT"},
		{"uint64", Element{Name: "i", Type: ptr(Int64), ConvertedType: ptr(Uint64)}, "LARGEINT"},
		{"date", Element{Name: "d", Type: ptr(Int32), ConvertedType: ptr(Date)}, "DATE"},
		{"timestamp", Element{Name: "t", Type: ptr(Int64), ConvertedType: ptr(TimestampMicros)}, "DATETIME"},
		{"time", Element{Name: "t", Type: ptr(Int32), ConvertedType: ptr(TimeMillis)}, "TIME"},
		{"json", Element{Name: "j", Type: ptr(ByteArray), ConvertedType: ptr(JSON)}, "JSON"},
		{
			"converted decimal",
			Element{Name: "d", Type: ptr(FixedLenByteArray), TypeLength: ptr(int32(16)), ConvertedType: ptr(Decimal), Precision: ptr(int32(38)), Scale: ptr(int32(9))},
			"DECIMAL(38,9)",
		},
		{
			"logical decimal",
			Element{Name: "d", Type: ptr(Int64), LogicalType: &LogicalType{Kind: LogicalDecimal, Precision: 18, Scale: 2}},
			"DECIMAL(18,2)",
		},
		{
			"logical wins over converted",
			Element{Name: "i", Type: ptr(Int32), ConvertedType: ptr(Int32Converted), LogicalType: &LogicalType{Kind: LogicalInteger, BitWidth: 16, IsSigned: true}},
			"SMALLINT",
		},
		{
			"logical timestamp nanos",
			Element{Name: "t", Type: ptr(Int64), LogicalType: &LogicalType{Kind: LogicalTimestamp, Unit: Nanos}},
			"DATETIME",
		},
		{
			"unhandled logical falls back",
			Element{Name: "u", Type: ptr(Int32), LogicalType: &LogicalType{Kind: LogicalUnknown}},
			"INT",
		},
		{"uuid", Element{Name: "u", Type: ptr(FixedLenByteArray), TypeLength: ptr(int32(16)), LogicalType: &LogicalType{Kind: LogicalUUID}}, "VARBINARY(16)"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, leafType(&tc.elem).String())
		})
	}
}

func TestLeafField_CopiesPhysicalAttributes(t *testing.T) {
	d, err := FromThrift([]Element{
		root(1),
		{
			Name:           "price",
			RepetitionType: ptr(Optional),
			Type:           ptr(FixedLenByteArray),
			TypeLength:     ptr(int32(9)),
			ConvertedType:  ptr(Decimal),
			Precision:      ptr(int32(20)),
			Scale:          ptr(int32(4)),
		},
	}, false)
	require.NoError(t, err)

	f := d.StoredColumnByIdx(0)
	assert.Equal(t, FixedLenByteArray, f.PhysicalType)
	assert.Equal(t, int32(9), f.TypeLength)
	assert.Equal(t, int32(20), f.Precision)
	assert.Equal(t, int32(4), f.Scale)
	assert.Equal(t, TypeDecimal, f.Type.Kind)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "LARGEINT", TypeLargeInt.String())
	assert.Equal(t, "KIND(99)", Kind(99).String())
	assert.True(t, TypeMap.IsComplex())
	assert.False(t, TypeDecimal.IsComplex())
}
