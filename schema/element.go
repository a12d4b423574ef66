package schema

import "fmt"

// PhysicalType is the on-disk storage type of a leaf column.
type PhysicalType int32

const (
	Boolean           PhysicalType = 0
	Int32             PhysicalType = 1
	Int64             PhysicalType = 2
	Int96             PhysicalType = 3
	Float             PhysicalType = 4
	Double            PhysicalType = 5
	ByteArray         PhysicalType = 6
	FixedLenByteArray PhysicalType = 7
)

func (t PhysicalType) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Int96:
		return "INT96"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case ByteArray:
		return "BYTE_ARRAY"
	case FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(t))
	}
}

// Repetition is the field repetition kind of a schema element.
type Repetition int32

const (
	Required Repetition = 0
	Optional Repetition = 1
	Repeated Repetition = 2
)

func (r Repetition) String() string {
	switch r {
	case Required:
		return "REQUIRED"
	case Optional:
		return "OPTIONAL"
	case Repeated:
		return "REPEATED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(r))
	}
}

// ConvertedType is the legacy logical annotation of a schema element.
type ConvertedType int32

const (
	UTF8            ConvertedType = 0
	Map             ConvertedType = 1
	MapKeyValue     ConvertedType = 2
	List            ConvertedType = 3
	Enum            ConvertedType = 4
	Decimal         ConvertedType = 5
	Date            ConvertedType = 6
	TimeMillis      ConvertedType = 7
	TimeMicros      ConvertedType = 8
	TimestampMillis ConvertedType = 9
	TimestampMicros ConvertedType = 10
	Uint8           ConvertedType = 11
	Uint16          ConvertedType = 12
	Uint32          ConvertedType = 13
	Uint64          ConvertedType = 14
	Int8            ConvertedType = 15
	Int16           ConvertedType = 16
	Int32Converted  ConvertedType = 17
	Int64Converted  ConvertedType = 18
	JSON            ConvertedType = 19
	BSON            ConvertedType = 20
	Interval        ConvertedType = 21
)

var convertedTypeNames = [...]string{
	"UTF8", "MAP", "MAP_KEY_VALUE", "LIST", "ENUM", "DECIMAL", "DATE", "TIME_MILLIS", "TIME_MICROS",
	"TIMESTAMP_MILLIS", "TIMESTAMP_MICROS", "UINT_8", "UINT_16", "UINT_32", "UINT_64", "INT_8", "INT_16",
	"INT_32", "INT_64", "JSON", "BSON", "INTERVAL",
}

func (c ConvertedType) String() string {
	if c >= 0 && int(c) < len(convertedTypeNames) {
		return convertedTypeNames[c]
	}
	return fmt.Sprintf("UNKNOWN(%d)", int32(c))
}

// LogicalKind identifies which member of the logical type union is set.
type LogicalKind int8

const (
	LogicalNone LogicalKind = iota
	LogicalString
	LogicalMap
	LogicalList
	LogicalEnum
	LogicalDecimal
	LogicalDate
	LogicalTime
	LogicalTimestamp
	LogicalInteger
	LogicalUnknown
	LogicalJSON
	LogicalBSON
	LogicalUUID
	LogicalFloat16
)

// TimeUnit of TIME and TIMESTAMP logical types.
type TimeUnit int8

const (
	Millis TimeUnit = iota + 1
	Micros
	Nanos
)

// LogicalType is the subset of the footer's LogicalType union the resolver
// needs to pick a SQL type.
type LogicalType struct {
	Kind LogicalKind

	// DECIMAL
	Scale     int32
	Precision int32

	// INTEGER
	BitWidth int8
	IsSigned bool

	// TIME, TIMESTAMP
	Unit            TimeUnit
	IsAdjustedToUTC bool
}

// Element is one entry of the footer's pre-order schema array.
//
// Optional thrift fields are pointers; NumChildren is set iff the element
// is a group. Some writers emit num_children=0 on leaves, so an element with
// a physical type and no children is a leaf either way.
type Element struct {
	Type           *PhysicalType
	TypeLength     *int32
	RepetitionType *Repetition
	Name           string
	NumChildren    *int32
	ConvertedType  *ConvertedType
	Scale          *int32
	Precision      *int32
	FieldID        *int32
	LogicalType    *LogicalType
}

// IsGroup reports whether the element declares children.
func (e *Element) IsGroup() bool {
	return e.NumChildren != nil && (*e.NumChildren != 0 || e.Type == nil)
}

// Repetition returns the declared repetition, REQUIRED when absent.
func (e *Element) Repetition() Repetition {
	if e.RepetitionType != nil {
		return *e.RepetitionType
	}
	return Required
}

func (e *Element) numChildren() int {
	if e.NumChildren == nil {
		return 0
	}
	return int(*e.NumChildren)
}

func (e *Element) isList() bool {
	if e.LogicalType != nil && e.LogicalType.Kind == LogicalList {
		return true
	}
	return e.ConvertedType != nil && *e.ConvertedType == List
}

func (e *Element) isMap() bool {
	if e.LogicalType != nil && e.LogicalType.Kind == LogicalMap {
		return true
	}
	return e.ConvertedType != nil && (*e.ConvertedType == Map || *e.ConvertedType == MapKeyValue)
}
