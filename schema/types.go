package schema

import (
	"fmt"
	"strings"
)

// Kind is the SQL type kind a field resolves to.
type Kind int

const (
	TypeUnknown Kind = iota
	TypeBoolean
	TypeTinyInt
	TypeSmallInt
	TypeInt
	TypeBigInt
	TypeLargeInt
	TypeFloat
	TypeDouble
	TypeVarchar
	TypeVarbinary
	TypeDate
	TypeDatetime
	TypeTime
	TypeDecimal
	TypeJSON
	TypeStruct
	TypeArray
	TypeMap
)

var kindNames = [...]string{
	TypeUnknown:   "UNKNOWN",
	TypeBoolean:   "BOOLEAN",
	TypeTinyInt:   "TINYINT",
	TypeSmallInt:  "SMALLINT",
	TypeInt:       "INT",
	TypeBigInt:    "BIGINT",
	TypeLargeInt:  "LARGEINT",
	TypeFloat:     "FLOAT",
	TypeDouble:    "DOUBLE",
	TypeVarchar:   "VARCHAR",
	TypeVarbinary: "VARBINARY",
	TypeDate:      "DATE",
	TypeDatetime:  "DATETIME",
	TypeTime:      "TIME",
	TypeDecimal:   "DECIMAL",
	TypeJSON:      "JSON",
	TypeStruct:    "STRUCT",
	TypeArray:     "ARRAY",
	TypeMap:       "MAP",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// IsComplex reports whether k is a STRUCT, ARRAY or MAP.
func (k Kind) IsComplex() bool {
	return k == TypeStruct || k == TypeArray || k == TypeMap
}

// TypeDescriptor describes the SQL type of a field.
//
// ARRAY has one child, MAP has key and value children, STRUCT has one child
// per entry of FieldNames.
type TypeDescriptor struct {
	Kind       Kind
	Len        int
	Precision  int
	Scale      int
	Children   []TypeDescriptor
	FieldNames []string
}

func (t TypeDescriptor) String() string {
	switch t.Kind {
	case TypeDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
	case TypeVarbinary:
		if t.Len > 0 {
			return fmt.Sprintf("VARBINARY(%d)", t.Len)
		}
	case TypeArray:
		return "ARRAY<" + t.Children[0].String() + ">"
	case TypeMap:
		return "MAP<" + t.Children[0].String() + "," + t.Children[1].String() + ">"
	case TypeStruct:
		var sb strings.Builder
		sb.WriteString("STRUCT<")
		for i, child := range t.Children {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(t.FieldNames[i])
			sb.WriteByte(' ')
			sb.WriteString(child.String())
		}
		sb.WriteByte('>')
		return sb.String()
	}
	return t.Kind.String()
}

// leafType resolves the SQL type of a leaf element from its physical type
// and logical annotations. Logical types win over converted types.
func leafType(e *Element) TypeDescriptor {
	if e.Type == nil {
		return TypeDescriptor{Kind: TypeUnknown}
	}
	if lt := e.LogicalType; lt != nil && lt.Kind != LogicalNone {
		if t, ok := logicalLeafType(lt); ok {
			return t
		}
	}
	if ct := e.ConvertedType; ct != nil {
		if t, ok := convertedLeafType(*ct, e); ok {
			return t
		}
	}
	return physicalLeafType(*e.Type, e)
}

func logicalLeafType(lt *LogicalType) (TypeDescriptor, bool) {
	switch lt.Kind {
	case LogicalString, LogicalEnum:
		return TypeDescriptor{Kind: TypeVarchar}, true
	case LogicalJSON:
		return TypeDescriptor{Kind: TypeJSON}, true
	case LogicalBSON:
		return TypeDescriptor{Kind: TypeVarbinary}, true
	case LogicalUUID:
		return TypeDescriptor{Kind: TypeVarbinary, Len: 16}, true
	case LogicalDecimal:
		return TypeDescriptor{Kind: TypeDecimal, Precision: int(lt.Precision), Scale: int(lt.Scale)}, true
	case LogicalDate:
		return TypeDescriptor{Kind: TypeDate}, true
	case LogicalTime:
		return TypeDescriptor{Kind: TypeTime}, true
	case LogicalTimestamp:
		return TypeDescriptor{Kind: TypeDatetime}, true
	case LogicalInteger:
		return integerType(lt.BitWidth, lt.IsSigned), true
	case LogicalFloat16:
		return TypeDescriptor{Kind: TypeFloat}, true
	}
	return TypeDescriptor{}, false
}

func convertedLeafType(ct ConvertedType, e *Element) (TypeDescriptor, bool) {
	switch ct {
	case UTF8, Enum:
		return TypeDescriptor{Kind: TypeVarchar}, true
	case JSON:
		return TypeDescriptor{Kind: TypeJSON}, true
	case BSON:
		return TypeDescriptor{Kind: TypeVarbinary}, true
	case Decimal:
		t := TypeDescriptor{Kind: TypeDecimal}
		if e.Precision != nil {
			t.Precision = int(*e.Precision)
		}
		if e.Scale != nil {
			t.Scale = int(*e.Scale)
		}
		return t, true
	case Date:
		return TypeDescriptor{Kind: TypeDate}, true
	case TimeMillis, TimeMicros:
		return TypeDescriptor{Kind: TypeTime}, true
	case TimestampMillis, TimestampMicros:
		return TypeDescriptor{Kind: TypeDatetime}, true
	case Int8:
		return integerType(8, true), true
	case Int16:
		return integerType(16, true), true
	case Int32Converted:
		return integerType(32, true), true
	case Int64Converted:
		return integerType(64, true), true
	case Uint8:
		return integerType(8, false), true
	case Uint16:
		return integerType(16, false), true
	case Uint32:
		return integerType(32, false), true
	case Uint64:
		return integerType(64, false), true
	}
	return TypeDescriptor{}, false
}

// integerType widens unsigned integers to the next signed kind.
func integerType(bitWidth int8, signed bool) TypeDescriptor {
	switch {
	case bitWidth <= 8 && signed:
		return TypeDescriptor{Kind: TypeTinyInt}
	case bitWidth <= 8, bitWidth <= 16 && signed:
		return TypeDescriptor{Kind: TypeSmallInt}
	case bitWidth <= 16, bitWidth <= 32 && signed:
		return TypeDescriptor{Kind: TypeInt}
	case bitWidth <= 32, signed:
		return TypeDescriptor{Kind: TypeBigInt}
	default:
		return TypeDescriptor{Kind: TypeLargeInt}
	}
}

func physicalLeafType(pt PhysicalType, e *Element) TypeDescriptor {
	switch pt {
	case Boolean:
		return TypeDescriptor{Kind: TypeBoolean}
	case Int32:
		return TypeDescriptor{Kind: TypeInt}
	case Int64:
		return TypeDescriptor{Kind: TypeBigInt}
	case Int96:
		return TypeDescriptor{Kind: TypeDatetime}
	case Float:
		return TypeDescriptor{Kind: TypeFloat}
	case Double:
		return TypeDescriptor{Kind: TypeDouble}
	case ByteArray:
		return TypeDescriptor{Kind: TypeVarbinary}
	case FixedLenByteArray:
		t := TypeDescriptor{Kind: TypeVarbinary}
		if e.TypeLength != nil {
			t.Len = int(*e.TypeLength)
		}
		return t
	}
	return TypeDescriptor{Kind: TypeUnknown}
}

func arrayType(element TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Kind: TypeArray, Children: []TypeDescriptor{element}}
}

func mapType(key, value TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Kind: TypeMap, Children: []TypeDescriptor{key, value}}
}

func structType(fields []Field) TypeDescriptor {
	t := TypeDescriptor{
		Kind:       TypeStruct,
		Children:   make([]TypeDescriptor, len(fields)),
		FieldNames: make([]string, len(fields)),
	}
	for i := range fields {
		t.Children[i] = fields[i].Type
		t.FieldNames[i] = fields[i].Name
	}
	return t
}
