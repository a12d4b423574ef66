package schema

import (
	"github.com/parquet-go/parquet-go/format"
)

// FromFormat converts schema elements decoded by parquet-go into the flat
// element list accepted by FromThrift.
//
// parquet-go does not distinguish an absent num_children from zero, so any
// element without a physical type is treated as a group.
func FromFormat(elements []format.SchemaElement) []Element {
	out := make([]Element, len(elements))
	for i := range elements {
		out[i] = fromFormatElement(&elements[i])
	}
	return out
}

func fromFormatElement(s *format.SchemaElement) Element {
	e := Element{
		Name:       s.Name,
		TypeLength: clonePtr(s.TypeLength),
		Scale:      clonePtr(s.Scale),
		Precision:  clonePtr(s.Precision),
	}
	if s.Type != nil {
		t := PhysicalType(*s.Type)
		e.Type = &t
	} else {
		n := s.NumChildren
		e.NumChildren = &n
	}
	if s.RepetitionType != nil {
		r := Repetition(*s.RepetitionType)
		e.RepetitionType = &r
	}
	if s.ConvertedType != nil {
		c := ConvertedType(*s.ConvertedType)
		e.ConvertedType = &c
	}
	if s.FieldID != 0 {
		id := s.FieldID
		e.FieldID = &id
	}
	if s.LogicalType != nil {
		e.LogicalType = fromFormatLogicalType(s.LogicalType)
	}
	return e
}

func fromFormatLogicalType(lt *format.LogicalType) *LogicalType {
	out := &LogicalType{}
	switch {
	case lt.UTF8 != nil:
		out.Kind = LogicalString
	case lt.Map != nil:
		out.Kind = LogicalMap
	case lt.List != nil:
		out.Kind = LogicalList
	case lt.Enum != nil:
		out.Kind = LogicalEnum
	case lt.Decimal != nil:
		out.Kind = LogicalDecimal
		out.Scale = lt.Decimal.Scale
		out.Precision = lt.Decimal.Precision
	case lt.Date != nil:
		out.Kind = LogicalDate
	case lt.Time != nil:
		out.Kind = LogicalTime
		out.IsAdjustedToUTC = lt.Time.IsAdjustedToUTC
		out.Unit = fromFormatTimeUnit(lt.Time.Unit)
	case lt.Timestamp != nil:
		out.Kind = LogicalTimestamp
		out.IsAdjustedToUTC = lt.Timestamp.IsAdjustedToUTC
		out.Unit = fromFormatTimeUnit(lt.Timestamp.Unit)
	case lt.Integer != nil:
		out.Kind = LogicalInteger
		out.BitWidth = lt.Integer.BitWidth
		out.IsSigned = lt.Integer.IsSigned
	case lt.Unknown != nil:
		out.Kind = LogicalUnknown
	case lt.Json != nil:
		out.Kind = LogicalJSON
	case lt.Bson != nil:
		out.Kind = LogicalBSON
	case lt.UUID != nil:
		out.Kind = LogicalUUID
	}
	return out
}

func fromFormatTimeUnit(u format.TimeUnit) TimeUnit {
	switch {
	case u.Millis != nil:
		return Millis
	case u.Micros != nil:
		return Micros
	case u.Nanos != nil:
		return Nanos
	}
	return 0
}
