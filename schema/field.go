package schema

import (
	"fmt"
	"strings"
)

// Field is one logical node of the resolved schema tree.
//
// Children are owned by their parent. Leaves carry the physical column
// index of the column chunk that stores them; other nodes carry -1.
type Field struct {
	Name string
	// Path is the path_in_schema of a leaf, wrapper groups included. It is
	// nil for other nodes.
	Path    []string
	Element Element

	Type       TypeDescriptor
	IsNullable bool

	PhysicalType PhysicalType
	// Byte length of FIXED_LEN_BYTE_ARRAY values.
	TypeLength int32
	Scale      int32
	Precision  int32

	PhysicalColumnIndex int

	Levels   LevelInfo
	Children []Field
}

// IsLeaf reports whether the field is backed by a physical column.
func (f *Field) IsLeaf() bool { return f.PhysicalColumnIndex >= 0 }

func (f *Field) MaxDefLevel() int16 { return f.Levels.MaxDefLevel }
func (f *Field) MaxRepLevel() int16 { return f.Levels.MaxRepLevel }

// ColumnIndices returns the physical column indices of every leaf under f,
// in pre-order.
func (f *Field) ColumnIndices() []int {
	var out []int
	f.forEachLeaf(func(leaf *Field) {
		out = append(out, leaf.PhysicalColumnIndex)
	})
	return out
}

func (f *Field) forEachLeaf(do func(*Field)) {
	if f.IsLeaf() {
		do(f)
		return
	}
	for i := range f.Children {
		f.Children[i].forEachLeaf(do)
	}
}

func (f *Field) forEach(do func(*Field)) {
	do(f)
	for i := range f.Children {
		f.Children[i].forEach(do)
	}
}

func (f *Field) String() string {
	var sb strings.Builder
	f.writeTo(&sb, 0)
	return sb.String()
}

func (f *Field) writeTo(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	if f.IsLeaf() {
		fmt.Fprintf(sb, "ParquetField(name=%s, type=%s, nullable=%t, physical_type=%s, physical_column_index=%d, %s)",
			f.Name, f.Type, f.IsNullable, f.PhysicalType, f.PhysicalColumnIndex, f.Levels)
		return
	}
	fmt.Fprintf(sb, "ParquetField(name=%s, type=%s, nullable=%t, %s, children=[",
		f.Name, f.Type.Kind, f.IsNullable, f.Levels)
	for i := range f.Children {
		sb.WriteByte('\n')
		f.Children[i].writeTo(sb, depth+1)
	}
	sb.WriteString("])")
}

func (e *Element) clone() Element {
	c := Element{Name: e.Name}
	c.Type = clonePtr(e.Type)
	c.TypeLength = clonePtr(e.TypeLength)
	c.RepetitionType = clonePtr(e.RepetitionType)
	c.NumChildren = clonePtr(e.NumChildren)
	c.ConvertedType = clonePtr(e.ConvertedType)
	c.Scale = clonePtr(e.Scale)
	c.Precision = clonePtr(e.Precision)
	c.FieldID = clonePtr(e.FieldID)
	c.LogicalType = clonePtr(e.LogicalType)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
