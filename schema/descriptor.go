package schema

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
)

// Descriptor is the resolved schema of one parquet file.
//
// A Descriptor is immutable once FromThrift returns it; methods of Descriptor
// values are safe to call concurrently from multiple goroutines. Fields
// returned by its methods point into the descriptor's tree and must not be
// modified.
type Descriptor struct {
	fields         []Field
	physicalFields []*Field
	fieldIdxByName map[string]int
	names          map[string]struct{}
	caseSensitive  bool
}

// maxDepth bounds the nesting of the field tree.
const maxDepth = 512

// cursor is threaded through the recursive descent by value: pos is the next
// unconsumed schema element and column the next unassigned physical column
// index.
type cursor struct {
	pos    int
	column int
}

// FromThrift resolves the pre-order schema array of a file footer.
//
// The first element must be the root group; its children are the file's
// top-level columns. Names are matched case-insensitively unless
// caseSensitive is set.
func FromThrift(elements []Element, caseSensitive bool) (*Descriptor, error) {
	if len(elements) == 0 {
		return nil, errors.Wrap(ErrMissingRoot, "empty schema")
	}
	root := &elements[0]
	if !root.IsGroup() {
		return nil, errors.Wrapf(ErrMissingRoot, "first schema element %q is not a group", root.Name)
	}
	n := root.numChildren()
	if n < 0 || n > len(elements)-1 {
		return nil, errors.Wrapf(ErrStructuralMismatch, "root declares %d children but %d elements remain", n, len(elements)-1)
	}

	fields := make([]Field, n)
	cur := cursor{pos: 1}
	for i := range fields {
		var err error
		if cur, err = nodeToField(elements, cur, LevelInfo{}, nil, &fields[i]); err != nil {
			return nil, err
		}
	}
	if cur.pos != len(elements) {
		return nil, errors.Wrapf(ErrStructuralMismatch, "%d schema elements are not reachable from the root", len(elements)-cur.pos)
	}

	d := &Descriptor{
		fields:         fields,
		physicalFields: make([]*Field, 0, cur.column),
		fieldIdxByName: make(map[string]int, len(fields)),
		names:          make(map[string]struct{}),
		caseSensitive:  caseSensitive,
	}
	for i := range d.fields {
		f := &d.fields[i]
		key := d.key(f.Name)
		if j, ok := d.fieldIdxByName[key]; ok {
			return nil, errors.Wrapf(ErrDuplicateName, "columns %q and %q", d.fields[j].Name, f.Name)
		}
		d.fieldIdxByName[key] = i

		f.forEachLeaf(func(leaf *Field) {
			d.physicalFields = append(d.physicalFields, leaf)
		})
		f.forEach(func(node *Field) {
			d.names[d.key(node.Name)] = struct{}{}
		})
	}
	return d, nil
}

// nodeToField resolves the subtree starting at cur.pos into field and
// returns the cursor past it. parent is the path of the enclosing groups; it
// is shared down the recursion and only leaves keep a copy.
func nodeToField(elements []Element, cur cursor, levels LevelInfo, parent []string, field *Field) (cursor, error) {
	if cur.pos >= len(elements) {
		return cur, errors.Wrapf(ErrStructuralMismatch, "expected schema element at position %d but only %d exist", cur.pos, len(elements))
	}
	if len(parent) >= maxDepth {
		return cur, errors.Wrapf(ErrUnsupportedShape, "schema nested deeper than %d levels", maxDepth)
	}
	e := &elements[cur.pos]
	if e.IsGroup() {
		switch {
		case e.isList():
			return listToField(elements, cur, levels, parent, field)
		case e.isMap():
			return mapToField(elements, cur, levels, parent, field)
		}
		return groupToField(elements, cur, levels, parent, field)
	}

	if e.Type == nil {
		return cur, errors.Wrapf(ErrUnsupportedShape, "leaf %q has no physical type", e.Name)
	}
	path := append(parent, e.Name)
	if e.Repetition() == Repeated {
		// A bare repeated leaf is a list of required values.
		elemLevels := levels
		if err := elemLevels.descend(Repeated); err != nil {
			return cur, err
		}
		field.Children = make([]Field, 1)
		leafToField(e, elemLevels, path, cur.column, &field.Children[0])
		setArrayField(e, levels, field)
		return cursor{pos: cur.pos + 1, column: cur.column + 1}, nil
	}
	if err := levels.descend(e.Repetition()); err != nil {
		return cur, err
	}
	leafToField(e, levels, path, cur.column, field)
	return cursor{pos: cur.pos + 1, column: cur.column + 1}, nil
}

func leafToField(e *Element, levels LevelInfo, path []string, column int, field *Field) {
	*field = Field{
		Name:                e.Name,
		Path:                slices.Clone(path),
		Element:             e.clone(),
		Type:                leafType(e),
		IsNullable:          levels.IsNullable(),
		PhysicalType:        *e.Type,
		PhysicalColumnIndex: column,
		Levels:              levels,
	}
	if e.TypeLength != nil {
		field.TypeLength = *e.TypeLength
	}
	if e.Scale != nil {
		field.Scale = *e.Scale
	}
	if e.Precision != nil {
		field.Precision = *e.Precision
	}
}

// groupToField handles groups without LIST or MAP annotation. A repeated
// group is the legacy encoding of a list of structs.
func groupToField(elements []Element, cur cursor, levels LevelInfo, parent []string, field *Field) (cursor, error) {
	e := &elements[cur.pos]
	path := append(parent, e.Name)
	if e.Repetition() != Repeated {
		if err := levels.descend(e.Repetition()); err != nil {
			return cur, err
		}
		return groupToStructField(elements, cur, levels, path, field)
	}

	elemLevels := levels
	if err := elemLevels.descend(Repeated); err != nil {
		return cur, err
	}
	field.Children = make([]Field, 1)
	next, err := groupToStructField(elements, cur, elemLevels, path, &field.Children[0])
	if err != nil {
		return cur, err
	}
	setArrayField(e, levels, field)
	return next, nil
}

// groupToStructField resolves the group at cur.pos as a STRUCT. levels must
// already include the group's own repetition.
func groupToStructField(elements []Element, cur cursor, levels LevelInfo, path []string, field *Field) (cursor, error) {
	e := &elements[cur.pos]
	n := e.numChildren()
	if n < 0 || n > len(elements)-cur.pos-1 {
		return cur, errors.Wrapf(ErrStructuralMismatch, "group %q declares %d children but %d elements remain",
			e.Name, n, len(elements)-cur.pos-1)
	}

	children := make([]Field, n)
	next := cursor{pos: cur.pos + 1, column: cur.column}
	for i := range children {
		var err error
		if next, err = nodeToField(elements, next, levels, path, &children[i]); err != nil {
			return cur, errors.WithMessage(err, e.Name)
		}
	}

	*field = Field{
		Name:                e.Name,
		Element:             e.clone(),
		Type:                structType(children),
		IsNullable:          levels.IsNullable(),
		PhysicalColumnIndex: -1,
		Levels:              levels,
		Children:            children,
	}
	return next, nil
}

func listToField(elements []Element, cur cursor, levels LevelInfo, parent []string, field *Field) (cursor, error) {
	e := &elements[cur.pos]
	path := append(parent, e.Name)
	if e.Repetition() == Repeated {
		return cur, errors.Wrapf(ErrUnsupportedShape, "LIST-annotated group %q must not be repeated", e.Name)
	}
	if e.numChildren() != 1 {
		return cur, errors.Wrapf(ErrUnsupportedShape, "LIST-annotated group %q must have a single child, has %d", e.Name, e.numChildren())
	}
	if cur.pos+1 >= len(elements) {
		return cur, errors.Wrapf(ErrStructuralMismatch, "LIST-annotated group %q has no child element", e.Name)
	}
	if err := levels.descend(e.Repetition()); err != nil {
		return cur, err
	}

	child := &elements[cur.pos+1]
	if child.Repetition() != Repeated {
		return cur, errors.Wrapf(ErrUnsupportedShape, "LIST-annotated group %q must have a repeated child, %q is %s",
			e.Name, child.Name, child.Repetition())
	}
	elemLevels := levels
	if err := elemLevels.descend(Repeated); err != nil {
		return cur, err
	}

	field.Children = make([]Field, 1)
	elem := &field.Children[0]
	childPath := append(path, child.Name)
	next := cursor{pos: cur.pos + 1, column: cur.column}
	var err error
	switch {
	case !child.IsGroup():
		// 2-level list of primitives.
		if child.Type == nil {
			return cur, errors.Wrapf(ErrUnsupportedShape, "leaf %q has no physical type", child.Name)
		}
		leafToField(child, elemLevels, childPath, cur.column, elem)
		next = cursor{pos: cur.pos + 2, column: cur.column + 1}
	case child.numChildren() == 0:
		return cur, errors.Wrapf(ErrUnsupportedShape, "LIST-annotated group %q has an empty repeated group %q", e.Name, child.Name)
	case isTwoLevelElement(e, child):
		// 2-level list whose repeated group is the element itself.
		next, err = groupToStructField(elements, next, elemLevels, childPath, elem)
	default:
		// 3-level list: the repeated group only wraps the element.
		next, err = nodeToField(elements, cursor{pos: cur.pos + 2, column: cur.column}, elemLevels, childPath, elem)
	}
	if err != nil {
		return cur, errors.WithMessage(err, e.Name)
	}

	setArrayField(e, levels, field)
	return next, nil
}

// isTwoLevelElement reports whether the repeated child of a LIST group is the
// element rather than a wrapper, following the conventions of legacy writers:
// several fields, parquet-avro's "array" and parquet-thrift's "<name>_tuple".
func isTwoLevelElement(list, repeated *Element) bool {
	return repeated.numChildren() > 1 ||
		repeated.Name == "array" ||
		repeated.Name == list.Name+"_tuple"
}

func mapToField(elements []Element, cur cursor, levels LevelInfo, parent []string, field *Field) (cursor, error) {
	e := &elements[cur.pos]
	path := append(parent, e.Name)
	if e.Repetition() == Repeated {
		return cur, errors.Wrapf(ErrUnsupportedShape, "MAP-annotated group %q must not be repeated", e.Name)
	}
	if e.numChildren() != 1 {
		return cur, errors.Wrapf(ErrUnsupportedShape, "MAP-annotated group %q must have a single child, has %d", e.Name, e.numChildren())
	}
	if cur.pos+2 >= len(elements) {
		return cur, errors.Wrapf(ErrStructuralMismatch, "MAP-annotated group %q is truncated", e.Name)
	}
	kv := &elements[cur.pos+1]
	if !kv.IsGroup() || kv.Repetition() != Repeated {
		return cur, errors.Wrapf(ErrUnsupportedShape, "MAP-annotated group %q must have a repeated group child", e.Name)
	}
	if kv.numChildren() != 2 {
		return cur, errors.Wrapf(ErrUnsupportedShape, "key_value group %q of map %q must have two children, has %d",
			kv.Name, e.Name, kv.numChildren())
	}
	if key := &elements[cur.pos+2]; key.Repetition() != Required {
		return cur, errors.Wrapf(ErrUnsupportedShape, "key %q of map %q must be required, is %s", key.Name, e.Name, key.Repetition())
	}

	if err := levels.descend(e.Repetition()); err != nil {
		return cur, err
	}
	kvLevels := levels
	if err := kvLevels.descend(Repeated); err != nil {
		return cur, err
	}

	children := make([]Field, 2)
	kvPath := append(path, kv.Name)
	next := cursor{pos: cur.pos + 2, column: cur.column}
	for i := range children {
		var err error
		if next, err = nodeToField(elements, next, kvLevels, kvPath, &children[i]); err != nil {
			return cur, errors.WithMessage(err, e.Name)
		}
	}

	*field = Field{
		Name:                e.Name,
		Element:             e.clone(),
		Type:                mapType(children[0].Type, children[1].Type),
		IsNullable:          levels.IsNullable(),
		PhysicalColumnIndex: -1,
		Levels:              levels,
		Children:            children,
	}
	return next, nil
}

// setArrayField fills the ARRAY node of e around its already resolved
// element. levels are the node's own levels, before the repeated increment.
func setArrayField(e *Element, levels LevelInfo, field *Field) {
	field.Name = e.Name
	field.Element = e.clone()
	field.Type = arrayType(field.Children[0].Type)
	field.IsNullable = levels.IsNullable()
	field.PhysicalColumnIndex = -1
	field.Levels = levels
}

func (d *Descriptor) key(name string) string {
	if d.caseSensitive {
		return name
	}
	// Casers are stateful and not safe for concurrent use.
	return cases.Fold().String(name)
}

// ColumnIndex returns the position of the top-level field called name.
func (d *Descriptor) ColumnIndex(name string) (int, bool) {
	idx, ok := d.fieldIdxByName[d.key(name)]
	return idx, ok
}

// ResolveByName returns the top-level field called name, or nil.
func (d *Descriptor) ResolveByName(name string) *Field {
	idx, ok := d.ColumnIndex(name)
	if !ok {
		return nil
	}
	return &d.fields[idx]
}

// ResolvePath walks the tree from a top-level field through child names.
// Array elements and map keys and values are addressed by their own names.
// The element of an unannotated repeated field shares the array's name and
// may be skipped: "points", "x" and "points", "points", "x" are the same field.
func (d *Descriptor) ResolvePath(path ...string) *Field {
	if len(path) == 0 {
		return nil
	}
	f := d.ResolveByName(path[0])
	for _, name := range path[1:] {
		if f == nil {
			return nil
		}
		f = d.child(f, name)
	}
	return f
}

func (d *Descriptor) child(f *Field, name string) *Field {
	key := d.key(name)
	for i := range f.Children {
		if d.key(f.Children[i].Name) == key {
			return &f.Children[i]
		}
	}
	if f.Type.Kind == TypeArray && len(f.Children) == 1 && f.Children[0].Name == f.Name {
		return d.child(&f.Children[0], name)
	}
	return nil
}

// HasName reports whether a field called name exists at any depth.
func (d *Descriptor) HasName(name string) bool {
	_, ok := d.names[d.key(name)]
	return ok
}

// StoredColumnByIdx returns the leaf backed by physical column idx. The
// caller guarantees 0 <= idx < NumColumns().
func (d *Descriptor) StoredColumnByIdx(idx int) *Field { return d.physicalFields[idx] }

// FieldNames adds the name of every top-level field to names.
func (d *Descriptor) FieldNames(names map[string]struct{}) {
	for i := range d.fields {
		names[d.fields[i].Name] = struct{}{}
	}
}

// Fields returns the top-level fields in file order.
func (d *Descriptor) Fields() []Field { return d.fields }

// PhysicalColumns returns the leaves ordered by physical column index.
func (d *Descriptor) PhysicalColumns() []*Field { return d.physicalFields }

// NumColumns returns the number of physical columns.
func (d *Descriptor) NumColumns() int { return len(d.physicalFields) }

// CaseSensitive reports the name matching policy of d.
func (d *Descriptor) CaseSensitive() bool { return d.caseSensitive }

func (d *Descriptor) String() string {
	var sb strings.Builder
	sb.WriteString("fields=[")
	for i := range d.fields {
		sb.WriteByte('\n')
		d.fields[i].writeTo(&sb, 1)
	}
	sb.WriteString("]")
	return sb.String()
}
