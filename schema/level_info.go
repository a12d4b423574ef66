package schema

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// LevelInfo tracks the Dremel levels in effect at a node of the schema tree.
//
// It is a value type: every recursive step works on its own copy.
type LevelInfo struct {
	MaxDefLevel int16
	MaxRepLevel int16

	// Definition level at which the nearest enclosing repeated node is
	// known to be non-empty.
	ImmediateRepeatedAncestorDefLevel int16
}

// IsNullable reports whether the node's presence is recorded at a level
// distinct from the enclosing list's emptiness marker.
func (l LevelInfo) IsNullable() bool {
	return l.MaxDefLevel > l.ImmediateRepeatedAncestorDefLevel
}

// IncrementOptional applies the rule for descending into an OPTIONAL node.
func (l *LevelInfo) IncrementOptional() {
	l.MaxDefLevel++
}

// IncrementRepeated applies the rule for descending into a REPEATED node and
// returns the ancestor anchor in effect before the call.
func (l *LevelInfo) IncrementRepeated() int16 {
	prev := l.ImmediateRepeatedAncestorDefLevel
	l.MaxDefLevel++
	l.MaxRepLevel++
	l.ImmediateRepeatedAncestorDefLevel = l.MaxDefLevel
	return prev
}

// descend applies the rule matching r.
func (l *LevelInfo) descend(r Repetition) error {
	if l.MaxDefLevel == math.MaxInt16 {
		return errors.Wrapf(ErrUnsupportedShape, "definition level overflow at %s", l)
	}
	switch r {
	case Optional:
		l.IncrementOptional()
	case Repeated:
		l.IncrementRepeated()
	}
	return nil
}

func (l LevelInfo) String() string {
	return fmt.Sprintf("LevelInfo(max_def_level=%d, max_rep_level=%d, immediate_repeated_ancestor_def_level=%d)",
		l.MaxDefLevel, l.MaxRepLevel, l.ImmediateRepeatedAncestorDefLevel)
}
