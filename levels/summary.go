package levels

import (
	"fmt"

	"parquet_schema/schema"
)

// Summary counts how the level pairs of a page resolve against a leaf's
// LevelInfo.
type Summary struct {
	// Values have def == max_def_level.
	Values int
	// Nulls are null slots inside the nearest repeated ancestor.
	Nulls int
	// Empty entries have def below the immediate repeated ancestor's level:
	// an enclosing list was empty or null and no slot exists.
	Empty int
	// Records counts entries with rep == 0.
	Records int
}

// Summarize classifies every entry of the page by its levels.
func (p *Page) Summarize(info schema.LevelInfo) Summary {
	var s Summary
	for i := 0; i < p.NumValues; i++ {
		if p.Rep == nil || p.Rep[i] == 0 {
			s.Records++
		}
		var def int16
		if p.Def == nil {
			def = info.MaxDefLevel
		} else {
			def = p.Def[i]
		}
		switch {
		case def == info.MaxDefLevel:
			s.Values++
		case def < info.ImmediateRepeatedAncestorDefLevel:
			s.Empty++
		default:
			s.Nulls++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("records=%d values=%d nulls=%d empty=%d", s.Records, s.Values, s.Nulls, s.Empty)
}
