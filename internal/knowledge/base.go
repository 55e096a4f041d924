package knowledge

type exerciseKey struct {
	name  string
	level int
}

type dietKey struct {
	dietType string
	mealType string
}

// ExerciseBase is an immutable exercise table. It is safe for concurrent readers.
type ExerciseBase struct {
	rows   []ExerciseRow
	exact  map[exerciseKey]int
	byName map[string]int
}

// NewExerciseBase indexes rows, keeping their order. When a key repeats, the first
// row wins.
func NewExerciseBase(rows []ExerciseRow) *ExerciseBase {
	b := &ExerciseBase{
		rows:   make([]ExerciseRow, len(rows)),
		exact:  make(map[exerciseKey]int, len(rows)),
		byName: make(map[string]int),
	}
	copy(b.rows, rows)
	for i, row := range b.rows {
		key := exerciseKey{name: row.ExerciseName, level: row.ExperienceLevel}
		if _, ok := b.exact[key]; !ok {
			b.exact[key] = i
		}
		if _, ok := b.byName[row.ExerciseName]; !ok {
			b.byName[row.ExerciseName] = i
		}
	}
	return b
}

// ExerciseLookup is the tagged result of ExerciseBase.Lookup.
type ExerciseLookup struct {
	Row   ExerciseRow
	Match Match
}

// Found reports whether any row was resolved.
func (l ExerciseLookup) Found() bool { return l.Match != MatchNone }

// Lookup resolves (name, level) exactly, then falls back to the first row for name in
// build order.
func (b *ExerciseBase) Lookup(name string, level int) ExerciseLookup {
	if i, ok := b.exact[exerciseKey{name: name, level: level}]; ok {
		return ExerciseLookup{Row: b.rows[i], Match: MatchExact}
	}
	if i, ok := b.byName[name]; ok {
		return ExerciseLookup{Row: b.rows[i], Match: MatchFallback}
	}
	return ExerciseLookup{Match: MatchNone}
}

// Len returns the number of rows.
func (b *ExerciseBase) Len() int { return len(b.rows) }

// Rows returns a copy of the rows in build order.
func (b *ExerciseBase) Rows() []ExerciseRow {
	out := make([]ExerciseRow, len(b.rows))
	copy(out, b.rows)
	return out
}

// DietBase is an immutable diet table. It is safe for concurrent readers.
type DietBase struct {
	rows  []DietRow
	exact map[dietKey]int
}

// NewDietBase indexes rows, keeping their order.
func NewDietBase(rows []DietRow) *DietBase {
	b := &DietBase{
		rows:  make([]DietRow, len(rows)),
		exact: make(map[dietKey]int, len(rows)),
	}
	copy(b.rows, rows)
	for i, row := range b.rows {
		key := dietKey{dietType: row.DietType, mealType: row.MealType}
		if _, ok := b.exact[key]; !ok {
			b.exact[key] = i
		}
	}
	return b
}

// DietLookup is the tagged result of DietBase.Lookup.
type DietLookup struct {
	Row   DietRow
	Match Match
}

// Found reports whether the combination exists.
func (l DietLookup) Found() bool { return l.Match != MatchNone }

// Lookup resolves (dietType, mealType). There is no relaxed key.
func (b *DietBase) Lookup(dietType, mealType string) DietLookup {
	if i, ok := b.exact[dietKey{dietType: dietType, mealType: mealType}]; ok {
		return DietLookup{Row: b.rows[i], Match: MatchExact}
	}
	return DietLookup{Match: MatchNone}
}

// Len returns the number of rows.
func (b *DietBase) Len() int { return len(b.rows) }

// Rows returns a copy of the rows in build order.
func (b *DietBase) Rows() []DietRow {
	out := make([]DietRow, len(b.rows))
	copy(out, b.rows)
	return out
}
