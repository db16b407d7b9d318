package agegroup

// AgeGroup is a named, inclusive integer age range. Ranges never overlap;
// the store enforces that invariant at insert time.
type AgeGroup struct {
	ID     string
	Name   string
	MinAge int
	MaxAge int
}

// Contains reports whether age falls inside the group's inclusive range.
func (g AgeGroup) Contains(age int) bool {
	return age >= g.MinAge && age <= g.MaxAge
}

// Overlaps reports whether two inclusive ranges intersect.
func (g AgeGroup) Overlaps(other AgeGroup) bool {
	return g.MinAge <= other.MaxAge && g.MaxAge >= other.MinAge
}
