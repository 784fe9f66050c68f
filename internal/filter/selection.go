package filter

import "slices"

// Selection tracks which of the currently known values of a field are chosen.
// Selected is always a subset of Known.
type Selection struct {
	known    []string
	selected []string
}

// NewSelection returns a selection with every value chosen
func NewSelection(values []string) Selection {
	var s Selection
	s.Reset(values)
	return s
}

// Reset replaces the known values and selects all of them, discarding the
// previous choice
func (s *Selection) Reset(values []string) {
	s.known = slices.Clone(values)
	s.selected = slices.Clone(values)
}

// Known returns the known values in first-seen order
func (s *Selection) Known() []string {
	return slices.Clone(s.known)
}

// Selected returns the chosen values in selection order
func (s *Selection) Selected() []string {
	return slices.Clone(s.selected)
}

// Contains reports whether v is chosen
func (s *Selection) Contains(v string) bool {
	return slices.Contains(s.selected, v)
}

// AllSelected reports whether every known value is chosen
func (s *Selection) AllSelected() bool {
	return len(s.selected) == len(s.known)
}

// ToggleAll clears the selection when everything is chosen, otherwise
// chooses every currently known value
func (s *Selection) ToggleAll() {
	if s.AllSelected() {
		s.selected = []string{}
		return
	}
	s.selected = slices.Clone(s.known)
}

// Toggle flips membership of v, keeping the relative order of the rest.
// Values that are not known are ignored.
func (s *Selection) Toggle(v string) {
	if i := slices.Index(s.selected, v); i >= 0 {
		s.selected = slices.Delete(slices.Clone(s.selected), i, i+1)
		return
	}
	if !slices.Contains(s.known, v) {
		return
	}
	s.selected = append(slices.Clone(s.selected), v)
}

// Set restricts the selection to the given values, keeping known order.
// Unknown values are dropped.
func (s *Selection) Set(values []string) {
	selected := []string{}
	for _, v := range s.known {
		if slices.Contains(values, v) {
			selected = append(selected, v)
		}
	}
	s.selected = selected
}

// Lookup returns the chosen values as a set
func (s *Selection) Lookup() map[string]struct{} {
	set := make(map[string]struct{}, len(s.selected))
	for _, v := range s.selected {
		set[v] = struct{}{}
	}
	return set
}
