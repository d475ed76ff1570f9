package tile

import (
	"slices"
)

// Section is a highlighted range [Start, Stop] of a tile's scale.
type Section struct {
	Start float64
	Stop  float64
	Text  string
	Color string

	// Active is true while the last checked value lies inside the section.
	Active bool

	checked      bool
	checkedValue float64
}

// NewSection creates a section that has not seen any value yet.
func NewSection(start, stop float64, text, color string) *Section {
	return &Section{Start: start, Stop: stop, Text: text, Color: color}
}

// Contains reports whether v lies in the section, bounds included.
func (s *Section) Contains(v float64) bool {
	return s.Start <= v && v <= s.Stop
}

// checkForValue compares v with the previously checked value and returns
// the edge event, if any.
func (s *Section) checkForValue(v float64) (EventType, bool) {
	was := s.checked && s.Contains(s.checkedValue)
	is := s.Contains(v)
	s.checked = true
	s.checkedValue = v
	s.Active = is

	switch {
	case !was && is:
		return EventSectionEntered, true
	case was && !is:
		return EventSectionLeft, true
	}
	return "", false
}

func sortSections(sections []*Section) {
	slices.SortStableFunc(sections, func(a, b *Section) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
}

// Sections returns a copy of the tile's sections, ordered by start.
func (t *Tile) Sections() []*Section {
	return slices.Clone(t.sections)
}

// SetSections replaces all sections.
func (t *Tile) SetSections(sections ...*Section) {
	t.sections = t.sections[:0]
	for _, s := range sections {
		if s != nil {
			t.sections = append(t.sections, s)
		}
	}
	sortSections(t.sections)
	t.fire(Event{Type: EventSection})
}

// AddSection adds s, keeping the sections ordered.
func (t *Tile) AddSection(s *Section) {
	if s == nil {
		return
	}
	t.sections = append(t.sections, s)
	sortSections(t.sections)
	t.fire(Event{Type: EventSection})
}

// RemoveSection removes s if present.
func (t *Tile) RemoveSection(s *Section) {
	i := slices.Index(t.sections, s)
	if i < 0 {
		return
	}
	t.sections = slices.Delete(t.sections, i, i+1)
	t.fire(Event{Type: EventSection})
}

// ClearSections removes all sections.
func (t *Tile) ClearSections() {
	t.sections = t.sections[:0]
	t.fire(Event{Type: EventSection})
}

// UpdateSection moves s to a new range and re-sorts.
func (t *Tile) UpdateSection(s *Section, start, stop float64) {
	if !slices.Contains(t.sections, s) {
		return
	}
	s.Start = start
	s.Stop = stop
	sortSections(t.sections)
	t.fire(Event{Type: EventSectionUpdate, Section: s})
}

// checkSections runs edge detection for every section independently.
func (t *Tile) checkSections(v float64) {
	for _, s := range slices.Clone(t.sections) {
		if typ, ok := s.checkForValue(v); ok {
			t.fire(Event{Type: typ, Section: s})
		}
	}
}
