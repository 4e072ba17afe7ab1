package domain

import "strings"

// Selection is the single-select location toggle driven by marker clicks.
// The zero value has nothing selected.
type Selection struct {
	city     string
	selected bool
}

// Selected returns the selected location, if any.
func (s Selection) Selected() (string, bool) {
	return s.city, s.selected
}

// Toggle returns the selection after a click on city: selecting it when
// nothing or a different location is selected, clearing it when it is
// already selected. A blank city is not a location and leaves s unchanged.
func (s Selection) Toggle(city string) Selection {
	if strings.TrimSpace(city) == "" {
		return s
	}
	if s.selected && s.city == city {
		return Selection{}
	}
	return Selection{city: city, selected: true}
}
