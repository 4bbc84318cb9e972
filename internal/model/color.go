package model

import "strings"

// ColorOption is one entry of the fixed color-tag palette.
type ColorOption struct {
	Name  string
	Value string
}

// PresetColors is the palette a record's color tag must come from.
var PresetColors = []ColorOption{
	{Name: "Red", Value: "#EF4444"},
	{Name: "Orange", Value: "#F97316"},
	{Name: "Yellow", Value: "#EAB308"},
	{Name: "Green", Value: "#10B981"},
	{Name: "Blue", Value: "#3B82F6"},
	{Name: "Indigo", Value: "#6366F1"},
	{Name: "Purple", Value: "#A855F7"},
	{Name: "Pink", Value: "#EC4899"},
	{Name: "Gray", Value: "#6B7280"},
}

// DefaultColor is the tag preselected on new records.
var DefaultColor = PresetColors[0].Value

// LookupColor resolves a palette entry by hex value or by name
// (case-insensitive).
func LookupColor(s string) (ColorOption, bool) {
	s = strings.TrimSpace(s)
	for _, c := range PresetColors {
		if strings.EqualFold(c.Value, s) || strings.EqualFold(c.Name, s) {
			return c, true
		}
	}
	return ColorOption{}, false
}

// ColorName returns the palette name for a stored hex value, or the value
// itself if it is not in the palette.
func ColorName(value string) string {
	if c, ok := LookupColor(value); ok {
		return c.Name
	}
	return value
}
