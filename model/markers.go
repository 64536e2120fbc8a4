package model

import "sort"

// Marker is a named range tracked alongside the document.
type Marker struct {
	Name        string
	Range       Range
	AffectsData bool
}

// MarkerCollection stores markers by name.
type MarkerCollection struct {
	markers map[string]Marker
}

func newMarkerCollection() *MarkerCollection {
	return &MarkerCollection{markers: make(map[string]Marker)}
}

// Get returns the marker with the given name.
func (c *MarkerCollection) Get(name string) (Marker, bool) {
	m, ok := c.markers[name]
	if !ok {
		return Marker{}, false
	}
	m.Range = m.Range.Clone()
	return m, true
}

// Has reports whether a marker with the given name exists.
func (c *MarkerCollection) Has(name string) bool {
	_, ok := c.markers[name]
	return ok
}

// Names returns marker names in sorted order.
func (c *MarkerCollection) Names() []string {
	names := make([]string, 0, len(c.markers))
	for name := range c.markers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set creates or updates a marker.
func (c *MarkerCollection) Set(name string, r Range, affectsData bool) {
	c.markers[name] = Marker{Name: name, Range: r.Clone(), AffectsData: affectsData}
}

// Remove deletes a marker. It reports whether the marker existed.
func (c *MarkerCollection) Remove(name string) bool {
	if _, ok := c.markers[name]; !ok {
		return false
	}
	delete(c.markers, name)
	return true
}

// Len returns the number of markers.
func (c *MarkerCollection) Len() int {
	return len(c.markers)
}

// Rewrite replaces every marker range with fn's result.
func (c *MarkerCollection) Rewrite(fn func(Marker) Range) {
	for name, m := range c.markers {
		m.Range = fn(m)
		c.markers[name] = m
	}
}

func (c *MarkerCollection) clone() *MarkerCollection {
	out := newMarkerCollection()
	for name, m := range c.markers {
		m.Range = m.Range.Clone()
		out.markers[name] = m
	}
	return out
}
