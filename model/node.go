package model

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"unicode/utf8"
)

// Attributes holds JSON-compatible attribute values. A missing key and a nil
// value both mean "not set".
type Attributes map[string]any

// Clone returns a shallow copy; values are expected to be immutable scalars.
func (a Attributes) Clone() Attributes {
	if len(a) == 0 {
		return Attributes{}
	}
	return maps.Clone(a)
}

// Get returns the value for key, or nil.
func (a Attributes) Get(key string) any {
	return a[key]
}

// Equal reports whether both sets carry the same keys and values.
func (a Attributes) Equal(b Attributes) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !ValuesEqual(v, w) {
			return false
		}
	}
	return true
}

// ValuesEqual compares attribute values.
func ValuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// Node is either an *Element or a *Text.
type Node interface {
	// OffsetSize is the number of offsets the node occupies in its parent.
	OffsetSize() int
	Attributes() Attributes
	Clone() Node
	isNode()
}

// Text is a run of characters sharing the same attributes. Every character
// occupies one offset.
type Text struct {
	Data  string
	Attrs Attributes
}

// NewText creates a text node.
func NewText(data string, attrs Attributes) *Text {
	return &Text{Data: data, Attrs: attrs.Clone()}
}

func (t *Text) OffsetSize() int        { return utf8.RuneCountInString(t.Data) }
func (t *Text) Attributes() Attributes { return t.Attrs }
func (t *Text) isNode()                {}

func (t *Text) Clone() Node {
	return NewText(t.Data, t.Attrs)
}

// slice returns the characters in [from, to) as a new node.
func (t *Text) slice(from, to int) *Text {
	r := []rune(t.Data)
	return NewText(string(r[from:to]), t.Attrs)
}

// Element is a named node with attributes and children.
type Element struct {
	Name     string
	Attrs    Attributes
	Children []Node
}

// NewElement creates an element; children are deep-copied.
func NewElement(name string, attrs Attributes, children ...Node) *Element {
	e := &Element{Name: name, Attrs: attrs.Clone()}
	for _, c := range children {
		e.Children = append(e.Children, c.Clone())
	}
	e.normalize()
	return e
}

func (e *Element) OffsetSize() int        { return 1 }
func (e *Element) Attributes() Attributes { return e.Attrs }
func (e *Element) isNode()                {}

// Clone returns a deep copy of the element.
func (e *Element) Clone() Node {
	return NewElement(e.Name, e.Attrs, e.Children...)
}

// ShallowClone copies the name and attributes but no children.
func (e *Element) ShallowClone() *Element {
	return &Element{Name: e.Name, Attrs: e.Attrs.Clone()}
}

// MaxOffset is the sum of offset sizes of all children.
func (e *Element) MaxOffset() int {
	n := 0
	for _, c := range e.Children {
		n += c.OffsetSize()
	}
	return n
}

// offsetToIndex returns the index of the child that contains offset and the
// offset inside it. offset == MaxOffset yields (len(Children), 0).
func (e *Element) offsetToIndex(offset int) (index, inner int) {
	acc := 0
	for i, c := range e.Children {
		size := c.OffsetSize()
		if offset < acc+size {
			return i, offset - acc
		}
		acc += size
	}
	return len(e.Children), 0
}

// NodeAfter returns the child that starts exactly at offset.
func (e *Element) NodeAfter(offset int) Node {
	i, inner := e.offsetToIndex(offset)
	if inner != 0 || i >= len(e.Children) {
		return nil
	}
	return e.Children[i]
}

// NodeBefore returns the child that ends exactly at offset.
func (e *Element) NodeBefore(offset int) Node {
	i, inner := e.offsetToIndex(offset)
	if inner != 0 || i == 0 {
		return nil
	}
	return e.Children[i-1]
}

// Items returns the children overlapping offsets [from, to).
func (e *Element) Items(from, to int) []Node {
	var items []Node
	acc := 0
	for _, c := range e.Children {
		size := c.OffsetSize()
		if acc+size > from && acc < to {
			items = append(items, c)
		}
		acc += size
	}
	return items
}

// splitAt makes sure a node boundary exists at offset and returns the index
// of the first child after it.
func (e *Element) splitAt(offset int) int {
	i, inner := e.offsetToIndex(offset)
	if inner == 0 {
		return i
	}
	t := e.Children[i].(*Text)
	left, right := t.slice(0, inner), t.slice(inner, t.OffsetSize())
	e.Children = append(e.Children[:i], append([]Node{left, right}, e.Children[i+1:]...)...)
	return i + 1
}

// insertAt places nodes at offset; nodes are owned by e afterwards.
func (e *Element) insertAt(offset int, nodes []Node) {
	i := e.splitAt(offset)
	children := make([]Node, 0, len(e.Children)+len(nodes))
	children = append(children, e.Children[:i]...)
	children = append(children, nodes...)
	children = append(children, e.Children[i:]...)
	e.Children = children
	e.normalize()
}

// removeAt detaches howMany offsets starting at offset.
func (e *Element) removeAt(offset, howMany int) []Node {
	from := e.splitAt(offset)
	to := e.splitAt(offset + howMany)
	removed := make([]Node, to-from)
	copy(removed, e.Children[from:to])
	e.Children = append(e.Children[:from], e.Children[to:]...)
	e.normalize()
	return removed
}

// normalize merges adjacent text nodes with equal attributes and drops empty
// ones.
func (e *Element) normalize() {
	out := e.Children[:0]
	for _, c := range e.Children {
		t, ok := c.(*Text)
		if ok && t.Data == "" {
			continue
		}
		if ok && len(out) > 0 {
			if prev, isText := out[len(out)-1].(*Text); isText && prev.Attrs.Equal(t.Attrs) {
				out[len(out)-1] = NewText(prev.Data+t.Data, prev.Attrs)
				continue
			}
		}
		out = append(out, c)
	}
	for i := len(out); i < len(e.Children); i++ {
		e.Children[i] = nil
	}
	e.Children = out
}

// TotalOffsetSize sums the offset sizes of nodes.
func TotalOffsetSize(nodes []Node) int {
	n := 0
	for _, c := range nodes {
		n += c.OffsetSize()
	}
	return n
}

// CloneNodes deep-copies a node list.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

type nodeJSON struct {
	Name       string            `json:"name,omitempty"`
	Data       *string           `json:"data,omitempty"`
	Attributes Attributes        `json:"attributes,omitempty"`
	Children   []json.RawMessage `json:"children,omitempty"`
}

// MarshalNode serializes a node. Text nodes carry "data", elements carry
// "name" and "children".
func MarshalNode(n Node) ([]byte, error) {
	switch v := n.(type) {
	case *Text:
		data := v.Data
		return json.Marshal(nodeJSON{Data: &data, Attributes: v.Attrs})
	case *Element:
		raw := nodeJSON{Name: v.Name, Attributes: v.Attrs}
		for _, c := range v.Children {
			b, err := MarshalNode(c)
			if err != nil {
				return nil, err
			}
			raw.Children = append(raw.Children, b)
		}
		return json.Marshal(raw)
	}
	return nil, fmt.Errorf("unknown node type %T", n)
}

// UnmarshalNode is the inverse of MarshalNode.
func UnmarshalNode(data []byte) (Node, error) {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Data != nil {
		return NewText(*raw.Data, raw.Attributes), nil
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("node has neither data nor name: %s", data)
	}
	e := &Element{Name: raw.Name, Attrs: raw.Attributes.Clone()}
	for _, c := range raw.Children {
		child, err := UnmarshalNode(c)
		if err != nil {
			return nil, err
		}
		e.Children = append(e.Children, child)
	}
	e.normalize()
	return e, nil
}

// NodeList is a JSON-serializable list of nodes.
type NodeList []Node

func (l NodeList) MarshalJSON() ([]byte, error) {
	raw := make([]json.RawMessage, 0, len(l))
	for _, n := range l {
		b, err := MarshalNode(n)
		if err != nil {
			return nil, err
		}
		raw = append(raw, b)
	}
	return json.Marshal(raw)
}

func (l *NodeList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(NodeList, 0, len(raw))
	for _, r := range raw {
		n, err := UnmarshalNode(r)
		if err != nil {
			return err
		}
		out = append(out, n)
	}
	*l = out
	return nil
}
