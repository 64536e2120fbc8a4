package model

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sanity-io/litter"
)

// GraveyardName is the root that receives removed content.
const GraveyardName = "$graveyard"

// DefaultRootName is used when a document is created without root names.
const DefaultRootName = "main"

// Document is a set of named roots plus a graveyard and a marker collection.
// It is not safe for concurrent use.
type Document struct {
	roots     map[string]*Element
	rootOrder []string
	rootNames mapset.Set[string]
	markers   *MarkerCollection
}

// NewDocument creates a document with empty roots. The graveyard is always
// present.
func NewDocument(rootNames ...string) *Document {
	if len(rootNames) == 0 {
		rootNames = []string{DefaultRootName}
	}
	d := &Document{
		roots:     make(map[string]*Element),
		rootNames: mapset.NewThreadUnsafeSet[string](),
		markers:   newMarkerCollection(),
	}
	for _, name := range rootNames {
		d.AddRoot(name)
	}
	d.AddRoot(GraveyardName)
	return d
}

// AddRoot creates an empty root. Existing roots are returned unchanged.
func (d *Document) AddRoot(name string) *Element {
	if r, ok := d.roots[name]; ok {
		return r
	}
	r := &Element{Name: name, Attrs: Attributes{}}
	d.roots[name] = r
	d.rootNames.Add(name)
	d.rootOrder = append(d.rootOrder, name)
	return r
}

// Root returns the root element with the given name, or nil.
func (d *Document) Root(name string) *Element {
	return d.roots[name]
}

// Graveyard returns the graveyard root.
func (d *Document) Graveyard() *Element {
	return d.roots[GraveyardName]
}

// HasRoot reports whether a root with the given name exists.
func (d *Document) HasRoot(name string) bool {
	return d.rootNames.Contains(name)
}

// RootNames returns all root names, graveyard included, in creation order.
func (d *Document) RootNames() []string {
	return append([]string(nil), d.rootOrder...)
}

// ContentRootNames returns root names without the graveyard.
func (d *Document) ContentRootNames() []string {
	names := make([]string, 0, len(d.rootOrder))
	for _, name := range d.rootOrder {
		if name != GraveyardName {
			names = append(names, name)
		}
	}
	return names
}

// Markers returns the document's marker collection.
func (d *Document) Markers() *MarkerCollection {
	return d.markers
}

// ElementAt walks path from the root and returns the element it points to.
// An empty path yields the root.
func (d *Document) ElementAt(root string, path Path) (*Element, error) {
	current, ok := d.roots[root]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRootDoesNotExist, root)
	}
	for i, offset := range path {
		el, ok := current.NodeAfter(offset).(*Element)
		if !ok {
			return nil, fmt.Errorf("%w: no element at %s%v (step %d)", ErrPositionInvalid, root, []int(path[:i+1]), i)
		}
		current = el
	}
	return current, nil
}

// ParentElement returns the element that contains p. The offset must be
// within the parent's bounds.
func (d *Document) ParentElement(p Position) (*Element, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrPositionInvalid, p)
	}
	parent, err := d.ElementAt(p.Root, p.Path[:len(p.Path)-1])
	if err != nil {
		return nil, err
	}
	if p.Offset() > parent.MaxOffset() {
		return nil, fmt.Errorf("%w: offset %d beyond %d in %s", ErrPositionInvalid, p.Offset(), parent.MaxOffset(), p)
	}
	return parent, nil
}

// NodeAfter returns the node that starts at p, or nil.
func (d *Document) NodeAfter(p Position) Node {
	parent, err := d.ParentElement(p)
	if err != nil {
		return nil
	}
	return parent.NodeAfter(p.Offset())
}

// NodeBefore returns the node that ends at p, or nil.
func (d *Document) NodeBefore(p Position) Node {
	parent, err := d.ParentElement(p)
	if err != nil {
		return nil
	}
	return parent.NodeBefore(p.Offset())
}

// ContainedElement returns the element when r spans exactly one element.
func (d *Document) ContainedElement(r Range) *Element {
	if !r.IsFlat() || r.End.Offset()-r.Start.Offset() != 1 {
		return nil
	}
	el, _ := d.NodeAfter(r.Start).(*Element)
	return el
}

// CommonAncestor returns the path of the deepest element containing both
// positions. ok is false for positions in different roots.
func (d *Document) CommonAncestor(a, b Position) (path Path, ok bool) {
	if a.Root != b.Root {
		return nil, false
	}
	pa, pb := a.ParentPath(), b.ParentPath()
	n := 0
	for n < len(pa) && n < len(pb) && pa[n] == pb[n] {
		n++
	}
	return pa[:n].Clone(), true
}

// Insert places nodes at p. The nodes are copied.
func (d *Document) Insert(p Position, nodes []Node) error {
	parent, err := d.ParentElement(p)
	if err != nil {
		return err
	}
	parent.insertAt(p.Offset(), CloneNodes(nodes))
	return nil
}

// Move detaches howMany offsets at source and inserts them at target.
// target is expressed in the document state before the move.
func (d *Document) Move(source Position, howMany int, target Position) error {
	parent, err := d.ParentElement(source)
	if err != nil {
		return err
	}
	if source.Offset()+howMany > parent.MaxOffset() {
		return fmt.Errorf("%w: %d offsets at %s", ErrMoveNodesDoNotExist, howMany, source)
	}
	if _, err := d.ParentElement(target); err != nil {
		return err
	}
	insertAt, ok := target.TransformedByDeletion(source, howMany)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMoveRangeIntoItself, target)
	}
	nodes := parent.removeAt(source.Offset(), howMany)
	targetParent, err := d.ParentElement(insertAt)
	if err != nil {
		parent.insertAt(source.Offset(), nodes)
		return err
	}
	targetParent.insertAt(insertAt.Offset(), nodes)
	return nil
}

// SetAttribute sets key on every item of the flat range r. A nil value
// removes the key.
func (d *Document) SetAttribute(r Range, key string, value any) error {
	if !r.IsFlat() {
		return fmt.Errorf("%w: %s", ErrAttributeRangeNotFlat, r)
	}
	parent, err := d.ParentElement(r.End)
	if err != nil {
		return err
	}
	from := parent.splitAt(r.Start.Offset())
	to := parent.splitAt(r.End.Offset())
	for _, child := range parent.Children[from:to] {
		switch n := child.(type) {
		case *Text:
			n.Attrs = setAttribute(n.Attrs, key, value)
		case *Element:
			n.Attrs = setAttribute(n.Attrs, key, value)
		}
	}
	parent.normalize()
	return nil
}

// SetRootAttribute sets key on a root element. A nil value removes the key.
func (d *Document) SetRootAttribute(root, key string, value any) error {
	r, ok := d.roots[root]
	if !ok {
		return fmt.Errorf("%w: %q", ErrRootDoesNotExist, root)
	}
	r.Attrs = setAttribute(r.Attrs, key, value)
	return nil
}

// Rename changes the name of the element after p.
func (d *Document) Rename(p Position, name string) error {
	el, ok := d.NodeAfter(p).(*Element)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRenameNotAnElement, p)
	}
	el.Name = name
	return nil
}

func setAttribute(attrs Attributes, key string, value any) Attributes {
	out := attrs.Clone()
	if value == nil {
		delete(out, key)
	} else {
		out[key] = value
	}
	return out
}

// Clone returns a deep copy of the document including markers.
func (d *Document) Clone() *Document {
	c := &Document{
		roots:     make(map[string]*Element, len(d.roots)),
		rootOrder: append([]string(nil), d.rootOrder...),
		rootNames: d.rootNames.Clone(),
		markers:   d.markers.clone(),
	}
	for name, r := range d.roots {
		c.roots[name] = r.Clone().(*Element)
	}
	return c
}

// Dump renders the whole tree for debugging.
func (d *Document) Dump() string {
	type dumpRoot struct {
		Name  string
		Attrs Attributes
		Nodes []Node
	}
	roots := make([]dumpRoot, 0, len(d.rootOrder))
	for _, name := range d.rootOrder {
		r := d.roots[name]
		roots = append(roots, dumpRoot{Name: name, Attrs: r.Attrs, Nodes: r.Children})
	}
	return litter.Options{
		HidePrivateFields: true,
		StripPackageNames: true,
		HideZeroValues:    true,
	}.Sdump(roots)
}
