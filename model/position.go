package model

import (
	"encoding/json"
	"fmt"
)

// Path represents the traversal steps from a root to a location.
// Example: [1, 4] means root -> child at offset 1 -> offset 4 inside it.
type Path []int

// Clone returns a copy of the path that shares no memory with p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	c := make(Path, len(p))
	copy(c, p)
	return c
}

type pathRelation int

const (
	pathSame pathRelation = iota
	pathPrefix
	pathExtension
	pathDiffer
)

// comparePaths reports how a relates to b. For pathDiffer the index of the
// first differing element is returned as well.
func comparePaths(a, b Path) (pathRelation, int) {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return pathDiffer, i
		}
	}
	switch {
	case len(a) == len(b):
		return pathSame, 0
	case len(a) < len(b):
		return pathPrefix, 0
	default:
		return pathExtension, 0
	}
}

// Stickiness tells how a position behaves when content is inserted exactly
// at its offset.
type Stickiness int

const (
	StickToNone Stickiness = iota
	StickToNext
	StickToPrevious
)

var stickinessNames = map[Stickiness]string{
	StickToNone:     "toNone",
	StickToNext:     "toNext",
	StickToPrevious: "toPrevious",
}

func (s Stickiness) String() string {
	if name, ok := stickinessNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stickiness(%d)", int(s))
}

func (s Stickiness) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Stickiness) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for k, v := range stickinessNames {
		if v == name {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown stickiness %q", name)
}

// Comparison is the result of comparing two positions.
type Comparison int

const (
	Same Comparison = iota
	Before
	After
	DifferentRoots
)

func (c Comparison) String() string {
	switch c {
	case Same:
		return "same"
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return "different"
	}
}

// Position is a location in the tree: a root name plus a path of offsets.
// The last path element is an offset inside the parent element, the
// preceding ones address element nodes.
//
// Positions never reference nodes. Every method returns a fresh value whose
// path does not alias the receiver's.
type Position struct {
	Root       string     `json:"root"`
	Path       Path       `json:"path"`
	Stickiness Stickiness `json:"stickiness"`
}

// NewPosition creates a position with StickToNone.
func NewPosition(root string, path ...int) Position {
	return Position{Root: root, Path: Path(path).Clone()}
}

// Clone returns a deep copy of p.
func (p Position) Clone() Position {
	return Position{Root: p.Root, Path: p.Path.Clone(), Stickiness: p.Stickiness}
}

// WithStickiness returns a copy of p with the given stickiness.
func (p Position) WithStickiness(s Stickiness) Position {
	c := p.Clone()
	c.Stickiness = s
	return c
}

// Offset is the offset inside the parent element.
func (p Position) Offset() int {
	return p.Path[len(p.Path)-1]
}

// WithOffset returns a copy of p placed at offset inside the same parent.
func (p Position) WithOffset(offset int) Position {
	c := p.Clone()
	c.Path[len(c.Path)-1] = offset
	return c
}

// ParentPath is the path of the element that contains p.
func (p Position) ParentPath() Path {
	return p.Path[:len(p.Path)-1].Clone()
}

// ShiftedBy moves the offset by shift, clamping at zero.
func (p Position) ShiftedBy(shift int) Position {
	return p.WithOffset(max(p.Offset()+shift, 0))
}

// IsValid reports whether p is structurally usable: it has a root and a
// non-empty path of non-negative offsets.
func (p Position) IsValid() bool {
	if p.Root == "" || len(p.Path) == 0 {
		return false
	}
	for _, v := range p.Path {
		if v < 0 {
			return false
		}
	}
	return true
}

// CompareWith compares paths lexicographically. Positions in different roots
// yield DifferentRoots.
func (p Position) CompareWith(o Position) Comparison {
	if p.Root != o.Root {
		return DifferentRoots
	}
	rel, i := comparePaths(p.Path, o.Path)
	switch rel {
	case pathSame:
		return Same
	case pathPrefix:
		return Before
	case pathExtension:
		return After
	}
	if p.Path[i] < o.Path[i] {
		return Before
	}
	return After
}

func (p Position) IsEqual(o Position) bool  { return p.CompareWith(o) == Same }
func (p Position) IsBefore(o Position) bool { return p.CompareWith(o) == Before }
func (p Position) IsAfter(o Position) bool  { return p.CompareWith(o) == After }

// HasSameParentAs reports whether both positions are inside the same element.
func (p Position) HasSameParentAs(o Position) bool {
	if p.Root != o.Root {
		return false
	}
	rel, _ := comparePaths(p.ParentPath(), o.ParentPath())
	return rel == pathSame
}

// CommonPath returns the longest shared prefix of both paths.
func (p Position) CommonPath(o Position) Path {
	if p.Root != o.Root {
		return nil
	}
	rel, i := comparePaths(p.Path, o.Path)
	switch rel {
	case pathSame, pathPrefix:
		return p.Path.Clone()
	case pathExtension:
		return o.Path.Clone()
	}
	return p.Path[:i].Clone()
}

// TransformedByInsertion returns p as it would be after howMany offsets were
// inserted at at.
func (p Position) TransformedByInsertion(at Position, howMany int) Position {
	t := p.Clone()
	if p.Root != at.Root {
		return t
	}
	rel, _ := comparePaths(at.ParentPath(), p.ParentPath())
	switch rel {
	case pathSame:
		if at.Offset() < p.Offset() || (at.Offset() == p.Offset() && p.Stickiness != StickToPrevious) {
			t.Path[len(t.Path)-1] += howMany
		}
	case pathPrefix:
		i := len(at.Path) - 1
		if at.Offset() <= p.Path[i] {
			t.Path[i] += howMany
		}
	}
	return t
}

// TransformedByDeletion returns p as it would be after howMany offsets were
// removed at at. ok is false when p was inside the removed content.
func (p Position) TransformedByDeletion(at Position, howMany int) (t Position, ok bool) {
	t = p.Clone()
	if p.Root != at.Root {
		return t, true
	}
	rel, _ := comparePaths(at.ParentPath(), p.ParentPath())
	switch rel {
	case pathSame:
		if at.Offset() < p.Offset() {
			if at.Offset()+howMany > p.Offset() {
				return Position{}, false
			}
			t.Path[len(t.Path)-1] -= howMany
		}
	case pathPrefix:
		i := len(at.Path) - 1
		if at.Offset() <= p.Path[i] {
			if at.Offset()+howMany > p.Path[i] {
				return Position{}, false
			}
			t.Path[i] -= howMany
		}
	}
	return t, true
}

// TransformedByMove returns p as it would be after howMany offsets were moved
// from source to target. Content that travelled with the move drags p along.
func (p Position) TransformedByMove(source, target Position, howMany int) Position {
	if t, ok := target.TransformedByDeletion(source, howMany); ok {
		target = t
	}
	if source.IsEqual(target) {
		return p.Clone()
	}
	transformed, ok := p.TransformedByDeletion(source, howMany)
	moved := !ok ||
		(source.IsEqual(p) && p.Stickiness == StickToNext) ||
		(source.ShiftedBy(howMany).IsEqual(p) && p.Stickiness == StickToPrevious)
	if moved {
		return p.Combined(source, target)
	}
	return transformed.TransformedByInsertion(target, howMany)
}

// Combined re-roots p, which lies inside content starting at source, to the
// same relative place under target.
func (p Position) Combined(source, target Position) Position {
	i := len(source.Path) - 1
	path := target.Path.Clone()
	path[len(path)-1] += p.Path[i] - source.Offset()
	path = append(path, p.Path[i+1:]...)
	return Position{Root: target.Root, Path: path, Stickiness: p.Stickiness}
}

func (p Position) String() string {
	return fmt.Sprintf("%s%v", p.Root, []int(p.Path))
}
