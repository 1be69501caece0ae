package taxonomy

import (
	"errors"
	"fmt"
	"strings"

	"news-quiz/config"
)

// ErrNotFound is returned when a category name or id is unknown.
var ErrNotFound = errors.New("category not found")

// Node is a single category in the taxonomy forest.
type Node struct {
	ID        int64
	Name      string
	SourceURI string
	ParentID  *int64
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool { return n.ParentID == nil }

// Forest is the immutable category forest. It is built once at startup and
// shared read-only afterwards.
type Forest struct {
	nodes    []Node // 정의 순서 그대로 (루트 다음에 그 자식들)
	byID     map[int64]int
	byName   map[string]int
	children map[int64][]int64
	roots    []int64
}

// ErrInvalidTaxonomy is returned by Load for a missing or duplicate id.
var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

// Load builds the forest from the configured definitions. Every node carries
// an explicit id so that reordering or inserting categories in the config
// never renumbers existing ones. Stored order is definition order: a root
// first, then its direct children.
func Load(defs []config.CategoryDef) (*Forest, error) {
	f := &Forest{
		byID:     map[int64]int{},
		byName:   map[string]int{},
		children: map[int64][]int64{},
	}
	for _, def := range defs {
		if err := f.checkID(def.ID, def.Name); err != nil {
			return nil, err
		}
		rootID := def.ID
		f.add(Node{ID: rootID, Name: def.Name, SourceURI: def.URI})
		f.roots = append(f.roots, rootID)
		for _, sub := range def.Subcategories {
			if err := f.checkID(sub.ID, sub.Name); err != nil {
				return nil, err
			}
			parent := rootID
			f.add(Node{ID: sub.ID, Name: sub.Name, SourceURI: sub.URI, ParentID: &parent})
			f.children[rootID] = append(f.children[rootID], sub.ID)
		}
	}
	return f, nil
}

// MustLoad is like Load but panics on an invalid definition.
func MustLoad(defs []config.CategoryDef) *Forest {
	f, err := Load(defs)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Forest) checkID(id int64, name string) error {
	if id <= 0 {
		return fmt.Errorf("%w: category %q has no id", ErrInvalidTaxonomy, name)
	}
	if _, dup := f.byID[id]; dup {
		return fmt.Errorf("%w: duplicate id %d (%q)", ErrInvalidTaxonomy, id, name)
	}
	return nil
}

func (f *Forest) add(n Node) {
	f.byID[n.ID] = len(f.nodes)
	key := strings.ToLower(n.Name)
	// 이름이 겹치면 먼저 정의된 노드를 우선한다.
	if _, ok := f.byName[key]; !ok {
		f.byName[key] = len(f.nodes)
	}
	f.nodes = append(f.nodes, n)
}

// Nodes returns every node in stored order.
func (f *Forest) Nodes() []Node {
	out := make([]Node, len(f.nodes))
	copy(out, f.nodes)
	return out
}

// Roots returns the parentless nodes in stored order.
func (f *Forest) Roots() []Node {
	out := make([]Node, 0, len(f.roots))
	for _, id := range f.roots {
		out = append(out, f.nodes[f.byID[id]])
	}
	return out
}

// Children returns the direct children of id in stored order.
func (f *Forest) Children(id int64) []Node {
	ids := f.children[id]
	out := make([]Node, 0, len(ids))
	for _, cid := range ids {
		out = append(out, f.nodes[f.byID[cid]])
	}
	return out
}

func (f *Forest) FindByID(id int64) (Node, error) {
	idx, ok := f.byID[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return f.nodes[idx], nil
}

// FindByName looks a node up by case-insensitive name.
func (f *Forest) FindByName(name string) (Node, error) {
	idx, ok := f.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Node{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return f.nodes[idx], nil
}

// ValidateCategorization checks that main is a root and sub one of its children.
func (f *Forest) ValidateCategorization(main, sub string) error {
	root, err := f.FindByName(main)
	if err != nil {
		return err
	}
	if !root.IsRoot() {
		return fmt.Errorf("%w: %q is not a main category", ErrNotFound, main)
	}
	for _, child := range f.Children(root.ID) {
		if strings.EqualFold(child.Name, strings.TrimSpace(sub)) {
			return nil
		}
	}
	return fmt.Errorf("%w: subcategory %q under %q", ErrNotFound, sub, main)
}

// FormatForPrompt renders each root with its direct children as a bulleted
// list, in stored order.
func FormatForPrompt(f *Forest) string {
	var b strings.Builder
	for _, root := range f.Roots() {
		fmt.Fprintf(&b, "- %s:\n", root.Name)
		for _, child := range f.Children(root.ID) {
			fmt.Fprintf(&b, "  * %s\n", child.Name)
		}
	}
	return b.String()
}
