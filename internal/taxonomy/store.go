// Package taxonomy holds the in-memory ecosystem graph: named ecosystems,
// directed parent → child sub-ecosystem edges, and repository attachments.
// The edge relation is kept acyclic; every mutation either fully succeeds or
// leaves the store unchanged.
package taxonomy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEcosystem is returned when an operation references an ecosystem
// that was never added.
var ErrUnknownEcosystem = errors.New("unknown ecosystem")

// ErrCycle is returned when a connection would make an ecosystem its own
// ancestor.
var ErrCycle = errors.New("cycle detected")

// ErrSelfEdge is returned when a connection would link an ecosystem to itself.
var ErrSelfEdge = errors.New("self-referencing connection")

// Repo is a repository attached to one ecosystem. Tags preserve first-seen
// order with duplicates collapsed.
type Repo struct {
	URL  string
	Tags []string
}

// node is the internal per-ecosystem record. Ecosystems are identified by a
// lowercased key; the first-declared casing is kept for display.
type node struct {
	name     string   // canonical display name
	children []string // child keys in connection order
	childSet map[string]bool
	parents  []string // parent keys in connection order
	repos    []*Repo  // attachment order
	repoIdx  map[string]int // url → index into repos
	tagSet   map[string]map[string]bool // url → tags already present
	// desc is the incrementally maintained set of all keys reachable from
	// this node via forward edges. Kept exact on every edge insert so the
	// cycle check is a map lookup instead of a graph walk.
	desc map[string]bool
}

// Store is the mutable taxonomy graph. It is not safe for concurrent
// mutation; once migration application finishes it is read-only and freely
// shareable across goroutines.
type Store struct {
	nodes map[string]*node
	order []string // keys in declaration order
}

// New creates an empty Store.
func New() *Store {
	return &Store{nodes: make(map[string]*node)}
}

// key normalizes an ecosystem name for lookup. Authors use mixed casing for
// the same ecosystem across migrations, so identity is case-insensitive
// while the first-declared casing remains canonical.
func key(name string) string {
	return strings.ToLower(name)
}

// AddEcosystem declares an ecosystem. Re-adding an existing ecosystem is an
// idempotent no-op success.
func (s *Store) AddEcosystem(name string) error {
	k := key(name)
	if _, ok := s.nodes[k]; ok {
		return nil
	}
	s.nodes[k] = &node{
		name:     name,
		childSet: make(map[string]bool),
		repoIdx:  make(map[string]int),
		tagSet:   make(map[string]map[string]bool),
		desc:     make(map[string]bool),
	}
	s.order = append(s.order, k)
	return nil
}

// AddRepo attaches url to the named ecosystem, or merges tags into the
// existing record when the (ecosystem, url) pair was already declared.
func (s *Store) AddRepo(ecosystem, url string, tags []string) error {
	n, ok := s.nodes[key(ecosystem)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEcosystem, ecosystem)
	}

	idx, exists := n.repoIdx[url]
	if !exists {
		idx = len(n.repos)
		n.repos = append(n.repos, &Repo{URL: url})
		n.repoIdx[url] = idx
		n.tagSet[url] = make(map[string]bool)
	}
	r := n.repos[idx]
	seen := n.tagSet[url]
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		r.Tags = append(r.Tags, t)
	}
	return nil
}

// Connect adds the directed edge parent → child. Both ecosystems must exist,
// the edge must not close a cycle, and duplicate edges are idempotent no-ops.
func (s *Store) Connect(parent, child string) error {
	pk, ck := key(parent), key(child)
	pn, ok := s.nodes[pk]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEcosystem, parent)
	}
	cn, ok := s.nodes[ck]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEcosystem, child)
	}
	if pk == ck {
		return fmt.Errorf("%w: %q", ErrSelfEdge, parent)
	}
	if pn.childSet[ck] {
		return nil
	}
	// The edge would close a cycle iff parent is already reachable from
	// child. desc is exact, so this is a single lookup.
	if cn.desc[pk] {
		return &CycleError{
			Parent: pn.name,
			Child:  cn.name,
			Path:   s.path(ck, pk),
		}
	}

	pn.children = append(pn.children, ck)
	pn.childSet[ck] = true
	cn.parents = append(cn.parents, pk)

	// Fold child and its descendants into every ancestor of parent.
	gained := make([]string, 0, len(cn.desc)+1)
	gained = append(gained, ck)
	for d := range cn.desc {
		gained = append(gained, d)
	}
	s.propagate(pk, gained)
	return nil
}

// propagate adds the gained keys to the descendant set of start and of every
// node that can reach start.
func (s *Store) propagate(start string, gained []string) {
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		n := s.nodes[k]
		for _, g := range gained {
			n.desc[g] = true
		}
		for _, p := range n.parents {
			if !visited[p] {
				visited[p] = true
				queue = append(queue, p)
			}
		}
	}
}

// path returns the display names along an existing directed path from src to
// dst, inclusive of both ends. Children are tried in connection order so the
// reported path is deterministic.
func (s *Store) path(src, dst string) []string {
	var walk func(k string, visited map[string]bool) []string
	walk = func(k string, visited map[string]bool) []string {
		if k == dst {
			return []string{s.nodes[k].name}
		}
		visited[k] = true
		for _, c := range s.nodes[k].children {
			if visited[c] || (c != dst && !s.nodes[c].desc[dst]) {
				continue
			}
			if rest := walk(c, visited); rest != nil {
				return append([]string{s.nodes[k].name}, rest...)
			}
		}
		return nil
	}
	return walk(src, make(map[string]bool))
}

// CycleError reports a rejected connection together with the existing path
// that would have closed the cycle.
type CycleError struct {
	Parent string
	Child  string
	Path   []string // child → ... → parent, display names
}

// Error includes the offending pair and the closing path.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s → %s (already connected %s)",
		ErrCycle, e.Parent, e.Child, strings.Join(e.Path, " → "))
}

// Unwrap returns ErrCycle for use with errors.Is.
func (e *CycleError) Unwrap() error {
	return ErrCycle
}
