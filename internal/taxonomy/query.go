package taxonomy

// Stats summarizes the store contents for CLI reporting.
type Stats struct {
	Ecosystems int
	Repos      int
	Edges      int
}

// Has reports whether the named ecosystem exists. Lookup is case-insensitive.
func (s *Store) Has(name string) bool {
	_, ok := s.nodes[key(name)]
	return ok
}

// Canonical returns the first-declared casing of name, or "" if unknown.
func (s *Store) Canonical(name string) string {
	n, ok := s.nodes[key(name)]
	if !ok {
		return ""
	}
	return n.name
}

// Ecosystems returns all ecosystem names in declaration order.
func (s *Store) Ecosystems() []string {
	names := make([]string, len(s.order))
	for i, k := range s.order {
		names[i] = s.nodes[k].name
	}
	return names
}

// Roots returns, in declaration order, the ecosystems that have no parent.
// These are the starting points for a whole-taxonomy export.
func (s *Store) Roots() []string {
	var roots []string
	for _, k := range s.order {
		if len(s.nodes[k].parents) == 0 {
			roots = append(roots, s.nodes[k].name)
		}
	}
	return roots
}

// Children returns the direct sub-ecosystems of name in connection order,
// or nil if name is unknown.
func (s *Store) Children(name string) []string {
	n, ok := s.nodes[key(name)]
	if !ok {
		return nil
	}
	children := make([]string, len(n.children))
	for i, ck := range n.children {
		children[i] = s.nodes[ck].name
	}
	return children
}

// Repos returns copies of the repositories attached directly to name in
// attachment order, or nil if name is unknown.
func (s *Store) Repos(name string) []Repo {
	n, ok := s.nodes[key(name)]
	if !ok {
		return nil
	}
	repos := make([]Repo, len(n.repos))
	for i, r := range n.repos {
		tags := make([]string, len(r.Tags))
		copy(tags, r.Tags)
		repos[i] = Repo{URL: r.URL, Tags: tags}
	}
	return repos
}

// Stats returns entity counts across the whole store.
func (s *Store) Stats() Stats {
	st := Stats{Ecosystems: len(s.order)}
	for _, n := range s.nodes {
		st.Repos += len(n.repos)
		st.Edges += len(n.children)
	}
	return st
}
