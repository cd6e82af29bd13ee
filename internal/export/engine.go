// Package export materializes a taxonomy store as a flat, order-stable
// record stream. Each record attributes one repository to an export scope
// root together with the branch path that reaches it; because the relation
// is a DAG, the same repository may legitimately appear once per distinct
// path.
package export

import (
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"taxon/internal/taxonomy"
)

// ErrUnknownScope is returned when a named export scope does not exist as an
// ecosystem.
var ErrUnknownScope = errors.New("unknown export scope")

// ErrDepthExceeded is returned if traversal descends past maxDepth. The DAG
// invariant makes this unreachable; the bound guards a corrupted store.
var ErrDepthExceeded = errors.New("traversal depth limit exceeded")

// maxDepth bounds branch length during traversal.
const maxDepth = 512

// ScopeAll selects every root ecosystem (no parents) as an export key.
const ScopeAll = ""

// cacheSize is the number of per-scope record slices kept hot. Watch mode
// re-exports the same scopes after every rebuild, so repeat exports against
// an unchanged store should not pay for traversal twice.
const cacheSize = 128

// Record is one line of export output.
type Record struct {
	EcoName string   `json:"eco_name"`
	Branch  []string `json:"branch"`
	RepoURL string   `json:"repo_url"`
	Tags    []string `json:"tags"`
}

// Engine traverses an immutable store and produces export records. Create a
// fresh Engine after every store rebuild; the per-scope cache assumes the
// store never changes underneath it.
type Engine struct {
	store *taxonomy.Store
	// repos memoizes per-ecosystem repository lists so diamond-shaped
	// graphs replay only the path prefix per revisit, not the per-node
	// repository work.
	repos  map[string][]taxonomy.Repo
	scopes *lru.Cache[string, []Record]
}

// New creates an Engine over store. The store must not be mutated afterward.
func New(store *taxonomy.Store) *Engine {
	scopes, _ := lru.New[string, []Record](cacheSize)
	return &Engine{
		store:  store,
		repos:  make(map[string][]taxonomy.Repo),
		scopes: scopes,
	}
}

// Export returns the records for scope: every root ecosystem for ScopeAll,
// or the single named ecosystem. Output order is deterministic — roots in
// declaration order, children in connection order, repositories in
// attachment order. The returned slice is shared with the cache and must
// not be modified.
func (e *Engine) Export(scope string) ([]Record, error) {
	cacheKey := strings.ToLower(scope)
	if recs, ok := e.scopes.Get(cacheKey); ok {
		return recs, nil
	}

	var roots []string
	if scope == ScopeAll {
		roots = e.store.Roots()
	} else {
		if !e.store.Has(scope) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownScope, scope)
		}
		roots = []string{e.store.Canonical(scope)}
	}

	recs := []Record{}
	for _, root := range roots {
		var err error
		recs, err = e.walk(recs, root, root, nil, 0)
		if err != nil {
			return nil, err
		}
	}
	e.scopes.Add(cacheKey, recs)
	return recs, nil
}

// walk appends records for eco and its descendants, depth-first. branch is
// the path from (exclusive) the scope root down to (inclusive) eco.
func (e *Engine) walk(recs []Record, root, eco string, branch []string, depth int) ([]Record, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: scope %q at %q", ErrDepthExceeded, root, eco)
	}

	for _, r := range e.nodeRepos(eco) {
		recs = append(recs, Record{
			EcoName: root,
			Branch:  append([]string{}, branch...),
			RepoURL: r.URL,
			Tags:    r.Tags,
		})
	}
	for _, child := range e.store.Children(eco) {
		var err error
		recs, err = e.walk(recs, root, child, append(branch, child), depth+1)
		if err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// nodeRepos returns the memoized repository list for one ecosystem.
func (e *Engine) nodeRepos(eco string) []taxonomy.Repo {
	k := strings.ToLower(eco)
	if repos, ok := e.repos[k]; ok {
		return repos
	}
	repos := e.store.Repos(eco)
	e.repos[k] = repos
	return repos
}
