package include

import (
	"context"
	"fmt"
	"log"
	"sort"

	"abaplens/internal/unit"
)

// SourceFetcher is the one collaborator call the resolver needs. found=false
// reports a confirmed absence; both absence and fetch errors terminate the
// branch silently (a dangling include must not abort discovery of siblings).
type SourceFetcher interface {
	FetchSourceText(ctx context.Context, ref unit.Ref) (string, bool, error)
}

// Resolver walks the textual include relation starting from a root unit.
type Resolver struct {
	source SourceFetcher
}

func NewResolver(source SourceFetcher) *Resolver {
	return &Resolver{source: source}
}

// traversal is the per-call working state. It is never shared across calls,
// so a finite universe of reachable names guarantees termination even when
// the include graph contains cycles.
type traversal struct {
	visited map[string]struct{}
	found   map[string]struct{}
}

// DiscoverAll returns every unit transitively reachable from root via include
// statements, as a sorted, deduplicated list of names. A root rediscovered
// through a cycle stays in the result: being included by one's own include is
// a legitimate relationship discovery. On context cancellation the partial
// set is returned together with ctx.Err().
func (r *Resolver) DiscoverAll(ctx context.Context, root unit.Ref) ([]string, error) {
	root = root.Normalize()
	if err := root.Validate(); err != nil {
		return nil, err
	}
	if root.Kind == unit.KindClass {
		return nil, fmt.Errorf("%w: include discovery starts from a program or include", unit.ErrInvalidArgument)
	}

	tr := &traversal{
		visited: make(map[string]struct{}),
		found:   make(map[string]struct{}),
	}
	r.visit(ctx, tr, root)

	names := make([]string, 0, len(tr.found))
	for name := range tr.found {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, ctx.Err()
}

func (r *Resolver) visit(ctx context.Context, tr *traversal, ref unit.Ref) {
	if ctx.Err() != nil {
		return
	}
	key := ref.Key()
	if _, ok := tr.visited[key]; ok {
		return
	}
	tr.visited[key] = struct{}{}

	text, found, err := r.source.FetchSourceText(ctx, ref)
	if err != nil {
		log.Printf("include discovery: fetch %s failed: %v", key, err)
		return
	}
	if !found || text == "" {
		return
	}

	for _, name := range ParseIncludes(text) {
		tr.found[name] = struct{}{}
		// Nested includes are always kind include, no matter what kind of
		// unit referenced them.
		r.visit(ctx, tr, unit.Ref{Name: name, Kind: unit.KindInclude})
	}
}
