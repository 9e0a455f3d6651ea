package mcp

import (
	"context"

	"abaplens/internal/adt"
	"abaplens/internal/enhancement"
	"abaplens/internal/include"
	"abaplens/internal/unit"
)

// SourceReader fetches a unit's source as lines.
type SourceReader interface {
	SourceLines(ctx context.Context, ref unit.Ref) ([]string, error)
}

// ObjectSearcher runs repository quick searches.
type ObjectSearcher interface {
	SearchObjects(ctx context.Context, query string, maxResults int) ([]adt.SearchHit, error)
}

// EnhancementReader fetches a single implementation document by spot+name.
type EnhancementReader interface {
	FetchEnhancementByName(ctx context.Context, spot, name string) (string, error)
}

// CatalogReader groups the remaining read-only source accessors: repository
// object families that do not take part in the include relation.
type CatalogReader interface {
	InterfaceSourceLines(ctx context.Context, name string) ([]string, error)
	CDSSourceLines(ctx context.Context, name string) ([]string, error)
	TableSourceLines(ctx context.Context, name string) ([]string, error)
	FunctionGroupSourceLines(ctx context.Context, group string) ([]string, error)
	FunctionSourceLines(ctx context.Context, group, name string) ([]string, error)
	MetadataExtensionSourceLines(ctx context.Context, name string) ([]string, error)
	BehaviorDefinitionSourceLines(ctx context.Context, name string) ([]string, error)
	TypeSourceLines(ctx context.Context, name string) ([]string, error)
	SourceByURI(ctx context.Context, uri string) ([]string, error)
}

// Host wires backend access for tools. All fields are satisfied by
// *adt.Client in production; tests swap in fakes.
type Host struct {
	Source       SourceReader
	Search       ObjectSearcher
	Enhancements EnhancementReader
	Catalog      CatalogReader
	Includes     *include.Resolver
	Aggregator   *enhancement.Aggregator
}

// RegisterDefaultTools installs the default tool set into a registry.
func RegisterDefaultTools(r *Registry, h Host) {
	if r == nil {
		return
	}
	r.Register(newIncludesListTool(h))
	r.Register(newEnhancementsGetTool(h))
	r.Register(newEnhancementReadTool(h))
	r.Register(newSourceTool(h, unit.KindProgram))
	r.Register(newSourceTool(h, unit.KindInclude))
	r.Register(newSourceTool(h, unit.KindClass))
	r.Register(newObjectsSearchTool(h))
	for _, t := range newCatalogSourceTools(h) {
		r.Register(t)
	}
	r.Register(newFunctionSourceTool(h))
	r.Register(newSourceByURITool(h))
}
