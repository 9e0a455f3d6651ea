package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// --------------------- interface/cds/table/function_group/type source ---------------------

// catalogSourceTool serves one single-name accessor family; the registered
// tools differ only in the backend call they forward to.
type catalogSourceTool struct {
	host  Host
	name  string
	desc  string
	fetch func(CatalogReader, context.Context, string) ([]string, error)
}

func newCatalogSourceTools(h Host) []Tool {
	return []Tool{
		&catalogSourceTool{host: h, name: "interface.source",
			desc: "Fetch the source lines of an interface.",
			fetch: func(c CatalogReader, ctx context.Context, n string) ([]string, error) {
				return c.InterfaceSourceLines(ctx, n)
			}},
		&catalogSourceTool{host: h, name: "cds.source",
			desc: "Fetch the DDL source of a CDS view or entity.",
			fetch: func(c CatalogReader, ctx context.Context, n string) ([]string, error) {
				return c.CDSSourceLines(ctx, n)
			}},
		&catalogSourceTool{host: h, name: "table.source",
			desc: "Fetch the DDIC source of a database table.",
			fetch: func(c CatalogReader, ctx context.Context, n string) ([]string, error) {
				return c.TableSourceLines(ctx, n)
			}},
		&catalogSourceTool{host: h, name: "function_group.source",
			desc: "Fetch the main source of a function group.",
			fetch: func(c CatalogReader, ctx context.Context, n string) ([]string, error) {
				return c.FunctionGroupSourceLines(ctx, n)
			}},
		&catalogSourceTool{host: h, name: "metadata_extension.source",
			desc: "Fetch the DDLX source of a metadata extension.",
			fetch: func(c CatalogReader, ctx context.Context, n string) ([]string, error) {
				return c.MetadataExtensionSourceLines(ctx, n)
			}},
		&catalogSourceTool{host: h, name: "behavior_definition.source",
			desc: "Fetch the source of a behavior definition.",
			fetch: func(c CatalogReader, ctx context.Context, n string) ([]string, error) {
				return c.BehaviorDefinitionSourceLines(ctx, n)
			}},
		&catalogSourceTool{host: h, name: "type.info",
			desc: "Fetch a DDIC domain source, falling back to the data element document.",
			fetch: func(c CatalogReader, ctx context.Context, n string) ([]string, error) {
				return c.TypeSourceLines(ctx, n)
			}},
	}
}

func (t *catalogSourceTool) Spec() ToolSpec {
	return ToolSpec{Name: t.name, Description: t.desc}
}

type catalogSourceInput struct {
	Name string `json:"name"`
}

type catalogSourceOutput struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

func (t *catalogSourceTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in catalogSourceInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, badInput("%s: %v", t.name, err)
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, badInput("%s: name required", t.name)
	}
	if t.host.Catalog == nil {
		return nil, fmt.Errorf("%s: backend not configured", t.name)
	}

	lines, err := t.fetch(t.host.Catalog, ctx, in.Name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.name, err)
	}
	out := catalogSourceOutput{
		Name:  strings.ToUpper(strings.TrimSpace(in.Name)),
		Lines: lines,
	}
	return json.Marshal(out)
}
