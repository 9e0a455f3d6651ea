package adt

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"abaplens/internal/unit"
)

// readPlainLines issues one GET with Accept text/plain and splits the body
// into lines. Every plain-source accessor in the catalog funnels through it;
// notFound names the object in the 404 error.
func (c *Client) readPlainLines(ctx context.Context, path, notFound string) ([]string, error) {
	status, body, err := c.get(ctx, tierDefault, path, "text/plain", nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
		return strings.Split(strings.TrimRight(body, "\n"), "\n"), nil
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, notFound)
	}
	return nil, &Error{StatusCode: status, Message: strings.TrimSpace(body)}
}

func upperName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// InterfaceSourceLines fetches the source of an ABAP interface.
func (c *Client) InterfaceSourceLines(ctx context.Context, name string) ([]string, error) {
	name = upperName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: interface name is required", unit.ErrInvalidArgument)
	}
	path := "/sap/bc/adt/oo/interfaces/" + encodeObjectName(name) + "/source/main"
	return c.readPlainLines(ctx, path, "interface "+name)
}

// CDSSourceLines fetches the DDL source of a CDS view or entity.
func (c *Client) CDSSourceLines(ctx context.Context, name string) ([]string, error) {
	name = upperName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: cds name is required", unit.ErrInvalidArgument)
	}
	path := "/sap/bc/adt/ddic/ddl/sources/" + encodeObjectName(name) + "/source/main"
	return c.readPlainLines(ctx, path, "cds source "+name)
}

// TableSourceLines fetches the DDIC source of a database table.
func (c *Client) TableSourceLines(ctx context.Context, name string) ([]string, error) {
	name = upperName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: table name is required", unit.ErrInvalidArgument)
	}
	path := "/sap/bc/adt/ddic/tables/" + encodeObjectName(name) + "/source/main"
	return c.readPlainLines(ctx, path, "table "+name)
}

// FunctionGroupSourceLines fetches the main source of a function group.
func (c *Client) FunctionGroupSourceLines(ctx context.Context, group string) ([]string, error) {
	group = upperName(group)
	if group == "" {
		return nil, fmt.Errorf("%w: function group is required", unit.ErrInvalidArgument)
	}
	path := "/sap/bc/adt/functions/groups/" + encodeObjectName(group) + "/source/main"
	return c.readPlainLines(ctx, path, "function group "+group)
}

// FunctionSourceLines fetches the source of one function module inside its
// group.
func (c *Client) FunctionSourceLines(ctx context.Context, group, name string) ([]string, error) {
	group = upperName(group)
	name = upperName(name)
	if group == "" || name == "" {
		return nil, fmt.Errorf("%w: function group and function name are required", unit.ErrInvalidArgument)
	}
	path := "/sap/bc/adt/functions/groups/" + encodeObjectName(group) +
		"/fmodules/" + encodeObjectName(name) + "/source/main"
	return c.readPlainLines(ctx, path, "function "+group+"/"+name)
}

// MetadataExtensionSourceLines fetches the DDLX source of a metadata
// extension.
func (c *Client) MetadataExtensionSourceLines(ctx context.Context, name string) ([]string, error) {
	name = upperName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: metadata extension name is required", unit.ErrInvalidArgument)
	}
	path := "/sap/bc/adt/ddic/ddlx/sources/" + encodeObjectName(name) + "/source/main"
	return c.readPlainLines(ctx, path, "metadata extension "+name)
}

// BehaviorDefinitionSourceLines fetches the source of a behavior definition.
func (c *Client) BehaviorDefinitionSourceLines(ctx context.Context, name string) ([]string, error) {
	name = upperName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: behavior definition name is required", unit.ErrInvalidArgument)
	}
	path := "/sap/bc/adt/bo/behaviordefinitions/" + encodeObjectName(name) + "/source/main"
	return c.readPlainLines(ctx, path, "behavior definition "+name)
}

// TypeSourceLines fetches DDIC type information: first the domain source,
// falling back to the data element document when no domain exists under the
// name.
func (c *Client) TypeSourceLines(ctx context.Context, name string) ([]string, error) {
	name = upperName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: type name is required", unit.ErrInvalidArgument)
	}

	domainPath := "/sap/bc/adt/ddic/domains/" + encodeObjectName(name) + "/source/main"
	lines, err := c.readPlainLines(ctx, domainPath, "domain "+name)
	if err == nil {
		return lines, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	status, body, err := c.get(ctx, tierDefault, "/sap/bc/adt/ddic/dataelements/"+encodeObjectName(name), "", nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
		return strings.Split(strings.TrimRight(body, "\n"), "\n"), nil
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%w: type %s is neither a domain nor a data element", ErrNotFound, name)
	}
	return nil, &Error{StatusCode: status, Message: strings.TrimSpace(body)}
}

// SourceByURI fetches a source fragment addressed by a raw ADT URI, for
// following method anchors and other references returned by the backend.
// The URI is taken verbatim; only its prefix is checked.
func (c *Client) SourceByURI(ctx context.Context, uri string) ([]string, error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, "/sap/bc/adt/") {
		return nil, fmt.Errorf("%w: uri must start with /sap/bc/adt/", unit.ErrInvalidArgument)
	}
	return c.readPlainLines(ctx, uri, "uri "+uri)
}
