package adt

import (
	"context"
	"regexp"

	"abaplens/internal/unit"
)

// Exists checks whether name is present under kind's remote collection. A
// non-200 status means "does not exist under this kind"; only transport
// failures surface as errors so a flaky probe cannot be mistaken for a
// confirmed absence.
func (c *Client) Exists(ctx context.Context, name string, kind unit.Kind) (bool, error) {
	ref := unit.Ref{Name: name, Kind: kind}.Normalize()
	if err := ref.Validate(); err != nil {
		return false, err
	}
	status, _, err := c.get(ctx, tierProbe, objectPath(ref), metadataAccept(kind), nil)
	if err != nil {
		return false, err
	}
	return status == 200, nil
}

var contextRefPattern = regexp.MustCompile(`include:contextRef[^>]+adtcore:uri="([^"]+)"`)

// ResolveIncludeContext reads an include's metadata document and extracts the
// enclosing-program back-reference. ok=false means the include exists but its
// metadata carries no contextRef.
func (c *Client) ResolveIncludeContext(ctx context.Context, name string) (string, bool, error) {
	ref := unit.Ref{Name: name, Kind: unit.KindInclude}.Normalize()
	if err := ref.Validate(); err != nil {
		return "", false, err
	}
	status, body, err := c.get(ctx, tierProbe, objectPath(ref), metadataAccept(unit.KindInclude), nil)
	if err != nil {
		return "", false, err
	}
	if status != 200 {
		return "", false, nil
	}
	m := contextRefPattern.FindStringSubmatch(body)
	if m == nil {
		return "", false, nil
	}
	return m[1], true, nil
}
