package adt

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"abaplens/internal/unit"
)

const enhancementAccept = "application/vnd.sap.adt.enhancement.v1+xml"

// FetchEnhancementPayload retrieves the raw enhancement-elements XML attached
// to a unit. enhContext is the enclosing-program URI and is mandatory for
// includes on the backend side; the aggregator resolves it before calling.
func (c *Client) FetchEnhancementPayload(ctx context.Context, ref unit.Ref, enhContext string) (string, error) {
	ref = ref.Normalize()
	if err := ref.Validate(); err != nil {
		return "", err
	}

	query := url.Values{}
	if enhContext != "" {
		query.Set("context", enhContext)
	}
	path := objectPath(ref) + "/source/main/enhancements/elements"
	status, body, err := c.get(ctx, tierDefault, path, enhancementAccept, query)
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusOK:
		return body, nil
	case status == http.StatusNotFound:
		return "", fmt.Errorf("%w: enhancements for %s %s", ErrNotFound, ref.Kind, ref.Name)
	}
	return "", &Error{StatusCode: status, Message: strings.TrimSpace(body)}
}

// FetchEnhancementByName retrieves one implementation's source document by
// enhancement spot and implementation name.
func (c *Client) FetchEnhancementByName(ctx context.Context, spot, name string) (string, error) {
	spot = strings.TrimSpace(spot)
	name = strings.TrimSpace(name)
	if spot == "" || name == "" {
		return "", fmt.Errorf("%w: enhancement spot and name are required", unit.ErrInvalidArgument)
	}

	// Spot and implementation names ride the URL exactly as given; the
	// backend resolves them case-insensitively.
	path := "/sap/bc/adt/enhancements/" + encodeObjectName(spot) +
		"/" + encodeObjectName(name) + "/source/main"
	status, body, err := c.get(ctx, tierDefault, path, enhancementAccept, nil)
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusOK:
		return body, nil
	case status == http.StatusNotFound:
		return "", fmt.Errorf("%w: enhancement %s in spot %s", ErrNotFound, name, spot)
	}
	return "", &Error{StatusCode: status, Message: strings.TrimSpace(body)}
}
