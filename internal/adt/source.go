package adt

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"abaplens/internal/unit"
)

// FetchSourceText returns the raw textual body of a program or include.
// found=false reports a confirmed absence (404); err covers every other
// transport or protocol failure. Successful fetches are cached.
func (c *Client) FetchSourceText(ctx context.Context, ref unit.Ref) (string, bool, error) {
	ref = ref.Normalize()
	if err := ref.Validate(); err != nil {
		return "", false, err
	}
	if ref.Kind == unit.KindClass {
		return "", false, fmt.Errorf("%w: class source is not fetched through the include path", unit.ErrInvalidArgument)
	}

	key := ref.Key()
	if c.sourceCache != nil {
		if text, ok := c.sourceCache.Get(key); ok {
			return text, true, nil
		}
	}

	status, body, err := c.get(ctx, tierDefault, objectPath(ref)+"/source/main", "text/plain", nil)
	if err != nil {
		return "", false, err
	}
	switch {
	case status == http.StatusOK:
		if c.sourceCache != nil {
			c.sourceCache.Add(key, body)
		}
		return body, true, nil
	case status == http.StatusNotFound:
		return "", false, nil
	}
	return "", false, &Error{StatusCode: status, Message: strings.TrimSpace(body)}
}

// SourceLines fetches the source of any unit kind, split into lines. This is
// the plain accessor behind the program/include/class source tools.
func (c *Client) SourceLines(ctx context.Context, ref unit.Ref) ([]string, error) {
	ref = ref.Normalize()
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	status, body, err := c.get(ctx, tierDefault, objectPath(ref)+"/source/main", "text/plain", nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
		return strings.Split(strings.TrimRight(body, "\n"), "\n"), nil
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, ref.Kind, ref.Name)
	}
	return nil, &Error{StatusCode: status, Message: strings.TrimSpace(body)}
}
