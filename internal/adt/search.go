package adt

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"abaplens/internal/unit"
)

// SearchHit is one repository object matched by a quickSearch.
type SearchHit struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Package     string `json:"package,omitempty"`
	URI         string `json:"uri"`
	Description string `json:"description,omitempty"`
}

// SearchObjects runs an ADT quickSearch. The query gets exactly one trailing
// wildcard, matching how the repository information system expects patterns.
func (c *Client) SearchObjects(ctx context.Context, query string, maxResults int) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", unit.ErrInvalidArgument)
	}
	if maxResults <= 0 {
		maxResults = 100
	}
	pattern := strings.TrimRight(query, "*") + "*"

	params := url.Values{}
	params.Set("operation", "quickSearch")
	params.Set("query", pattern)
	params.Set("maxResults", strconv.Itoa(maxResults))

	status, body, err := c.get(ctx, tierLong, "/sap/bc/adt/repository/informationsystem/search",
		"application/vnd.sap.adt.search.v2+xml", params)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &Error{StatusCode: status, Message: strings.TrimSpace(body)}
	}
	return parseSearchHits(body)
}

// parseSearchHits walks the result XML collecting objectReference elements,
// regardless of how the backend nests or prefixes them.
func parseSearchHits(raw string) ([]SearchHit, error) {
	dec := xml.NewDecoder(strings.NewReader(raw))
	var hits []SearchHit
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "objectReference" {
			continue
		}
		var hit SearchHit
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "name":
				hit.Name = attr.Value
			case "type":
				hit.Type = attr.Value
			case "packageName":
				hit.Package = attr.Value
			case "uri":
				hit.URI = attr.Value
			case "description":
				hit.Description = attr.Value
			}
		}
		if hit.Name != "" || hit.URI != "" {
			hits = append(hits, hit)
		}
	}
	return hits, nil
}
