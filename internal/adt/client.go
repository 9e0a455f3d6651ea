package adt

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"abaplens/internal/config"
	"abaplens/internal/unit"
)

// Request tier constants. Probes are cheap existence checks and get a short
// timeout; search runs against the repository information system and gets the
// long one.
type tier int

const (
	tierDefault tier = iota
	tierProbe
	tierLong
)

// Client talks to the remote ADT backend. It is the sole collaborator of the
// include resolver and the enhancement aggregator; it holds no mutable state
// beyond the source-text cache.
type Client struct {
	baseURL   string
	sapClient string
	authType  string
	user      string
	password  string
	jwtToken  string

	httpDefault *http.Client
	httpProbe   *http.Client
	httpLong    *http.Client

	sourceCache *expirable.LRU[string, string]
}

// NewClient validates cfg and builds a client with tiered HTTP timeouts and a
// bounded TTL cache for fetched source text.
func NewClient(cfg config.SAPConfig, cache config.CacheConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var transport http.RoundTripper
	if !cfg.VerifySSL {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	c := &Client{
		baseURL:     cfg.BaseURL,
		sapClient:   cfg.Client,
		authType:    cfg.AuthType,
		user:        cfg.User,
		password:    cfg.Password,
		jwtToken:    cfg.JWTToken,
		httpDefault: &http.Client{Timeout: cfg.TimeoutDefault, Transport: transport},
		httpProbe:   &http.Client{Timeout: cfg.TimeoutProbe, Transport: transport},
		httpLong:    &http.Client{Timeout: cfg.TimeoutLong, Transport: transport},
	}
	if cache.SourceEntries > 0 {
		c.sourceCache = expirable.NewLRU[string, string](cache.SourceEntries, nil, cache.SourceTTL)
	}
	return c, nil
}

func (c *Client) httpFor(t tier) *http.Client {
	switch t {
	case tierProbe:
		return c.httpProbe
	case tierLong:
		return c.httpLong
	}
	return c.httpDefault
}

// get issues one GET against the backend and returns status plus body. A
// non-nil error means the request never produced an HTTP status (transport
// failure); HTTP-level failures are left to the caller to classify.
func (c *Client) get(ctx context.Context, t tier, path, accept string, query url.Values) (int, string, error) {
	u := c.baseURL + path
	if query == nil {
		query = url.Values{}
	}
	if c.sapClient != "" {
		query.Set("sap-client", c.sapClient)
	}
	if enc := query.Encode(); enc != "" {
		u += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, "", fmt.Errorf("adt: build request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	switch c.authType {
	case "jwt":
		req.Header.Set("Authorization", "Bearer "+c.jwtToken)
	default:
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.httpFor(t).Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("adt: request %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("adt: read response %s: %w", path, err)
	}
	return resp.StatusCode, string(body), nil
}

// collectionPath returns the repository collection a kind lives under.
func collectionPath(k unit.Kind) string {
	switch k {
	case unit.KindProgram:
		return "/sap/bc/adt/programs/programs"
	case unit.KindInclude:
		return "/sap/bc/adt/programs/includes"
	case unit.KindClass:
		return "/sap/bc/adt/oo/classes"
	}
	return ""
}

// metadataAccept returns the media type the backend serves for a kind's
// metadata document.
func metadataAccept(k unit.Kind) string {
	switch k {
	case unit.KindProgram:
		return "application/vnd.sap.adt.programs.v3+xml"
	case unit.KindInclude:
		return "application/vnd.sap.adt.programs.includes.v2+xml"
	case unit.KindClass:
		return "application/vnd.sap.adt.oo.classes.v4+xml"
	}
	return ""
}

// encodeObjectName escapes namespaced names such as /NSP/CL_FOO so the
// slashes survive as path characters (%2F) instead of splitting the URL.
func encodeObjectName(name string) string {
	return url.PathEscape(name)
}

func objectPath(ref unit.Ref) string {
	n := ref.Normalize()
	return collectionPath(n.Kind) + "/" + encodeObjectName(n.Name)
}
