package unit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument marks caller mistakes caught before any network access.
var ErrInvalidArgument = errors.New("unit: invalid argument")

// Kind classifies a remote source unit.
type Kind string

const (
	KindProgram Kind = "program"
	KindInclude Kind = "include"
	KindClass   Kind = "class"
)

// ParseKind maps a wire spelling onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "program":
		return KindProgram, nil
	case "include":
		return KindInclude, nil
	case "class":
		return KindClass, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidArgument, s)
}

// Ref identifies one source unit held by the remote backend.
type Ref struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Normalize returns the ref with its name upper-cased. Identity comparisons
// always go through normalized names.
func (r Ref) Normalize() Ref {
	r.Name = strings.ToUpper(strings.TrimSpace(r.Name))
	return r
}

// Key returns the "{kind}:{NAME}" identity key used by traversal visited sets
// and per-unit error maps.
func (r Ref) Key() string {
	n := r.Normalize()
	return string(n.Kind) + ":" + n.Name
}

// Validate rejects refs that must never reach the network layer.
func (r Ref) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: empty unit name", ErrInvalidArgument)
	}
	switch r.Kind {
	case KindProgram, KindInclude, KindClass:
		return nil
	}
	return fmt.Errorf("%w: unknown kind %q", ErrInvalidArgument, string(r.Kind))
}
