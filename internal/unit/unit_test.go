package unit

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"program": KindProgram,
		"INCLUDE": KindInclude,
		" Class ": KindClass,
	} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v", in, got, err)
		}
	}

	if _, err := ParseKind("table"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParseKind(table) err = %v", err)
	}
}

func TestRefKey(t *testing.T) {
	if key := (Ref{Name: " zmain ", Kind: KindProgram}).Key(); key != "program:ZMAIN" {
		t.Errorf("Key = %q", key)
	}
}

func TestRefValidate(t *testing.T) {
	if err := (Ref{Name: "ZX", Kind: KindInclude}).Validate(); err != nil {
		t.Errorf("valid ref rejected: %v", err)
	}
	if err := (Ref{Name: "  ", Kind: KindProgram}).Validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty name accepted: %v", err)
	}
	if err := (Ref{Name: "ZX", Kind: Kind("view")}).Validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unknown kind accepted: %v", err)
	}
}
