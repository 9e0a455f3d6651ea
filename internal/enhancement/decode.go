package enhancement

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"abaplens/internal/unit"
)

// The backend hides fragment bodies in one of three layouts: a (possibly
// namespace-prefixed) source element carrying Base64 text, the same element
// wrapping a CDATA block, or something unrecognized. Pattern extraction is
// deliberately regexp-based: the payloads are namespace-heavy and often not
// well-formed enough for a strict XML parse, and one undecodable fragment
// must never take down its siblings.
var (
	sourceElemPattern  = regexp.MustCompile(`<(?:\w+:)?source[^>]*>([^<]*)</(?:\w+:)?source>`)
	cdataSourcePattern = regexp.MustCompile(`(?s)<(?:\w+:)?source[^>]*>\s*<!\[CDATA\[(.*?)\]\]>\s*</(?:\w+:)?source>`)

	nameAttrPattern = regexp.MustCompile(`adtcore:name="([^"]*)"`)
	typeAttrPattern = regexp.MustCompile(`adtcore:type="([^"]*)"`)
	descAttrPattern = regexp.MustCompile(`adtcore:description="([^"]*)"`)
)

// lastSubmatch returns the capture of the pattern's last occurrence in s.
// Fragment attributes ride on whichever element most recently preceded the
// source block, so the nearest match wins.
func lastSubmatch(s string, re *regexp.Regexp) string {
	all := re.FindAllStringSubmatch(s, -1)
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1][1]
}

// DecodeFragments parses a multi-fragment enhancement payload. Fragments are
// delimited by repeated source elements; each element's preceding sibling
// content supplies name and kind attributes when present. Decoding one
// fragment never aborts decoding of the others.
func DecodeFragments(raw string) []unit.Fragment {
	matches := sourceElemPattern.FindAllStringSubmatchIndex(raw, -1)
	fragments := make([]unit.Fragment, 0, len(matches))

	for i, m := range matches {
		frag := unit.Fragment{
			Name: fmt.Sprintf("enhancement_%d", i+1),
			Kind: "enhancement",
		}
		preamble := raw[:m[0]]
		if nm := lastSubmatch(preamble, nameAttrPattern); nm != "" {
			frag.Name = nm
		}
		if tm := lastSubmatch(preamble, typeAttrPattern); tm != "" {
			frag.Kind = tm
		}
		frag.Description = lastSubmatch(preamble, descAttrPattern)

		encoded := strings.TrimSpace(raw[m[2]:m[3]])
		if encoded != "" {
			if decoded, err := base64.StdEncoding.DecodeString(encoded); err == nil {
				frag.SourceText = string(decoded)
				frag.Decoded = true
			} else {
				// Keep the undecoded text so the failure stays visible.
				frag.SourceText = encoded
			}
		}
		fragments = append(fragments, frag)
	}
	return fragments
}

// DecodeSource extracts a single fragment body from an enhancement source
// document. The bool reports whether one of the known layouts matched; when
// none does, the whole payload is returned verbatim.
func DecodeSource(raw string) (string, bool) {
	if m := sourceElemPattern.FindStringSubmatch(raw); m != nil && strings.TrimSpace(m[1]) != "" {
		if decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(m[1])); err == nil {
			return string(decoded), true
		}
	}
	if m := cdataSourcePattern.FindStringSubmatch(raw); m != nil && m[1] != "" {
		return m[1], true
	}
	return raw, false
}
