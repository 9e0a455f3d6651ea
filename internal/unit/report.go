package unit

// Fragment is one implementation snippet attached to a unit at a named
// extension point. SourceText holds the decoded body when decoding succeeded;
// otherwise the raw payload is kept and Decoded is false so that a decode
// failure stays visible instead of shrinking result counts.
type Fragment struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	SourceText  string `json:"source_text,omitempty"`
	Description string `json:"description,omitempty"`
	Decoded     bool   `json:"decoded"`
}

// Result is the enrichment outcome for a single unit. Built fresh per unit
// per call and never mutated afterwards.
type Result struct {
	Unit          Ref        `json:"unit"`
	Context       string     `json:"context,omitempty"`
	Fragments     []Fragment `json:"fragments"`
	FragmentCount int        `json:"fragment_count"`
}

// Report is the combined outcome of an Analyze call. UnitErrors records which
// included units failed, keyed by unit key; one failing include never
// invalidates the rest of the report. Incomplete is set when the caller's
// context was cancelled before the fan-out finished.
type Report struct {
	Root           Ref               `json:"root"`
	Recursive      bool              `json:"recursive"`
	UnitsAnalyzed  int               `json:"units_analyzed"`
	TotalFragments int               `json:"total_fragments"`
	Units          []Result          `json:"units"`
	UnitErrors     map[string]string `json:"unit_errors,omitempty"`
	Incomplete     bool              `json:"incomplete,omitempty"`
}
