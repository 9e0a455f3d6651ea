package enhancement

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"abaplens/internal/include"
	"abaplens/internal/unit"
)

// ErrUnresolvableKind is fatal for Analyze: either no kind probe succeeded,
// or an include's enclosing program could not be determined.
var ErrUnresolvableKind = errors.New("enhancement: cannot determine unit kind")

// Backend groups the collaborator calls the aggregator issues against the
// remote service.
type Backend interface {
	Exists(ctx context.Context, name string, kind unit.Kind) (bool, error)
	ResolveIncludeContext(ctx context.Context, name string) (string, bool, error)
	FetchEnhancementPayload(ctx context.Context, ref unit.Ref, enhContext string) (string, error)
}

// Request describes one Analyze call. KindHint and Parent are optional;
// Notify, when set, observes each completed per-unit result as the fan-out
// progresses.
type Request struct {
	Object    string
	KindHint  unit.Kind
	Parent    string
	Recursive bool
	Notify    func(unit.Result)
}

// Aggregator resolves a unit's kind, fetches its enhancement fragments, and
// optionally repeats the fetch across every transitively included unit.
type Aggregator struct {
	backend  Backend
	includes *include.Resolver
	workers  int
}

// NewAggregator builds an aggregator with a bounded fan-out width.
func NewAggregator(backend Backend, includes *include.Resolver, workers int) *Aggregator {
	if workers <= 0 {
		workers = 4
	}
	return &Aggregator{backend: backend, includes: includes, workers: workers}
}

// probeOrder is the fixed classification sequence: class first, then program,
// then include. The first collection that reports existence wins.
var probeOrder = []unit.Kind{unit.KindClass, unit.KindProgram, unit.KindInclude}

func programContextURI(program string) string {
	return "/sap/bc/adt/programs/programs/" + strings.ToUpper(strings.TrimSpace(program))
}

// resolveUnit classifies name and, for includes, determines the enclosing
// program context. The parent hint always wins over the metadata
// back-reference.
func (a *Aggregator) resolveUnit(ctx context.Context, name string, hint unit.Kind, parent string) (unit.Ref, string, error) {
	kind := hint
	if kind == "" {
		for _, k := range probeOrder {
			exists, err := a.backend.Exists(ctx, name, k)
			if err != nil {
				log.Printf("kind probe %s for %s failed: %v", k, name, err)
				continue
			}
			if exists {
				kind = k
				break
			}
		}
	}
	if kind == "" {
		return unit.Ref{}, "", fmt.Errorf("%w: %s is neither a class, program nor include", ErrUnresolvableKind, name)
	}

	ref := unit.Ref{Name: name, Kind: kind}.Normalize()
	if kind != unit.KindInclude {
		return ref, "", nil
	}

	if parent != "" {
		return ref, programContextURI(parent), nil
	}
	enhContext, ok, err := a.backend.ResolveIncludeContext(ctx, ref.Name)
	if err != nil {
		return unit.Ref{}, "", fmt.Errorf("resolve context for include %s: %w", ref.Name, err)
	}
	if !ok {
		return unit.Ref{}, "", fmt.Errorf("%w: no parent program context for include %s; pass the program explicitly", ErrUnresolvableKind, ref.Name)
	}
	return ref, enhContext, nil
}

// analyzeSingle fetches and decodes one unit's fragments.
func (a *Aggregator) analyzeSingle(ctx context.Context, ref unit.Ref, enhContext string) (unit.Result, error) {
	payload, err := a.backend.FetchEnhancementPayload(ctx, ref, enhContext)
	if err != nil {
		return unit.Result{}, err
	}
	fragments := DecodeFragments(payload)
	return unit.Result{
		Unit:          ref,
		Context:       enhContext,
		Fragments:     fragments,
		FragmentCount: len(fragments),
	}, nil
}

// Analyze implements the single-unit and recursive enrichment contract.
// Root-resolution failures are fatal; per-include failures during the
// recursive fan-out are recorded in the report and never abort the batch.
// On context cancellation the partial report is returned with Incomplete set.
func (a *Aggregator) Analyze(ctx context.Context, req Request) (*unit.Report, error) {
	name := strings.ToUpper(strings.TrimSpace(req.Object))
	if name == "" {
		return nil, fmt.Errorf("%w: object name is required", unit.ErrInvalidArgument)
	}
	if req.KindHint != "" {
		if _, err := unit.ParseKind(string(req.KindHint)); err != nil {
			return nil, err
		}
	}

	root, rootContext, err := a.resolveUnit(ctx, name, req.KindHint, req.Parent)
	if err != nil {
		return nil, err
	}

	rootResult, err := a.analyzeSingle(ctx, root, rootContext)
	if err != nil {
		return nil, fmt.Errorf("analyze %s %s: %w", root.Kind, root.Name, err)
	}

	report := &unit.Report{
		Root:       root,
		Recursive:  req.Recursive,
		Units:      []unit.Result{rootResult},
		UnitErrors: map[string]string{},
	}
	if req.Notify != nil {
		req.Notify(rootResult)
	}

	// Only programs and includes participate in the include relation; a
	// recursive request on a class degenerates to the single-unit answer.
	if req.Recursive && root.Kind != unit.KindClass {
		a.fanOut(ctx, report, root, rootContext, req.Notify)
	}

	report.UnitsAnalyzed = len(report.Units)
	for _, res := range report.Units {
		report.TotalFragments += res.FragmentCount
	}
	if len(report.UnitErrors) == 0 {
		report.UnitErrors = nil
	}
	return report, nil
}

// fanOut analyzes every discovered include with a bounded worker pool,
// merging results and per-unit errors under one mutex.
func (a *Aggregator) fanOut(ctx context.Context, report *unit.Report, root unit.Ref, rootContext string, notify func(unit.Result)) {
	names, derr := a.includes.DiscoverAll(ctx, root)
	if derr != nil {
		report.Incomplete = true
	}

	// Nested includes inherit the root's program context: the root program
	// itself, or the context the root include resolved to.
	enhContext := rootContext
	if enhContext == "" && root.Kind == unit.KindProgram {
		enhContext = programContextURI(root.Name)
	}

	jobs := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for incName := range jobs {
				ref := unit.Ref{Name: incName, Kind: unit.KindInclude}.Normalize()
				res, err := a.analyzeSingle(ctx, ref, enhContext)
				mu.Lock()
				if err != nil {
					report.UnitErrors[ref.Key()] = err.Error()
				} else {
					report.Units = append(report.Units, res)
				}
				mu.Unlock()
				// Observers run outside the merge lock; a slow consumer
				// must not stall the other workers.
				if err == nil && notify != nil {
					notify(res)
				}
			}
		}()
	}

dispatch:
	for _, incName := range names {
		if incName == root.Name {
			// A root rediscovered through a cycle stays in the discovery
			// output but is never analyzed twice.
			continue
		}
		select {
		case jobs <- incName:
		case <-ctx.Done():
			report.Incomplete = true
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
}
