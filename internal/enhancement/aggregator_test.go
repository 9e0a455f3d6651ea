package enhancement

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abaplens/internal/include"
	"abaplens/internal/unit"
)

// fakeBackend serves both the aggregator's Backend calls and the include
// resolver's source fetches. Everything is keyed by unit.Ref.Key so tests
// read like the fixtures they set up.
type fakeBackend struct {
	mu sync.Mutex

	exists     map[string]bool   // "kind:NAME" -> probe answer
	contexts   map[string]string // include name -> metadata context URI
	contextErr error
	payloads   map[string]string // "kind:NAME" -> enhancement payload
	payloadErr map[string]error
	sources    map[string]string // "kind:NAME" -> source text

	probeCalls    []string
	contextCalls  []string
	fetchContexts map[string]string // "kind:NAME" -> context the fetch carried
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		exists:        map[string]bool{},
		contexts:      map[string]string{},
		payloads:      map[string]string{},
		payloadErr:    map[string]error{},
		sources:       map[string]string{},
		fetchContexts: map[string]string{},
	}
}

func (f *fakeBackend) Exists(_ context.Context, name string, kind unit.Kind) (bool, error) {
	key := string(kind) + ":" + name
	f.mu.Lock()
	f.probeCalls = append(f.probeCalls, key)
	f.mu.Unlock()
	return f.exists[key], nil
}

func (f *fakeBackend) ResolveIncludeContext(_ context.Context, name string) (string, bool, error) {
	f.mu.Lock()
	f.contextCalls = append(f.contextCalls, name)
	f.mu.Unlock()
	if f.contextErr != nil {
		return "", false, f.contextErr
	}
	uri, ok := f.contexts[name]
	return uri, ok, nil
}

func (f *fakeBackend) FetchEnhancementPayload(_ context.Context, ref unit.Ref, enhContext string) (string, error) {
	f.mu.Lock()
	f.fetchContexts[ref.Key()] = enhContext
	f.mu.Unlock()
	if err, ok := f.payloadErr[ref.Key()]; ok {
		return "", err
	}
	return f.payloads[ref.Key()], nil
}

func (f *fakeBackend) FetchSourceText(_ context.Context, ref unit.Ref) (string, bool, error) {
	src, ok := f.sources[ref.Key()]
	return src, ok, nil
}

func (f *fakeBackend) aggregator() *Aggregator {
	return NewAggregator(f, include.NewResolver(f), 2)
}

func payloadWith(code string) string {
	return `<enh:source>` + base64.StdEncoding.EncodeToString([]byte(code)) + `</enh:source>`
}

func TestAnalyzeProbesClassThenProgram(t *testing.T) {
	f := newFakeBackend()
	f.exists["program:ZREPORT"] = true
	f.payloads["program:ZREPORT"] = payloadWith("ENHANCEMENT 1.")

	report, err := f.aggregator().Analyze(context.Background(), Request{Object: "zreport"})
	require.NoError(t, err)

	assert.Equal(t, unit.Ref{Name: "ZREPORT", Kind: unit.KindProgram}, report.Root)
	assert.Equal(t, []string{"class:ZREPORT", "program:ZREPORT"}, f.probeCalls)
	assert.Empty(t, f.contextCalls, "a program never needs an include context lookup")
	assert.Equal(t, 1, report.UnitsAnalyzed)
	assert.Equal(t, 1, report.TotalFragments)
}

func TestAnalyzeIncludeParentHintWinsOverMetadata(t *testing.T) {
	f := newFakeBackend()
	f.contexts["ZINC"] = "/sap/bc/adt/programs/programs/ZOTHER"
	f.payloads["include:ZINC"] = payloadWith("WRITE 1.")

	report, err := f.aggregator().Analyze(context.Background(), Request{
		Object:   "zinc",
		KindHint: unit.KindInclude,
		Parent:   "zmain",
	})
	require.NoError(t, err)

	assert.Empty(t, f.contextCalls)
	assert.Equal(t, "/sap/bc/adt/programs/programs/ZMAIN", f.fetchContexts["include:ZINC"])
	assert.Equal(t, "/sap/bc/adt/programs/programs/ZMAIN", report.Units[0].Context)
}

func TestAnalyzeIncludeResolvesContextFromMetadata(t *testing.T) {
	f := newFakeBackend()
	f.contexts["ZINC"] = "/sap/bc/adt/programs/programs/ZMAIN"
	f.payloads["include:ZINC"] = payloadWith("WRITE 1.")

	_, err := f.aggregator().Analyze(context.Background(), Request{
		Object:   "ZINC",
		KindHint: unit.KindInclude,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ZINC"}, f.contextCalls)
	assert.Equal(t, "/sap/bc/adt/programs/programs/ZMAIN", f.fetchContexts["include:ZINC"])
}

func TestAnalyzeIncludeWithoutContextFails(t *testing.T) {
	f := newFakeBackend()

	_, err := f.aggregator().Analyze(context.Background(), Request{
		Object:   "ZORPHAN",
		KindHint: unit.KindInclude,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvableKind)
}

func TestAnalyzeUnknownObjectFails(t *testing.T) {
	f := newFakeBackend()

	_, err := f.aggregator().Analyze(context.Background(), Request{Object: "ZNOPE"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvableKind)
	assert.Equal(t, []string{"class:ZNOPE", "program:ZNOPE", "include:ZNOPE"}, f.probeCalls)
}

func TestAnalyzeRecursivePartialFailure(t *testing.T) {
	f := newFakeBackend()
	f.sources["program:ZMAIN"] = "INCLUDE zinc_a.\nINCLUDE zinc_b.\nINCLUDE zinc_c.\n"
	f.payloads["program:ZMAIN"] = payloadWith("root")
	f.payloads["include:ZINC_A"] = payloadWith("a")
	f.payloads["include:ZINC_C"] = payloadWith("c")
	f.payloadErr["include:ZINC_B"] = errors.New("backend unavailable")

	var notified []string
	var mu sync.Mutex
	report, err := f.aggregator().Analyze(context.Background(), Request{
		Object:    "ZMAIN",
		KindHint:  unit.KindProgram,
		Recursive: true,
		Notify: func(res unit.Result) {
			mu.Lock()
			notified = append(notified, res.Unit.Name)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.UnitsAnalyzed)
	assert.Equal(t, 3, report.TotalFragments)
	assert.False(t, report.Incomplete)
	require.Len(t, report.UnitErrors, 1)
	assert.Contains(t, report.UnitErrors["include:ZINC_B"], "backend unavailable")

	// Every nested include rides on the root program's context.
	assert.Equal(t, "/sap/bc/adt/programs/programs/ZMAIN", f.fetchContexts["include:ZINC_A"])
	assert.Equal(t, "/sap/bc/adt/programs/programs/ZMAIN", f.fetchContexts["include:ZINC_C"])

	assert.Equal(t, "ZMAIN", notified[0], "the root result is observed first")
	assert.ElementsMatch(t, []string{"ZMAIN", "ZINC_A", "ZINC_C"}, notified)
}

func TestAnalyzeRootRediscoveredThroughCycle(t *testing.T) {
	f := newFakeBackend()
	f.sources["program:ZMAIN"] = "INCLUDE zinc_a.\n"
	f.sources["include:ZINC_A"] = "INCLUDE zmain.\n"
	f.payloads["program:ZMAIN"] = payloadWith("root")
	f.payloads["include:ZINC_A"] = payloadWith("a")

	report, err := f.aggregator().Analyze(context.Background(), Request{
		Object:    "ZMAIN",
		KindHint:  unit.KindProgram,
		Recursive: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.UnitsAnalyzed, "root is never analyzed twice")
	assert.Nil(t, report.UnitErrors)
}

func TestAnalyzeNonRecursiveIgnoresIncludes(t *testing.T) {
	f := newFakeBackend()
	f.sources["program:ZMAIN"] = "INCLUDE zinc_a.\n"
	f.payloads["program:ZMAIN"] = payloadWith("root")

	report, err := f.aggregator().Analyze(context.Background(), Request{
		Object:   "ZMAIN",
		KindHint: unit.KindProgram,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.UnitsAnalyzed)
}

func TestAnalyzeRecursiveClassDegeneratesToSingleUnit(t *testing.T) {
	f := newFakeBackend()
	f.payloads["class:ZCL_DEMO"] = payloadWith("method code")

	report, err := f.aggregator().Analyze(context.Background(), Request{
		Object:    "ZCL_DEMO",
		KindHint:  unit.KindClass,
		Recursive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.UnitsAnalyzed)
	assert.True(t, report.Recursive)
}

func TestAnalyzeEmptyPayload(t *testing.T) {
	f := newFakeBackend()
	f.exists["program:ZEMPTY"] = true

	report, err := f.aggregator().Analyze(context.Background(), Request{Object: "ZEMPTY"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.UnitsAnalyzed)
	assert.Equal(t, 0, report.TotalFragments)
	assert.Empty(t, report.Units[0].Fragments)
}

func TestAnalyzeCancelledContextYieldsPartialReport(t *testing.T) {
	f := newFakeBackend()
	f.sources["program:ZMAIN"] = "INCLUDE zinc_a.\n"
	f.payloads["program:ZMAIN"] = payloadWith("root")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.aggregator().Analyze(ctx, Request{
		Object:    "ZMAIN",
		KindHint:  unit.KindProgram,
		Recursive: true,
	})
	require.NoError(t, err)
	assert.True(t, report.Incomplete)
	assert.Equal(t, 1, report.UnitsAnalyzed)
}

func TestAnalyzeSlowObserverDoesNotStallWorkers(t *testing.T) {
	f := newFakeBackend()
	f.sources["program:ZMAIN"] = "INCLUDE zinc_a.\nINCLUDE zinc_b.\n"
	f.payloads["program:ZMAIN"] = payloadWith("root")
	f.payloads["include:ZINC_A"] = payloadWith("a")
	f.payloads["include:ZINC_B"] = payloadWith("b")

	ready := make(chan struct{}, 2)
	release := make(chan struct{})
	type outcome struct {
		report *unit.Report
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		report, err := f.aggregator().Analyze(context.Background(), Request{
			Object:    "ZMAIN",
			KindHint:  unit.KindProgram,
			Recursive: true,
			Notify: func(res unit.Result) {
				if res.Unit.Kind != unit.KindInclude {
					return
				}
				ready <- struct{}{}
				<-release
			},
		})
		done <- outcome{report, err}
	}()

	// Both include observers must be in flight at once: a consumer that
	// has not drained yet may never hold up the other worker's merge.
	for i := 0; i < 2; i++ {
		select {
		case <-ready:
		case <-time.After(2 * time.Second):
			t.Fatal("second worker blocked behind a stalled observer")
		}
	}
	close(release)

	select {
	case got := <-done:
		require.NoError(t, got.err)
		assert.Equal(t, 3, got.report.UnitsAnalyzed)
	case <-time.After(2 * time.Second):
		t.Fatal("analysis did not finish")
	}
}

func TestAnalyzeInvalidArguments(t *testing.T) {
	f := newFakeBackend()

	_, err := f.aggregator().Analyze(context.Background(), Request{Object: "   "})
	assert.ErrorIs(t, err, unit.ErrInvalidArgument)

	_, err = f.aggregator().Analyze(context.Background(), Request{Object: "ZX", KindHint: unit.Kind("table")})
	assert.ErrorIs(t, err, unit.ErrInvalidArgument)
}
