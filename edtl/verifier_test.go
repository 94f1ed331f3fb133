package edtl_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rfielding/edtl-check/edtl"
	"github.com/rfielding/edtl-check/internal/logging"
	"github.com/rfielding/edtl-check/models/handdryer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func scenarioStore(t *testing.T) *edtl.Store {
	t.Helper()
	model := handdryer.Model{}
	store := edtl.NewStore(model.Vocabulary())
	for _, sc := range handdryer.Scenarios() {
		require.NoError(t, store.AddTestCase(sc.Name, sc.Entries()))
	}
	return store
}

func dryerVerifier(t *testing.T, opts ...edtl.VerifierOption) *edtl.Verifier {
	t.Helper()
	v := edtl.NewVerifier(nil, opts...)
	require.NoError(t, v.Register(handdryer.Model{}.Requirements()...))
	return v
}

type verdictRow struct {
	Case, Requirement string
	Passed            bool
	Violation         *edtl.Violation
}

func rows(s *edtl.Summary) []verdictRow {
	out := make([]verdictRow, 0, len(s.Results))
	for _, r := range s.Results {
		out = append(out, verdictRow{r.Case, r.Requirement, r.Passed(), r.Verdict.Violation})
	}
	return out
}

func TestRunAllReportsEveryPair(t *testing.T) {
	store := scenarioStore(t)
	summary, err := dryerVerifier(t).RunAll(context.Background(), store)
	require.NoError(t, err)

	want := []verdictRow{
		{"hands-removed", "dryer-stops", true, nil},
		{"hands-removed", "dryer-keeps-running", true, nil},
		{"hands-removed", "dryer-needs-hands", true, nil},
		{"restart-without-hands", "dryer-stops", false,
			&edtl.Violation{Phase: edtl.PhaseScanToReaction, Trig: 4, Fin: 4, Del: 4}},
		{"restart-without-hands", "dryer-keeps-running", true, nil},
		{"restart-without-hands", "dryer-needs-hands", false,
			&edtl.Violation{Phase: edtl.PhaseExitCheck, Trig: 4, Fin: 4, Del: 4}},
	}
	if diff := cmp.Diff(want, rows(summary)); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}

	assert.False(t, summary.Safe())
	assert.Len(t, summary.Failures(), 2)
	assert.NotEmpty(t, summary.RunID)
	for _, r := range summary.Results {
		assert.Equal(t, 6, r.Length)
	}
}

func TestRunAllIsIdempotent(t *testing.T) {
	store := scenarioStore(t)
	v := dryerVerifier(t)

	first, err := v.RunAll(context.Background(), store)
	require.NoError(t, err)
	second, err := v.RunAll(context.Background(), store)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Results, second.Results); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRunParallelMatchesRunAll(t *testing.T) {
	store := scenarioStore(t)
	// Pad the store so several workers are busy at once.
	for i := 0; i < 8; i++ {
		sc := handdryer.Scenarios()[i%2]
		require.NoError(t, store.AddTestCase(sc.Name, sc.Entries()))
	}
	v := dryerVerifier(t)

	sequential, err := v.RunAll(context.Background(), store)
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 3, 16} {
		parallel, err := v.RunParallel(context.Background(), store, workers)
		require.NoError(t, err)
		if diff := cmp.Diff(sequential.Results, parallel.Results); diff != "" {
			t.Errorf("workers=%d: parallel differs (-sequential +parallel):\n%s", workers, diff)
		}
	}
}

func TestRunParallelLeavesSelectorAlone(t *testing.T) {
	store := scenarioStore(t)
	_, err := dryerVerifier(t).RunParallel(context.Background(), store, 2)
	require.NoError(t, err)

	_, err = store.Active()
	assert.ErrorIs(t, err, edtl.ErrNoActiveCase)
}

func TestRunAllSafeSystem(t *testing.T) {
	model := handdryer.Model{}
	store := edtl.NewStore(model.Vocabulary())
	sc := handdryer.Scenarios()[0]
	require.NoError(t, store.AddTestCase(sc.Name, sc.Entries()))

	logger, logs := logging.NewTestLogger()
	v := edtl.NewVerifier(logger)
	require.NoError(t, v.Register(model.Requirements()...))

	summary, err := v.RunAll(context.Background(), store)
	require.NoError(t, err)
	assert.True(t, summary.Safe())
	assert.Empty(t, summary.Failures())

	finished := logs.FilterMessage("verification finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, true, finished[0].ContextMap()["safe"])
	assert.Equal(t, summary.RunID, finished[0].ContextMap()["run_id"])
}

func TestRunAllEmptyStore(t *testing.T) {
	store := edtl.NewStore(handdryer.Model{}.Vocabulary())
	summary, err := dryerVerifier(t).RunAll(context.Background(), store)
	require.NoError(t, err)
	assert.Empty(t, summary.Results)
	assert.True(t, summary.Safe())
}

func TestRunAllStopsOnLookupError(t *testing.T) {
	broken := handdryer.DryerStops()
	broken.Name = "broken"
	broken.Trigger = edtl.V("W")

	v := edtl.NewVerifier(nil)
	require.NoError(t, v.Register(broken))

	_, err := v.RunAll(context.Background(), scenarioStore(t))
	assert.ErrorIs(t, err, edtl.ErrUnknownVariable)

	_, err = v.RunParallel(context.Background(), scenarioStore(t), 2)
	assert.ErrorIs(t, err, edtl.ErrUnknownVariable)
}

func TestRunAllHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dryerVerifier(t).RunAll(ctx, scenarioStore(t))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = dryerVerifier(t).RunParallel(ctx, scenarioStore(t), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegisterValidates(t *testing.T) {
	v := edtl.NewVerifier(nil)
	assert.Error(t, v.Register(nil))

	incomplete := handdryer.DryerStops()
	incomplete.Delay = nil
	assert.Error(t, v.Register(incomplete))
	assert.Empty(t, v.Requirements())

	require.NoError(t, v.Register(handdryer.DryerStops(), handdryer.DryerNeedsHands()))
	names := []string{}
	for _, r := range v.Requirements() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"dryer-stops", "dryer-needs-hands"}, names)
}

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := edtl.NewMetrics(reg)
	v := dryerVerifier(t, edtl.WithMetrics(metrics))

	_, err := v.RunAll(context.Background(), scenarioStore(t))
	require.NoError(t, err)

	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.ChecksTotal.WithLabelValues("pass")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ChecksTotal.WithLabelValues("fail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ViolationsTotal.WithLabelValues("dryer-stops", string(edtl.PhaseScanToReaction))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ViolationsTotal.WithLabelValues("dryer-needs-hands", string(edtl.PhaseExitCheck))))
	assert.Greater(t, testutil.ToFloat64(metrics.TriggersTotal), 0.0)
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.ChecksTotal))

	families, err := reg.Gather()
	require.NoError(t, err)
	var samples uint64
	for _, mf := range families {
		if mf.GetName() == "edtl_verifier_check_duration_seconds" {
			samples = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(6), samples)
}
