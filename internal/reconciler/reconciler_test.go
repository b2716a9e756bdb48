package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git-sync-operator/internal/api"
	"git-sync-operator/internal/ledger"
	"git-sync-operator/internal/metrics"
	"git-sync-operator/internal/rollout"
	"git-sync-operator/internal/testing/mock"
)

type fixture struct {
	cluster    *mock.Cluster
	notifier   *mock.Notifier
	mirror     *mock.Mirror
	registry   *prometheus.Registry
	reconciler *Reconciler
}

func newFixture(t *testing.T, revision api.Revision, wrap func(Watcher) Watcher) *fixture {
	t.Helper()
	f := &fixture{
		cluster:  mock.NewCluster(),
		notifier: &mock.Notifier{},
		mirror:   mock.NewMirror("/repo", revision),
		registry: prometheus.NewRegistry(),
	}
	l := ledger.New(f.cluster)
	var w Watcher = rollout.NewWatcher(l, f.cluster, f.notifier, rollout.WithClusterName("prod-eu"))
	if wrap != nil {
		w = wrap(w)
	}
	f.reconciler = New(Config{
		Namespaces:  []string{"payments", "search"},
		ClusterName: "prod-eu",
		Interval:    time.Millisecond,
	}, Dependencies{
		Mirror:  f.mirror,
		Ledger:  l,
		Applier: f.cluster,
		Watcher: w,
		Metrics: metrics.New(f.registry),
	})
	return f
}

func (f *fixture) seedPayments(applied api.Revision) {
	f.cluster.SeedVersion("payments", api.VersionRecord{Name: "payments", Applied: applied, Deployed: applied})
	f.cluster.AddDeployment(mock.Deployment("payments", "payments", applied, 3, 3, 3))
	f.cluster.AddManifestDir("/repo/payments", "deployment/payments", "service/payments")
}

func TestRunOnce_PaymentsRollout(t *testing.T) {
	f := newFixture(t, "def5678", nil)
	f.seedPayments("abc1234")
	ctx := context.Background()

	// Pass 1: manifests applied, ledger advanced, deployment annotated.
	pass := f.reconciler.RunOnce(ctx)
	assert.Equal(t, api.Revision("def5678"), pass.Revision)
	assert.Empty(t, pass.Failed())
	assert.NotEmpty(t, pass.ID)

	payments, ok := pass.Namespace("payments")
	require.True(t, ok)
	assert.True(t, payments.Stale)
	assert.True(t, payments.Recorded)
	assert.Equal(t, api.Revision("abc1234"), payments.Applied)
	assert.Equal(t, []string{"payments"}, payments.Rollout.Annotated)
	assert.Equal(t, []string{"/repo/payments"}, f.cluster.ManifestApplies)

	rec, _ := f.cluster.Version("payments", "payments")
	assert.Equal(t, api.Revision("def5678"), rec.Applied)
	assert.Equal(t, api.Revision("abc1234"), rec.Deployed)
	assert.Empty(t, f.notifier.Events())

	// Pass 2: the restarted pods are healthy at the new revision.
	pass = f.reconciler.RunOnce(ctx)
	payments, _ = pass.Namespace("payments")
	assert.False(t, payments.Stale)
	assert.Equal(t, []string{"payments"}, payments.Rollout.Deployed)

	rec, _ = f.cluster.Version("payments", "payments")
	assert.Equal(t, api.Revision("def5678"), rec.Deployed)
	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "payments", events[0].Deployment)
	assert.Equal(t, api.Revision("def5678"), events[0].Revision)
	assert.Equal(t, "prod-eu", events[0].Cluster)
}

func TestRunOnce_Idempotent(t *testing.T) {
	f := newFixture(t, "def5678", nil)
	f.seedPayments("abc1234")
	ctx := context.Background()

	f.reconciler.RunOnce(ctx)
	f.reconciler.RunOnce(ctx)
	writes := len(f.cluster.VersionWrites)
	annotations := len(f.cluster.Annotations)
	applies := len(f.cluster.ManifestApplies)

	pass := f.reconciler.RunOnce(ctx)
	assert.Empty(t, pass.Failed())
	assert.Len(t, f.cluster.VersionWrites, writes)
	assert.Len(t, f.cluster.Annotations, annotations)
	assert.Len(t, f.cluster.ManifestApplies, applies)
	assert.Len(t, f.notifier.Events(), 1)
}

func TestRunOnce_NewRevisionRestartsRollout(t *testing.T) {
	f := newFixture(t, "def5678", nil)
	f.seedPayments("abc1234")
	ctx := context.Background()

	f.reconciler.RunOnce(ctx)
	f.reconciler.RunOnce(ctx)
	f.mirror.Push("0a1b2c3")

	pass := f.reconciler.RunOnce(ctx)
	payments, _ := pass.Namespace("payments")
	assert.True(t, payments.Recorded)
	assert.Equal(t, []string{"payments"}, payments.Rollout.Annotated)

	f.reconciler.RunOnce(ctx)
	events := f.notifier.Events()
	require.Len(t, events, 2)
	assert.Equal(t, api.Revision("0a1b2c3"), events[1].Revision)
}

func TestRunOnce_NothingToApply(t *testing.T) {
	f := newFixture(t, "def5678", nil)

	pass := f.reconciler.RunOnce(context.Background())

	search, _ := pass.Namespace("search")
	assert.NoError(t, search.Err)
	assert.True(t, search.Stale)
	assert.False(t, search.Recorded)
	assert.True(t, search.Rollout.Gated)
	require.Len(t, search.Applies, 2)
	assert.False(t, search.Applies[0].Found)
	assert.Equal(t, "/repo/prod-eu/search", search.Applies[1].Dir)
	assert.Empty(t, f.cluster.VersionWrites)
}

func TestRunOnce_OverlayOnly(t *testing.T) {
	f := newFixture(t, "def5678", nil)
	f.cluster.AddManifestDir("/repo/prod-eu/search", "configmap/search-cluster")

	pass := f.reconciler.RunOnce(context.Background())

	search, _ := pass.Namespace("search")
	assert.NoError(t, search.Err)
	assert.True(t, search.Recorded)
	rec, ok := f.cluster.Version("search", "search")
	require.True(t, ok)
	assert.Equal(t, api.Revision("def5678"), rec.Applied)
}

func TestRunOnce_ApplyFailureIsolated(t *testing.T) {
	f := newFixture(t, "def5678", nil)
	f.seedPayments("abc1234")
	f.cluster.AddManifestDir("/repo/search", "deployment/search")
	f.cluster.FailWith("apply-manifests:/repo/payments")

	pass := f.reconciler.RunOnce(context.Background())

	assert.Equal(t, []string{"payments"}, pass.Failed())
	payments, _ := pass.Namespace("payments")
	assert.True(t, api.IsTransient(payments.Err))
	assert.False(t, payments.Recorded)
	assert.True(t, payments.Rollout.Gated)
	rec, _ := f.cluster.Version("payments", "payments")
	assert.Equal(t, api.Revision("abc1234"), rec.Applied)

	search, _ := pass.Namespace("search")
	assert.NoError(t, search.Err)
	assert.True(t, search.Recorded)

	failures, err := testutil.GatherAndCount(f.registry, "gitsync_namespace_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, failures)

	// Recovery on the next pass.
	f.cluster.Recover("apply-manifests:/repo/payments")
	pass = f.reconciler.RunOnce(context.Background())
	payments, _ = pass.Namespace("payments")
	assert.NoError(t, payments.Err)
	assert.True(t, payments.Recorded)
}

func TestRunOnce_OverlayFailureStillRecords(t *testing.T) {
	f := newFixture(t, "def5678", nil)
	f.seedPayments("abc1234")
	f.cluster.AddManifestDir("/repo/prod-eu/payments", "configmap/payments-cluster")
	f.cluster.FailWith("apply-manifests:/repo/prod-eu/payments")

	pass := f.reconciler.RunOnce(context.Background())

	payments, _ := pass.Namespace("payments")
	assert.Error(t, payments.Err)
	assert.True(t, payments.Recorded)
}

func TestRunOnce_TransientLedgerReadSkipsApply(t *testing.T) {
	f := newFixture(t, "def5678", nil)
	f.seedPayments("abc1234")
	f.cluster.FailWith("get-version:payments/payments")

	pass := f.reconciler.RunOnce(context.Background())

	payments, _ := pass.Namespace("payments")
	assert.True(t, api.IsTransient(payments.Err))
	assert.False(t, payments.Stale)
	assert.Empty(t, payments.Applies)
	assert.Empty(t, f.cluster.ManifestApplies)
	assert.Empty(t, f.cluster.Annotations)
}

func TestRunOnce_LedgerWriteFailure(t *testing.T) {
	f := newFixture(t, "def5678", nil)
	f.seedPayments("abc1234")
	f.cluster.FailWith("apply-version:payments/payments")

	pass := f.reconciler.RunOnce(context.Background())

	payments, _ := pass.Namespace("payments")
	assert.Error(t, payments.Err)
	assert.False(t, payments.Recorded)
	assert.True(t, payments.Rollout.Gated)
	assert.Empty(t, f.cluster.Annotations)
}

func TestRunOnce_RefreshFailureAppliesLastKnownRevision(t *testing.T) {
	f := newFixture(t, "def5678", nil)
	f.seedPayments("abc1234")
	f.mirror.FailRefresh(errors.New("network unreachable"))

	pass := f.reconciler.RunOnce(context.Background())

	assert.Error(t, pass.RefreshErr)
	assert.Equal(t, api.Revision("def5678"), pass.Revision)
	payments, _ := pass.Namespace("payments")
	assert.True(t, payments.Recorded)
}

func TestRunOnce_RefreshFailureAtRecordedRevision(t *testing.T) {
	f := newFixture(t, "def5678", nil)
	f.seedPayments("def5678")
	f.mirror.FailRefresh(errors.New("network unreachable"))
	writes := len(f.cluster.VersionWrites)

	pass := f.reconciler.RunOnce(context.Background())

	assert.Error(t, pass.RefreshErr)
	assert.Equal(t, api.Revision("def5678"), pass.Revision)
	assert.Empty(t, pass.Failed())
	assert.Len(t, f.cluster.VersionWrites, writes)
	assert.Empty(t, f.cluster.ManifestApplies)
	assert.Empty(t, f.cluster.Annotations)
	assert.Empty(t, f.notifier.Events())

	payments, _ := pass.Namespace("payments")
	assert.False(t, payments.Stale)
	assert.False(t, payments.Recorded)
}

func TestRunOnce_UnsetRevision(t *testing.T) {
	f := newFixture(t, "", nil)
	f.seedPayments("abc1234")

	pass := f.reconciler.RunOnce(context.Background())

	assert.ElementsMatch(t, []string{"payments", "search"}, pass.Failed())
	assert.Empty(t, f.cluster.ManifestApplies)
	assert.Empty(t, f.cluster.VersionWrites)
}

type panickingWatcher struct {
	Watcher
	namespace string
}

func (p panickingWatcher) Check(ctx context.Context, ns string, target api.Revision) (rollout.Result, error) {
	if ns == p.namespace {
		panic("watcher exploded")
	}
	return p.Watcher.Check(ctx, ns, target)
}

func TestRunOnce_RecoversPanics(t *testing.T) {
	f := newFixture(t, "def5678", func(w Watcher) Watcher {
		return panickingWatcher{Watcher: w, namespace: "payments"}
	})
	f.seedPayments("abc1234")
	f.cluster.AddManifestDir("/repo/search", "deployment/search")

	var pass PassResult
	require.NotPanics(t, func() {
		pass = f.reconciler.RunOnce(context.Background())
	})

	payments, _ := pass.Namespace("payments")
	require.Error(t, payments.Err)
	assert.Contains(t, payments.Err.Error(), "watcher exploded")

	search, _ := pass.Namespace("search")
	assert.NoError(t, search.Err)
	assert.True(t, search.Recorded)
}

func TestRun_MaxPasses(t *testing.T) {
	f := newFixture(t, "def5678", nil)
	f.reconciler.config.MaxPasses = 3

	require.NoError(t, f.reconciler.Run(context.Background()))
	assert.Equal(t, 3, f.mirror.Refreshes())

	passes, err := testutil.GatherAndCount(f.registry, "gitsync_passes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, passes)
}

func TestRun_StopsOnCancel(t *testing.T) {
	f := newFixture(t, "def5678", nil)
	f.reconciler.config.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.reconciler.Run(ctx) }()

	require.Eventually(t, func() bool { return f.mirror.Refreshes() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
