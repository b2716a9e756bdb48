package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"git-sync-operator/internal/metrics"
	"git-sync-operator/internal/reconciler"
	"git-sync-operator/pkg/logging"
)

const shutdownTimeout = 5 * time.Second

// runServe runs the reconcile loop and, when an address is configured, the
// /metrics and /healthz server. SIGINT and SIGTERM cancel both.
func runServe(ctx context.Context, s *Services) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.Reconciler.Run(gctx)
	})

	if addr := s.Settings.MetricsAddr; addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           metrics.Handler(s.Registry),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logging.Info("Serve", "Serving metrics on %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server on %s: %w", addr, err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	logging.Info("Serve", "Shut down")
	return err
}

// runSync performs one pass and reports failed namespaces as an error.
func runSync(ctx context.Context, s *Services) (reconciler.PassResult, error) {
	pass := s.Reconciler.RunOnce(ctx)
	if failed := pass.Failed(); len(failed) > 0 {
		return pass, fmt.Errorf("reconcile failed for namespaces: %s", strings.Join(failed, ", "))
	}
	return pass, nil
}

func readStatus(ctx context.Context, s *Services) []NamespaceStatus {
	out := make([]NamespaceStatus, 0, len(s.Settings.ManagedNamespaces))
	for _, ns := range s.Settings.ManagedNamespaces {
		records, err := s.Ledger.Records(ctx, ns)
		sort.Slice(records, func(i, j int) bool {
			// The namespace record first, then deployments by name.
			if (records[i].Name == ns) != (records[j].Name == ns) {
				return records[i].Name == ns
			}
			return records[i].Name < records[j].Name
		})
		out = append(out, NamespaceStatus{Namespace: ns, Records: records, Err: err})
	}
	return out
}
