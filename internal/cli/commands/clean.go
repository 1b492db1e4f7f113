package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/salesprep/internal/clean"
	"github.com/leapstack-labs/salesprep/internal/dataset"
	"github.com/leapstack-labs/salesprep/internal/state"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces the burst of events produced by rewriting the raw tables.
const watchDebounce = 100 * time.Millisecond

// NewCleanCommand creates the clean command.
func NewCleanCommand() *cobra.Command {
	var (
		watch     bool
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the raw tables and write the merged sales file",
		Long: `Load the raw customers, products and orders tables, drop invalid rows,
join the survivors and write the merged sales file for BI tools.

Rows are dropped when a customer has no valid email, a product has a
non-positive price, or an order has a non-positive quantity or references a
customer or product that did not survive. Every step is appended to the
cleaning log and each run is recorded in the run history.`,
		Example: `  # Clean data/raw into data/cleaned
  salesprep clean

  # Re-run whenever a raw table changes
  salesprep clean --watch

  # Machine-readable result
  salesprep clean --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			if watch {
				if err := cc.Cfg.ValidateRawDir(); err != nil {
					return err
				}
			}

			r := &cleanRunner{cc: cc}
			if !noHistory {
				r.openHistory()
				defer r.close()
			}

			if watch {
				return r.watch(cmd.Context())
			}
			_, err = r.run(cmd.Context())
			return err
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run when a raw table changes")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the run in the state store")

	return cmd
}

// cleanRunner runs the cleaning pipeline and records each run. A failing
// state store only produces warnings.
type cleanRunner struct {
	cc    *CommandContext
	store state.Store
}

func (r *cleanRunner) openHistory() {
	store, err := r.cc.OpenStore()
	if err != nil {
		r.cc.Logger.Warn("run history disabled", "error", err)
		return
	}
	r.store = store
}

func (r *cleanRunner) close() {
	if r.store != nil {
		_ = r.store.Close()
	}
}

// run executes the pipeline once and renders its reports.
func (r *cleanRunner) run(ctx context.Context) (*clean.Result, error) {
	runID := r.startRun(ctx)

	cleaner := clean.New(r.cc.Cfg.CleanConfig(), r.cc.Logger, clean.WithLoadHook(r.cc.Renderer.BeforeCleaning))
	res, err := cleaner.Run(ctx)
	if err != nil {
		r.failRun(ctx, runID, err)
		return nil, err
	}

	r.completeRun(ctx, runID, res)
	if err := r.cc.Renderer.AfterCleaning(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *cleanRunner) startRun(ctx context.Context) string {
	if r.store == nil {
		return ""
	}
	run, err := r.store.CreateRun(ctx)
	if err != nil {
		r.cc.Logger.Warn("failed to record run start", "error", err)
		return ""
	}
	return run.ID
}

func (r *cleanRunner) completeRun(ctx context.Context, id string, res *clean.Result) {
	if id == "" {
		return
	}
	if err := r.store.CompleteRun(ctx, id, runStats(res)); err != nil {
		r.cc.Logger.Warn("failed to record run completion", "run_id", id, "error", err)
	}
}

func (r *cleanRunner) failRun(ctx context.Context, id string, runErr error) {
	if id == "" {
		return
	}
	// the run context may be the reason for the failure
	if err := r.store.FailRun(context.WithoutCancel(ctx), id, runErr); err != nil {
		r.cc.Logger.Warn("failed to record run failure", "run_id", id, "error", err)
	}
}

func runStats(res *clean.Result) state.RunStats {
	return state.RunStats{
		RawCustomers:     res.Raw.Customers.Rows,
		RawProducts:      res.Raw.Products.Rows,
		RawOrders:        res.Raw.Orders.Rows,
		CustomersRemoved: res.Removed.Customers,
		ProductsRemoved:  res.Removed.Products,
		OrdersRemoved:    res.Removed.Orders,
		Rows:             res.Summary.Rows,
		TotalRevenue:     res.Summary.TotalRevenue,
		OutputPath:       res.OutputPath,
	}
}

// isRawTable reports whether name is one of the cleaner's input files.
func isRawTable(name string) bool {
	switch filepath.Base(name) {
	case dataset.CustomersFile, dataset.ProductsFile, dataset.OrdersFile:
		return true
	}
	return false
}

// watch runs the pipeline, then again after every change to a raw table,
// until ctx is cancelled. Runs never overlap: they all happen on this goroutine.
func (r *cleanRunner) watch(ctx context.Context) error {
	if _, err := r.run(ctx); err != nil {
		r.cc.Renderer.Error(fmt.Sprintf("Error: %v", err))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(r.cc.Cfg.RawDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", r.cc.Cfg.RawDir, err)
	}
	r.cc.Renderer.Muted(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", r.cc.Cfg.Rel(r.cc.Cfg.RawDir)))

	trigger := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRawTable(event.Name) || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			r.cc.Logger.Debug("raw table changed", "file", event.Name, "op", event.Op.String())
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case <-trigger:
			r.cc.Renderer.Println()
			r.cc.Renderer.Muted("Change detected, re-running...")
			if _, err := r.run(ctx); err != nil {
				r.cc.Renderer.Error(fmt.Sprintf("Error: %v", err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.cc.Logger.Error("watcher error", "error", err)
		}
	}
}
