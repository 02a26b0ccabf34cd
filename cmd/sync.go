package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dirsync/core/client"
	"dirsync/core/config"
	"dirsync/core/database"
	"dirsync/core/metacache"
	"dirsync/core/reconcile"
	"dirsync/core/storage"
	"dirsync/core/utils"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncServer  serverFlags
	syncDest    string
	syncNoCache bool
	syncWorkers int
	syncTarget  string
	syncDryRun  bool
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync [prefix]",
	Short: "Mirror files published by a server",
	Long: `Downloads files under prefix that are missing or changed and removes local
copies of files deleted on the server.

Examples:
  # Mirror everything into the current directory
  dirsync sync --url fileserver -p 8080

  # Mirror docs/ into ./mirror, four transfers at a time
  dirsync sync docs/ --dest ./mirror --workers 4

  # Show what would change
  dirsync sync --dry-run

  # Mirror into the configured bucket
  dirsync sync --target bucket`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncServer.bind(syncCmd)
	syncCmd.Flags().StringVar(&syncDest, "dest", "", "Destination directory, or key prefix for bucket targets")
	syncCmd.Flags().BoolVar(&syncNoCache, "no-cache", false, "Compare against the destination only")
	syncCmd.Flags().IntVar(&syncWorkers, "workers", 0, "Concurrent transfers")
	syncCmd.Flags().StringVar(&syncTarget, "target", "", "Destination kind: local or bucket")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Print the plan without changing anything")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, logg, err := setup()
	if err != nil {
		return err
	}
	defer logg.Sync()

	flags := cmd.Flags()
	if flags.Changed("dest") {
		cfg.Client.Destination = syncDest
	}
	if flags.Changed("no-cache") {
		cfg.Client.Cache = !syncNoCache
	}
	if flags.Changed("workers") {
		cfg.Client.Workers = syncWorkers
	}
	if flags.Changed("target") {
		cfg.Client.Target = syncTarget
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var prefix string
	if len(args) > 0 {
		prefix = args[0]
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli, err := syncServer.newClient(cfg.Client, logg)
	if err != nil {
		return err
	}

	dest, err := openDestination(ctx, cfg)
	if err != nil {
		return err
	}

	var cache metacache.Store
	if cfg.Client.Cache {
		store, closeCache := openCache(cfg.Database, logg)
		defer closeCache()
		cache = store
	}

	out := cmd.OutOrStdout()
	progress := utils.NewProgressLine(cmd.ErrOrStderr())
	engine := reconcile.NewEngine(cli, dest, cache, logg, reconcile.Options{
		Workers:  cfg.Client.Workers,
		DryRun:   syncDryRun,
		Progress: progress.Update,
		Finished: progress.Done,
	})

	logg.Info("Starting sync",
		zap.String("prefix", prefix),
		zap.String("target", cfg.Client.Target),
		zap.String("destination", cfg.Client.Destination),
		zap.Int("workers", cfg.Client.Workers),
		zap.Bool("cache", cache != nil),
	)
	plan, report, err := engine.Sync(ctx, prefix)
	if plan == nil {
		return err
	}

	if syncDryRun {
		for _, action := range plan.Actions {
			if action.Decision == reconcile.DecisionSkip {
				continue
			}
			fmt.Fprintf(out, "%-12s %s (%s)\n", action.Decision, action.Record.Path, action.Reason)
		}
		for _, rejected := range plan.Rejected {
			fmt.Fprintf(out, "%-12s %s\n", "rejected", rejected.Error())
		}
		fmt.Fprintf(out, "plan: %d downloads (%s), %d deletes, %d unchanged, %d rejected\n",
			plan.Summary.Downloads, utils.HumanBytes(int64(plan.Summary.DownloadBytes)),
			plan.Summary.Deletes, plan.Summary.Skips, plan.Summary.Rejected)
		return nil
	}

	fmt.Fprintf(out, "downloaded %d (%s), deleted %d, unchanged %d, failed %d\n",
		report.Downloaded, utils.HumanBytes(report.Bytes), report.Deleted, report.Skipped, report.Failed)
	if failures := reconcile.Errors(err); len(failures) > 0 {
		for _, f := range failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed: %v\n", f)
		}
		return fmt.Errorf("%d of %d paths failed", len(failures), plan.Summary.Total)
	}
	return err
}

func openDestination(ctx context.Context, cfg *config.Config) (reconcile.Destination, error) {
	if cfg.Client.Target != client.TargetBucket {
		return reconcile.NewLocalDestination(afero.NewOsFs(), cfg.Client.Destination), nil
	}

	storeCfg := cfg.Storage
	if cfg.Client.Destination != "." && cfg.Client.Destination != "" {
		storeCfg.Prefix = cfg.Client.Destination
	}
	store, err := storage.NewClient(storeCfg)
	if err != nil {
		return nil, err
	}
	dest := storage.NewBucketDestination(store, storeCfg)
	if err := dest.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return dest, nil
}

// openCache connects the metadata cache. A database that cannot be opened
// degrades to an in-memory cache for this run.
func openCache(cfg database.Config, logg *zap.Logger) (metacache.Store, func()) {
	db, err := database.Connect(cfg)
	if err != nil {
		logg.Warn("Cache database unavailable, using memory cache", zap.Error(err))
		return metacache.NewMemoryStore(), func() {}
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	kv, err := database.NewKV(db)
	if err != nil {
		logg.Warn("Cache table unavailable, using memory cache", zap.Error(err))
		closeDB()
		return metacache.NewMemoryStore(), func() {}
	}
	logg.Debug("Cache database connected", zap.String("driver", cfg.Driver), zap.String("name", cfg.Name))
	return metacache.NewKVStore(kv), closeDB
}
