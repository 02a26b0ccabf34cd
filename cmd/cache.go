package cmd

import (
	"fmt"
	"strings"

	"dirsync/core/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	cacheListLimit int
	cacheClearYes  bool
)

// cacheCmd is the parent command for metadata cache maintenance.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the sync metadata cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the cache table layout and entry count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCacheDB(func(db *gorm.DB, cfg database.Config) error {
			columns, err := database.VerifyKV(db)
			if err != nil {
				return err
			}
			count, err := database.OpenKV(db).Count(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "database: %s (%s)\n", cfg.Name, cfg.Driver)
			for _, col := range columns {
				fmt.Fprintf(out, "  %-12s %-16s %s\n", col.Field, col.Type, col.Key)
			}
			fmt.Fprintf(out, "entries: %d\n", count)
			return nil
		})
	},
}

var cacheListCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List cached entries in key order",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var prefix string
		if len(args) > 0 {
			prefix = args[0]
		}
		return withCacheDB(func(db *gorm.DB, _ database.Config) error {
			if _, err := database.VerifyKV(db); err != nil {
				return err
			}
			entries, err := database.OpenKV(db).Scan(cmd.Context(), []byte(prefix), cacheListLimit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s %s\n", e.Key, e.Value)
			}
			return nil
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached entry",
	Long:  `Removes every cached entry. The next sync compares against the destination only.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cacheClearYes && !confirm(cmd, "Clear the sync metadata cache?") {
			fmt.Fprintln(cmd.OutOrStdout(), "aborted")
			return nil
		}
		return withCacheDB(func(db *gorm.DB, _ database.Config) error {
			if _, err := database.VerifyKV(db); err != nil {
				return err
			}
			n, err := database.OpenKV(db).Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", n)
			return nil
		})
	},
}

func init() {
	cacheListCmd.Flags().IntVar(&cacheListLimit, "limit", 0, "Maximum entries to print (0 for all)")
	cacheClearCmd.Flags().BoolVar(&cacheClearYes, "yes", false, "Auto-confirm (non-interactive)")
	cacheCmd.AddCommand(cacheInfoCmd, cacheListCmd, cacheClearCmd)
	RootCmd.AddCommand(cacheCmd)
}

func withCacheDB(fn func(db *gorm.DB, cfg database.Config) error) error {
	cfg, logg, err := setup()
	if err != nil {
		return err
	}
	defer logg.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return fn(db, cfg.Database)
}

func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	var answer string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &answer); err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
