package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pgmt/pgmt/cmd/util"
	"github.com/pgmt/pgmt/internal/logger"
	"github.com/pgmt/pgmt/internal/migrate"
)

var applyFlags struct {
	target string
	dir    string
	force  bool
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply pending migration files to a database",
	Long: `Runs every migration file in the migrations directory that is not yet
recorded in the tracking table, section by section. Failed sections are
retried per their directives and resumed on the next run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		url := applyFlags.target
		if url == "" {
			url = viper.GetString("database_url")
		}
		db, err := util.Connect(ctx, url)
		if err != nil {
			return err
		}
		defer db.Close()

		tracker := migrate.NewTracker(db, viper.GetString("tracking_table"))
		if err := tracker.EnsureTables(ctx); err != nil {
			return err
		}
		applied, err := tracker.AppliedVersions(ctx)
		if err != nil {
			return err
		}
		appliedSet := make(map[int64]bool, len(applied))
		for _, v := range applied {
			appliedSet[v] = true
		}

		entries, err := os.ReadDir(applyFlags.dir)
		if err != nil {
			return fmt.Errorf("read migrations directory: %w", err)
		}
		var pending []migrate.File
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			file, err := migrate.ParseFilename(entry.Name())
			if err != nil {
				logger.Get().Debug("skipping non-migration file", "name", entry.Name())
				continue
			}
			if !appliedSet[file.Version] {
				pending = append(pending, file)
			}
		}
		sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

		if len(pending) == 0 {
			fmt.Println("Nothing to apply.")
			return nil
		}

		executor := migrate.NewExecutor(db, tracker)
		for _, file := range pending {
			content, err := os.ReadFile(filepath.Join(applyFlags.dir, file.Name))
			if err != nil {
				return err
			}
			if migrate.ContainsDestructive(string(content)) && !applyFlags.force {
				return fmt.Errorf("%s contains destructive statements; re-run with --force", file.Name)
			}
			fmt.Printf("Applying %s...\n", file.Name)
			if err := executor.Apply(ctx, file, string(content)); err != nil {
				return err
			}
		}
		fmt.Printf("Applied %d migrations.\n", len(pending))
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVar(&applyFlags.target, "target", "", "Database URL (defaults to DATABASE_URL)")
	applyCmd.Flags().StringVar(&applyFlags.dir, "dir", "migrations", "Migrations directory")
	applyCmd.Flags().BoolVar(&applyFlags.force, "force", false, "Apply migrations containing destructive statements")
}
