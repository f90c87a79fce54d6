package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/pgmt/pgmt/cmd/util"
	"github.com/pgmt/pgmt/internal/catalog"
	"github.com/pgmt/pgmt/internal/diff"
	"github.com/pgmt/pgmt/internal/inspect"
	"github.com/pgmt/pgmt/internal/logger"
)

var diffFlags struct {
	source string
	target string
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show the DDL that transforms the source database into the target",
	Long: `Loads the catalogs of two databases and prints the ordered DDL that
transforms the source into the target. The source defaults to DATABASE_URL
and the target to SHADOW_DATABASE_URL. Exits 1 when differences exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sourceURL := diffFlags.source
		if sourceURL == "" {
			sourceURL = viper.GetString("database_url")
		}
		targetURL := diffFlags.target
		if targetURL == "" {
			targetURL = viper.GetString("shadow_database_url")
		}

		initial, target, err := loadCatalogs(ctx, sourceURL, targetURL)
		if err != nil {
			return err
		}

		steps, err := diff.Pipeline(initial, target, diff.Options{
			ColumnOrder: columnOrderPolicy(),
		})
		if err != nil {
			return err
		}
		if len(steps) == 0 {
			fmt.Println("No differences found.")
			return nil
		}

		for _, stmt := range diff.Render(steps) {
			if stmt.Safety != diff.Safe {
				fmt.Printf("-- %s\n", stmt.Safety)
			}
			fmt.Println(stmt.SQL)
		}
		fmt.Printf("\n-- Found %d differences\n", len(steps))
		return errDifferencesFound
	},
}

func init() {
	diffCmd.Flags().StringVar(&diffFlags.source, "source", "", "Source database URL (defaults to DATABASE_URL)")
	diffCmd.Flags().StringVar(&diffFlags.target, "target", "", "Target database URL (defaults to SHADOW_DATABASE_URL)")
}

// loadCatalogs introspects both databases concurrently; each load is
// internally sequential over its own connection.
func loadCatalogs(ctx context.Context, sourceURL, targetURL string) (*catalog.Catalog, *catalog.Catalog, error) {
	load := func(ctx context.Context, url string) (*catalog.Catalog, error) {
		db, err := util.Connect(ctx, url)
		if err != nil {
			return nil, err
		}
		defer func(db *sql.DB) { _ = db.Close() }(db)
		return inspect.New(db).Load(ctx)
	}

	var initial, target *catalog.Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		initial, err = load(gctx, sourceURL)
		return err
	})
	g.Go(func() error {
		var err error
		target, err = load(gctx, targetURL)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	logger.Get().Debug("catalogs loaded",
		"source_objects", len(initial.Entities()),
		"target_objects", len(target.Entities()))
	return initial, target, nil
}

func columnOrderPolicy() diff.ColumnOrderPolicy {
	switch viper.GetString("column_order") {
	case "strict":
		return diff.ColumnOrderStrict
	case "relaxed":
		return diff.ColumnOrderRelaxed
	default:
		return diff.ColumnOrderWarn
	}
}
