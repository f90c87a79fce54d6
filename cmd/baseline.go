package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pgmt/pgmt/cmd/util"
	"github.com/pgmt/pgmt/internal/catalog"
	"github.com/pgmt/pgmt/internal/diff"
	"github.com/pgmt/pgmt/internal/inspect"
	"github.com/pgmt/pgmt/internal/migrate"
)

var baselineFlags struct {
	source string
	dir    string
}

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Capture a database's full schema as a baseline migration file",
	Long: `Renders the DDL that recreates the database from scratch into a single
versioned migration file. Diffing against the baseline applied to a clean
shadow database yields the same steps as diffing against this database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		url := baselineFlags.source
		if url == "" {
			url = viper.GetString("database_url")
		}
		db, err := util.Connect(ctx, url)
		if err != nil {
			return err
		}
		defer db.Close()

		cat, err := inspect.New(db).Load(ctx)
		if err != nil {
			return err
		}

		steps, err := diff.Pipeline(catalog.New(), cat, diff.Options{})
		if err != nil {
			return err
		}

		content := migrate.FormatSections(buildSections(diff.Render(steps)))
		name := migrate.BaselineFilename(time.Now())

		fs := afero.NewOsFs()
		if err := fs.MkdirAll(baselineFlags.dir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(baselineFlags.dir, name)
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote baseline %s (%d statements)\n", path, len(diff.Render(steps)))
		return nil
	},
}

func joinStatements(stmts []string) string {
	out := ""
	for i, s := range stmts {
		if i > 0 {
			out += "\n"
		}
		out += s
	}
	return out
}

func init() {
	baselineCmd.Flags().StringVar(&baselineFlags.source, "source", "", "Database URL (defaults to DATABASE_URL)")
	baselineCmd.Flags().StringVar(&baselineFlags.dir, "dir", "migrations", "Migrations directory")
}
