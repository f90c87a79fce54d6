package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pgmt/pgmt/internal/diff"
	"github.com/pgmt/pgmt/internal/migrate"
)

var newFlags struct {
	source string
	target string
	dir    string
}

var newCmd = &cobra.Command{
	Use:   "new <slug>",
	Short: "Write the current diff as a versioned migration file",
	Long: `Diffs the source database against the target (shadow) database and
writes the resulting DDL as a V<timestamp>__<slug>.sql migration file.
Transactional statements land in one section; concurrent index operations
get their own non-transactional section. Destructive statements are marked
and require --force at apply time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sourceURL := newFlags.source
		if sourceURL == "" {
			sourceURL = viper.GetString("database_url")
		}
		targetURL := newFlags.target
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
			fmt.Println("No differences found; nothing to write.")
			return nil
		}

		content := migrate.FormatSections(buildSections(diff.Render(steps)))
		name := migrate.Filename(time.Now(), args[0])

		fs := afero.NewOsFs()
		if err := fs.MkdirAll(newFlags.dir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(newFlags.dir, name)
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d steps)\n", path, len(steps))
		return nil
	},
}

// buildSections partitions rendered statements into a transactional section
// and, when concurrent operations exist, a trailing non-transactional one.
// Destructive statements carry the marker the apply command enforces.
func buildSections(stmts []diff.RenderedStatement) []migrate.Section {
	var transactional, concurrent []string
	for _, stmt := range stmts {
		sql := stmt.SQL
		if stmt.Safety == diff.Destructive {
			sql = migrate.DestructiveMarker + "\n" + sql
		}
		if stmt.Safety == diff.NonTransactional {
			concurrent = append(concurrent, sql)
		} else {
			transactional = append(transactional, sql)
		}
	}

	var sections []migrate.Section
	if len(transactional) > 0 {
		sections = append(sections, migrate.Section{
			Name: "schema",
			Mode: migrate.ModeTransactional,
			SQL:  joinStatements(transactional),
		})
	}
	if len(concurrent) > 0 {
		sections = append(sections, migrate.Section{
			Name:          "concurrent",
			Mode:          migrate.ModeNonTransactional,
			RetryAttempts: 2,
			RetryDelay:    5 * time.Second,
			SQL:           joinStatements(concurrent),
		})
	}
	return sections
}

func init() {
	newCmd.Flags().StringVar(&newFlags.source, "source", "", "Source database URL (defaults to DATABASE_URL)")
	newCmd.Flags().StringVar(&newFlags.target, "target", "", "Target database URL (defaults to SHADOW_DATABASE_URL)")
	newCmd.Flags().StringVar(&newFlags.dir, "dir", "migrations", "Migrations directory")
}
