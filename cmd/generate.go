package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pgmt/pgmt/cmd/util"
	"github.com/pgmt/pgmt/internal/inspect"
	"github.com/pgmt/pgmt/internal/schemafile"
)

var generateFlags struct {
	source string
	out    string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a database's schema as a tree of SQL files",
	Long: `Introspects a database and writes one SQL file per object under the
output directory, each prefixed with -- require: headers naming its
dependencies. Reloading the tree reproduces the catalog.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		url := generateFlags.source
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

		gen := schemafile.NewGenerator(afero.NewOsFs())
		if err := gen.WriteTree(generateFlags.out, cat); err != nil {
			return err
		}
		fmt.Printf("Wrote schema for %d objects to %s\n", len(cat.Entities()), generateFlags.out)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateFlags.source, "source", "", "Database URL (defaults to DATABASE_URL)")
	generateCmd.Flags().StringVar(&generateFlags.out, "out", "schema", "Output directory")
}
