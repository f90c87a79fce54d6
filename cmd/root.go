package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pgmt/pgmt/internal/logger"
	"github.com/pgmt/pgmt/internal/version"
)

var debug bool

// errDifferencesFound makes the diff command exit 1 without an error message;
// differences are a result, not a failure.
var errDifferencesFound = errors.New("differences found")

var rootCmd = &cobra.Command{
	Use:   "pgmt",
	Short: "Declarative schema migrations for PostgreSQL",
	Long: fmt.Sprintf(`pgmt keeps the desired PostgreSQL schema as a tree of SQL files and
produces the minimal ordered DDL that brings a live database in line.

Version: %s %s

Commands:
  diff      Show DDL between two databases
  new       Write the current diff as a migration file
  generate  Write a database's schema as a file tree
  baseline  Capture a database as a baseline migration
  apply     Apply pending migration files

Use "pgmt [command] --help" for more information about a command.`,
		version.App(), version.Platform()),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Setup(debug)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	bindPolicyFlags(rootCmd.PersistentFlags())

	viper.SetDefault("tracking_table", "public.pgmt_migrations")
	viper.SetDefault("column_order", "warn")
	_ = viper.BindEnv("database_url", "DATABASE_URL")
	_ = viper.BindEnv("shadow_database_url", "SHADOW_DATABASE_URL")

	viper.SetConfigName("pgmt")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(versionCmd)
}

// bindPolicyFlags wires policy flags into viper so they can also come from
// the config file or environment.
func bindPolicyFlags(fs *pflag.FlagSet) {
	fs.String("column-order", "warn", "Column order policy: strict, warn, or relaxed")
	_ = viper.BindPFlag("column_order", fs.Lookup("column-order"))
	fs.String("tracking-table", "", "Migration tracking table (schema-qualified)")
	_ = viper.BindPFlag("tracking_table", fs.Lookup("tracking-table"))
}

// Execute runs the CLI. Exit codes: 0 success or no differences, 1
// differences found on diff, 2 anything else.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errDifferencesFound) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}
