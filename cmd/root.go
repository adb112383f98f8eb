package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"graphipedia/dataimport/internal/config"
	"graphipedia/dataimport/internal/db"
	"graphipedia/dataimport/internal/logging"
	"graphipedia/dataimport/internal/pipeline"
)

var (
	configPath string
	rootDir    string
	dbPath     string
	verbose    bool
	keepFiles  bool
)

var rootCmd = &cobra.Command{
	Use:   "graphipedia [langlist]",
	Short: "Import Wikipedia dumps into a labeled graph",
	Long: `Reads the pages, langlinks and geo_tags dumps of each language under
<root>/<lang>/ and builds one graph of articles and categories, linked
across languages.

langlist is a comma separated list of language codes, e.g. en,fr,it.
Without it the languages come from the settings file, or else every
edition known to graphipedia is imported.

An interrupted import resumes from the checkpoint file in <root>.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		langs, err := resolveLanguages(args, settings)
		if err != nil {
			return err
		}

		logger, err := logging.New(settings.Verbose)
		if err != nil {
			return err
		}
		defer logger.Sync()

		p, err := pipeline.New(settings, langs, logger)
		if err != nil {
			return err
		}
		summary, err := p.Run(context.Background())
		if err != nil {
			logger.Error("import failed", zap.String("run", p.RunID()), zap.Error(err))
			return err
		}
		printSummary(summary)
		return nil
	},
}

// Execute runs the command line and exits 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "directory holding one sub-directory of dumps per language")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "graph database path (default <root>/"+config.DatabaseFile+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug lines")
	rootCmd.Flags().BoolVar(&keepFiles, "keep-files", false, "keep intermediate files and the checkpoint after a complete run")
}

// loadSettings reads the settings file and applies the flags set on cmd.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return settings, err
	}
	flags := cmd.Flags()
	if flags.Changed("root") {
		settings.Root = rootDir
	}
	if flags.Changed("db") {
		settings.Database = dbPath
	}
	if flags.Changed("verbose") {
		settings.Verbose = verbose
	}
	if flags.Lookup("keep-files") != nil && flags.Changed("keep-files") {
		settings.KeepFiles = keepFiles
	}
	return settings, settings.Validate()
}

// resolveLanguages picks the languages to import: the argument, then the
// settings file, then every packaged edition.
func resolveLanguages(args []string, settings config.Settings) ([]string, error) {
	if len(args) == 1 {
		langs := config.ParseLanguages(args[0])
		if len(langs) == 0 {
			return nil, fmt.Errorf("no language in %q", args[0])
		}
		if err := config.ValidateLanguages(langs); err != nil {
			return nil, err
		}
		return langs, nil
	}
	if len(settings.Languages) > 0 {
		return settings.Languages, nil
	}
	return config.EditionCodes()
}

// OpenDatabase opens the graph named by the settings and flags
func OpenDatabase(cmd *cobra.Command) (*db.DB, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	path := settings.DatabasePath()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("graph database not found at %s (import first, or use --db)", path)
	}
	return db.OpenDB(path)
}

func printSummary(s *pipeline.Summary) {
	fmt.Printf("\n  Import %s finished in %s\n", s.RunID, s.Duration.Round(time.Second))
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  %-6s %12s %12s %12s %10s %10s\n", "lang", "pages", "nodes", "edges", "xlinks", "time")
	for _, l := range s.Languages {
		fmt.Printf("  %-6s %12s %12s %12s %10s %10s\n",
			l.Lang,
			humanize.Comma(int64(l.Pages)),
			humanize.Comma(int64(l.Import.Nodes)),
			humanize.Comma(int64(l.Import.TotalEdges())),
			humanize.Comma(int64(l.Crosslinks)),
			l.Duration.Round(time.Second))
	}
	fmt.Printf("\n  Total: %s nodes, %s edges\n\n", humanize.Comma(s.Nodes), humanize.Comma(s.Edges))
}
