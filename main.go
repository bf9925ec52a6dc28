package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// version is the application version, set via ldflags.
var version string = "dev"

var (
	cfgFile string
	logger  = zap.NewNop()
)

// errAborted is returned when the user leaves the interactive picker.
var errAborted = errors.New("selection aborted")

// metric describes what a count command measures and which files it looks at.
type metric struct {
	unit     string
	textOnly bool
	measure  func(opts Options, logger *zap.Logger) (measureFunc, error)
}

var (
	linesMetric = metric{
		unit:     "lines",
		textOnly: true,
		measure: func(Options, *zap.Logger) (measureFunc, error) {
			return countFileLines, nil
		},
	}
	sizeMetric = metric{
		unit: "bytes",
		measure: func(Options, *zap.Logger) (measureFunc, error) {
			return fileSize, nil
		},
	}
	tokensMetric = metric{
		unit:     "tokens",
		textOnly: true,
		measure: func(opts Options, logger *zap.Logger) (measureFunc, error) {
			tk, err := loadTiktoken(opts.Model, logger)
			if err != nil {
				return nil, err
			}
			return tokenMeasure(tk), nil
		},
	}
)

var rootCmd = &cobra.Command{
	Use:   "repotricks",
	Short: "Analyze and report on code repositories",
	Long: `repotricks counts lines of code per file extension and merges a
codebase into a single markdown file, honoring .gitignore rules.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		bindFlags(cmd.Flags())
		l, err := newLogger(viper.GetBool("verbose"))
		if err != nil {
			return fmt.Errorf("error initializing logger: %w", err)
		}
		logger = l
		return nil
	},
}

var lcCmd = &cobra.Command{
	Use:   "lc [PATHS...]",
	Short: "Count lines of code grouped by file extension",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCount(cmd, args, linesMetric)
	},
}

var szCmd = &cobra.Command{
	Use:   "sz [PATHS...]",
	Short: "Sum file sizes grouped by file extension",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCount(cmd, args, sizeMetric)
	},
}

var tkCmd = &cobra.Command{
	Use:   "tk [PATHS...]",
	Short: "Count model tokens grouped by file extension",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCount(cmd, args, tokensMetric)
	},
}

var contextCmd = &cobra.Command{
	Use:   "context [PATHS...]",
	Short: "Merge the whole codebase into a single markdown file",
	Args:  cobra.ArbitraryArgs,
	RunE:  runContext,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/repotricks/config.toml)")
	pf.BoolP("hidden", "H", false, "Include hidden files and directories")
	pf.Bool("no-ignore", false, "Don't respect .gitignore and .ignore files")
	pf.StringP("exclude", "e", "", "Additional gitignore-style patterns to exclude (comma-separated)")
	pf.Int("max-depth", 0, "Maximum directory depth to traverse (0 for no limit)")
	pf.Int64P("max-size", "s", 0, "Maximum file size in bytes (0 for no limit)")
	pf.IntP("threads", "t", 0, "Number of workers for counting (0 for auto)")
	pf.Bool("interactive", false, "Pick paths with an interactive fuzzy finder")
	pf.BoolP("verbose", "v", false, "Enable debug logging")

	for _, c := range []*cobra.Command{lcCmd, szCmd, tkCmd} {
		c.Flags().String("extensions", "", "Show only these extensions (comma-separated, e.g. rs,py,js)")
		c.Flags().StringP("format", "f", "text", "Output format: text, yaml or json")
	}
	tkCmd.Flags().String("model", defaultTiktokenModel, "Model whose tokenizer is used")

	contextCmd.Flags().StringP("output", "o", defaultContextFile, "Output file path")
	contextCmd.Flags().BoolP("clipboard", "c", false, "Also copy the generated file to the clipboard")

	rootCmd.AddCommand(lcCmd, szCmd, tkCmd, contextCmd)

	viper.SetDefault("max_size", 0)
	viper.SetDefault("max_depth", 0)
	viper.SetDefault("threads", 0)
	viper.SetDefault("format", "text")
	viper.SetDefault("output", defaultContextFile)
	viper.SetDefault("model", defaultTiktokenModel)
}

// bindFlags binds the flags of the command being run to snake_case viper keys.
// Binding happens per run because count commands share flag names.
func bindFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "help" || f.Name == "version" {
			return
		}
		_ = viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "repotricks"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("REPOTRICKS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
		}
	}
}

// stringList reads a comma-separated flag value or a list from the config.
func stringList(v *viper.Viper, key string) []string {
	switch raw := v.Get(key).(type) {
	case nil:
		return nil
	case string:
		var out []string
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return v.GetStringSlice(key)
	}
}

// loadOptions resolves the final configuration of a run from v.
func loadOptions(v *viper.Viper, args []string) Options {
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}
	return Options{
		Paths: paths,
		Walk: WalkOptions{
			Hidden:   v.GetBool("hidden"),
			NoIgnore: v.GetBool("no_ignore"),
			Excludes: stringList(v, "exclude"),
			MaxDepth: v.GetInt("max_depth"),
			MaxSize:  v.GetInt64("max_size"),
		},
		Extensions: parseExtensions(strings.Join(stringList(v, "extensions"), ",")),
		Threads:    v.GetInt("threads"),
		Format:     strings.ToLower(v.GetString("format")),
		Output:     v.GetString("output"),
		Clipboard:  v.GetBool("clipboard"),
		Model:      v.GetString("model"),
	}
}

// resolveOptions loads the options and applies the interactive picker.
func resolveOptions(args []string) (Options, error) {
	opts := loadOptions(viper.GetViper(), args)
	if !viper.GetBool("interactive") {
		return opts, nil
	}
	selected, err := runInteractiveFinder(opts.Walk, logger)
	if err != nil {
		return opts, fmt.Errorf("interactive mode error: %w", err)
	}
	if selected == nil {
		return opts, errAborted
	}
	opts.Paths = selected
	return opts, nil
}

// countPaths walks opts.Paths and measures every eligible file with m.
func countPaths(opts Options, m metric, progress io.Writer, logger *zap.Logger) (Table, error) {
	roots, cleanup, err := resolveRoots(opts.Paths, progress, logger)
	defer cleanup()
	if err != nil {
		return nil, err
	}

	measure, err := m.measure(opts, logger)
	if err != nil {
		return nil, err
	}

	files := selectCandidates(walkRoots(roots, opts.Walk, logger), newFileFilter(opts.Extensions, m.textOnly))
	return aggregate(files, opts.Threads, measure, logger), nil
}

func runCount(cmd *cobra.Command, args []string, m metric) error {
	opts, err := resolveOptions(args)
	if errors.Is(err, errAborted) {
		return nil
	}
	if err != nil {
		return err
	}

	table, err := countPaths(opts, m, cloneProgress(), logger)
	if err != nil {
		return fmt.Errorf("error counting %s: %w", m.unit, err)
	}
	out := cmd.OutOrStdout()
	return writeTable(out, table, opts.Format, m.unit, out == os.Stdout && stdoutIsTerminal())
}

func runContext(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions(args)
	if errors.Is(err, errAborted) {
		return nil
	}
	if err != nil {
		return err
	}

	roots, cleanup, err := resolveRoots(opts.Paths, cloneProgress(), logger)
	defer cleanup()
	if err != nil {
		return err
	}

	if err := generateContext(roots, opts.Output, opts.Walk, logger); err != nil {
		return fmt.Errorf("error generating context: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Context file generated: %s\n", opts.Output)

	if opts.Clipboard {
		if err := copyFileToClipboard(opts.Output); err != nil {
			logger.Warn("could not copy to clipboard", zap.Error(err))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Output copied to clipboard.")
		}
	}
	return nil
}

// cloneProgress is where git clone progress goes: stderr in verbose mode.
func cloneProgress() io.Writer {
	if viper.GetBool("verbose") {
		return os.Stderr
	}
	return nil
}

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
