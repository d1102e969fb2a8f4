// Package cli implements the curricula command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/buildinfo"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/cache"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/config"
	errs "github.com/SheepTester-forks/curricular-analytics-graph/pkg/errors"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for config lookup and display.
	appName = "curricula"

	// configEnv names a config file when --config is not given.
	configEnv = "CURRICULA_CONFIG"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Curricula analyzes and draws degree plans",
		Long: `Curricula reads a degree plan or curriculum, checks its requisite graph,
computes per-course complexity metrics and draws the plan as a term grid or a
node-link diagram.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (.toml, .yaml); defaults to $"+configEnv)

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.scheduleCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or $CURRICULA_CONFIG when the flag is unset.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		path = os.Getenv(configEnv)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	c.config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner. A CLI run renders once, so only the
// server passes a real cache.
func (c *CLI) newRunner(cc cache.Cache) *pipeline.Runner {
	return pipeline.NewRunner(cc, c.Logger)
}

// =============================================================================
// Input
// =============================================================================

// readSource loads a plan file. The path is validated before it is read.
func readSource(path string) (pipeline.Source, error) {
	if err := errs.ValidateInputPath(path); err != nil {
		return pipeline.Source{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return pipeline.Source{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return pipeline.Source{}, errs.Wrap(errs.ErrCodeInvalidPath, err, "read %s", path)
	}
	return pipeline.Source{Name: filepath.Base(path), Data: data}, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// planFlags are the options shared by every command that reads a plan.
type planFlags struct {
	system    string
	schedule  string
	input     string
	separator string
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.system, "system", "", "term system: semester, quarter (default from config)")
	cmd.Flags().StringVar(&f.schedule, "schedule", "", "curriculum scheduler: greedy, levels (default from config)")
	cmd.Flags().StringVar(&f.input, "input", "", "input format: tabular, json (default: detect)")
	cmd.Flags().StringVar(&f.separator, "separator", "", "field separator of the tabular format (default ,)")
}

// options merges flags over the loaded config.
func (c *CLI) options(f *planFlags) (pipeline.Options, error) {
	opts := c.config.Options()
	opts.Logger = c.Logger
	if f.system != "" {
		opts.System = f.system
	}
	if f.schedule != "" {
		opts.Schedule = f.schedule
	}
	opts.Input = f.input
	if f.separator != "" {
		r := []rune(f.separator)
		if len(r) != 1 {
			return opts, errs.New(errs.ErrCodeInvalidInput, "separator must be a single character, got %q", f.separator)
		}
		opts.Separator = r[0]
	}
	return opts, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
