// Package cli implements the molgraph command tree: convert (molecule
// stream to attributed graphs), molfile (graph back to molfile text), and
// the dataset helpers select and bipartition.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/MolGraph-Pipeline/internal/config"
	"github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	verbose    bool
}

// runtimeContext carries the initialized dependencies through the command
// tree.
type runtimeContext struct {
	cfg *config.Config
	log logging.Logger
}

// NewRootCommand creates the root command with global flags and all
// subcommands mounted.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rc := &runtimeContext{}

	cmd := &cobra.Command{
		Use:     "molgraph",
		Short:   "Convert molecular structure streams into attributed graphs",
		Long:    "molgraph converts SDF and SMILES molecule streams into attributed graphs\nwith geometry-derived node features, for use as machine-learning inputs.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initRuntime(opts, rc)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file path (default: ./molgraph.yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		newConvertCmd(rc),
		newMolfileCmd(rc),
		newSelectCmd(rc),
		newBipartitionCmd(rc),
	)
	return cmd
}

// initRuntime loads configuration and builds the CLI logger (stderr, so
// stdout stays clean for emitted graphs).
func initRuntime(opts *rootOptions, rc *runtimeContext) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = strings.ToLower(opts.logLevel)
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	cfg.Log.Output = "stderr"

	log, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	rc.cfg = cfg
	rc.log = log
	return nil
}

// loadConfig resolves the configuration: an explicit path, then
// ./molgraph.yaml, then environment variables and defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat("molgraph.yaml"); err == nil {
		return config.Load("molgraph.yaml")
	}
	return config.LoadFromEnv()
}

// Execute runs the root command; it is the entry point used by main.
func Execute() error {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		return err
	}
	return nil
}

// openInput resolves the --input flag: "-" or empty selects stdin.
func openInput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// openOutput resolves the --output flag: "-" or empty selects stdout.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
