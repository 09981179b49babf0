// Package commands implements the command line interface of fake.
package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/fake/internal/app"
	"go.trai.ch/fake/internal/build"
	"go.trai.ch/fake/internal/core/domain"
)

// CLI represents the command line interface for fake.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, opts app.Options) error
	Watch(ctx context.Context, opts app.Options) error
	PrintGraph(ctx context.Context, opts app.Options) error
	PrintTargets(ctx context.Context, opts app.Options) error
	Targets(ctx context.Context, opts app.Options) []string
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:   "fake [flags] [targets...] [VAR=value...]",
		Short: "Run make targets concurrently in dependency order",
		Long: "fake reads the target graph of a Makefile and runs make once per needed target,\n" +
			"building targets that do not depend on each other at the same time.",
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Version:           build.Version,
		RunE:              c.run,
		ValidArgsFunction: c.completeTargets,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.Flags()
	flags.StringP("file", "f", "", "Read `FILE` as the makefile")
	flags.StringP("directory", "C", "", "Change to `DIR` before doing anything")
	flags.String("make", "", "Run `BIN` instead of make")
	flags.String("graph-source", "", "Read the target graph from: syntax or database")
	flags.BoolP("dry-run", "n", false, "Print the make commands instead of running them")
	flags.Bool("print-graph", false, "Print the target graph as JSON and exit")
	flags.Bool("print-targets", false, "Print every declared target and exit")
	flags.String("completions", "", "Print the completion script for `SHELL`: bash, zsh, fish or powershell")
	flags.IntP("jobs", "j", 0, "Run at most `N` make processes at once (0 = unlimited)")
	flags.String("output-mode", "", "Output mode: auto, tui, or linear")
	flags.Bool("ci", false, "Use linear output mode (shorthand for --output-mode=linear)")
	flags.Bool("watch", false, "Rebuild whenever a file in the build directory changes")
	flags.Bool("log-json", false, "Write log messages as JSON")

	_ = rootCmd.RegisterFlagCompletionFunc("graph-source", cobra.FixedCompletions(
		[]string{string(domain.GraphSourceSyntax), string(domain.GraphSourceDatabase)}, cobra.ShellCompDirectiveNoFileComp))
	_ = rootCmd.RegisterFlagCompletionFunc("output-mode", cobra.FixedCompletions(
		[]string{string(domain.OutputModeAuto), string(domain.OutputModeTUI), string(domain.OutputModeLinear)},
		cobra.ShellCompDirectiveNoFileComp))
	_ = rootCmd.RegisterFlagCompletionFunc("completions", cobra.FixedCompletions(
		supportedShells, cobra.ShellCompDirectiveNoFileComp))
	_ = rootCmd.MarkFlagDirname("directory")

	c.rootCmd = rootCmd
	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func (c *CLI) run(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	if shell, _ := flags.GetString("completions"); shell != "" {
		return c.writeCompletions(cmd.OutOrStdout(), shell)
	}

	opts := options(cmd, args)
	ctx := cmd.Context()

	printGraph, _ := flags.GetBool("print-graph")
	printTargets, _ := flags.GetBool("print-targets")
	watch, _ := flags.GetBool("watch")

	switch {
	case printGraph:
		return c.app.PrintGraph(ctx, opts)
	case printTargets:
		return c.app.PrintTargets(ctx, opts)
	case watch:
		return c.app.Watch(ctx, opts)
	default:
		return c.app.Run(ctx, opts)
	}
}

// options collects the flags and splits args into targets and VAR=value overrides.
func options(cmd *cobra.Command, args []string) app.Options {
	flags := cmd.Flags()

	var opts app.Options
	for _, arg := range args {
		if strings.Contains(arg, "=") {
			opts.Variables = append(opts.Variables, arg)
		} else {
			opts.Targets = append(opts.Targets, arg)
		}
	}

	opts.File, _ = flags.GetString("file")
	opts.Directory, _ = flags.GetString("directory")
	opts.Make, _ = flags.GetString("make")
	opts.DryRun, _ = flags.GetBool("dry-run")
	opts.LogJSON, _ = flags.GetBool("log-json")

	source, _ := flags.GetString("graph-source")
	opts.GraphSource = domain.GraphSource(source)

	mode, _ := flags.GetString("output-mode")
	if ci, _ := flags.GetBool("ci"); ci {
		mode = string(domain.OutputModeLinear)
	}
	opts.OutputMode = domain.OutputMode(mode)

	if flags.Changed("jobs") {
		jobs, _ := flags.GetInt("jobs")
		opts.Jobs = &jobs
	}

	return opts
}
