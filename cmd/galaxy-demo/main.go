// Command galaxy-demo uploads a CSV file to a Galaxy server, sorts it with
// the Sort tool and downloads the result.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	galaxy "galaxy-sdk"
	"galaxy-sdk/export"
	"galaxy-sdk/internal/config"
	"galaxy-sdk/internal/log"
	"galaxy-sdk/workflow"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type rootFlags struct {
	configPath   string
	input        string
	output       string
	history      string
	tool         string
	logLevel     string
	exportDriver string
	exportDSN    string
	exportTable  string
	plain        bool
	pickHistory  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:           "galaxy-demo",
		Short:         "Upload a file to Galaxy, sort it and download the result",
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			applyFlags(cfg, &f, cmd)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, &f, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "config file (default "+config.DefaultConfigFile+" if present)")
	flags.StringVarP(&f.input, "input", "i", "", "local file to upload")
	flags.StringVarP(&f.output, "output", "o", "", "where to write the sorted result")
	flags.StringVar(&f.history, "history", "", "name of the history to work in")
	flags.StringVar(&f.tool, "tool", "", "name of the tool to run")
	flags.StringVar(&f.logLevel, "log-level", "", "debug log level (debug, info, warn, error)")
	flags.StringVar(&f.exportDriver, "export-driver", "", "load the result into a database (postgres or mysql)")
	flags.StringVar(&f.exportDSN, "export-dsn", "", "database connection string for --export-driver")
	flags.StringVar(&f.exportTable, "export-table", "", "table to load the result into (default "+export.DefaultTable+")")
	flags.BoolVar(&f.plain, "plain", false, "print plain progress lines instead of the interactive view")
	flags.BoolVar(&f.pickHistory, "pick-history", false, "choose the history interactively")

	cmd.AddCommand(newInitCmd())
	return cmd
}

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(config.Defaults(), path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Wrote "+path))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func applyFlags(cfg *config.Config, f *rootFlags, cmd *cobra.Command) {
	changed := cmd.Flags().Changed
	set := func(name string, dst *string, v string) {
		if changed(name) {
			*dst = v
		}
	}
	set("input", &cfg.InputFile, f.input)
	set("output", &cfg.OutputFile, f.output)
	set("history", &cfg.HistoryName, f.history)
	set("tool", &cfg.ToolName, f.tool)
	set("log-level", &cfg.LogLevel, f.logLevel)
	set("export-driver", &cfg.Export.Driver, f.exportDriver)
	set("export-dsn", &cfg.Export.DSN, f.exportDSN)
	set("export-table", &cfg.Export.Table, f.exportTable)
}

func openLogger(cfg *config.Config) (*slog.Logger, func()) {
	path := cfg.LogFile
	if path == "" {
		path = log.DefaultPath()
	}
	logger, file, err := log.OpenFile(path, log.ParseLevel(cfg.LogLevel), version)
	if err != nil {
		fmt.Fprintln(os.Stderr, mutedStyle.Render("debug log disabled: "+err.Error()))
		return log.New(io.Discard, slog.LevelError, version), func() {}
	}
	return logger, func() { file.Close() }
}

func run(ctx context.Context, cfg *config.Config, f *rootFlags, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	apiKey, err := cfg.ResolveAPIKey()
	if err != nil {
		return err
	}

	logger, closeLog := openLogger(cfg)
	defer closeLog()

	client, err := galaxy.NewClient(apiKey,
		galaxy.WithBaseURL(cfg.GalaxyURL),
		galaxy.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	opts := workflow.Options{
		HistoryName:  cfg.HistoryName,
		ToolName:     cfg.ToolName,
		InputFile:    cfg.InputFile,
		OutputFile:   cfg.OutputFile,
		OutputExt:    cfg.OutputExt,
		PollInterval: cfg.PollInterval,
		Sort: workflow.SortParams{
			Column: cfg.Sort.Column,
			Style:  cfg.Sort.Style,
			Order:  cfg.Sort.Order,
		},
	}

	interactive := !f.plain && term.IsTerminal(int(os.Stdout.Fd()))

	if f.pickHistory {
		if !interactive {
			return errors.New("--pick-history needs an interactive terminal")
		}
		history, err := pickHistory(ctx, client, cfg.HistoryName)
		if err != nil {
			return err
		}
		opts.HistoryID = history.ID
		opts.HistoryName = history.Name
	}

	var res *workflow.Result
	if interactive {
		res, err = runInteractive(ctx, client, opts)
	} else {
		fmt.Fprint(out, RenderHeader(client.GetBaseURL()))
		res, err = workflow.NewRunner(client, opts, newPlainReporter(out)).Run(ctx)
	}
	if err != nil {
		return err
	}
	if !interactive {
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ Wrote %d bytes to %s", res.Bytes, res.OutputFile)))
	}

	if cfg.Export.Driver != "" {
		n, err := export.LoadCSV(ctx, export.DBConfig{
			Driver: cfg.Export.Driver,
			DSN:    cfg.Export.DSN,
			Table:  cfg.Export.Table,
		}, res.OutputFile)
		if err != nil {
			logger.Error("export failed", log.RunID(res.RunID), log.Error(err))
			return fmt.Errorf("export: %w", err)
		}
		logger.Info("exported", log.RunID(res.RunID), slog.Int("rows", n))
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ Loaded %d rows into %s", n, cfg.Export.Driver)))
	}

	return nil
}
