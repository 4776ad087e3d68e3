package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-history/internal/logger"
	"github.com/rxtech-lab/argo-history/internal/version"
	"github.com/rxtech-lab/argo-history/pkg/marketdata"
	"github.com/rxtech-lab/argo-history/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-history/pkg/marketdata/writer"
)

// errAllFailed is returned when no ticker of the batch could be exported.
var errAllFailed = fmt.Errorf("every ticker failed to export")

// loadConfig merges the config file, the environment and the flags that were set explicitly.
func loadConfig(cmd *cli.Command) (marketdata.ExportConfig, error) {
	config, err := marketdata.LoadExportConfig(cmd.String("config"))
	if err != nil {
		return marketdata.ExportConfig{}, err
	}

	if cmd.IsSet("output") {
		config.OutputDir = cmd.String("output")
	}

	if cmd.IsSet("provider") {
		config.Provider = provider.ProviderType(cmd.String("provider"))
	}

	if cmd.IsSet("format") {
		config.Format = writer.Format(cmd.String("format"))
	}

	if cmd.IsSet("years") {
		config.YearsBack = int(cmd.Int("years"))
	}

	if cmd.IsSet("rpm") {
		config.RequestsPerMinute = int(cmd.Int("rpm"))
	}

	if err := config.Validate(); err != nil {
		return marketdata.ExportConfig{}, err
	}

	return config, nil
}

// newLogger returns the production JSON logger with --json, the console logger otherwise.
func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	if cmd.Bool("json") {
		return logger.NewLogger()
	}

	return logger.NewConsoleLogger(cmd.Bool("verbose"))
}

// exportAction runs the whole batch. It only fails when the batch cannot start
// or when every ticker failed.
func exportAction(ctx context.Context, cmd *cli.Command) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	consoleLogger, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() {
		_ = consoleLogger.Sync()
	}()

	var onProgress marketdata.OnProgress

	if cmd.Bool("progress") {
		bar := progressbar.NewOptions(len(config.Tickers),
			progressbar.OptionSetWriter(cmd.Root().ErrWriter),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		onProgress = func(current float64, _ float64, message string) {
			bar.Describe(message)
			_ = bar.Set(int(current))
		}
	}

	exporter, err := marketdata.NewExporterFromConfig(config, consoleLogger, onProgress)
	if err != nil {
		return err
	}

	report, err := exporter.Run(ctx)
	if err != nil {
		return err
	}

	if report.AllFailed() {
		consoleLogger.Error("No ticker was exported", zap.String("run_id", report.RunID))

		return errAllFailed
	}

	return nil
}

func providersAction(_ context.Context, cmd *cli.Command) error {
	w := tabwriter.NewWriter(cmd.Root().Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDISPLAY NAME\tAUTH\tDESCRIPTION")

	for _, name := range marketdata.GetSupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			return err
		}

		auth := "-"
		if info.RequiresAuth {
			auth = info.AuthEnvVar
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Name, info.DisplayName, auth, info.Description)
	}

	return w.Flush()
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := marketdata.GetConfigSchema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if cmd.Bool("compact") {
		_, err = fmt.Fprintln(cmd.Root().Writer, schema)

		return err
	}

	var indented any
	if err := json.Unmarshal([]byte(schema), &indented); err != nil {
		return fmt.Errorf("failed to parse schema: %w", err)
	}

	encoder := json.NewEncoder(cmd.Root().Writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(indented)
}

func newCommand(stdout io.Writer, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Version:   version.GetVersion(),
		Usage:     "Export one year of daily price history for a fixed list of tickers",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Optional YAML config `FILE`",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output `DIR`. Defaults to a csv directory beside the executable",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to use (%s or %s)", provider.ProviderYahoo, provider.ProviderPolygon),
				Value:   string(provider.ProviderYahoo),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   fmt.Sprintf("Output format (%s or %s)", writer.FormatCSV, writer.FormatParquet),
				Value:   string(writer.FormatCSV),
			},
			&cli.IntFlag{
				Name:  "years",
				Usage: "Length of the download window in years",
				Value: marketdata.DefaultYearsBack,
			},
			&cli.IntFlag{
				Name:  "rpm",
				Usage: "Maximum provider requests per minute, 0 for no limit",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show a progress bar on stderr",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Write JSON log lines instead of console output",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Action: exportAction,
		Commands: []*cli.Command{
			{
				Name:   "providers",
				Usage:  "List the supported market data providers",
				Action: providersAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of the config file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "compact",
						Usage: "Print the schema on a single line",
					},
				},
				Action: schemaAction,
			},
		},
	}
}

func main() {
	if err := newCommand(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
