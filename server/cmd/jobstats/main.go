// Command jobstats computes the job-postings report once and prints it.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/jobpulse/jobpulse/server/internal/analytics"
	"github.com/jobpulse/jobpulse/server/internal/api"
	"github.com/jobpulse/jobpulse/server/internal/config"
	"github.com/jobpulse/jobpulse/server/internal/dataset"
	"github.com/jobpulse/jobpulse/server/internal/logging"
	"github.com/jobpulse/jobpulse/server/internal/render"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one batch report and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("jobstats", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	datasetPath := flags.StringP("dataset", "d", config.DefaultDatasetPath, "CSV file with job postings (.gz and .zst accepted)")
	format := flags.StringP("format", "f", "text", "output format: text | json")
	logLevel := flags.String("log-level", "warn", "log level: debug | info | warn | error")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(stderr, "jobstats: unknown format %q: want text|json\n", *format)
		return 2
	}

	logger, _ := logging.New(stderr, *logLevel, "text")

	tbl, err := dataset.Load(*datasetPath)
	if err != nil {
		logger.Error("failed to load dataset", "path", *datasetPath, "err", err)
		return 1
	}
	logger.Info("dataset loaded", "rows", tbl.Len(), "fingerprint", tbl.Fingerprint)

	report := analytics.Build(tbl)

	switch *format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(api.NewAnalyticsResponse(report))
	default:
		err = render.Report(stdout, report)
	}
	if err != nil {
		logger.Error("failed to write report", "err", err)
		return 1
	}
	return 0
}
