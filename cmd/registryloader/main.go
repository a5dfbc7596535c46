// Command registryloader converts the operator-maintained registry CSV
// into the JSON artifacts the aggregator reads at run time: the
// enabled-only feed list and the full sources directory.
package main

import (
	"flag"
	"log/slog"
	"os"

	"feedagg/internal/registry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	csvPath := flag.String("csv", "sources.csv", "path to the registry CSV")
	feedOut := flag.String("feed-out", "sources.json", "path to write the enabled-only feed JSON")
	sourcesOut := flag.String("sources-out", "sources_directory.json", "path to write the full sources directory JSON")
	flag.Parse()

	f, err := os.Open(*csvPath)
	if err != nil {
		logger.Error("open registry csv failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer f.Close()

	_, sorted, err := registry.LoadCSV(f)
	if err != nil {
		logger.Error("parse registry csv failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := registry.WriteFeedJSON(*feedOut, sorted); err != nil {
		logger.Error("write feed json failed", slog.Any("error", err))
		os.Exit(1)
	}
	if err := registry.WriteSourcesJSON(*sourcesOut, sorted); err != nil {
		logger.Error("write sources json failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("registry converted",
		slog.Int("publishers", len(sorted)),
		slog.String("feed_out", *feedOut),
		slog.String("sources_out", *sourcesOut))
}
