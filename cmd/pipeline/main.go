package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"forecastwb/internal/config"
	"forecastwb/internal/files"
	"forecastwb/internal/infrastructure"
	"forecastwb/internal/services"
	"forecastwb/internal/validation"
)

// Runs the data preparation stages against an already-uploaded file without
// standing up the HTTP server. Useful for rebuilding the validated, continuous
// and aggregate datasets from the command line.
func main() {
	baseDir := flag.String("base", "", "base directory for data/configs/logs (defaults to working directory)")
	input := flag.String("in", "", "upload filename to validate (defaults to the latest upload)")
	stage := flag.String("stage", "all", "stage to run: validate, timeline, aggregate or all")
	flag.Parse()

	logger, err := infrastructure.InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "stdout",
		FilePath: filepath.Join("logs", "pipeline.log"),
	})
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	paths, err := config.NewPaths(*baseDir)
	if err != nil {
		logger.Error("Failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("Failed to ensure directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store := files.NewUploadStore(logger, paths)
	uploads := validation.NewUploadValidator(logger, config.Default().Uploads.MaxUploadBytes)
	pipeline := services.NewPipelineService(logger, paths, store, uploads)

	ctx := context.Background()

	runValidate := *stage == "all" || *stage == "validate"
	runTimeline := *stage == "all" || *stage == "timeline"
	runAggregate := *stage == "all" || *stage == "aggregate"
	if !runValidate && !runTimeline && !runAggregate {
		logger.Error("Unknown stage", slog.String("stage", *stage))
		os.Exit(1)
	}

	if runValidate {
		summary, err := pipeline.Validate(ctx, *input)
		if err != nil {
			logger.Error("Validation failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		printJSON("validation", summary)
	}

	if runTimeline {
		summary, err := pipeline.BuildTimeline(ctx)
		if err != nil {
			logger.Error("Timeline build failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		printJSON("timeline", summary)
	}

	if runAggregate {
		summary, err := pipeline.Aggregate(ctx)
		if err != nil {
			logger.Error("Aggregation failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		printJSON("aggregation", summary)
	}
}

func printJSON(stage string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode %s summary: %v\n", stage, err)
		return
	}
	fmt.Printf("%s:\n%s\n", stage, data)
}
