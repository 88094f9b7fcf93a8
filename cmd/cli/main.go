package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/mpaterson/trackml/config"
	"github.com/mpaterson/trackml/internal/app"
	"github.com/mpaterson/trackml/internal/domain"
	"github.com/mpaterson/trackml/internal/pipeline"
)

// The CLI processes a CSV of "artist,track_name" rows offline and writes
// the prediction results as JSON, for bulk labeling runs that do not need
// the HTTP server.
func main() {
	configPath := flag.String("config", "./config/config.yaml", "Config file path")
	inputPath := flag.String("input", "", "CSV file with artist,track_name rows")
	outputPath := flag.String("output", "results.json", "Output JSON file")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: trackml-cli -input tracks.csv [-output results.json]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Download.Dir, 0755); err != nil {
		slog.Error("Failed to create download directory", "dir", cfg.Download.Dir, "error", err)
		os.Exit(1)
	}

	requests, err := readRequests(*inputPath)
	if err != nil {
		slog.Error("Failed to read input", "error", err)
		os.Exit(1)
	}

	processor, err := app.BuildProcessor(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to build processor", "error", err)
		os.Exit(1)
	}

	results := runWithProgress(context.Background(), processor, requests, cfg.Prediction.MaxConcurrentJobs)

	out, err := json.MarshalIndent(domain.BatchResult{Results: results}, "", "  ")
	if err != nil {
		slog.Error("Failed to encode results", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outputPath, out, 0644); err != nil {
		slog.Error("Failed to write output", "path", *outputPath, "error", err)
		os.Exit(1)
	}

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	fmt.Printf("\nprocessed %d tracks (%d failed), results in %s\n", len(results), failed, *outputPath)
}

// readRequests parses the input CSV. A header row is skipped when its
// first field is literally "artist".
func readRequests(path string) ([]domain.TrackRequest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 2

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	requests := make([]domain.TrackRequest, 0, len(rows))
	for i, row := range rows {
		if i == 0 && row[0] == "artist" {
			continue
		}
		requests = append(requests, domain.TrackRequest{Artist: row[0], TrackName: row[1]})
	}

	if len(requests) == 0 {
		return nil, fmt.Errorf("no tracks in %s", path)
	}
	return requests, nil
}

// runWithProgress runs jobs under the worker bound while keeping the
// progress bar in step with completions. Results stay in input order.
func runWithProgress(ctx context.Context, processor *pipeline.Processor, requests []domain.TrackRequest, maxWorkers int) []domain.TrackResult {
	bar := progressbar.NewOptions(
		len(requests),
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Processing tracks...[reset]"),
	)

	results := make([]domain.TrackResult, len(requests))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxWorkers)

	for i, req := range requests {
		wg.Add(1)
		go func(i int, req domain.TrackRequest) {
			defer func() {
				_ = bar.Add(1)
				wg.Done()
			}()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[i] = processor.ProcessTrack(ctx, req, false)
		}(i, req)
	}

	wg.Wait()
	return results
}
