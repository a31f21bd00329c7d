package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lexfield/docpipe/constants"
	"github.com/lexfield/docpipe/internal/classify"
	"github.com/lexfield/docpipe/internal/common"
	"github.com/lexfield/docpipe/internal/embed"
	"github.com/lexfield/docpipe/internal/export"
	"github.com/lexfield/docpipe/internal/ingest"
	"github.com/lexfield/docpipe/internal/ocr"
	"github.com/lexfield/docpipe/internal/pipeline"
	"github.com/lexfield/docpipe/internal/progress"
	"github.com/lexfield/docpipe/internal/raster"
	"github.com/lexfield/docpipe/internal/scheduler"
	"github.com/lexfield/docpipe/internal/status"
	"github.com/lexfield/docpipe/internal/store"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", "", "directory to process documents from")
		watch      = flag.Bool("watch", false, "keep watching the directory for new documents")
		out        = flag.String("out", "", "output XLSX report path (optional, defaults to parent directory)")
		rulesPath  = flag.String("rules", "", "JSON file with classification rules (optional)")
		embeddings = flag.Bool("embeddings", false, "generate chunk embeddings (needs OPENAI_API_KEY)")
		jobStatus  = flag.String("status", "", "print the status of a document id and exit")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	statusStore, err := status.Open(cfg.Store.StatusPath)
	if err != nil {
		logger.Error("failed to open status store", "error", err)
		os.Exit(1)
	}
	defer statusStore.Close()

	if *jobStatus != "" {
		rec, err := statusStore.Get(context.Background(), *jobStatus)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s\t%s\t%s\n", rec.DocumentID, rec.Status, rec.Error)
		return
	}

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "processing-report.xlsx")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rules []classify.TypeRule
	if *rulesPath != "" {
		rules, err = classify.LoadRules(*rulesPath)
		if err != nil {
			logger.Error("failed to load classification rules", "path", *rulesPath, "error", err)
			os.Exit(1)
		}
		logger.Info("classification rules loaded", "path", *rulesPath, "categories", len(rules))
	}

	var embedder embed.Embedder
	if *embeddings {
		e, err := embed.NewOpenAIEmbedder(cfg.Embedding, logger)
		if err != nil {
			logger.Error("embeddings requested but embedder unavailable", "error", err)
			os.Exit(1)
		}
		embedder = e
	}

	publisher := progress.NewPublisher(logger)
	publisher.Subscribe(func(ev progress.Event) {
		logger.Debug("progress",
			"document_id", ev.DocumentID, "stage", ev.Stage,
			"progress", ev.Progress, "message", ev.Message)
	})

	processor := pipeline.NewProcessor(pipeline.Deps{
		Raster: raster.NewRasterizer(raster.Config{
			Pdftoppm: cfg.OCR.Pdftoppm,
			DPI:      cfg.OCR.DPI,
			MaxPages: cfg.OCR.MaxPages,
			TempRoot: cfg.Pipeline.TempDir,
		}, logger),
		Engines:     ocr.NewFactory(ocr.Config{Languages: cfg.OCR.Languages, DPI: cfg.OCR.DPI}),
		Classifier:  classify.NewKeywordClassifier(rules, logger),
		Embedder:    embedder,
		Publisher:   publisher,
		PageTimeout: cfg.Pipeline.PageTimeout,
	}, logger)

	schedOpts := []scheduler.Option{
		scheduler.WithWorkers(cfg.Pipeline.MaxConcurrentJobs),
		scheduler.WithQueueSize(cfg.Pipeline.QueueSize),
		scheduler.WithJobTimeout(cfg.Pipeline.JobTimeout),
		scheduler.WithStatusStore(statusStore),
	}
	if *watch {
		// a watch run never Collects; outcomes live in the status store and
		// the optional result sink
		schedOpts = append(schedOpts, scheduler.WithoutRetention())
	}

	var docStore *store.DocumentStore
	if cfg.Store.DatabaseURL != "" {
		docStore, err = store.New(ctx, cfg.Store.DatabaseURL, logger)
		if err != nil {
			logger.Error("failed to connect result store", "error", err)
			os.Exit(1)
		}
		defer docStore.Close()
		if err := docStore.Migrate(ctx); err != nil {
			logger.Error("failed to migrate result store", "error", err)
			os.Exit(1)
		}
		schedOpts = append(schedOpts, scheduler.WithCompletionHandler(docStore.SinkHandler(30*time.Second)))
		logger.Info("result store connected")
	}

	sched := scheduler.NewScheduler(processor, logger, schedOpts...)

	opts := pipeline.DefaultOptions()
	opts.GenerateEmbeddings = embedder != nil
	ingestor := ingest.NewIngestor(sched, opts, logger)

	logger.Info("starting ingestion", "dir", *dir, "watch", *watch)
	admissions, stats, err := ingestor.IngestDirectory(ctx, *dir, true)
	if err != nil {
		logger.Error("failed to ingest directory", "error", err)
		sched.Shutdown(context.Background())
		os.Exit(1)
	}
	logger.Info("ingestion complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	if *watch {
		if err := ingestor.Watch(ctx, ingest.WatchConfig{
			Roots:    []string{*dir},
			Debounce: 500 * time.Millisecond,
		}); err != nil && ctx.Err() == nil {
			logger.Error("watcher stopped", "error", err)
		}
		sched.Shutdown(context.Background())

		completed, _ := statusStore.List(context.Background(), constants.JobStatusCompleted)
		failed, _ := statusStore.List(context.Background(), constants.JobStatusFailed)
		logger.Info("watch stopped", "completed_jobs", len(completed), "failed_jobs", len(failed))
		fmt.Printf("Watch stopped.\n")
		fmt.Printf("- Completed: %d\n", len(completed))
		fmt.Printf("- Failed: %d\n", len(failed))
		return
	}

	// drain queued and in-flight jobs before reporting
	sched.Shutdown(context.Background())

	var results []*pipeline.Result
	processed, failures := 0, 0
	for _, adm := range admissions {
		if adm.Err != "" || adm.Deduplicated {
			continue
		}
		outcome, ok := sched.Collect(adm.DocumentID)
		if !ok {
			continue
		}
		if outcome.Err != nil {
			failures++
			continue
		}
		processed++
		results = append(results, outcome.Result)
	}

	if len(results) > 0 {
		xlsxBytes, err := export.NewService(logger).ProcessingReportXLSX(results)
		if err != nil {
			logger.Error("failed to build report", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
			logger.Error("failed to write report", "error", err)
			os.Exit(1)
		}
	}

	failed, _ := statusStore.List(context.Background(), constants.JobStatusFailed)
	logger.Info("batch processing complete",
		"processed", processed,
		"failures", failures,
		"failed_jobs_recorded", len(failed),
		"report", *out)

	fmt.Printf("Processing complete!\n")
	fmt.Printf("- Documents processed: %d\n", processed)
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Report: %s\n", *out)
}
