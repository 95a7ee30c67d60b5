package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/indexforge/ciffbridge/internal/convert"
	"github.com/indexforge/ciffbridge/pkg/config"
	"github.com/indexforge/ciffbridge/pkg/logger"

	cerrors "github.com/indexforge/ciffbridge/pkg/errors"
)

func main() {
	input := flag.String("input", "", "path to the postings stream (required)")
	output := flag.String("output", "", "output jsonl path (required)")
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: ciff2jsonl -input FILE -output FILE")
		flag.PrintDefaults()
		os.Exit(cerrors.ExitBadInput)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(cerrors.ExitFailure)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	pipeline := &convert.CiffToJSONL{
		InputPath:    *input,
		OutputPath:   *output,
		MaxFrameSize: cfg.Convert.MaxFrameSize,
		BufferSize:   cfg.Convert.BufferSize,
	}
	if err := pipeline.Run(context.Background()); err != nil {
		slog.Error("conversion failed", "error", err)
		os.Exit(cerrors.ExitCode(err))
	}
}
