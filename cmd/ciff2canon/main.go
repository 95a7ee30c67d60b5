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
	"github.com/indexforge/ciffbridge/pkg/metrics"

	cerrors "github.com/indexforge/ciffbridge/pkg/errors"
)

func main() {
	postings := flag.String("postings", "", "path to the postings stream (required)")
	doclen := flag.String("doclen", "", "path to the document length file (required)")
	output := flag.String("output", "", "output basename (required)")
	skipTermLex := flag.Bool("skip-termlex", false, "do not build the binary term lexicon")
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if *postings == "" || *doclen == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: ciff2canon -postings FILE -doclen FILE -output BASENAME")
		flag.PrintDefaults()
		os.Exit(cerrors.ExitBadInput)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(cerrors.ExitFailure)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()
	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(m, cfg.Metrics.Port)
		defer shutdown(ctx)
	}

	pipeline := &convert.CiffToCanon{
		PostingsPath:   *postings,
		DocLengthsPath: *doclen,
		OutputBasename: *output,
		SkipTermLex:    *skipTermLex,
		MaxFrameSize:   cfg.Convert.MaxFrameSize,
		BufferSize:     cfg.Convert.BufferSize,
		Metrics:        m,
	}
	if err := pipeline.Run(ctx); err != nil {
		m.ConversionsTotal.WithLabelValues("ciff2canon", "error").Inc()
		slog.Error("conversion failed", "error", err)
		os.Exit(cerrors.ExitCode(err))
	}
	m.ConversionsTotal.WithLabelValues("ciff2canon", "ok").Inc()
}
