package main

import (
	"context"
	"flag"
	"log"

	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/audit"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/classifier"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/config"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/pipeline"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/policy"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/risk"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/server"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/telemetry"
)

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "sentinelguard.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	addr := cfg.Server.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	ctx := context.Background()

	// Policy corpus. A missing file leaves the index not ready: the analyze
	// pipeline degrades, direct policy queries fail explicitly.
	chunks, err := policy.LoadChunks(cfg.Policy.ChunksPath)
	if err != nil {
		log.Fatalf("failed to load policy chunks: %v", err)
	}
	index := policy.NewIndex(chunks)
	if index.Ready() {
		log.Printf("policy index ready with %d chunks", len(chunks))
	} else {
		log.Printf("policy index not ready (no chunks at %s); running degraded", cfg.Policy.ChunksPath)
	}

	// Safety classifier. Load failures fall back to the noop, never abort.
	var clf classifier.Classifier = classifier.NewNoop()
	if cfg.Classifier.Enabled {
		onnx, err := classifier.LoadONNX(cfg.Classifier.BundleDir, cfg.Classifier.SeqLen)
		if err != nil {
			log.Printf("safety classifier unavailable: %v; running without model", err)
		} else {
			clf = onnx
			defer onnx.Close()
			log.Printf("safety classifier loaded from %s", cfg.Classifier.BundleDir)
		}
	}

	var sink audit.Sink = audit.Discard{}
	if cfg.Audit.Enabled {
		fileSink, err := audit.NewFileSink(cfg.Audit.Path)
		if err != nil {
			log.Fatalf("failed to open audit log: %v", err)
		}
		sink = fileSink
		defer fileSink.Close(ctx)
	}

	tel, err := telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("failed to init telemetry: %v", err)
	}
	defer tel.Shutdown(ctx)

	analyzer := pipeline.New(pipeline.Options{
		Index:      index,
		Classifier: clf,
		Audit:      sink,
		Telemetry:  tel,
		Thresholds: risk.Thresholds{Low: cfg.Risk.LowThreshold, High: cfg.Risk.HighThreshold},
		TopK:       cfg.Policy.TopK,
		MinScore:   cfg.Policy.MinScore,
	})

	srv := server.New(analyzer, index, clf, cfg.Audit.Path)

	log.Printf("Starting SentinelGuard on %s...", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
