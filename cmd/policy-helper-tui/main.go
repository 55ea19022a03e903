package main

import (
	"flag"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vikneshkrishnan/ai-policy-helper/internal/chunker"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/config"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/ingest"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/service"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/tui"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "Path to YAML config file")
	dataDir := flag.String("data", "", "Directory of .md/.txt files (overrides config data_dir)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	logger := zap.NewNop()
	engine := service.NewEngine(cfg, logger)

	splitter, err := chunker.NewSplitter(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	if err != nil {
		log.Fatalf("invalid chunker configuration: %v", err)
	}
	docs, err := ingest.LoadDocuments(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to load documents from %s: %v", cfg.DataDir, err)
	}
	chunks := ingest.BuildChunks(docs, splitter)
	newDocs, newChunks, err := engine.Ingest(chunks)
	if err != nil {
		log.Fatalf("ingest failed: %v", err)
	}

	status := fmt.Sprintf("Indexed %d documents (%d chunks) from %s. Ask away.", newDocs, newChunks, cfg.DataDir)
	m := tui.New(engine, cfg.Retrieval.TopK, status)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
