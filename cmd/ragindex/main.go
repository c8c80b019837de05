package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"ragchat/internal/config"
	embedollama "ragchat/internal/embedding/ollama"
	"ragchat/internal/extract"
	"ragchat/internal/index"
	"ragchat/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "", "Path to YAML config")
	flag.Parse()
	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Println("Usage: ragindex [--config=config.yaml] doc1.pdf [doc2.txt ...]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if *cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(*cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	creds := config.CredentialsFromEnv()
	if err := extract.SetLicenseKey(creds.UnidocLicense); err != nil {
		log.Printf("unidoc license: %v (PDF extraction will fail)", err)
	}

	provider := embedollama.NewClient(embedollama.Config{
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
		Timeout: time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
	})
	store, err := index.NewStore(cfg.Documents.IndexDir)
	if err != nil {
		log.Fatalf("index store: %v", err)
	}
	ingestor := service.NewIngestor(extract.New(), index.NewBuilder(provider, store, cfg.Embedding.FallbackDim), cfg.Retrieval.ChunkMaxChars)

	for _, path := range paths {
		res, err := ingestor.Ingest(context.Background(), path)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			continue
		}
		fmt.Printf("%s: %d entries\n", res.DocID, res.Index.Len())
	}
}
