package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	backendollama "ragchat/internal/backend/ollama"
	"ragchat/internal/backend/openrouter"
	"ragchat/internal/config"
	"ragchat/internal/domain"
	embedollama "ragchat/internal/embedding/ollama"
	"ragchat/internal/extract"
	"ragchat/internal/index"
	"ragchat/internal/service"
	"ragchat/internal/session"
	"ragchat/internal/summarizer"
	"ragchat/internal/tui"
	"ragchat/internal/watcher"
	"ragchat/internal/websearch"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "", "Path to YAML config (optional; uses ~/.config/ragchat/config.yaml if not provided)")
	watch := flag.Bool("watch", false, "Watch the documents directory and index new files")
	flag.Parse()
	docPath := flag.Arg(0)

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
	builder := index.NewBuilder(provider, store, cfg.Embedding.FallbackDim)
	ingestor := service.NewIngestor(extract.New(), builder, cfg.Retrieval.ChunkMaxChars)

	var ix *index.Index
	summary := "سندی بارگذاری نشده است."
	if docPath != "" {
		fmt.Printf("در حال پردازش سند: %s...\n", docPath)
		res, err := ingestor.Ingest(context.Background(), docPath)
		if err != nil {
			log.Fatalf("ingesting %s: %v", docPath, err)
		}
		ix = res.Index
		summary = summarizer.Summarize(res.Text, 3)
		fmt.Printf("سند %s با %d قطعه آماده شد.\n", res.DocID, ix.Len())
	}

	local := backendollama.New(backendollama.Config{
		BaseURL: cfg.Local.BaseURL,
		Model:   cfg.Local.Model,
		Timeout: time.Duration(cfg.Local.TimeoutSecs) * time.Second,
	})
	var remote domain.ModelBackend
	if creds.HasRemote() {
		r, err := openrouter.New(openrouter.Config{
			BaseURL: creds.OnlineBaseURL,
			APIKey:  creds.OnlineAPIKey,
			Model:   remoteModel(cfg, creds),
			Timeout: time.Duration(cfg.Remote.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("remote backend: %v", err)
		}
		remote = r
	} else {
		log.Printf("remote backend disabled: ONLINE_API_KEY or ONLINE_MODEL_URL not set")
	}

	web := websearch.New(websearch.Config{
		APIKey:     creds.GoogleAPIKey,
		CX:         creds.GoogleCX,
		Provider:   provider,
		Timeout:    time.Duration(cfg.Web.TimeoutSecs) * time.Second,
		MaxResults: cfg.Web.MaxResults,
	})

	sess, err := session.New(provider, ix, web, local, remote, session.Options{
		TopK:            cfg.Retrieval.TopK,
		DocThreshold:    cfg.Retrieval.DocumentThreshold,
		MaxContextChars: cfg.Retrieval.MaxContextChars,
		HistoryWindow:   cfg.Session.HistoryWindow,
		SystemPrompt:    cfg.Session.SystemPrompt,
	})
	if err != nil {
		log.Fatalf("session: %v", err)
	}

	if *watch {
		w, err := watcher.New(ingestor)
		if err != nil {
			log.Fatalf("watcher: %v", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := w.Watch(ctx, cfg.Documents.Dir); err != nil {
				log.Printf("watcher stopped: %v", err)
			}
		}()
	}

	p := tea.NewProgram(tui.New(sess, summary), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func remoteModel(cfg *config.AppConfig, creds config.Credentials) string {
	if creds.OnlineModel != "" {
		return creds.OnlineModel
	}
	return cfg.Remote.Model
}
