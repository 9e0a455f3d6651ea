package app

import (
	"context"
	"fmt"
	"log"

	"abaplens/internal/adt"
	"abaplens/internal/archive"
	"abaplens/internal/config"
	"abaplens/internal/enhancement"
	"abaplens/internal/include"
	"abaplens/internal/llmclient"
	"abaplens/internal/llmtool"
	"abaplens/internal/mcp"
	"abaplens/internal/server"
)

type App struct {
	server *server.Server
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	client, err := adt.NewClient(cfg.SAP, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("init backend client: %w", err)
	}

	resolver := include.NewResolver(client)
	aggregator := enhancement.NewAggregator(client, resolver, cfg.Analyze.Workers)

	registry := mcp.NewRegistry()
	mcp.RegisterDefaultTools(registry, mcp.Host{
		Source:       client,
		Search:       client,
		Enhancements: client,
		Catalog:      client,
		Includes:     resolver,
		Aggregator:   aggregator,
	})

	handlers := &server.Handlers{
		Registry:   registry,
		Aggregator: aggregator,
	}

	if cfg.Archive.Enabled {
		store, err := archive.NewStore(cfg.Archive)
		if err != nil {
			return nil, fmt.Errorf("init archive: %w", err)
		}
		handlers.Archive = store
	}

	if cfg.LLM.Enabled {
		llm, err := llmclient.NewGeminiClient(ctx, cfg.LLM.Model)
		if err != nil {
			return nil, fmt.Errorf("init llm client: %w", err)
		}
		handlers.Assist = &llmtool.ToolLoop{LLM: llm, Tools: registry, MaxIters: 8}
	} else {
		log.Printf("assist disabled: GEMINI_API_KEY not set")
	}

	mux := server.NewMux(handlers)
	return &App{server: server.New(cfg.Port, mux)}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
