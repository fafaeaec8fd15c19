package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/dockeep/dockeep/internal/adapters/driven/bytestore"
	"github.com/dockeep/dockeep/internal/adapters/driven/classify"
	configfile "github.com/dockeep/dockeep/internal/adapters/driven/config/file"
	embeddingopenai "github.com/dockeep/dockeep/internal/adapters/driven/embedding/openai"
	"github.com/dockeep/dockeep/internal/adapters/driven/extract"
	"github.com/dockeep/dockeep/internal/adapters/driven/storage/sqlite"
	"github.com/dockeep/dockeep/internal/adapters/driving/cli"
	"github.com/dockeep/dockeep/internal/core/ports/driven"
	"github.com/dockeep/dockeep/internal/core/services"
	"github.com/dockeep/dockeep/internal/logger"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	if err := wire(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	cli.Execute()
}

// wire builds the adapter stack from configuration and hands the services
// to the CLI.
func wire() error {
	cfg, err := configfile.Load(os.Getenv("DOCKEEP_HOME"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.Library.DataDir)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	files, err := bytestore.NewLocal(cfg.Library.Dir)
	if err != nil {
		store.Close()
		return fmt.Errorf("opening library storage: %w", err)
	}

	// The model-backed adapters need an API key; without one dockeep
	// still works, with heuristic categorisation and no semantic search.
	var embedder driven.EmbeddingService
	var model driven.Classifier
	if apiKey := cfg.APIKey(); apiKey != "" {
		embedder, err = embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:     apiKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			Model:      cfg.OpenAI.EmbeddingModel,
			Dimensions: cfg.OpenAI.Dimensions,
		})
		if err != nil {
			store.Close()
			return fmt.Errorf("creating embedding service: %w", err)
		}

		model, err = classify.NewModel(classify.ModelConfig{
			APIKey:  apiKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.ChatModel,
		})
		if err != nil {
			store.Close()
			return fmt.Errorf("creating classifier: %w", err)
		}
	} else {
		logger.Info("OPENAI_API_KEY not set; semantic features disabled")
	}

	index := services.NewSemanticIndex(store, embedder)
	library := services.NewLibraryService(store, files)

	detectorCfg := services.DefaultDetectorConfig()
	detectorCfg.EmbeddingDistanceMax = cfg.Detector.EmbeddingDistanceMax
	detectorCfg.EditSimilarityMin = cfg.Detector.EditSimilarityMin
	detector := services.NewDuplicateDetector(store, library, embedder, detectorCfg)

	processor := services.NewProcessor(
		store,
		files,
		extract.NewPDF(),
		extract.NewPlain(),
		model,
		classify.NewHeuristic(),
		index,
	)

	cli.SetServices(processor, index, detector, library, func() {
		if embedder != nil {
			if err := embedder.Close(); err != nil {
				logger.Warn("closing embedding service: %v", err)
			}
		}
		if err := store.Close(); err != nil {
			logger.Warn("closing database: %v", err)
		}
	})
	cli.SetInboxDir(cfg.Library.InboxDir)

	return nil
}
