package cmd

import (
	"fmt"

	"github.com/codeqa/engine/internal/config"
	"github.com/codeqa/engine/internal/embed"
	"github.com/codeqa/engine/internal/indexer"
	"github.com/codeqa/engine/internal/mcpserver"
	"github.com/codeqa/engine/internal/retriever"
	"github.com/codeqa/engine/internal/store"
	"github.com/codeqa/engine/internal/watcher"
)

// newEngine wires one shared set of collaborators — store, indexer,
// retriever, watcher — the way every subcommand needs them, honoring
// --base-dir and --config. The returned cleanup releases the embedder.
func newEngine() (*mcpserver.Engine, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if baseDir != "" {
		cfg.Store.BaseDir = baseDir
	}

	st, err := store.New(cfg.Store.BaseDir, cfg.Store.CacheSize)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}

	embedder := embed.NewStaticEmbedder(cfg.Embed.Dimensions)
	idx := indexer.New(st, &cfg.Extractor).WithEmbedder(embedder)
	ret := retriever.New(st, &cfg.Retriever, embedder)
	watchMgr := watcher.NewManager(idx, watcher.DefaultOptions())

	engine := mcpserver.NewEngine(st, idx, ret, watchMgr, cfg)

	cleanup := func() {
		_ = embedder.Close()
	}
	return engine, cleanup, nil
}
