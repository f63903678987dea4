// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package intake

import (
	"context"
	"log/slog"

	"github.com/poiesic/intake/agents"
	"github.com/poiesic/intake/ai"
	"github.com/poiesic/intake/ai/openai"
	"github.com/poiesic/intake/classify"
	"github.com/poiesic/intake/core"
	"github.com/poiesic/intake/pipeline"
	"github.com/poiesic/intake/store"
	"github.com/poiesic/intake/store/badger"
)

// System wires storage, the AI provider, the classifier, the agent registry,
// and the pipeline into one ready-to-use document processor.
type System struct {
	backend  *badger.Backend
	memory   store.MemoryRepository
	provider ai.Provider
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig   *ai.Config
	provider   ai.Provider
	maxEntries int
	poolSize   int
	inMemory   bool
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(cfg *ai.Config) SystemOption {
	return func(o *systemOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider injects a pre-built AI provider, bypassing the default
// OpenAI-compatible one. Useful for tests with the mock provider.
func WithProvider(provider ai.Provider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithMaxEntries caps how many entries the memory store keeps.
// Zero means unbounded.
func WithMaxEntries(n int) SystemOption {
	return func(o *systemOptions) {
		o.maxEntries = n
	}
}

// WithPoolSize sets the batch worker pool size.
func WithPoolSize(n int) SystemOption {
	return func(o *systemOptions) {
		o.poolSize = n
	}
}

// WithInMemoryStorage uses an in-memory store instead of a directory on disk.
func WithInMemoryStorage() SystemOption {
	return func(o *systemOptions) {
		o.inMemory = true
	}
}

// NewSystem creates a complete processing system backed by storage at
// filePath (ignored with WithInMemoryStorage).
func NewSystem(filePath string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	var repoOpts []badger.Option
	if options.maxEntries > 0 {
		repoOpts = append(repoOpts, badger.WithMaxEntries(options.maxEntries))
	}
	memory, err := badger.NewMemoryRepository(backend, repoOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			memory.Close()
			backend.Close()
			return nil, err
		}
	}

	classifier, err := classify.NewClassifier(provider.IntentClassifier())
	if err != nil {
		provider.Close()
		memory.Close()
		backend.Close()
		return nil, err
	}

	textAgent := agents.NewTextAgent()
	registry, err := agents.NewRegistry(textAgent)
	if err != nil {
		provider.Close()
		memory.Close()
		backend.Close()
		return nil, err
	}
	emailAgent, err := agents.NewEmailAgent(provider.DocumentAnalyzer())
	if err != nil {
		provider.Close()
		memory.Close()
		backend.Close()
		return nil, err
	}
	registry.Register(core.FormatEmail, emailAgent)
	registry.Register(core.FormatJSON, agents.NewJSONAgent())
	registry.Register(core.FormatPDF, agents.NewPDFAgent())
	registry.Register(core.FormatText, textAgent)

	var pipelineOpts []pipeline.Option
	if options.poolSize > 0 {
		pipelineOpts = append(pipelineOpts, pipeline.WithPoolSize(options.poolSize))
	}
	pipe, err := pipeline.NewPipeline(classifier, registry, memory, pipelineOpts...)
	if err != nil {
		provider.Close()
		memory.Close()
		backend.Close()
		return nil, err
	}

	return &System{
		backend:  backend,
		memory:   memory,
		provider: provider,
		pipeline: pipe,
		logger:   slog.Default(),
	}, nil
}

// Process runs a single document through the pipeline.
func (s *System) Process(ctx context.Context, doc *core.Document) (*core.Result, error) {
	return s.pipeline.Process(ctx, doc)
}

// ProcessBatch runs documents concurrently, preserving input order.
func (s *System) ProcessBatch(ctx context.Context, docs []*core.Document) ([]*core.Result, error) {
	return s.pipeline.ProcessBatch(ctx, docs)
}

// Memory exposes the shared memory store.
func (s *System) Memory() store.MemoryRepository {
	return s.memory
}

// Stats returns per-agent processing statistics.
func (s *System) Stats() map[string]pipeline.AgentStatSnapshot {
	return s.pipeline.Stats()
}

// Close releases the pipeline, provider, and storage.
func (s *System) Close() error {
	s.pipeline.Release()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.memory.Close(); err != nil {
		s.logger.Error("error closing memory repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
