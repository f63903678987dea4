package pipeline

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/intake/agents"
	"github.com/poiesic/intake/classify"
	"github.com/poiesic/intake/core"
	"github.com/poiesic/intake/store"
)

// Pipeline orchestrates document processing: classification, routing to a
// format agent, and recording every stage in shared memory.
type Pipeline struct {
	classifier *classify.Classifier
	registry   *agents.Registry
	memory     store.MemoryRepository
	batchPool  *ants.Pool
	stats      *AgentStats
	logger     *slog.Logger

	retryAttempts int
	retryDelay    time.Duration

	progressWriter   io.Writer
	progressInterval int
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for batch processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.batchPool != nil {
			p.batchPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.batchPool = pool
		return nil
	}
}

// WithRetry makes agent extraction retry transient failures with
// exponential backoff. Default is a single attempt.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.retryAttempts = maxAttempts
		p.retryDelay = baseDelay
		return nil
	}
}

// WithProgress reports batch progress to writer every interval documents.
func WithProgress(writer io.Writer, interval int) Option {
	return func(p *Pipeline) error {
		if interval < 1 {
			interval = 1
		}
		p.progressWriter = writer
		p.progressInterval = interval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a processing pipeline.
func NewPipeline(
	classifier *classify.Classifier,
	registry *agents.Registry,
	memory store.MemoryRepository,
	opts ...Option,
) (*Pipeline, error) {
	if classifier == nil {
		return nil, ErrClassifierRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if memory == nil {
		return nil, ErrMemoryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		classifier:    classifier,
		registry:      registry,
		memory:        memory,
		batchPool:     pool,
		stats:         NewAgentStats(),
		logger:        slog.Default(),
		retryAttempts: 1,
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Process runs a single document through the pipeline.
//
// Recoverable problems (an agent that cannot extract, an invalid
// classification) produce a result with StatusError; a non-nil error is
// returned only for invalid input or storage failures.
func (p *Pipeline) Process(ctx context.Context, doc *core.Document) (*core.Result, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	id := core.NewProcessingID()
	start := time.Now()

	if err := p.memory.PutMetadata(ctx, id, documentMetadata(doc)); err != nil {
		return nil, err
	}

	classification := p.classifier.Classify(ctx, doc.Text())
	if err := core.ValidateClassification(&classification); err != nil {
		p.logger.Warn("classification invalid, recording fallback", "processing_id", id, "err", err)
		classification = classify.Fallback(err)
	}
	if err := p.memory.PutClassification(ctx, id, &classification); err != nil {
		return nil, err
	}

	agent := p.registry.Select(classification.Format)
	p.logger.Debug("routing document",
		"processing_id", id, "format", classification.Format,
		"intent", classification.Intent, "agent", agent.Name())

	extraction, err := p.extract(ctx, agent, doc, classification)
	if err != nil {
		p.stats.RecordError(agent.Name())
		p.logger.Error("agent extraction failed",
			"processing_id", id, "agent", agent.Name(), "err", err)
		return &core.Result{
			ProcessingID:   id,
			Status:         core.StatusError,
			Classification: classification,
			Metadata:       map[string]any{"error": err.Error(), "agent": agent.Name()},
		}, nil
	}

	extraction.ProcessingID = id
	if err := p.memory.PutExtraction(ctx, id, extraction); err != nil {
		return nil, err
	}
	if extraction.ConversationID != "" {
		if err := p.memory.SetConversation(ctx, id, extraction.ConversationID); err != nil {
			return nil, err
		}
	}

	p.stats.Record(agent.Name(), extraction.Confidence)
	p.logger.Info("document processed",
		"processing_id", id, "agent", agent.Name(),
		"confidence", extraction.Confidence, "elapsed", time.Since(start))

	return &core.Result{
		ProcessingID:   id,
		Status:         core.StatusProcessed,
		Classification: classification,
		Extracted:      extraction.Fields,
		Metadata:       map[string]any{"agent": agent.Name()},
	}, nil
}

// ProcessBatch runs documents concurrently through the pipeline.
// Results are returned in input order. Per-document failures become
// StatusError results; the batch itself fails only if the pool is closed.
func (p *Pipeline) ProcessBatch(ctx context.Context, docs []*core.Document) ([]*core.Result, error) {
	results := make([]*core.Result, len(docs))
	var wg sync.WaitGroup

	var tracker *ProgressTracker
	if p.progressWriter != nil {
		tracker = NewProgressTracker(p.progressWriter, len(docs), p.progressInterval)
		tracker.Start()
	}

	for i, doc := range docs {
		wg.Add(1)
		err := p.batchPool.Submit(func() {
			defer wg.Done()
			results[i] = p.processOne(ctx, doc)
			if tracker != nil {
				tracker.Increment(1)
			}
		})
		if err != nil {
			wg.Done()
			return nil, err
		}
	}

	wg.Wait()
	if tracker != nil {
		tracker.Finish()
	}
	return results, nil
}

// extract runs the agent, retrying with backoff when configured.
func (p *Pipeline) extract(ctx context.Context, agent agents.Agent, doc *core.Document, classification core.Classification) (*core.Extraction, error) {
	if p.retryAttempts <= 1 {
		return agent.Process(ctx, doc, classification)
	}

	var extraction *core.Extraction
	err := RetryWithBackoff(ctx, func() error {
		var opErr error
		extraction, opErr = agent.Process(ctx, doc, classification)
		return opErr
	}, p.retryAttempts, p.retryDelay)
	return extraction, err
}

// processOne wraps Process so hard failures surface as error results
// instead of aborting the whole batch.
func (p *Pipeline) processOne(ctx context.Context, doc *core.Document) *core.Result {
	result, err := p.Process(ctx, doc)
	if err != nil {
		return &core.Result{
			ProcessingID: core.NewProcessingID(),
			Status:       core.StatusError,
			Classification: core.Classification{
				Format:    core.FormatUnknown,
				Intent:    core.IntentUnknown,
				Timestamp: time.Now().UTC(),
				Err:       err.Error(),
			},
			Metadata: map[string]any{"error": err.Error()},
		}
	}
	return result
}

// Stats returns per-agent processing statistics.
func (p *Pipeline) Stats() map[string]AgentStatSnapshot {
	return p.stats.Snapshot()
}

// Release releases the batch worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.batchPool != nil {
		p.batchPool.Release()
	}
}

// documentMetadata merges caller metadata with document provenance.
func documentMetadata(doc *core.Document) map[string]any {
	metadata := make(map[string]any, len(doc.Metadata)+2)
	for k, v := range doc.Metadata {
		metadata[k] = v
	}
	if doc.Source != "" {
		metadata["source"] = doc.Source
	}
	if doc.Filename != "" {
		metadata["filename"] = doc.Filename
	}
	return metadata
}
