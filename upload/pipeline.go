package upload

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// DefaultParallel is the number of parts in flight per batch.
const DefaultParallel = 5

// State enumerates the pipeline lifecycle.
type State int

// Pipeline states. Aborted is reachable from every non-terminal state.
const (
	StateNotStarted State = iota
	StateInProgress
	StateCompleting
	StateDone
	StateAborted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateInProgress:
		return "in-progress"
	case StateCompleting:
		return "completing"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// ProgressFunc receives the count of completed parts after each batch.
// completed/total is an approximation of bytes moved because only the final
// part can be shorter than the fixed part size.
type ProgressFunc func(completed, total int)

// Pipeline drives one file through the multipart protocol: chunk, upload in
// fixed-width batches, complete, then hand off to ingestion. Parts within a
// batch run concurrently; the next batch starts only when every part of the
// previous one has finished. The first part failure aborts the session.
type Pipeline struct {
	gw       Gateway
	partSize int64
	parallel int
	progress ProgressFunc

	mu        sync.Mutex
	state     State
	session   Session
	parts     []PartDescriptor
	total     int
	completed int
}

// NewPipeline builds a pipeline over the given gateway. Zero partSize or
// parallel fall back to the defaults.
func NewPipeline(gw Gateway, partSize int64, parallel int, progress ProgressFunc) *Pipeline {
	if partSize <= 0 {
		partSize = DefaultPartSize
	}
	if parallel <= 0 {
		parallel = DefaultParallel
	}
	return &Pipeline{
		gw:       gw,
		partSize: partSize,
		parallel: parallel,
		progress: progress,
		state:    StateNotStarted,
	}
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Session returns the gateway session opened by Start.
func (p *Pipeline) Session() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// Progress returns the fraction of parts completed so far. It only ever
// grows, and reaches exactly 1 when the last batch lands.
func (p *Pipeline) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total == 0 {
		return 0
	}
	return float64(p.completed) / float64(p.total)
}

// Start opens the multipart session.
func (p *Pipeline) Start(ctx context.Context, filename string) error {
	p.mu.Lock()
	if p.state != StateNotStarted {
		p.mu.Unlock()
		return &InitError{Err: fmt.Errorf("start called in state %s", p.state)}
	}
	p.mu.Unlock()

	session, err := p.gw.Start(ctx, filename)
	if err != nil {
		return &InitError{Err: err}
	}

	p.mu.Lock()
	p.session = session
	p.state = StateInProgress
	p.mu.Unlock()
	return nil
}

// UploadFrom chunks the source and uploads every part in batches. On any
// part failure the session is aborted and a PartError for the first failing
// part is returned.
func (p *Pipeline) UploadFrom(ctx context.Context, src io.ReaderAt, size int64) error {
	p.mu.Lock()
	if p.state != StateInProgress {
		state := p.state
		p.mu.Unlock()
		return &PartError{Err: fmt.Errorf("upload called in state %s", state)}
	}
	session := p.session
	p.mu.Unlock()

	parts, err := SplitParts(size, p.partSize)
	if err != nil {
		return &PartError{Err: err}
	}

	p.mu.Lock()
	p.total = len(parts)
	p.mu.Unlock()

	for start := 0; start < len(parts); start += p.parallel {
		end := start + p.parallel
		if end > len(parts) {
			end = len(parts)
		}
		batch := parts[start:end]

		descriptors := make([]PartDescriptor, len(batch))
		errs := make([]error, len(batch))
		var wg sync.WaitGroup
		for i, part := range batch {
			wg.Add(1)
			go func(i int, part Part) {
				defer wg.Done()
				body := io.NewSectionReader(src, part.Offset, part.Size)
				pd, err := p.gw.UploadPart(ctx, session.UploadID, session.Key, part.Number, part.Size, body)
				descriptors[i], errs[i] = pd, err
			}(i, part)
		}
		wg.Wait()

		for i, err := range errs {
			if err == nil {
				continue
			}
			partErr := &PartError{PartNumber: batch[i].Number, Err: err}
			if abortErr := p.Abort(ctx); abortErr != nil {
				zap.S().Errorw("failed to abort session after part failure",
					"uploadId", session.UploadID,
					"error", abortErr)
			}
			return partErr
		}

		p.mu.Lock()
		p.parts = append(p.parts, descriptors...)
		p.completed += len(batch)
		completed, total := p.completed, p.total
		p.mu.Unlock()
		if p.progress != nil {
			p.progress(completed, total)
		}
	}
	return nil
}

// Complete finalizes the session with the accumulated part list and returns
// the finalized object key. Completion is the only point the object becomes
// durable; a second Complete is an error.
func (p *Pipeline) Complete(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.state != StateInProgress {
		state := p.state
		p.mu.Unlock()
		return "", &CompleteError{Err: fmt.Errorf("complete called in state %s", state)}
	}
	p.state = StateCompleting
	session := p.session
	parts := make([]PartDescriptor, len(p.parts))
	copy(parts, p.parts)
	p.mu.Unlock()

	key, err := p.gw.Complete(ctx, session.UploadID, session.Key, parts)
	if err != nil {
		p.mu.Lock()
		// session stays open; the caller decides between abort and retry
		p.state = StateInProgress
		p.mu.Unlock()
		return "", &CompleteError{Err: err}
	}

	p.mu.Lock()
	p.state = StateDone
	p.mu.Unlock()
	return key, nil
}

// Abort releases the session. It is callable from any non-terminal state and
// repeated aborts are not an error; aborting a completed upload is.
func (p *Pipeline) Abort(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case StateAborted:
		p.mu.Unlock()
		return nil
	case StateDone:
		p.mu.Unlock()
		return fmt.Errorf("cannot abort a completed upload")
	}
	session := p.session
	started := p.state != StateNotStarted
	p.state = StateAborted
	p.mu.Unlock()

	if !started {
		return nil
	}
	return p.gw.Abort(ctx, session.UploadID, session.Key)
}

// Run executes the whole pipeline for one file: start, upload, complete.
// The returned key identifies the finalized object.
func (p *Pipeline) Run(ctx context.Context, filename string, src io.ReaderAt, size int64) (string, error) {
	if err := p.Start(ctx, filename); err != nil {
		return "", err
	}
	if err := p.UploadFrom(ctx, src, size); err != nil {
		return "", err
	}
	return p.Complete(ctx)
}
