// Package pipeline wires the change-to-review flow: raw notifications are
// debounced, each settled event is diffed against the previously seen
// content, scored, and delivered on a bounded channel for the interactive
// loop to consume.
package pipeline

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/driftwatch/internal/core/change"
	"github.com/colonyops/driftwatch/internal/core/content"
	"github.com/colonyops/driftwatch/internal/core/debounce"
	"github.com/colonyops/driftwatch/internal/core/diff"
	"github.com/colonyops/driftwatch/internal/core/logging"
	"github.com/colonyops/driftwatch/internal/core/scoring"
	"github.com/colonyops/driftwatch/internal/core/watch"
)

const (
	// DefaultWorkers bounds concurrent diff computation.
	DefaultWorkers = 4
	// DefaultBuffer is the capacity of the finalized item channel.
	DefaultBuffer = 64
	// previewLimit bounds the content preview attached to created files.
	previewLimit = 240
)

// Item is a finalized change: the scored event plus its diff.
type Item struct {
	Event change.Event
	Diff  *diff.Result
}

// Options configure a Pipeline. Zero values fall back to the defaults.
type Options struct {
	Workers int
	Buffer  int
}

// Pipeline owns the debouncer and the diff workers. Events for one path are
// always handled by the same worker, preserving per-path delivery order;
// there is no total order across paths.
type Pipeline struct {
	debouncer *debounce.Debouncer
	contents  *content.Store
	engine    *diff.Engine
	scorer    *scoring.Scorer
	origin    *scoring.OriginDetector
	log       zerolog.Logger

	workers int
	out     chan Item

	mu          sync.Mutex
	baseline    map[string]content.Version
	batchCounts map[string]int
	curBatch    string
	prevBatch   string
}

// New assembles a pipeline from its stages.
func New(deb *debounce.Debouncer, contents *content.Store, engine *diff.Engine, scorer *scoring.Scorer, origin *scoring.OriginDetector, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	return &Pipeline{
		debouncer:   deb,
		contents:    contents,
		engine:      engine,
		scorer:      scorer,
		origin:      origin,
		log:         logging.Component("pipeline"),
		workers:     opts.Workers,
		out:         make(chan Item, opts.Buffer),
		baseline:    make(map[string]content.Version),
		batchCounts: make(map[string]int),
	}
}

// Items returns the channel of finalized changes. It is closed after Run
// returns.
func (p *Pipeline) Items() <-chan Item {
	return p.out
}

// Seed records the current content of a path as its baseline so the first
// observed change diffs against it rather than against emptiness.
func (p *Pipeline) Seed(path string) {
	v, err := p.contents.Get(path)
	if err != nil {
		return
	}
	p.mu.Lock()
	p.baseline[path] = v
	p.mu.Unlock()
}

// Run consumes raw events until ctx is canceled or the raw channel closes,
// then drains and closes the item channel. It blocks the calling goroutine.
func (p *Pipeline) Run(ctx context.Context, raw <-chan watch.RawEvent) {
	lanes := make([]chan change.Event, p.workers)
	var wg sync.WaitGroup
	for i := range lanes {
		lanes[i] = make(chan change.Event, 16)
		wg.Add(1)
		go func(lane <-chan change.Event) {
			defer wg.Done()
			for ev := range lane {
				p.process(ev)
			}
		}(lanes[i])
	}

	// Dispatcher: fan settled events out to lanes by path hash so one path
	// never has two in-flight events.
	var dispatch sync.WaitGroup
	dispatch.Add(1)
	go func() {
		defer dispatch.Done()
		for ev := range p.debouncer.Events() {
			lanes[laneFor(ev.Path, p.workers)] <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			p.shutdown(lanes, &wg, &dispatch)
			return
		case rawEv, ok := <-raw:
			if !ok {
				p.shutdown(lanes, &wg, &dispatch)
				return
			}
			p.debouncer.Notify(rawEv.Path, rawEv.Kind)
		}
	}
}

func (p *Pipeline) shutdown(lanes []chan change.Event, workers, dispatch *sync.WaitGroup) {
	p.debouncer.Close()
	dispatch.Wait()
	for _, lane := range lanes {
		close(lane)
	}
	workers.Wait()
	close(p.out)
}

// process turns one settled event into a finalized item.
func (p *Pipeline) process(ev change.Event) {
	p.mu.Lock()
	batchSize := p.bumpBatch(ev.BatchID)
	old := p.baseline[ev.Path]
	p.mu.Unlock()

	logCtx := logging.WithPath(logging.WithBatchID(context.Background(), ev.BatchID), ev.Path)

	ev.Origin, ev.Tool = p.origin.Detect(ev.Timestamp, batchSize)

	var (
		current content.Version
		result  *diff.Result
	)
	switch ev.Kind {
	case change.KindDeleted:
		p.contents.Forget(ev.Path)
		result = p.engine.Diff(old.Fingerprint, diff.Fingerprint{}, old.Data, nil)
	default:
		v, err := p.contents.Get(ev.Path)
		if err != nil {
			// Unreadable content never blocks emission.
			if !errors.Is(err, content.ErrNotFound) {
				p.log.Warn().Ctx(logCtx).Err(err).Msg("content read failed")
			}
			ev.Note = "content could not be read at settle time"
			result = p.engine.Unavailable(diff.ReasonIOFailure)
			break
		}
		current = v
		result = p.engine.Diff(old.Fingerprint, v.Fingerprint, old.Data, v.Data)
	}

	if result.Available() {
		conf := p.scorer.Score(ev.Path, result)
		ev.Confidence = &conf
	}
	if ev.Kind == change.KindCreated {
		ev.Preview = preview(current.Data)
	}

	p.mu.Lock()
	if ev.Kind == change.KindDeleted {
		delete(p.baseline, ev.Path)
	} else if current.Data != nil || !current.Fingerprint.IsZero() {
		p.baseline[ev.Path] = current
	}
	p.mu.Unlock()

	p.log.Debug().Ctx(logCtx).Str("kind", string(ev.Kind)).Msg("change finalized")
	p.out <- Item{Event: ev, Diff: result}
}

// bumpBatch increments the count for a batch and returns it. Batch
// membership is monotonic: once a newer batch appears, an older batch can
// only receive stragglers from the immediately preceding one still in
// flight on another lane, so only the current and previous counts are
// retained. Caller holds p.mu.
func (p *Pipeline) bumpBatch(id string) int {
	if id != p.curBatch && id != p.prevBatch {
		delete(p.batchCounts, p.prevBatch)
		p.prevBatch = p.curBatch
		p.curBatch = id
	}
	p.batchCounts[id]++
	return p.batchCounts[id]
}

func laneFor(path string, workers int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(path))
	return int(h.Sum32() % uint32(workers))
}

func preview(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if len(data) > previewLimit {
		data = data[:previewLimit]
	}
	return string(data)
}
