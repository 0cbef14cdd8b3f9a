package world

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// GenerateParams carries whatever tunables a Generator needs beyond pos and
// seed; the core never inspects its contents (§1: noise/biome internals are
// an external collaborator).
type GenerateParams any

// Generator produces the contents of a region. Implementations MUST be pure
// for a fixed seed and pos (§4.4).
type Generator interface {
	Generate(pos RegionPos, seed int64, params GenerateParams) (*PalettedContainer[BlockStateId], *PalettedContainer[BiomeId])
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(pos RegionPos, seed int64, params GenerateParams) (*PalettedContainer[BlockStateId], *PalettedContainer[BiomeId])

// Generate calls f.
func (f GeneratorFunc) Generate(pos RegionPos, seed int64, params GenerateParams) (*PalettedContainer[BlockStateId], *PalettedContainer[BiomeId]) {
	return f(pos, seed, params)
}

type generationTask struct {
	pos    RegionPos
	seed   int64
	params GenerateParams
}

type generationResult struct {
	pos    RegionPos
	blocks *PalettedContainer[BlockStateId]
	biomes *PalettedContainer[BiomeId]
}

// GenerationScheduler runs a fixed-size pool of workers executing Generate
// tasks off the tick's hot path, following the reference implementation's
// generatorWorker/runGenerationTask/drainGenerationQueue shape but managed
// through an errgroup rather than a hand-rolled WaitGroup/channel-close
// dance.
type GenerationScheduler struct {
	log       *slog.Logger
	generator Generator

	tasks   chan generationTask
	results chan generationResult

	group  *errgroup.Group
	cancel context.CancelFunc

	saturationMu   sync.Mutex
	lastSaturation time.Time
}

// NewGenerationScheduler starts workers workers pulling from a queue of the
// given size, executing tasks via gen.
func NewGenerationScheduler(log *slog.Logger, gen Generator, workers, queueSize int) *GenerationScheduler {
	if log == nil {
		log = slog.Default()
	}
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 256
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	s := &GenerationScheduler{
		log:       log,
		generator: gen,
		tasks:     make(chan generationTask, queueSize),
		results:   make(chan generationResult, queueSize),
		group:     group,
		cancel:    cancel,
	}
	for i := 0; i < workers; i++ {
		group.Go(func() error {
			s.worker(ctx)
			return nil
		})
	}
	return s
}

func (s *GenerationScheduler) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-s.tasks:
			if !ok {
				return
			}
			s.runTask(task)
		}
	}
}

func (s *GenerationScheduler) runTask(task generationTask) {
	result := generationResult{pos: task.pos}
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("region generation panicked", "pos", task.pos, "recovered", r)
			}
		}()
		result.blocks, result.biomes = s.generator.Generate(task.pos, task.seed, task.params)
	}()

	select {
	case s.results <- result:
	default:
		s.log.Warn("region generation result dropped: results channel full", "pos", task.pos)
	}
}

// Submit enqueues a generation task for pos and transitions r to
// RegionGenerating. Callers MUST bound how many submissions happen per
// tick (the viewer ticket-add bound fills this role).
func (s *GenerationScheduler) Submit(r *Region, seed int64, params GenerateParams) {
	if r.Status != RegionLoading {
		return
	}
	r.Status = RegionGenerating
	select {
	case s.tasks <- generationTask{pos: r.Pos, seed: seed, params: params}:
	default:
		s.logSaturation(r.Pos)
		// Still accept the region as claimed and block until a worker
		// takes a task, so the submission is not dropped. The task queue
		// holds at most queueSize tasks and does not grow beyond that.
		s.tasks <- generationTask{pos: r.Pos, seed: seed, params: params}
	}
}

func (s *GenerationScheduler) logSaturation(pos RegionPos) {
	s.saturationMu.Lock()
	defer s.saturationMu.Unlock()
	if time.Since(s.lastSaturation) < time.Minute {
		return
	}
	s.lastSaturation = time.Now()
	s.log.Warn("generation queue saturated, submissions are blocking", "sample", pos.LogKey())
}

// Drain applies up to limit ready results to their owning regions (via
// index), transitioning each to RegionLoaded. A result whose region no
// longer exists in index is discarded (§4.4, §7).
func (s *GenerationScheduler) Drain(index *RegionIndex, limit int) {
	for i := 0; i < limit; i++ {
		select {
		case res := <-s.results:
			r, ok := index.Get(res.pos)
			if !ok || res.blocks == nil {
				continue
			}
			r.Blocks = res.blocks
			r.Biomes = res.biomes
			r.Status = RegionLoaded
		default:
			return
		}
	}
}

// Close stops all workers. Pending tasks are abandoned.
func (s *GenerationScheduler) Close() {
	s.cancel()
	close(s.tasks)
	_ = s.group.Wait()
}
