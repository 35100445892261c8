package services

import (
	"context"
	"errors"
	"slices"
	"sync"

	"forum-harvest/collector"
	"forum-harvest/dto"
	"forum-harvest/logger"
	"forum-harvest/models"
)

var (
	ErrRunInProgress    = errors.New("a collection run is already in progress")
	ErrUnknownCollector = errors.New("unknown collector")
)

// RunService owns collector runs for a process. Only one run executes at a time, so two
// collectors never interleave reads and writes on the same sheet.
type RunService struct {
	collectors map[string]collector.Collector
	// ctx bounds background runs; cancelling it is how shutdown stops them.
	ctx context.Context

	running sync.Mutex
	wg      sync.WaitGroup

	mu     sync.RWMutex
	active string
	last   map[string]models.RunResult
}

// NewRunService registers collectors. Runs launched with Start live as long as ctx.
func NewRunService(ctx context.Context, collectors ...collector.Collector) *RunService {
	s := &RunService{
		ctx:        ctx,
		collectors: make(map[string]collector.Collector, len(collectors)),
		last:       map[string]models.RunResult{},
	}
	for _, c := range collectors {
		s.collectors[c.Name()] = c
	}
	return s
}

// Names returns the registered collector names in sorted order.
func (s *RunService) Names() []string {
	names := make([]string, 0, len(s.collectors))
	for name := range s.collectors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Run executes the named collector and waits for it.
func (s *RunService) Run(ctx context.Context, name string) (models.RunResult, error) {
	c, err := s.acquire(name)
	if err != nil {
		return models.RunResult{}, err
	}
	defer s.release()
	return s.execute(ctx, c)
}

// Start launches the named collector in the background under the service context,
// not the caller's, so an HTTP request returning does not end the run. Wait blocks
// until it is done.
func (s *RunService) Start(name string) error {
	c, err := s.acquire(name)
	if err != nil {
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release()
		s.execute(s.ctx, c)
	}()
	return nil
}

// Wait blocks until background runs started with Start have finished.
func (s *RunService) Wait() {
	s.wg.Wait()
}

func (s *RunService) acquire(name string) (collector.Collector, error) {
	c, ok := s.collectors[name]
	if !ok {
		return nil, ErrUnknownCollector
	}
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	s.mu.Lock()
	s.active = name
	s.mu.Unlock()
	return c, nil
}

func (s *RunService) release() {
	s.mu.Lock()
	s.active = ""
	s.mu.Unlock()
	s.running.Unlock()
}

func (s *RunService) execute(ctx context.Context, c collector.Collector) (models.RunResult, error) {
	res, err := c.Run(ctx)
	if res.Collector == "" {
		res.Collector = c.Name()
		res.Err = err
	}
	s.mu.Lock()
	s.last[c.Name()] = res
	s.mu.Unlock()
	if err != nil {
		logger.Log.Errorf("collector %s failed: %v", c.Name(), err)
	}
	return res, err
}

// Running returns the collector currently executing, or "".
func (s *RunService) Running() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// LastRuns returns the most recent result per collector, ordered by collector name.
func (s *RunService) LastRuns() dto.RunsResponseDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := dto.RunsResponseDTO{Collectors: s.Names(), Running: s.active, Runs: []dto.RunDTO{}}
	for _, name := range out.Collectors {
		if res, ok := s.last[name]; ok {
			out.Runs = append(out.Runs, dto.NewRunDTO(res))
		}
	}
	return out
}
