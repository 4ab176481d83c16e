// Package batch runs extraction tasks over many files with bounded
// parallelism, a bounded submission queue and a per-task deadline.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/DeusData/pathminer/internal/extract"
	"github.com/DeusData/pathminer/internal/obfuscate"
)

// DefaultBacklog is the submission queue capacity when none is set.
const DefaultBacklog = 8

// ErrTaskTimeout is reported for a task abandoned at its deadline.
var ErrTaskTimeout = errors.New("task timed out")

// Runner extracts one file.
type Runner interface {
	Run(ctx context.Context, path string) (*extract.Result, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, path string) (*extract.Result, error)

func (f RunnerFunc) Run(ctx context.Context, path string) (*extract.Result, error) {
	return f(ctx, path)
}

// NameSink persists the rename table of an emitted file.
type NameSink interface {
	SaveNames(ctx context.Context, path string, names obfuscate.NameMap) error
}

// Scheduler fans files out to a fixed pool of workers.
type Scheduler struct {
	Runner Runner
	// Out receives each emitted block followed by a newline, one block per
	// write.
	Out io.Writer
	// Names, when set, receives the name map of every emitted file.
	Names    NameSink
	Reporter Reporter
	Metrics  *Metrics

	Workers int
	Backlog int
	// Timeout is the per-task deadline. Zero disables it.
	Timeout time.Duration

	mu sync.Mutex
}

// Summary counts how a run's tasks ended.
type Summary struct {
	OK       int
	Failed   int
	Skipped  int
	TimedOut int
	Elapsed  time.Duration
}

// Total returns the number of finished tasks.
func (s Summary) Total() int { return s.OK + s.Failed + s.Skipped + s.TimedOut }

type counters struct {
	ok, failed, skipped, timedOut atomic.Int64
}

func (c *counters) add(status string) {
	switch status {
	case StatusOK:
		c.ok.Add(1)
	case StatusSkipped:
		c.skipped.Add(1)
	case StatusTimedOut:
		c.timedOut.Add(1)
	default:
		c.failed.Add(1)
	}
}

func (c *counters) summary(elapsed time.Duration) Summary {
	return Summary{
		OK:       int(c.ok.Load()),
		Failed:   int(c.failed.Load()),
		Skipped:  int(c.skipped.Load()),
		TimedOut: int(c.timedOut.Load()),
		Elapsed:  elapsed,
	}
}

// Run processes paths and returns once every submitted task has finished,
// failed or timed out. Per-file problems go to the Reporter; the returned
// error is reserved for invalid configuration and parent cancellation.
func (s *Scheduler) Run(ctx context.Context, paths []string) (Summary, error) {
	if s.Workers < 1 {
		return Summary{}, fmt.Errorf("invalid worker count %d", s.Workers)
	}
	if s.Backlog < 0 {
		return Summary{}, fmt.Errorf("invalid backlog %d", s.Backlog)
	}
	if s.Runner == nil {
		return Summary{}, errors.New("nil runner")
	}
	if s.Out == nil {
		return Summary{}, errors.New("nil output sink")
	}
	if s.Reporter == nil {
		s.Reporter = SlogReporter{}
	}
	if s.Metrics == nil {
		s.Metrics = NewMetrics(prometheus.NewRegistry())
	}

	start := time.Now()
	slog.Info("batch.start", "files", len(paths), "workers", s.Workers, "backlog", s.Backlog, "timeout", s.Timeout)

	var c counters
	jobs := make(chan string, s.Backlog)
	g, gctx := errgroup.WithContext(ctx)
	for range s.Workers {
		g.Go(func() error {
			for path := range jobs {
				s.Metrics.QueueDepth.Dec()
				c.add(s.runOne(gctx, path))
			}
			return nil
		})
	}

	// The gauge counts a file from the moment its submit starts, so a worker
	// that receives it first never drives the gauge below zero.
submit:
	for _, path := range paths {
		s.Metrics.QueueDepth.Inc()
		select {
		case jobs <- path:
		case <-ctx.Done():
			s.Metrics.QueueDepth.Dec()
			break submit
		}
	}
	close(jobs)
	_ = g.Wait()

	sum := c.summary(time.Since(start))
	slog.Info("batch.done",
		"ok", sum.OK, "failed", sum.Failed, "skipped", sum.Skipped,
		"timed_out", sum.TimedOut, "elapsed", sum.Elapsed)
	if err := ctx.Err(); err != nil {
		return sum, err
	}
	return sum, nil
}

type outcome struct {
	res *extract.Result
	err error
}

// runOne runs a task in its own goroutine and waits for it or its deadline,
// whichever comes first. A task past its deadline is abandoned; its result
// channel is buffered so the goroutine can still finish and exit.
func (s *Scheduler) runOne(ctx context.Context, path string) string {
	start := time.Now()
	tctx, cancel := s.taskContext(ctx)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		res, err := s.Runner.Run(tctx, path)
		done <- outcome{res: res, err: err}
	}()

	var o outcome
	select {
	case o = <-done:
	case <-tctx.Done():
		elapsed := time.Since(start)
		err := tctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s", ErrTaskTimeout, elapsed.Round(time.Millisecond))
		}
		return s.fail(path, err, elapsed)
	}

	elapsed := time.Since(start)
	if o.err != nil {
		return s.fail(path, o.err, elapsed)
	}
	s.Metrics.Duration.Observe(elapsed.Seconds())
	s.Metrics.Tasks.WithLabelValues(StatusOK).Inc()
	if o.res == nil || o.res.Output == "" {
		slog.Debug("extract.empty", "path", path)
		return StatusOK
	}
	s.emit(ctx, path, o.res)
	return StatusOK
}

func (s *Scheduler) taskContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func (s *Scheduler) fail(path string, err error, elapsed time.Duration) string {
	kind, status := classify(err)
	s.Metrics.Duration.Observe(elapsed.Seconds())
	s.Metrics.Tasks.WithLabelValues(status).Inc()
	s.Reporter.Report(Diagnostic{Path: path, Kind: kind, Err: err, Elapsed: elapsed})
	return status
}

// emit writes the block and persists its names under one lock acquisition.
func (s *Scheduler) emit(ctx context.Context, path string, res *extract.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.Out, res.Output+"\n"); err != nil {
		s.Reporter.Report(Diagnostic{Path: path, Kind: KindFailed, Err: fmt.Errorf("write output: %w", err)})
		return
	}
	s.Metrics.Features.Add(float64(len(res.Features)))
	if s.Names != nil && res.Names != nil {
		if err := s.Names.SaveNames(ctx, path, res.Names); err != nil {
			s.Reporter.Report(Diagnostic{Path: path, Kind: KindNameStore, Err: err})
		}
	}
}
