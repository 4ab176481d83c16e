package batch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DeusData/pathminer/internal/extract"
	"github.com/DeusData/pathminer/internal/obfuscate"
	"github.com/DeusData/pathminer/internal/parser"
)

// Kind classifies a per-file diagnostic.
type Kind string

const (
	KindUnparsable    Kind = "source_unparsable"
	KindPoolExhausted Kind = "obfuscation_pool_exhausted"
	KindIO            Kind = "io_failure"
	KindUnsupported   Kind = "unsupported_language"
	KindTimeout       Kind = "task_timeout"
	KindCancelled     Kind = "cancelled"
	KindNameStore     Kind = "name_store"
	KindFailed        Kind = "failed"
)

// Diagnostic describes a file that produced no output, or whose output
// could not be fully persisted.
type Diagnostic struct {
	Path    string
	Kind    Kind
	Err     error
	Elapsed time.Duration
}

// Reporter receives diagnostics. Implementations must be safe for
// concurrent use.
type Reporter interface {
	Report(d Diagnostic)
}

// SlogReporter logs diagnostics through the default slog logger.
type SlogReporter struct{}

func (SlogReporter) Report(d Diagnostic) {
	slog.Warn("extract.skip",
		"path", d.Path,
		"reason", string(d.Kind),
		"err", d.Err,
		"elapsed", d.Elapsed,
	)
}

// classify maps a task error to a diagnostic kind and a summary status.
func classify(err error) (Kind, string) {
	switch {
	case errors.Is(err, parser.ErrUnparsable):
		return KindUnparsable, StatusSkipped
	case errors.Is(err, obfuscate.ErrPoolExhausted):
		return KindPoolExhausted, StatusSkipped
	case errors.Is(err, extract.ErrUnsupported):
		return KindUnsupported, StatusSkipped
	case errors.Is(err, extract.ErrIO):
		return KindIO, StatusFailed
	case errors.Is(err, ErrTaskTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout, StatusTimedOut
	case errors.Is(err, context.Canceled):
		return KindCancelled, StatusFailed
	}
	return KindFailed, StatusFailed
}
