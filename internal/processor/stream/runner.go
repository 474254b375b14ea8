// Package stream drives the engine from a CSV operation stream and renders
// the final account report.
package stream

import (
	"errors"
	"io"
	"log/slog"

	"github.com/paystream-engine/internal/domain/shared"
	"github.com/paystream-engine/internal/engine"
	"github.com/paystream-engine/internal/platform/csvfile"
)

// Runner applies every record of an operation stream to the engine. One
// rejected or undecodable record never aborts the rest of the stream; only
// unreadable input framing is fatal.
type Runner struct {
	engine        *engine.Engine
	retryAttempts int
	logger        *slog.Logger
}

// NewRunner creates a stream runner. retryAttempts bounds re-issuing a
// deposit that lost the account-creation race.
func NewRunner(eng *engine.Engine, retryAttempts int, logger *slog.Logger) *Runner {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &Runner{
		engine:        eng,
		retryAttempts: retryAttempts,
		logger:        logger,
	}
}

// Run reads operations from in until EOF, applies them, then writes the
// account report to out.
func (r *Runner) Run(in io.Reader, out io.Writer) error {
	reader, err := csvfile.NewReader(in)
	if err != nil {
		return err
	}

	var applied, rejected, skipped int
	for {
		op, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var recErr csvfile.RecordError
			if errors.As(err, &recErr) {
				skipped++
				r.logger.Warn("Skipping undecodable record", "error", err)
				continue
			}
			return err
		}

		if err := r.apply(op); err != nil {
			rejected++
			r.logger.Warn("Operation rejected",
				"type", op.Type,
				"client", op.Client,
				"tx", op.Tx,
				"error", err,
			)
			continue
		}
		applied++
	}

	r.logger.Info("Stream processed",
		"applied", applied,
		"rejected", rejected,
		"skipped", skipped,
	)

	return csvfile.NewWriter(r.logger).WriteReport(out, r.engine.Snapshots())
}

func (r *Runner) apply(op shared.Operation) error {
	var err error
	for attempt := 0; attempt < r.retryAttempts; attempt++ {
		err = r.engine.Apply(op)

		var tryAgain engine.TryAgainError
		if !errors.As(err, &tryAgain) {
			return err
		}
	}
	return err
}
