package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/paystream-engine/internal/domain/account"
)

// Writer renders account snapshots as a CSV report. A total that overflows
// is logged as a warning and rendered as an empty cell rather than dropped
// silently or rounded.
type Writer struct {
	log *slog.Logger
}

// NewWriter creates a report writer logging warnings to the given logger.
func NewWriter(log *slog.Logger) *Writer {
	return &Writer{log: log}
}

// WriteReport writes the header and one row per snapshot, in the order
// given. Engine.Snapshots already sorts by client id.
func (w *Writer) WriteReport(out io.Writer, snapshots []account.Snapshot) error {
	cw := csv.NewWriter(out)

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	for _, snap := range snapshots {
		totalCell := ""
		total, err := snap.Total()
		if err != nil {
			w.log.Warn("account total not representable",
				"client", snap.Client,
				"available", snap.Available.String(),
				"held", snap.Held.String(),
				"error", err,
			)
		} else {
			totalCell = total.String()
		}

		row := []string{
			strconv.FormatUint(uint64(snap.Client), 10),
			snap.Available.String(),
			snap.Held.String(),
			totalCell,
			strconv.FormatBool(snap.Locked),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write report row for client %d: %w", snap.Client, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}
