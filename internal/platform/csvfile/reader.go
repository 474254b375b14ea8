// Package csvfile decodes operation streams from CSV input and renders
// account reports back to CSV.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paystream-engine/internal/domain/shared"
)

// RecordError reports a single undecodable record. It is non-fatal: the
// caller may log it and continue reading the stream.
type RecordError struct {
	Line int
	Err  error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record on line %d: %v", e.Line, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

// HeaderError reports an unusable header row. The stream cannot be decoded
// without one, so this is fatal.
type HeaderError struct {
	Err error
}

func (e HeaderError) Error() string {
	return fmt.Sprintf("header row: %v", e.Err)
}

func (e HeaderError) Unwrap() error { return e.Err }

var errMissingColumn = errors.New("missing required column")

// columns maps header names to field positions. Amount is optional since
// dispute/resolve/chargeback files may omit the column entirely.
type columns struct {
	typ    int
	client int
	tx     int
	amount int // -1 when absent
}

// Reader decodes header-mapped operation records. Fields are trimmed of
// surrounding whitespace. A malformed record yields a RecordError and the
// reader stays usable; I/O failures are returned as-is.
type Reader struct {
	csv  *csv.Reader
	cols columns
}

// NewReader reads the header row and returns a decoder for the remaining
// records. The header must name at least type, client and tx.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, HeaderError{Err: io.ErrUnexpectedEOF}
		}
		return nil, HeaderError{Err: err}
	}

	cols := columns{typ: -1, client: -1, tx: -1, amount: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "type":
			cols.typ = i
		case "client":
			cols.client = i
		case "tx":
			cols.tx = i
		case "amount":
			cols.amount = i
		}
	}
	for name, idx := range map[string]int{"type": cols.typ, "client": cols.client, "tx": cols.tx} {
		if idx < 0 {
			return nil, HeaderError{Err: fmt.Errorf("%w: %s", errMissingColumn, name)}
		}
	}

	return &Reader{csv: cr, cols: cols}, nil
}

// Read returns the next operation or io.EOF at end of stream. Decoding
// failures on a single record come back as RecordError.
func (r *Reader) Read() (shared.Operation, error) {
	record, err := r.csv.Read()
	if err != nil {
		if err == io.EOF {
			return shared.Operation{}, io.EOF
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return shared.Operation{}, RecordError{Line: parseErr.Line, Err: parseErr.Err}
		}
		return shared.Operation{}, err
	}
	line, _ := r.csv.FieldPos(0)

	field := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	client, err := strconv.ParseUint(field(r.cols.client), 10, 16)
	if err != nil {
		return shared.Operation{}, RecordError{Line: line, Err: fmt.Errorf("client id: %w", err)}
	}
	tx, err := strconv.ParseUint(field(r.cols.tx), 10, 32)
	if err != nil {
		return shared.Operation{}, RecordError{Line: line, Err: fmt.Errorf("transaction id: %w", err)}
	}

	return shared.Operation{
		Type:   shared.OperationType(field(r.cols.typ)),
		Client: shared.ClientID(client),
		Tx:     shared.TxID(tx),
		Amount: field(r.cols.amount),
	}, nil
}
