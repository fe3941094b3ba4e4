// Package feed reads comma separated input records line by line and hands
// the split fields to a stage.
package feed

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"bondflow/pkg/exception"
	"bondflow/pkg/scanner"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const (
	separator     = ','
	maxLineLength = 64 * 1024
)

// Metrics counts records per source. Implementations must accept calls on
// a nil receiver.
type Metrics interface {
	RecordRead(source string)
	RecordRejected(source string)
}

// Options configure a Scan.
type Options struct {
	// Source names the input in logs and metrics.
	Source  string
	Policy  Policy
	Metrics Metrics
}

// Handler processes the fields of one record. line is 1-based.
type Handler func(line int, fields [][]byte) error

// Scan feeds every non-empty line of r to handle. Record errors (see
// exception.IsRecordError) follow opt.Policy; any other error stops the
// scan. A line longer than maxLineLength is consumed and rejected as a
// malformed record. ctx is checked between records.
func Scan(ctx context.Context, r io.Reader, opt Options, handle Handler) error {
	if opt.Policy == 0 {
		opt.Policy = PolicySkip
	}

	br := bufio.NewReaderSize(r, 4096)
	buf := make([]byte, 0, 4096)
	fields := make([][]byte, 0, 8)
	line := 0
	for {
		raw, tooLong, readErr := readLine(br, buf[:0])
		if readErr != nil && readErr != io.EOF {
			return errors.Wrapf(readErr, "%s: read after line %d", opt.Source, line)
		}
		if readErr == io.EOF && len(raw) == 0 && !tooLong {
			return nil
		}
		buf = raw
		line++

		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "%s: stopped before line %d", opt.Source, line)
		}

		var err error
		if tooLong {
			err = errors.Wrapf(exception.ErrMalformedRecord, "line longer than %d bytes", maxLineLength)
		} else {
			fields = scanner.SplitFields(fields[:0], raw, separator)
		}

		if tooLong || len(fields) != 0 {
			if opt.Metrics != nil {
				opt.Metrics.RecordRead(opt.Source)
			}
			if err == nil {
				err = handle(line, fields)
			}
		}

		if err != nil {
			if !exception.IsRecordError(err) {
				return errors.Wrapf(err, "%s: line %d", opt.Source, line)
			}
			if opt.Metrics != nil {
				opt.Metrics.RecordRejected(opt.Source)
			}
			if opt.Policy != PolicySkip {
				return errors.Wrapf(err, "%s: line %d", opt.Source, line)
			}
			logs.Errorf("%s: skip line %d, err: %+v", opt.Source, line, err)
		}

		if readErr == io.EOF {
			return nil
		}
	}
}

// readLine appends the next line of br to buf without its line ending. An
// over-long line is read through to its newline and returned empty with
// tooLong set.
func readLine(br *bufio.Reader, buf []byte) ([]byte, bool, error) {
	tooLong := false
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			buf = append(buf, chunk...)
			if len(bytes.TrimRight(buf, "\r\n")) > maxLineLength {
				tooLong = true
				buf = buf[:0]
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return bytes.TrimRight(buf, "\r\n"), tooLong, err
	}
}

// Expect checks a record has exactly n fields.
func Expect(fields [][]byte, n int) error {
	if len(fields) != n {
		return errors.Wrapf(exception.ErrMalformedRecord, "expected %d fields, got %d", n, len(fields))
	}
	return nil
}

// Int parses a quantity field.
func Int(field []byte, name string) (int64, error) {
	v, ok := scanner.ParseInt(field)
	if !ok {
		return 0, errors.Wrapf(exception.ErrMalformedRecord, "invalid %s %q", name, field)
	}
	return v, nil
}
