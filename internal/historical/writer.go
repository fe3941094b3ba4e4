package historical

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bondflow/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Record is one persisted line before formatting.
type Record struct {
	Stream string
	At     time.Time
	Fields []string
}

// Line renders "timestamp,field1,...,fieldN".
func (r Record) Line() string {
	var sb strings.Builder
	sb.WriteString(r.At.Format(TimeLayout))
	for _, f := range r.Fields {
		sb.WriteByte(',')
		sb.WriteString(f)
	}
	return sb.String()
}

// RecordWriter persists records.
type RecordWriter interface {
	Write(Record) error
	Close() error
}

// FileWriter appends lines to a single file. A FileWriter whose file could
// not be opened stays disabled and drops every record.
type FileWriter struct {
	path string
	f    *os.File
	w    *bufio.Writer
	err  error
}

// OpenFile opens name under cfg.Dir for appending. Failures are logged and
// leave the returned writer disabled.
func OpenFile(cfg Config, name string) *FileWriter {
	cfg = cfg.withDefaults()
	fw := &FileWriter{path: filepath.Join(cfg.Dir, name)}
	if err := cfg.Validate(); err != nil {
		fw.disable(err)
		return fw
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		fw.disable(err)
		return fw
	}
	f, err := os.OpenFile(fw.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fw.disable(err)
		return fw
	}
	fw.f = f
	fw.w = bufio.NewWriterSize(f, cfg.BufferSize)
	return fw
}

func (fw *FileWriter) disable(err error) {
	fw.err = errors.Wrapf(exception.ErrSinkUnavailable, "open %s: %v", fw.path, err)
	logs.Errorf("sink disabled, err: %+v", fw.err)
}

// Available reports whether the file is open.
func (fw *FileWriter) Available() bool {
	return fw.err == nil && fw.w != nil
}

// Err returns why the writer is disabled, if it is.
func (fw *FileWriter) Err() error {
	return fw.err
}

func (fw *FileWriter) Path() string {
	return fw.path
}

// Write buffers the line of r. A disabled writer returns its open error.
func (fw *FileWriter) Write(r Record) error {
	if fw.err != nil {
		return fw.err
	}
	if fw.w == nil {
		return errors.Wrapf(exception.ErrSinkUnavailable, "%s is closed", fw.path)
	}
	if _, err := fw.w.WriteString(r.Line()); err != nil {
		return errors.Wrapf(err, "write %s", fw.path)
	}
	if err := fw.w.WriteByte('\n'); err != nil {
		return errors.Wrapf(err, "write %s", fw.path)
	}
	return nil
}

// Flush pushes buffered lines to the file.
func (fw *FileWriter) Flush() error {
	if !fw.Available() {
		return nil
	}
	if err := fw.w.Flush(); err != nil {
		return errors.Wrapf(err, "flush %s", fw.path)
	}
	return nil
}

// Close flushes and closes the file. It is safe to call more than once.
func (fw *FileWriter) Close() error {
	if !fw.Available() {
		return nil
	}
	flushErr := fw.Flush()
	closeErr := fw.f.Close()
	fw.w = nil
	fw.f = nil
	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, "close %s", fw.path)
	}
	return nil
}

// MultiWriter writes every record to each writer in order.
type MultiWriter []RecordWriter

func (m MultiWriter) Write(r Record) error {
	var first error
	for _, w := range m {
		if err := w.Write(r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m MultiWriter) Close() error {
	var first error
	for _, w := range m {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
