// Package persist journals persisted lines of a run into a database.
package persist

import (
	"time"

	"bondflow/internal/historical"
	"bondflow/pkg/exception"

	"github.com/yanun0323/errors"
	"gorm.io/gorm"
)

const defaultBatchSize = 256

// JournalEntry is one persisted line.
type JournalEntry struct {
	ID         uint      `gorm:"primaryKey"`
	RunID      string    `gorm:"size:36;index:idx_journal_run_stream"`
	Stream     string    `gorm:"size:32;index:idx_journal_run_stream"`
	Seq        int64     `gorm:"not null"`
	RecordedAt time.Time `gorm:"not null"`
	Line       string    `gorm:"not null"`
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}

// Journal buffers records and inserts them in batches. It implements
// historical.RecordWriter so it can sit next to a file sink; Close only
// flushes, the connection belongs to the caller.
type Journal struct {
	db        *gorm.DB
	runID     string
	seq       int64
	batch     []JournalEntry
	batchSize int
	dropped   int64
}

// NewJournal migrates the journal table and returns a journal tagging every
// entry with runID.
func NewJournal(db *gorm.DB, runID string, batchSize int) (*Journal, error) {
	if db == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "journal db")
	}
	if runID == "" {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "journal run id is empty")
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if err := db.AutoMigrate(&JournalEntry{}); err != nil {
		return nil, errors.Wrap(err, "migrate journal")
	}
	return &Journal{
		db:        db,
		runID:     runID,
		batchSize: batchSize,
		batch:     make([]JournalEntry, 0, batchSize),
	}, nil
}

func (j *Journal) RunID() string {
	return j.runID
}

func (j *Journal) Write(r historical.Record) error {
	j.seq++
	j.batch = append(j.batch, JournalEntry{
		RunID:      j.runID,
		Stream:     r.Stream,
		Seq:        j.seq,
		RecordedAt: r.At,
		Line:       r.Line(),
	})
	if len(j.batch) < j.batchSize {
		return nil
	}
	return j.Flush()
}

// Flush inserts the buffered entries. A failed insert drops the batch; it
// is not retried.
func (j *Journal) Flush() error {
	if len(j.batch) == 0 {
		return nil
	}
	n := len(j.batch)
	err := j.db.CreateInBatches(j.batch, j.batchSize).Error
	j.batch = j.batch[:0]
	if err != nil {
		j.dropped += int64(n)
		return errors.Wrapf(err, "insert %d journal entries, dropped", n)
	}
	return nil
}

// Dropped returns how many entries were discarded by failed inserts.
func (j *Journal) Dropped() int64 {
	return j.dropped
}

func (j *Journal) Close() error {
	return j.Flush()
}

// Entries returns the flushed entries of a stream for this run in write
// order.
func (j *Journal) Entries(stream string) ([]JournalEntry, error) {
	var out []JournalEntry
	err := j.db.
		Where("run_id = ? AND stream = ?", j.runID, stream).
		Order("seq").
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrapf(err, "query journal stream %s", stream)
	}
	return out, nil
}

// Count returns how many entries this run has flushed.
func (j *Journal) Count() (int64, error) {
	var n int64
	if err := j.db.Model(&JournalEntry{}).Where("run_id = ?", j.runID).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "count journal")
	}
	return n, nil
}
