package persist

import (
	"testing"
	"time"

	"bondflow/internal/historical"
	"bondflow/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db
}

var at = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func TestJournalBatches(t *testing.T) {
	db := openDB(t)
	j, err := NewJournal(db, "run-1", 2)
	require.NoError(t, err)

	require.NoError(t, j.Write(historical.Record{Stream: "positions", At: at, Fields: []string{"A", "TRSY1", "10"}}))
	n, err := j.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, j.Write(historical.Record{Stream: "risk", At: at, Fields: []string{"A", "1"}}))
	n, err = j.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, j.Write(historical.Record{Stream: "positions", At: at, Fields: []string{"A", "TRSY1", "20"}}))
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())

	entries, err := j.Entries("positions")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].Seq)
	assert.Equal(t, int64(3), entries[1].Seq)
	assert.Equal(t, "2024-01-02 03:04:05.000000,A,TRSY1,20", entries[1].Line)
	assert.Equal(t, "run-1", entries[1].RunID)
}

func TestJournalDropsFailedBatch(t *testing.T) {
	db := openDB(t)
	j, err := NewJournal(db, "run-1", 10)
	require.NoError(t, err)

	require.NoError(t, j.Write(historical.Record{Stream: "risk", At: at, Fields: []string{"A", "1"}}))
	require.NoError(t, j.Write(historical.Record{Stream: "risk", At: at, Fields: []string{"A", "2"}}))
	require.NoError(t, db.Migrator().DropTable(&JournalEntry{}))
	require.Error(t, j.Flush())
	assert.Equal(t, int64(2), j.Dropped())

	require.NoError(t, db.AutoMigrate(&JournalEntry{}))
	require.NoError(t, j.Write(historical.Record{Stream: "risk", At: at, Fields: []string{"A", "3"}}))
	require.NoError(t, j.Close())

	entries, err := j.Entries("risk")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].Seq)
	assert.Equal(t, int64(2), j.Dropped())
}

func TestJournalSeparatesRuns(t *testing.T) {
	db := openDB(t)
	a, err := NewJournal(db, "a", 0)
	require.NoError(t, err)
	b, err := NewJournal(db, "b", 0)
	require.NoError(t, err)

	require.NoError(t, a.Write(historical.Record{Stream: "s", At: at}))
	require.NoError(t, a.Flush())
	n, err := b.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestJournalInMultiWriter(t *testing.T) {
	db := openDB(t)
	j, err := NewJournal(db, "run", 0)
	require.NoError(t, err)

	w := historical.MultiWriter{j}
	require.NoError(t, w.Write(historical.Record{Stream: "s", At: at, Fields: []string{"x"}}))
	require.NoError(t, w.Close())

	entries, err := j.Entries("s")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestNewJournalValidates(t *testing.T) {
	_, err := NewJournal(nil, "run", 0)
	assert.True(t, exception.Is(err, exception.ErrNilInstance))

	_, err = NewJournal(openDB(t), "", 0)
	assert.True(t, exception.Is(err, exception.ErrInvalidArgument))
}
