package position

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"bondflow/internal/model"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
)

// Snapshot captures net positions at a point in time.
type Snapshot struct {
	Timestamp int64   `json:"timestamp"`
	Positions []Entry `json:"positions"`
}

// Entry is the quantity of one product on one book.
type Entry struct {
	ProductID string `json:"productId"`
	Book      string `json:"book"`
	Qty       int64  `json:"qty"`
}

// Snapshot builds a snapshot of the stored positions, ordered by product
// then book.
func (s *Service) Snapshot(now time.Time) Snapshot {
	var entries []Entry
	for _, id := range s.Keys() {
		p := s.Get(id)
		for _, book := range p.Books() {
			entries = append(entries, Entry{ProductID: id, Book: book, Qty: p.Quantity(book)})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ProductID != entries[j].ProductID {
			return entries[i].ProductID < entries[j].ProductID
		}
		return entries[i].Book < entries[j].Book
	})
	return Snapshot{
		Timestamp: now.UTC().UnixNano(),
		Positions: entries,
	}
}

// ApplySnapshot stores the positions of snap without notifying. resolve
// maps product ids back to products; entries it rejects fail the call.
func (s *Service) ApplySnapshot(snap Snapshot, resolve func(id string) (model.Product, error)) error {
	next := make(map[string]model.Position)
	var order []string
	for _, e := range snap.Positions {
		p, ok := next[e.ProductID]
		if !ok {
			product, err := resolve(e.ProductID)
			if err != nil {
				return err
			}
			p = model.NewPosition(product)
			order = append(order, e.ProductID)
		}
		next[e.ProductID] = p.With(e.Book, e.Qty)
	}
	for _, id := range order {
		s.Put(next[id])
	}
	return nil
}

// WriteSnapshot writes a snapshot to disk as JSON.
func WriteSnapshot(path string, snapshot Snapshot) error {
	data, err := sonic.ConfigDefault.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal snapshot")
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create snapshot dir %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write snapshot %s", path)
	}
	return nil
}

// ReadSnapshot loads a snapshot from disk.
func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, errors.Wrapf(err, "read snapshot %s", path)
	}
	var snap Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, errors.Wrapf(err, "unmarshal snapshot %s", path)
	}
	return snap, nil
}

// CompareSnapshots checks that two snapshots hold the same quantities.
func CompareSnapshots(expected, actual Snapshot) error {
	if len(expected.Positions) != len(actual.Positions) {
		return errors.Errorf("snapshot length mismatch: expected=%d actual=%d", len(expected.Positions), len(actual.Positions))
	}
	type key struct{ product, book string }
	want := make(map[key]int64, len(expected.Positions))
	for _, e := range expected.Positions {
		want[key{e.ProductID, e.Book}] = e.Qty
	}
	for _, e := range actual.Positions {
		qty, ok := want[key{e.ProductID, e.Book}]
		if !ok {
			return errors.Errorf("snapshot missing position: product=%s book=%s", e.ProductID, e.Book)
		}
		if qty != e.Qty {
			return errors.Errorf("snapshot qty mismatch: product=%s book=%s expected=%d actual=%d", e.ProductID, e.Book, qty, e.Qty)
		}
	}
	return nil
}
