package badger

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/graphload/core"
	"github.com/poiesic/graphload/errlog"
)

const (
	runPrefix     = "run:"
	recordPrefix  = "err:"
	recordSeqKey  = "seq:errors"
	sequenceLease = 100
)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Journal stores error records of many runs.
type Journal struct {
	db     *badger.DB
	seq    *badger.Sequence
	logger *slog.Logger
}

// RunInfo describes one journaled run.
type RunInfo struct {
	ID        core.ID
	Label     string
	StartedAt time.Time
	Records   int
}

// OpenJournal opens a journal at the specified path.
// Creates the directory if it doesn't exist.
func OpenJournal(filePath string, inMemory bool) (*Journal, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			if err := os.MkdirAll(filePath, 0755); err != nil {
				return nil, err
			}
		} else if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	logger := slog.Default().With("component", "journal")
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	seq, err := db.GetSequence([]byte(recordSeqKey), sequenceLease)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db, seq: seq, logger: logger}, nil
}

// Close releases the sequence lease and closes the database.
func (j *Journal) Close() error {
	if err := j.seq.Release(); err != nil {
		j.logger.Warn("error releasing journal sequence", "err", err)
	}
	return j.db.Close()
}

// StartRun registers a run and returns a sink appending to it.
func (j *Journal) StartRun(id core.ID, label string) (*Run, error) {
	meta := runMeta{Label: label, StartedAt: time.Now().UTC()}
	err := j.db.Update(func(tx *badger.Txn) error {
		return tx.Set(runKey(id), marshalRunMeta(meta))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start journal run: %w", err)
	}
	return &Run{journal: j, id: id}, nil
}

// Runs lists journaled runs with their record counts.
func (j *Journal) Runs() ([]RunInfo, error) {
	var runs []RunInfo
	err := j.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(runPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			id, err := parseRunKey(item.Key())
			if err != nil {
				return err
			}
			var meta runMeta
			err = item.Value(func(val []byte) error {
				var unmarshalErr error
				meta, unmarshalErr = unmarshalRunMeta(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			runs = append(runs, RunInfo{ID: id, Label: meta.Label, StartedAt: meta.StartedAt})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range runs {
		n, err := j.count(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Records = n
	}
	return runs, nil
}

// Records returns the records of a run in the order they were appended.
func (j *Journal) Records(id core.ID) ([]core.ErrorRecord, error) {
	var records []core.ErrorRecord
	err := j.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = recordRunPrefix(id)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				rec, err := UnmarshalErrorRecord(val)
				if err != nil {
					return err
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return records, err
}

func (j *Journal) count(id core.ID) (int, error) {
	n := 0
	err := j.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = recordRunPrefix(id)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Run appends error records to one journaled run.
type Run struct {
	journal *Journal
	id      core.ID
}

var _ errlog.Sink = (*Run)(nil)

// ID returns the run's identifier.
func (r *Run) ID() core.ID {
	return r.id
}

// Append stores one error record.
func (r *Run) Append(rec core.ErrorRecord) error {
	seq, err := r.journal.seq.Next()
	if err != nil {
		return err
	}
	return r.journal.db.Update(func(tx *badger.Txn) error {
		return tx.Set(recordKey(r.id, seq), MarshalErrorRecord(rec))
	})
}

func runKey(id core.ID) []byte {
	return []byte(runPrefix + id.String())
}

func parseRunKey(key []byte) (core.ID, error) {
	return core.ParseID(string(bytes.TrimPrefix(key, []byte(runPrefix))))
}

func recordRunPrefix(id core.ID) []byte {
	return []byte(recordPrefix + id.String() + ":")
}

// recordKey appends seq big-endian so keys sort in append order.
func recordKey(id core.ID, seq uint64) []byte {
	key := recordRunPrefix(id)
	return binary.BigEndian.AppendUint64(key, seq)
}
