package checkpoint

import (
	"encoding/binary"
	"runtime"
	"sync"

	"github.com/2x3systems/goamp/goamp"
	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v3"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Checkpoint db format:

	kStoreStateKey                         => StoreState
	kWalkPrefix, JobKey (8), Part (4)      => WalkRecord

Records of a job sort by partition, so List() is a prefix scan.

***/

var (
	kStoreStateKey = []byte{0x00, 0x00, 0x01}
	kWalkPrefix    = []byte{'w'}
)

const (
	kMajorVers = 2024
	kMinorVers = 1
)

// Opts specifies params for opening a checkpoint Store.
type Opts struct {
	DbPathName string // empty denotes an in-memory store
	ReadOnly   bool
}

// Store persists walk records in a badger db.  A Store is safe for concurrent use.
type Store struct {
	db         *badger.DB
	readOnly   bool
	mu         sync.Mutex
	state      StoreState
	stateDirty bool
}

// Open opens a new or existing checkpoint store.
func Open(opts Opts) (*Store, error) {
	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(goamp.ErrReadOnly, "DbPathName must be specified for a read-only store")
		}
		dbOpts.InMemory = true
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening checkpoint db %q", opts.DbPathName)
	}

	s := &Store{
		db:       db,
		readOnly: opts.ReadOnly,
	}

	err = s.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		s.state.MajorVers = kMajorVers
		s.state.MinorVers = kMinorVers
		s.stateDirty = !opts.ReadOnly
	}
	if err == nil && (s.state.MajorVers != kMajorVers || s.state.MinorVers != kMinorVers) {
		err = errors.Errorf("checkpoint db version %d.%d is incompatible", s.state.MajorVers, s.state.MinorVers)
	}
	if err != nil {
		s.db.Close()
		return nil, err
	}

	return s, nil
}

// JobKey hashes the given parts into a key identifying one amplitude job.
func JobKey(parts ...[]byte) uint64 {
	h := xxhash.New()
	for _, part := range parts {
		var lenBuf [binary.MaxVarintLen64]byte
		n := binary.PutUvarint(lenBuf[:], uint64(len(part)))
		h.Write(lenBuf[:n])
		h.Write(part)
	}
	return h.Sum64()
}

func formKey(jobKey uint64, part uint32) []byte {
	key := make([]byte, 0, 13)
	key = append(key, kWalkPrefix...)
	key = binary.BigEndian.AppendUint64(key, jobKey)
	return binary.BigEndian.AppendUint32(key, part)
}

func jobPrefix(jobKey uint64) []byte {
	return binary.BigEndian.AppendUint64(append([]byte(nil), kWalkPrefix...), jobKey)
}

func unmarshalTo(rec *WalkRecord) func(val []byte) error {
	return func(val []byte) error {
		return proto.Unmarshal(val, rec)
	}
}

// IsReadOnly returns true if this store was opened for read-only access.
func (s *Store) IsReadOnly() bool {
	return s.readOnly
}

// NumSaves returns how many records have been saved over the life of this db.
func (s *Store) NumSaves() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.NumSaves
}

// Save writes rec, replacing any record with the same job key and partition.
func (s *Store) Save(rec *WalkRecord) error {
	if s.readOnly {
		return goamp.ErrReadOnly
	}
	buf, err := proto.Marshal(rec)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(formKey(rec.JobKey, rec.Part), buf)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state.NumSaves++
	s.stateDirty = true
	s.mu.Unlock()

	klog.V(3).Infof("checkpoint %016x/%d: pos %d of [%d, %d)", rec.JobKey, rec.Part, rec.Pos, rec.Start, rec.End)
	return nil
}

// Load reads the record for the given job and partition, returning ErrNoCheckpoint if absent.
func (s *Store) Load(jobKey uint64, part uint32) (*WalkRecord, error) {
	rec := &WalkRecord{}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(formKey(jobKey, part))
		if err != nil {
			return err
		}
		return item.Value(unmarshalTo(rec))
	})
	if err == badger.ErrKeyNotFound {
		return nil, errors.Wrapf(goamp.ErrNoCheckpoint, "job %016x part %d", jobKey, part)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns every record saved for the given job, ordered by partition.
func (s *Store) List(jobKey uint64) ([]*WalkRecord, error) {
	var recs []*WalkRecord
	prefix := jobPrefix(jobKey)

	err := s.db.View(func(txn *badger.Txn) error {
		itr := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   16,
			Prefix:         prefix,
		})
		defer itr.Close()

		for itr.Rewind(); itr.Valid(); itr.Next() {
			rec := &WalkRecord{}
			if err := itr.Item().Value(unmarshalTo(rec)); err != nil {
				return err
			}
			recs = append(recs, rec)
		}
		return nil
	})
	return recs, err
}

// Drop removes every record of the given job.
func (s *Store) Drop(jobKey uint64) error {
	if s.readOnly {
		return goamp.ErrReadOnly
	}
	return s.db.DropPrefix(jobPrefix(jobKey))
}

func (s *Store) loadState() error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(kStoreStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return proto.Unmarshal(val, &s.state)
		})
	})
}

func (s *Store) flushState() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.stateDirty {
		return nil
	}
	stateBuf, err := proto.Marshal(&s.state)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(kStoreStateKey, stateBuf)
	})
	if err == nil {
		s.stateDirty = false
	}
	return err
}

// Close flushes the store header and closes the db.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.flushState()
	if closeErr := s.db.Close(); err == nil {
		err = closeErr
	}
	s.db = nil
	return err
}
