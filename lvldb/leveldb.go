// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/velalabs/vela/kv"
	"github.com/velalabs/vela/metrics"
)

var _ kv.GetPutCloser = (*LevelDB)(nil)

const minCacheSize = 16 // MiB, also the floor for open files

var (
	metricBatchWrites = metrics.LazyLoadCounterVec("lvldb_batch_write_count", []string{"status"})
	metricBatchSize   = metrics.LazyLoadHistogram("lvldb_batch_ops", []int64{1, 8, 32, 128, 512, 2048})
)

// Options of a level db instance.
type Options struct {
	// CacheSize in MiB, split between block cache and write buffers.
	CacheSize              int
	OpenFilesCacheCapacity int
	// Sync fsyncs every write.
	Sync bool
}

// LevelDB is the goleveldb backed store of chain state and head.
type LevelDB struct {
	db       *leveldb.DB
	stg      storage.Storage
	readOpt  *opt.ReadOptions
	writeOpt *opt.WriteOptions
}

// New opens the level db at path, creating it if missing.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrapf(err, "open storage [%v]", path)
	}
	return open(stg, opts)
}

// NewMem creates a throwaway level db in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	cacheSize := max(opts.CacheSize, minCacheSize)
	openFiles := max(opts.OpenFilesCacheCapacity, minCacheSize)

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFiles,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB, // two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		stg.Close()
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{
		db:       db,
		stg:      stg,
		readOpt:  &opt.ReadOptions{},
		writeOpt: &opt.WriteOptions{Sync: opts.Sync},
	}, nil
}

// IsNotFound reports whether err is the not found error of Get.
func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

// Get returns the value of key. A missing key is reported by an error, see IsNotFound.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return ldb.db.Get(key, ldb.readOpt)
}

func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, ldb.readOpt)
}

func (ldb *LevelDB) Put(key, value []byte) error {
	return ldb.db.Put(key, value, ldb.writeOpt)
}

func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, ldb.writeOpt)
}

// Close closes the db and releases the storage lock. Later operations fail.
func (ldb *LevelDB) Close() error {
	if err := ldb.db.Close(); err != nil {
		ldb.stg.Close()
		return errors.Wrap(err, "close level db")
	}
	return ldb.stg.Close()
}

// NewBatch creates a batch written atomically on Write.
func (ldb *LevelDB) NewBatch() kv.Batch {
	return &batch{ldb: ldb, b: new(leveldb.Batch)}
}

// NewIterator iterates keys in r in ascending order.
func (ldb *LevelDB) NewIterator(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.From, Limit: r.To}, ldb.readOpt)
}

type batch struct {
	ldb *LevelDB
	b   *leveldb.Batch
}

func (b *batch) Put(key, value []byte) error {
	b.b.Put(key, value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(key)
	return nil
}

// NewBatch creates a sibling batch on the same db.
func (b *batch) NewBatch() kv.Batch {
	return b.ldb.NewBatch()
}

func (b *batch) Len() int {
	return b.b.Len()
}

func (b *batch) Write() error {
	metricBatchSize().Observe(int64(b.b.Len()))
	if err := b.ldb.db.Write(b.b, b.ldb.writeOpt); err != nil {
		metricBatchWrites().AddWithLabel(1, map[string]string{"status": "failed"})
		return errors.Wrap(err, "write batch")
	}
	metricBatchWrites().AddWithLabel(1, map[string]string{"status": "ok"})
	return nil
}
