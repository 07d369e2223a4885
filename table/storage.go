package table

import (
	"encoding/binary"
	"errors"
	"github.com/kuangyh/winsaw"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"os"
	"sync"
	"sync/atomic"
)

// MiB is the byte unit used for leveldb's compaction/write-buffer sizing
// below.
const MiB = 1 << 20

type TableWriter interface {
	Put(shard int, datum saw.Datum) error
	Close() error
}

var malformedSSTableKeyErr = errors.New("saw.table: malformed sstable key")

type ssTableKey struct {
	shard uint32
	key   []byte
	order [2]uint64
}

func parseSSTableKey(src []byte) (ssTableKey, error) {
	output := ssTableKey{}

	if len(src) < 8 {
		return output, malformedSSTableKeyErr
	}
	output.shard = binary.BigEndian.Uint32(src[:4])
	keyLen := binary.BigEndian.Uint32(src[4:8])
	if len(src) != int(4+4+keyLen+16) {
		return output, malformedSSTableKeyErr
	}
	output.key = src[4+4 : 4+4+keyLen]
	output.order[0] = binary.BigEndian.Uint64(src[4+4+keyLen:])
	output.order[1] = binary.BigEndian.Uint64(src[4+4+keyLen+8:])
	return output, nil
}

func (k ssTableKey) encode() []byte {
	// Layout: shard: uint32, keyLen: uint32, keyString, order: 2 x uint64
	output := make([]byte, 4+4+len(k.key)+16)
	binary.BigEndian.PutUint32(output[:4], k.shard)
	binary.BigEndian.PutUint32(output[4:8], uint32(len(k.key)))
	copy(output[8:], k.key)
	binary.BigEndian.PutUint64(output[4+4+len(k.key):], k.order[0])
	binary.BigEndian.PutUint64(output[4+4+len(k.key)+8:], k.order[1])
	return output
}

type ssTableWriter struct {
	globalOrder uint64
	db          *leveldb.DB
}

func openSSTableWriter(path string, writeBufferSize int) (TableWriter, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		CompactionTableSize: 4 * MiB,
		CompactionTotalSize: 16 * MiB,
		WriteBuffer:         writeBufferSize,
	})
	if err != nil {
		return nil, err
	}
	return &ssTableWriter{db: db}, nil
}

// openTableWriter picks the persistence backend for spec: leveldb by
// default (production durability), or a plain append-only local file when
// spec.UseLocalFileWriter is set — useful in tests that want to assert on
// written bytes without paying for a real leveldb instance.
func openTableWriter(spec TableSpec) (TableWriter, error) {
	if spec.UseLocalFileWriter {
		return openMockFileWriter(spec.PersistentPath)
	}
	writeBufferSize := spec.EncodingPoolBufferSize * 1024
	if writeBufferSize < MiB {
		writeBufferSize = MiB
	}
	return openSSTableWriter(spec.PersistentPath, writeBufferSize)
}

// IterateSSTable replays a leveldb checkpoint written by ssTableWriter,
// invoking fn for each stored (shard, key, value) in whatever
// order leveldb's iterator returns (lexicographic by encoded key, i.e.
// shard-major). Used to restore table.MemTable/CollectionTable state after
// a batch-mode restart.
func IterateSSTable(path string, fn func(shard int, key saw.DatumKey, value []byte) error) error {
	db, err := leveldb.OpenFile(path, &opt.Options{ErrorIfMissing: true})
	if err != nil {
		return err
	}
	defer db.Close()

	iter := db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		parsed, err := parseSSTableKey(iter.Key())
		if err != nil {
			return err
		}
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		if err := fn(int(parsed.shard), saw.DatumKey(parsed.key), value); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (w *ssTableWriter) Put(shard int, datum saw.Datum) error {
	ssTableKey := ssTableKey{
		shard: uint32(shard),
		key:   []byte(datum.Key),
		order: [2]uint64{datum.SortOrder, atomic.AddUint64(&w.globalOrder, 1)},
	}
	return w.db.Put(ssTableKey.encode(), datum.Value.([]byte), nil)
}

func (w *ssTableWriter) Close() error {
	return w.db.Close()
}

type mockFileWriter struct {
	f         *os.File
	writeChan chan []byte
	wg        sync.WaitGroup
}

func openMockFileWriter(path string) (TableWriter, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, err
	}
	writer := &mockFileWriter{
		f:         f,
		writeChan: make(chan []byte, 10000),
	}
	go writer.handleWrite()
	return writer, nil
}

func (w *mockFileWriter) handleWrite() {
	w.wg.Add(1)
	for buf := range w.writeChan {
		w.f.Write(buf)
	}
	w.wg.Done()
}
func (w *mockFileWriter) Put(shard int, datum saw.Datum) error {
	ssTableKey := ssTableKey{
		shard: uint32(shard),
		key:   []byte(datum.Key),
		order: [2]uint64{datum.SortOrder, 0},
	}
	w.writeChan <- ssTableKey.encode()
	w.writeChan <- datum.Value.([]byte)
	return nil
}

func (w *mockFileWriter) Close() error {
	close(w.writeChan)
	w.wg.Wait()
	return w.f.Close()
}
