// Package storage keeps an optional on-disk copy of the clipboard history so
// a restarted daemon can pick up where it left off.
package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"sync"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/berrythewa/cliprecall/internal/types"
	"github.com/berrythewa/cliprecall/pkg/compression"
)

var (
	recordsBucket = []byte("records")
	metaBucket    = []byte("meta")
	savedAtKey    = []byte("saved_at")
)

// Source is anything that can list the current history, newest first.
type Source interface {
	List() []*types.Record
}

// Options configures an Archive.
type Options struct {
	Path              string
	CompressThreshold int
	Logger            *zap.Logger
}

// Archive stores snapshots of the history in a bbolt database. Each Save
// replaces the previous snapshot. Snapshots requested through OnUpdated are
// written by a background goroutine; bursts of updates collapse into one.
type Archive struct {
	db        *bbolt.DB
	threshold int
	logger    *zap.Logger
	source    Source

	mu       sync.Mutex
	pngCache map[string][]byte

	updates   chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

type storedRecord struct {
	ID          string            `json:"id"`
	Type        types.ContentType `json:"type"`
	Timestamp   time.Time         `json:"timestamp"`
	Data        []byte            `json:"data"`
	Compressed  bool              `json:"compressed,omitempty"`
	Fingerprint string            `json:"fingerprint,omitempty"`
}

// Open opens or creates the archive database.
func Open(opts Options) (*Archive, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.CompressThreshold <= 0 {
		opts.CompressThreshold = compression.DefaultThreshold
	}

	db, err := bbolt.Open(opts.Path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{recordsBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	opts.Logger.Debug("Archive opened",
		zap.String("db_path", opts.Path),
		zap.Int("compress_threshold", opts.CompressThreshold))

	a := &Archive{
		db:        db,
		threshold: opts.CompressThreshold,
		logger:    opts.Logger,
		pngCache:  make(map[string][]byte),
		updates:   make(chan struct{}, 1),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go a.loop()
	return a, nil
}

// Attach sets the history the archive snapshots on OnUpdated.
func (a *Archive) Attach(src Source) {
	a.mu.Lock()
	a.source = src
	a.mu.Unlock()
}

// OnUpdated schedules a snapshot of the attached source and returns without
// waiting for it. If a snapshot is already pending the call is a no-op.
func (a *Archive) OnUpdated() {
	select {
	case a.updates <- struct{}{}:
	default:
	}
}

func (a *Archive) loop() {
	defer close(a.done)
	for {
		select {
		case <-a.quit:
			return
		case <-a.updates:
			a.snapshot()
		}
	}
}

// snapshot saves the attached source. Errors are logged, not returned, so a
// failing disk never disturbs clipboard monitoring.
func (a *Archive) snapshot() {
	a.mu.Lock()
	src := a.source
	a.mu.Unlock()
	if src == nil {
		return
	}
	if err := a.Save(src.List()); err != nil {
		a.logger.Error("Failed to archive history", zap.Error(err))
	}
}

// Save replaces the stored snapshot with records, which must be newest first.
func (a *Archive) Save(records []*types.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	encoded := make([][]byte, 0, len(records))
	live := make(map[string]bool, len(records))
	for _, rec := range records {
		live[rec.ID()] = true
		sr, err := a.encode(rec)
		if err != nil {
			a.logger.Warn("Skipping record that cannot be archived",
				zap.String("id", rec.ID()),
				zap.Error(err))
			continue
		}
		data, err := json.Marshal(sr)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		encoded = append(encoded, data)
	}
	for id := range a.pngCache {
		if !live[id] {
			delete(a.pngCache, id)
		}
	}

	err := a.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(recordsBucket); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		b, err := tx.CreateBucket(recordsBucket)
		if err != nil {
			return err
		}
		for i, data := range encoded {
			if err := b.Put(indexKey(i), data); err != nil {
				return err
			}
		}
		stamp, err := time.Now().MarshalBinary()
		if err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Put(savedAtKey, stamp)
	})
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	a.logger.Debug("History archived", zap.Int("records", len(encoded)))
	return nil
}

// Load returns the stored records oldest first, ready to be replayed into a
// fresh history.
func (a *Archive) Load(previewLen int) ([]*types.Record, error) {
	var stored []storedRecord
	err := a.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(recordsBucket).ForEach(func(_, v []byte) error {
			var sr storedRecord
			if err := json.Unmarshal(v, &sr); err != nil {
				return fmt.Errorf("failed to unmarshal record: %w", err)
			}
			stored = append(stored, sr)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	out := make([]*types.Record, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		rec, err := a.decode(stored[i], previewLen)
		if err != nil {
			a.logger.Warn("Dropping unreadable archived record",
				zap.String("id", stored[i].ID),
				zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// SavedAt returns when the last snapshot was written.
func (a *Archive) SavedAt() (time.Time, error) {
	var t time.Time
	err := a.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(metaBucket).Get(savedAtKey)
		if v == nil {
			return nil
		}
		return t.UnmarshalBinary(v)
	})
	return t, err
}

// Close stops the background writer, saves a final snapshot of the attached
// source and closes the database. It is safe to call more than once.
func (a *Archive) Close() error {
	a.closeOnce.Do(func() {
		close(a.quit)
		<-a.done
		a.snapshot()
		a.closeErr = a.db.Close()
	})
	return a.closeErr
}

func (a *Archive) encode(rec *types.Record) (storedRecord, error) {
	sr := storedRecord{
		ID:        rec.ID(),
		Type:      rec.Type(),
		Timestamp: rec.Timestamp(),
	}

	switch c := rec.Content().(type) {
	case types.Text, types.URL:
		text, _ := rec.Text()
		data, compressed, err := compression.Compress([]byte(text), a.threshold)
		if err != nil {
			return sr, err
		}
		sr.Data, sr.Compressed = data, compressed
	case types.Image:
		if c.Bitmap == nil {
			return sr, errors.New("image record without bitmap")
		}
		sr.Fingerprint = c.Fingerprint.String()
		if cached, ok := a.pngCache[rec.ID()]; ok {
			sr.Data = cached
			break
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, c.Bitmap); err != nil {
			return sr, fmt.Errorf("failed to encode image: %w", err)
		}
		sr.Data = buf.Bytes()
		a.pngCache[rec.ID()] = sr.Data
	}
	return sr, nil
}

func (a *Archive) decode(sr storedRecord, previewLen int) (*types.Record, error) {
	var content types.Content
	switch sr.Type {
	case types.TypeText, types.TypeURL:
		data := sr.Data
		if sr.Compressed {
			var err error
			if data, err = compression.Decompress(data); err != nil {
				return nil, err
			}
		}
		if sr.Type == types.TypeURL {
			content = types.URL(data)
		} else {
			content = types.Text(data)
		}
	case types.TypeImage:
		img, err := png.Decode(bytes.NewReader(sr.Data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		fp, err := types.ParseFingerprint(sr.Fingerprint)
		if err != nil || fp.IsZero() {
			fp, _ = types.FingerprintImage(img)
		}
		content = types.Image{Bitmap: img, Fingerprint: fp}
	default:
		return nil, fmt.Errorf("unknown content type %q", sr.Type)
	}
	return types.NewRecordWithID(sr.ID, content, sr.Timestamp, previewLen), nil
}

func indexKey(i int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(i))
	return k
}
