package scene

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"
)

// ChunkStore persists the entity state of unloaded chunks so changes made while
// a chunk was loaded survive streaming it out and back in.
type ChunkStore interface {
	SaveChunk(id string, specs []EntitySpec) error
	// LoadChunk reports false when nothing was saved for id.
	LoadChunk(id string) ([]EntitySpec, bool, error)
	Close() error
}

// SQLiteChunkStore keeps one gob encoded, zstd compressed blob per chunk.
type SQLiteChunkStore struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func OpenSQLiteChunkStore(path string) (*SQLiteChunkStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty chunk store path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		saved_at INTEGER NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		_ = db.Close()
		return nil, err
	}
	return &SQLiteChunkStore{db: db, enc: enc, dec: dec}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteChunkStore) SaveChunk(id string, specs []EntitySpec) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(specs); err != nil {
		return fmt.Errorf("gob encode chunk %s: %w", id, err)
	}
	blob := s.enc.EncodeAll(buf.Bytes(), nil)

	_, err := s.db.Exec(
		`INSERT INTO chunks (id, data, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at;`,
		id, blob, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save chunk %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteChunkStore) LoadChunk(id string) ([]EntitySpec, bool, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT data FROM chunks WHERE id = ?;`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load chunk %s: %w", id, err)
	}

	raw, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompress chunk %s: %w", id, err)
	}
	var specs []EntitySpec
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&specs); err != nil {
		return nil, false, fmt.Errorf("gob decode chunk %s: %w", id, err)
	}
	return specs, true, nil
}

// DeleteChunk drops the saved state of a chunk so it loads from its template again.
func (s *SQLiteChunkStore) DeleteChunk(id string) error {
	_, err := s.db.Exec(`DELETE FROM chunks WHERE id = ?;`, id)
	return err
}

func (s *SQLiteChunkStore) Close() error {
	s.dec.Close()
	_ = s.enc.Close()
	return s.db.Close()
}

// MemoryChunkStore keeps chunk state in memory for the lifetime of the process.
type MemoryChunkStore struct {
	chunks map[string][]EntitySpec
}

func NewMemoryChunkStore() *MemoryChunkStore {
	return &MemoryChunkStore{chunks: make(map[string][]EntitySpec)}
}

func (m *MemoryChunkStore) SaveChunk(id string, specs []EntitySpec) error {
	m.chunks[id] = specs
	return nil
}

func (m *MemoryChunkStore) LoadChunk(id string) ([]EntitySpec, bool, error) {
	specs, ok := m.chunks[id]
	return specs, ok, nil
}

func (m *MemoryChunkStore) Close() error {
	return nil
}
