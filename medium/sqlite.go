package medium

import (
	"database/sql"
	"errors"
	"log"
	"sync"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
)

const createRecordTablesSQL = `
CREATE TABLE IF NOT EXISTS records (
	key TEXT PRIMARY KEY,
	data BLOB,
	version INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS record_clock (
	id INTEGER PRIMARY KEY CHECK (id = 0),
	value INTEGER NOT NULL
);
INSERT OR IGNORE INTO record_clock (id, value) VALUES (0, 0);
`

// SQLiteStore is a Store persisted in a SQLite database. It shares the
// versioning rules of MemoryStore.
type SQLiteStore struct {
	counters

	db     *sql.DB
	ownsDB bool

	// writeLock serializes version bumps.
	writeLock sync.Mutex
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens or creates a SQLiteStore in a database file.
func OpenSQLiteStore(filename string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	s, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	s.ownsDB = true

	return s, nil
}

// NewSQLiteStore creates the store tables in db if needed. The caller keeps
// ownership of db.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	_, err := db.Exec(createRecordTablesSQL)
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// Read returns a new record holding the current data of the key.
func (s *SQLiteStore) Read(key string) (*Record, bool, error) {
	s.reads.Add(1)

	var (
		data    []byte
		version uint64
	)

	err := s.db.QueryRow(
		"SELECT data, version FROM records WHERE key = ?", key,
	).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return newRecord(key, data, version), true, nil
}

// Write stores the data of the record under a new version.
func (s *SQLiteStore) Write(r *Record) error {
	s.writes.Add(1)

	version, err := s.put(r.Key, r.Data())
	if err != nil {
		return err
	}

	r.markWritten(version)

	return nil
}

func (s *SQLiteStore) put(key string, data []byte) (uint64, error) {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.Exec("UPDATE record_clock SET value = value + 1 WHERE id = 0")
	if err != nil {
		return 0, err
	}

	var version uint64

	err = tx.QueryRow("SELECT value FROM record_clock WHERE id = 0").
		Scan(&version)
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(
		"INSERT OR REPLACE INTO records (key, data, version) VALUES (?, ?, ?)",
		key, data, version)
	if err != nil {
		return 0, err
	}

	return version, tx.Commit()
}

// IsDirtyMustRead returns true if the key was written since the record was
// read, or removed. A failed lookup also returns true so that the following
// Read reports the error.
func (s *SQLiteStore) IsDirtyMustRead(r *Record) bool {
	var version uint64

	err := s.db.QueryRow(
		"SELECT version FROM records WHERE key = ?", r.Key,
	).Scan(&version)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("checking version of %s: %v", r.Key, err)
		}

		return true
	}

	return version > r.Version()
}

// IsDirtyMustWrite returns true if the record was changed.
func (s *SQLiteStore) IsDirtyMustWrite(r *Record) bool {
	return r.IsDirty()
}

// CanDispose refuses pinned records.
func (s *SQLiteStore) CanDispose(r *Record) bool {
	return s.canDispose(r)
}

// Dispose counts the disposal.
func (s *SQLiteStore) Dispose(_ *Record) {
	s.disposals.Add(1)
}

// Seed sets the data of a key under a new version.
func (s *SQLiteStore) Seed(key string, data []byte) error {
	_, err := s.put(key, data)
	return err
}

// Remove deletes a key.
func (s *SQLiteStore) Remove(key string) error {
	_, err := s.db.Exec("DELETE FROM records WHERE key = ?", key)
	return err
}

// Len returns the number of keys in the store.
func (s *SQLiteStore) Len() (int, error) {
	var n int

	err := s.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&n)

	return n, err
}

// Close closes the database if the store opened it.
func (s *SQLiteStore) Close() error {
	if !s.ownsDB {
		return nil
	}

	return s.db.Close()
}
