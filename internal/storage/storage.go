package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyGameSeq     = "seq/game"
	gamePrefix     = "game/"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Preferences stores user settings.
type Preferences struct {
	SearchDepth int  `json:"search_depth"`
	ShowPV      bool `json:"show_pv"`
}

// DefaultPreferences returns default user preferences.
func DefaultPreferences() *Preferences {
	return &Preferences{
		SearchDepth: 6,
		ShowPV:      true,
	}
}

// GameRecord is an archived game: the position it started from and the
// moves played, in coordinate form with their display text.
type GameRecord struct {
	ID       uint64    `json:"id"`
	Event    string    `json:"event,omitempty"`
	White    string    `json:"white,omitempty"`
	Black    string    `json:"black,omitempty"`
	StartFEN string    `json:"start_fen"`
	Moves    []string  `json:"moves"`
	Text     []string  `json:"text"`
	Result   string    `json:"result"`
	Created  time.Time `json:"created"`
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Option configures how the database is opened.
type Option func(*badger.Options)

// WithLogger routes badger's own log output to l. Without it badger logs
// nothing.
func WithLogger(l *log.Logger) Option {
	return func(o *badger.Options) {
		o.Logger = badgerLogger{l}
	}
}

// Open opens (creating if needed) the database in dir.
func Open(dir string, opts ...Option) (*Storage, error) {
	return open(badger.DefaultOptions(dir), opts)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory(opts ...Option) (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), opts)
}

// OpenDefault opens the database in the platform data directory.
func OpenDefault(opts ...Option) (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir, opts...)
}

func open(bopts badger.Options, opts []Option) (*Storage, error) {
	bopts.Logger = nil // Disable logging unless asked for
	for _, opt := range opts {
		opt(&bopts)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	seq, err := db.GetSequence([]byte(keyGameSeq), 16)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("game id sequence: %w", err)
	}

	return &Storage{db: db, seq: seq}, nil
}

// Close releases the id sequence and closes the database.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	seqErr := s.seq.Release()
	if err := s.db.Close(); err != nil {
		return err
	}
	return seqErr
}

func gameKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%016x", gamePrefix, id))
}

// SaveGame stores rec and returns its id. A record without an id is given
// the next one from the sequence; a record with an id replaces the stored
// game.
func (s *Storage) SaveGame(rec *GameRecord) (uint64, error) {
	if rec.ID == 0 {
		n, err := s.seq.Next()
		if err != nil {
			return 0, fmt.Errorf("next game id: %w", err)
		}
		rec.ID = n + 1
	}
	if rec.Created.IsZero() {
		rec.Created = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return 0, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(rec.ID), data)
	})
	if err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// LoadGame returns the game with the given id.
func (s *Storage) LoadGame(id uint64) (*GameRecord, error) {
	rec := &GameRecord{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("game %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListGames returns every archived game ordered by id.
func (s *Storage) ListGames() ([]*GameRecord, error) {
	var games []*GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(gamePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rec := &GameRecord{}
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, rec)
			})
			if err != nil {
				return err
			}
			games = append(games, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games, nil
}

// DeleteGame removes the game with the given id.
func (s *Storage) DeleteGame(id uint64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := gameKey(id)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("game %d: %w", id, ErrNotFound)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// SavePreferences saves user preferences.
func (s *Storage) SavePreferences(prefs *Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads user preferences, returns defaults if not found.
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, prefs)
		})
	})

	return prefs, err
}

// badgerLogger adapts a *log.Logger to badger.Logger. Info and debug
// chatter is dropped.
type badgerLogger struct {
	l *log.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Printf("badger: ERROR: "+format, args...)
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Printf("badger: WARNING: "+format, args...)
}

func (b badgerLogger) Infof(string, ...interface{})  {}
func (b badgerLogger) Debugf(string, ...interface{}) {}
