package backend

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/MrSnakeDoc/mdnspanel/internal/document"
)

// ErrNoConfig is returned by Store.Load when nothing was saved yet.
var ErrNoConfig = errors.New("no saved configuration")

// Store persists the backend's configuration document.
type Store interface {
	Load(ctx context.Context) (document.Document, error)
	Save(ctx context.Context, doc document.Document) error
	Close() error
}

// MemoryStore keeps the document in memory. Used for demo mode and tests.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	fails error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// FailSaves makes every following Save return err. A nil err restores normal saves.
func (s *MemoryStore) FailSaves(err error) {
	s.mu.Lock()
	s.fails = err
	s.mu.Unlock()
}

func (s *MemoryStore) Load(_ context.Context) (document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return document.Document{}, ErrNoConfig
	}
	var doc document.Document
	if err := json.Unmarshal(s.data, &doc); err != nil {
		return document.Document{}, err
	}
	return doc, nil
}

func (s *MemoryStore) Save(_ context.Context, doc document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fails != nil {
		return s.fails
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.data = data
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// BadgerStore keeps the document in a Badger database under a single key.
type BadgerStore struct {
	db *badger.DB
}

var configKey = []byte("config")

func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(filepath.Clean(path))
	opts.Logger = nil
	opts = opts.WithValueLogFileSize(1 << 20)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) Load(_ context.Context) (document.Document, error) {
	var doc document.Document
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(configKey)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNoConfig
			}
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &doc)
		})
	})
	if err != nil {
		return document.Document{}, err
	}
	return doc, nil
}

func (s *BadgerStore) Save(_ context.Context, doc document.Document) error {
	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return txn.Set(configKey, data)
	})
}
