package storage

import "fmt"

const DefaultStoreKind = "memory"

// NewStore builds a backend by name. path is the sqlite file or the leveldb
// directory and is ignored by the memory store.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(path), nil
	case "leveldb":
		return NewLevelDBStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
