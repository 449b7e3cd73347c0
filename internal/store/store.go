package store

import "context"

// DefaultNamespace is used when a caller does not name one.
const DefaultNamespace = "default"

// Store is a string key-value view over one namespace of preferences.
// Get reports a missing key as ("", false, nil); errors are reserved
// for the backend itself failing.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
}

// Backend hands out namespaced Store views over one underlying store.
type Backend interface {
	Namespace(name string) Store
	Close() error
}

func namespaceOrDefault(name string) string {
	if name == "" {
		return DefaultNamespace
	}
	return name
}
