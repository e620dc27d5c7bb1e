package index

import "fmt"

// Backend kinds accepted by NewBackend.
const (
	BackendMsgpack = "msgpack"
	BackendSQLite  = "sqlite"
)

// NewBackend returns the persistence backend of the given kind at path.
func NewBackend(kind string, path string) (Backend, error) {
	switch kind {
	case "", BackendMsgpack:
		return NewFileBackend(path), nil
	case BackendSQLite:
		return NewSQLiteBackend(path), nil
	default:
		return nil, fmt.Errorf("unknown index backend %q", kind)
	}
}
