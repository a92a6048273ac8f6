package badger

import "github.com/poiesic/netsight/storage"

// Stores groups the badger-backed stores that share one Backend.
type Stores struct {
	Graph    storage.GraphStore
	Vector   storage.VectorStore
	Manifest storage.ManifestRepository
	Backend  *Backend
}

// Close releases the stores and the shared backend.
func (s *Stores) Close() error {
	s.Graph.Close()
	s.Vector.Close()
	return s.Backend.Close()
}

// NewStores opens (or creates) a badger database at path and returns its stores.
func NewStores(path string) (*Stores, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newStores(backend), nil
}

// NewMemoryStores creates in-memory graph, vector and manifest stores for testing.
// Caller must close the returned Stores when done.
func NewMemoryStores() (*Stores, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return newStores(backend), nil
}

func newStores(backend *Backend) *Stores {
	return &Stores{
		Graph:    NewGraphStore(backend),
		Vector:   NewVectorStore(backend),
		Manifest: NewManifestRepository(backend),
		Backend:  backend,
	}
}
