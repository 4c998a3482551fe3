package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	memdb "github.com/hashicorp/go-memdb"
)

const objectTable = "object"

var memorySchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		objectTable: {
			Name: objectTable,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Path"},
				},
			},
		},
	},
}

// memObject is a stored object. Rows are never mutated once inserted; every
// write inserts a fresh copy, as go-memdb requires.
type memObject struct {
	Path        string
	ID          string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MemoryStore is an in-memory implementation of Store, best suited for local
// development and tests. Each operation runs in a single go-memdb transaction.
type MemoryStore struct {
	db  *memdb.MemDB
	now func() time.Time
}

// NewMemoryStore returns a ready-to-use, empty MemoryStore.
func NewMemoryStore() (*MemoryStore, error) {
	db, err := memdb.NewMemDB(memorySchema)
	if err != nil {
		return nil, fmt.Errorf("create memdb: %w", err)
	}
	return &MemoryStore{db: db, now: time.Now}, nil
}

// List returns the direct children of folder in path order. Deeper paths are
// collapsed into a single folder entry without an ID.
func (m *MemoryStore) List(ctx context.Context, folder string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := prefixFor(folder)

	txn := m.db.Txn(false)
	it, err := txn.Get(objectTable, "id_prefix", prefix)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}

	entries := []Entry{}
	seen := map[string]bool{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		obj := raw.(*memObject)
		rest := strings.TrimPrefix(obj.Path, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			dir := rest[:i]
			if !seen[dir] {
				seen[dir] = true
				entries = append(entries, Entry{Name: dir})
			}
			continue
		}
		created, updated := obj.CreatedAt, obj.UpdatedAt
		entries = append(entries, Entry{
			Name: rest,
			ID:   obj.ID,
			Metadata: map[string]any{
				"size":     len(obj.Data),
				"mimetype": obj.ContentType,
			},
			CreatedAt: &created,
			UpdatedAt: &updated,
		})
	}
	return entries, nil
}

// Upload stores a copy of data at path.
func (m *MemoryStore) Upload(ctx context.Context, path string, data []byte, opts UploadOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	txn := m.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(objectTable, "id", path)
	if err != nil {
		return "", fmt.Errorf("lookup %q: %w", path, err)
	}
	now := m.now()
	obj := &memObject{
		Path:        path,
		ID:          uuid.NewString(),
		ContentType: opts.ContentType,
		Data:        append([]byte(nil), data...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if existing != nil {
		if !opts.Overwrite {
			return "", fmt.Errorf("upload %q: %w", path, ErrObjectExists)
		}
		prev := existing.(*memObject)
		obj.ID = prev.ID
		obj.CreatedAt = prev.CreatedAt
	}
	if err := txn.Insert(objectTable, obj); err != nil {
		return "", fmt.Errorf("insert %q: %w", path, err)
	}
	txn.Commit()
	return path, nil
}

// Move renames from to to atomically.
func (m *MemoryStore) Move(ctx context.Context, from, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := m.db.Txn(true)
	defer txn.Abort()

	src, err := txn.First(objectTable, "id", from)
	if err != nil {
		return fmt.Errorf("lookup %q: %w", from, err)
	}
	if src == nil {
		return fmt.Errorf("move %q: %w", from, ErrObjectNotFound)
	}
	dst, err := txn.First(objectTable, "id", to)
	if err != nil {
		return fmt.Errorf("lookup %q: %w", to, err)
	}
	if dst != nil {
		return fmt.Errorf("move to %q: %w", to, ErrObjectExists)
	}

	moved := *src.(*memObject)
	moved.Path = to
	moved.UpdatedAt = m.now()
	if err := txn.Delete(objectTable, src); err != nil {
		return fmt.Errorf("delete %q: %w", from, err)
	}
	if err := txn.Insert(objectTable, &moved); err != nil {
		return fmt.Errorf("insert %q: %w", to, err)
	}
	txn.Commit()
	return nil
}

// Ping always succeeds unless ctx is done.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Get returns a copy of the object stored at path.
func (m *MemoryStore) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := m.db.Txn(false).First(objectTable, "id", path)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", path, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("get %q: %w", path, ErrObjectNotFound)
	}
	return append([]byte(nil), raw.(*memObject).Data...), nil
}

// Paths returns every stored path under prefix, in order.
func (m *MemoryStore) Paths(prefix string) []string {
	it, err := m.db.Txn(false).Get(objectTable, "id_prefix", prefix)
	if err != nil {
		return nil
	}
	var paths []string
	for raw := it.Next(); raw != nil; raw = it.Next() {
		paths = append(paths, raw.(*memObject).Path)
	}
	return paths
}

var _ Store = (*MemoryStore)(nil)
