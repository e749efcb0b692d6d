package record

import (
	"context"
	"errors"
	"testing"

	"github.com/org/recordvault/internal/crypto"
	"github.com/org/recordvault/internal/storage"
	"github.com/org/recordvault/pkg/models"
)

// fakeStore is the minimal Backend for service tests.
type fakeStore struct {
	records map[string]*models.Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*models.Record{}}
}

func (f *fakeStore) SaveRecord(ctx context.Context, r *models.Record) error {
	f.records[r.ID] = r
	return nil
}

func (f *fakeStore) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) UpdateRecord(ctx context.Context, r *models.Record) error {
	if _, ok := f.records[r.ID]; !ok {
		return storage.ErrNotFound
	}
	f.records[r.ID] = r
	return nil
}

func (f *fakeStore) DeleteRecord(ctx context.Context, id string) error {
	if _, ok := f.records[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeStore) ListRecords(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range f.records {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStore) WriteAuditEntry(ctx context.Context, e *models.AuditEntry) error { return nil }
func (f *fakeStore) QueryAuditLog(ctx context.Context, filter storage.AuditFilter) ([]*models.AuditEntry, error) {
	return nil, nil
}
func (f *fakeStore) CountRecords(ctx context.Context) (int64, error) {
	return int64(len(f.records)), nil
}
func (f *fakeStore) Close() {}

func newTestService(t *testing.T, encrypt bool) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	gate := NewGate(newTestCipher(t), sensitiveFields, encrypt)
	return NewService(store, gate), store
}

func TestServiceCreateGetEncrypted(t *testing.T) {
	svc, store := newTestService(t, true)
	ctx := context.Background()

	created, err := svc.Create(ctx, map[string]any{
		"empName": "John Doe", "password": "password123", "age": 30, "department": "IT",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created record has no id")
	}
	// Wire form stays plaintext
	if created.Fields["password"] != "password123" {
		t.Errorf("create response should be plaintext: %v", created.Fields["password"])
	}
	// At-rest form is ciphertext
	stored := store.records[created.ID]
	if v, _ := stored.Fields["password"].(string); !crypto.IsEnvelope(v) {
		t.Errorf("stored password not encrypted: %v", stored.Fields["password"])
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Fields["empName"] != "John Doe" || got.Fields["password"] != "password123" {
		t.Errorf("decrypted read mismatch: %v", got.Fields)
	}
}

func TestServiceCreateGetPlaintext(t *testing.T) {
	svc, store := newTestService(t, false)
	ctx := context.Background()

	created, err := svc.Create(ctx, map[string]any{"empName": "Jane", "password": "pw"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	stored := store.records[created.ID]
	if stored.Fields["password"] != "pw" {
		t.Errorf("with encryption off, stored value should be plaintext: %v", stored.Fields["password"])
	}
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Fields["password"] != "pw" {
		t.Errorf("read mismatch: %v", got.Fields["password"])
	}
}

func TestServiceUpdate(t *testing.T) {
	svc, _ := newTestService(t, true)
	ctx := context.Background()

	created, _ := svc.Create(ctx, map[string]any{"empName": "John Doe", "department": "IT"})
	updated, err := svc.Update(ctx, created.ID, map[string]any{"empName": "John Doe", "department": "Security"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Fields["department"] != "Security" {
		t.Errorf("update response mismatch: %v", updated.Fields)
	}
	got, _ := svc.Get(ctx, created.ID)
	if got.Fields["department"] != "Security" {
		t.Errorf("updated read mismatch: %v", got.Fields)
	}
}

func TestServiceGetNotFound(t *testing.T) {
	svc, _ := newTestService(t, true)
	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceDeleteAndList(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()

	a, _ := svc.Create(ctx, map[string]any{"empName": "A"})
	b, _ := svc.Create(ctx, map[string]any{"empName": "B"})

	ids, err := svc.List(ctx)
	if err != nil || len(ids) != 2 {
		t.Fatalf("List: got %v, %v", ids, err)
	}

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ids, _ = svc.List(ctx)
	if len(ids) != 1 || ids[0] != b.ID {
		t.Errorf("expected only %q left, got %v", b.ID, ids)
	}
}
