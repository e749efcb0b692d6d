package record

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/org/recordvault/internal/storage"
	"github.com/org/recordvault/pkg/models"
)

// Service orchestrates the record gate and the storage backend. Records
// cross the gate on every write and read; the backend only ever sees the
// at-rest form.
type Service struct {
	store storage.Backend
	gate  *Gate
}

// NewService creates a record Service.
func NewService(store storage.Backend, gate *Gate) *Service {
	return &Service{store: store, gate: gate}
}

// Gate exposes the service's record gate.
func (s *Service) Gate() *Gate { return s.gate }

// Create stores fields as a new record and returns its wire form.
func (s *Service) Create(ctx context.Context, fields map[string]any) (*models.Record, error) {
	now := time.Now().UTC()
	record := &models.Record{
		ID:        uuid.NewString(),
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
	}
	stored, err := s.gate.PrepareForStorage(record)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveRecord(ctx, stored); err != nil {
		return nil, fmt.Errorf("saving record: %w", err)
	}
	return record, nil
}

// Get retrieves a record by id in its wire form.
func (s *Service) Get(ctx context.Context, id string) (*models.Record, error) {
	stored, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.gate.PrepareForPresentation(stored)
}

// Update replaces a record's fields and returns its wire form.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (*models.Record, error) {
	existing, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	record := &models.Record{
		ID:        id,
		Fields:    fields,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
	stored, err := s.gate.PrepareForStorage(record)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateRecord(ctx, stored); err != nil {
		return nil, fmt.Errorf("updating record: %w", err)
	}
	return record, nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteRecord(ctx, id)
}

// List returns all record ids.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.store.ListRecords(ctx)
}
