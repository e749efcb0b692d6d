package api

import (
	"context"
	"testing"
	"time"

	"github.com/org/recordvault/pkg/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitRecordCountMetric(t *testing.T) {
	store := newMemStore()
	now := time.Now().UTC()
	for _, id := range []string{"a", "b", "c"} {
		store.records[id] = &models.Record{ID: id, CreatedAt: now, UpdatedAt: now}
	}

	if err := InitRecordCountMetric(context.Background(), store); err != nil {
		t.Fatalf("InitRecordCountMetric: %v", err)
	}
	if got := testutil.ToFloat64(recordsTotal); got != 3 {
		t.Errorf("records gauge = %v, want 3", got)
	}
}
