package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestRepository_SaveAndLoad(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "forecast.db"))
	ctx := context.Background()

	snap := testSnapshot(t, "94043", 7)
	if err := repo.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	loaded, err := repo.LoadSnapshot(ctx, "94043")
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}

	if loaded.Len() != 7 {
		t.Fatalf("loaded %d records, want 7", loaded.Len())
	}
	if !loaded.FetchedAt.Equal(snap.FetchedAt) {
		t.Errorf("FetchedAt = %v, want %v", loaded.FetchedAt, snap.FetchedAt)
	}
	for i := 0; i < snap.Len(); i++ {
		want, _ := snap.At(i)
		got, _ := loaded.At(i)
		if got.Date.Format("2006-01-02") != want.Date.Format("2006-01-02") {
			t.Errorf("record %d date = %v, want %v", i, got.Date, want.Date)
		}
		if got.HighTemp != want.HighTemp || got.LowTemp != want.LowTemp {
			t.Errorf("record %d temps = %v/%v, want %v/%v", i, got.HighTemp, got.LowTemp, want.HighTemp, want.LowTemp)
		}
		if got.Coordinates == nil || got.Coordinates.Latitude != 37.39 {
			t.Errorf("record %d coordinates = %+v, want latitude 37.39", i, got.Coordinates)
		}
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("loaded snapshot invalid: %v", err)
	}
}

func TestRepository_SaveReplacesWholeLocation(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "forecast.db"))
	ctx := context.Background()

	if err := repo.SaveSnapshot(ctx, testSnapshot(t, "94043", 7)); err != nil {
		t.Fatalf("first SaveSnapshot() error = %v", err)
	}
	if err := repo.SaveSnapshot(ctx, testSnapshot(t, "94043", 3)); err != nil {
		t.Fatalf("second SaveSnapshot() error = %v", err)
	}
	if err := repo.SaveSnapshot(ctx, testSnapshot(t, "London,UK", 5)); err != nil {
		t.Fatalf("other location SaveSnapshot() error = %v", err)
	}

	loaded, err := repo.LoadSnapshot(ctx, "94043")
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if loaded.Len() != 3 {
		t.Errorf("loaded %d records, want 3 (old rows must be replaced)", loaded.Len())
	}

	other, err := repo.LoadSnapshot(ctx, "London,UK")
	if err != nil {
		t.Fatalf("LoadSnapshot(London) error = %v", err)
	}
	if other.Len() != 5 {
		t.Errorf("other location has %d records, want 5", other.Len())
	}
}

func TestRepository_LoadMissing(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "forecast.db"))

	_, err := repo.LoadSnapshot(context.Background(), "nowhere")
	if !errors.Is(err, ErrNoCachedSnapshot) {
		t.Errorf("LoadSnapshot() error = %v, want ErrNoCachedSnapshot", err)
	}
}

func TestRepository_SaveRejectsNil(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "forecast.db"))

	if err := repo.SaveSnapshot(context.Background(), nil); err == nil {
		t.Error("SaveSnapshot(nil) should fail")
	}
}

func TestRepository_CanceledContext(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "forecast.db"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.SaveSnapshot(ctx, testSnapshot(t, "94043", 2)); err == nil {
		t.Error("SaveSnapshot with canceled context should fail")
	}

	// Nothing was committed
	_, err := repo.LoadSnapshot(context.Background(), "94043")
	if !errors.Is(err, ErrNoCachedSnapshot) {
		t.Errorf("LoadSnapshot() error = %v, want ErrNoCachedSnapshot", err)
	}
}
