package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/storage"
	"github.com/google/uuid"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db, err := storage.Open(storage.Config{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	var one int
	if err := db.NewSelect().ColumnExpr("1").Scan(context.Background(), &one); err != nil {
		t.Fatalf("select: %v", err)
	}
	if one != 1 {
		t.Fatalf("expected 1, got %d", one)
	}
	if stats := db.DB.Stats(); stats.MaxOpenConnections != 1 {
		t.Fatalf("expected in-memory sqlite to use one connection, got %d", stats.MaxOpenConnections)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := storage.Open(storage.Config{Driver: "oracle", DSN: "x"}); !errors.Is(err, storage.ErrDriverUnsupported) {
		t.Fatalf("expected ErrDriverUnsupported, got %v", err)
	}
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	if _, err := storage.Open(storage.Config{Driver: "postgres"}); !errors.Is(err, storage.ErrDSNRequired) {
		t.Fatalf("expected ErrDSNRequired, got %v", err)
	}
}
