package db

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/config"
)

func TestNewRequiresDSN(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), config.DBConfig{}, nil); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		DSN:    "file:dbclient_test?mode=memory&cache=shared",
	}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Exec(context.Background(), "CREATE TABLE t (id INTEGER PRIMARY KEY)").Error; err != nil {
		t.Fatalf("create table: %v", err)
	}

	wantErr := errors.New("abort")
	err = client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO t (id) VALUES (1)").Error; err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	var count int64
	if err := client.Raw(context.Background(), "SELECT COUNT(*) FROM t").Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback, found %d rows", count)
	}
}
