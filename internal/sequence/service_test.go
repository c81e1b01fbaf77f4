package sequence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	pkgerrors "github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:sequence_%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Counter{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return conn
}

func seedCounter(t *testing.T, conn *gorm.DB, orderStart, invoiceStart string) {
	t.Helper()

	counter := models.Counter{OrderStart: orderStart, InvoiceStart: invoiceStart}
	if err := conn.Create(&counter).Error; err != nil {
		t.Fatalf("seeding counter: %v", err)
	}
}

func TestNextOrderNumberFormat(t *testing.T) {
	conn := openTestDB(t)
	seedCounter(t, conn, "9RX", "INV-")
	svc := NewService()

	got, err := svc.Next(context.Background(), conn, enums.SequenceKindOrder)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != "9RX000001" {
		t.Fatalf("order number = %q, want 9RX000001", got)
	}
}

func TestNextInvoiceNumberFormat(t *testing.T) {
	conn := openTestDB(t)
	seedCounter(t, conn, "9RX", "INV-")
	fixed := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	svc := NewServiceAt(func() time.Time { return fixed })

	got, err := svc.Next(context.Background(), conn, enums.SequenceKindInvoice)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != "INV-2025000001" {
		t.Fatalf("invoice number = %q, want INV-2025000001", got)
	}
}

func TestNextIsStrictlyIncreasing(t *testing.T) {
	conn := openTestDB(t)
	seedCounter(t, conn, "9RX", "INV-")
	svc := NewService()

	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		got, err := svc.Next(context.Background(), conn, enums.SequenceKindOrder)
		if err != nil {
			t.Fatalf("Next #%d: %v", i, err)
		}
		if seen[got] {
			t.Fatalf("duplicate number issued: %s", got)
		}
		seen[got] = true
	}

	var counter models.Counter
	if err := conn.Order("id DESC").First(&counter).Error; err != nil {
		t.Fatalf("reloading counter: %v", err)
	}
	if counter.OrderNo != 25 {
		t.Fatalf("order_no = %d, want 25", counter.OrderNo)
	}
}

func TestNextKindsAreIndependent(t *testing.T) {
	conn := openTestDB(t)
	seedCounter(t, conn, "9RX", "INV-")
	svc := NewService()

	if _, err := svc.Next(context.Background(), conn, enums.SequenceKindOrder); err != nil {
		t.Fatalf("order Next: %v", err)
	}
	if _, err := svc.Next(context.Background(), conn, enums.SequenceKindOrder); err != nil {
		t.Fatalf("order Next: %v", err)
	}
	if _, err := svc.Next(context.Background(), conn, enums.SequenceKindInvoice); err != nil {
		t.Fatalf("invoice Next: %v", err)
	}

	var counter models.Counter
	if err := conn.Order("id DESC").First(&counter).Error; err != nil {
		t.Fatalf("reloading counter: %v", err)
	}
	if counter.OrderNo != 2 || counter.InvoiceNo != 1 {
		t.Fatalf("counters = (%d,%d), want (2,1)", counter.OrderNo, counter.InvoiceNo)
	}
}

func TestNextRollsBackWithTransaction(t *testing.T) {
	conn := openTestDB(t)
	seedCounter(t, conn, "9RX", "INV-")
	svc := NewService()

	tx := conn.Begin()
	if _, err := svc.Next(context.Background(), tx, enums.SequenceKindOrder); err != nil {
		t.Fatalf("Next in tx: %v", err)
	}
	if err := tx.Rollback().Error; err != nil {
		t.Fatalf("rollback: %v", err)
	}

	var counter models.Counter
	if err := conn.Order("id DESC").First(&counter).Error; err != nil {
		t.Fatalf("reloading counter: %v", err)
	}
	if counter.OrderNo != 0 {
		t.Fatalf("order_no = %d after rollback, want 0", counter.OrderNo)
	}
}

func TestNextMissingCounterRow(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService()

	_, err := svc.Next(context.Background(), conn, enums.SequenceKindOrder)
	if err == nil {
		t.Fatal("expected error for missing counter row")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
