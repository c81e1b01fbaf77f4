package recovery

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/db/models"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/errors"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
)

type stubOrderReader struct {
	pending  []models.Order
	listErr  error
	notified []uuid.UUID
	markErr  error
}

func (s *stubOrderReader) ListUnnotified(context.Context, int) ([]models.Order, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.pending, nil
}

func (s *stubOrderReader) SetNotifiedAt(_ context.Context, id uuid.UUID, _ time.Time) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.notified = append(s.notified, id)
	return nil
}

type stubOrderNotifier struct {
	sent    int
	failFor map[string]error
}

func (s *stubOrderNotifier) NotifyOrderPlaced(_ context.Context, payload any) error {
	body, ok := payload.(map[string]any)
	if ok {
		if number, ok := body["orderNumber"].(string); ok {
			if err, failed := s.failFor[number]; failed {
				return err
			}
		}
	}
	s.sent++
	return nil
}

func testOrder(number string) models.Order {
	return models.Order{
		ID:          uuid.New(),
		OrderNumber: number,
		TotalAmount: decimal.RequireFromString("10.00"),
	}
}

func newJob(t *testing.T, reader *stubOrderReader, notifier *stubOrderNotifier) Job {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})

	job, err := NewOrderNotifyJob(OrderNotifyJobParams{
		Logger:   logg,
		Orders:   reader,
		Notifier: notifier,
	})
	require.NoError(t, err)
	return job
}

func TestOrderNotifyJobDeliversAndMarks(t *testing.T) {
	first := testOrder("9RX000001")
	second := testOrder("9RX000002")
	reader := &stubOrderReader{pending: []models.Order{first, second}}
	notifier := &stubOrderNotifier{}
	job := newJob(t, reader, notifier)

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, 2, notifier.sent)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, reader.notified)
}

func TestOrderNotifyJobPartialFailure(t *testing.T) {
	healthy := testOrder("9RX000001")
	broken := testOrder("9RX000002")
	reader := &stubOrderReader{pending: []models.Order{healthy, broken}}
	notifier := &stubOrderNotifier{failFor: map[string]error{
		"9RX000002": errors.New(errors.CodeDependency, "backend down"),
	}}
	job := newJob(t, reader, notifier)

	err := job.Run(context.Background())
	require.Error(t, err)

	// The healthy order still went out; the broken one stays pending for the
	// next cycle.
	assert.Equal(t, 1, notifier.sent)
	assert.Equal(t, []uuid.UUID{healthy.ID}, reader.notified)
	assert.Contains(t, err.Error(), "9RX000002")
}

func TestOrderNotifyJobEmptyBacklog(t *testing.T) {
	reader := &stubOrderReader{}
	notifier := &stubOrderNotifier{}
	job := newJob(t, reader, notifier)

	require.NoError(t, job.Run(context.Background()))
	assert.Zero(t, notifier.sent)
}
