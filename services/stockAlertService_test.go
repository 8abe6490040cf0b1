package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, phone, message string) error {
	return m.Called(ctx, phone, message).Error(0)
}

func TestStockAlertSendsOneMessage(t *testing.T) {
	store := newTestStore(t)
	seedProduct(t, store, "LOW1", 8000, 2)
	seedProduct(t, store, "LOW2", 5000, 0)
	seedProduct(t, store, "OK", 5000, 50)

	notifier := new(mockNotifier)
	notifier.On("Send", mock.Anything, "62811", mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "(LOW1)") && strings.Contains(msg, "(LOW2)") && !strings.Contains(msg, "(OK)")
	})).Return(nil).Once()

	svc := NewStockAlertService(store.Products, notifier, "62811", 10, quiet)
	n, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	notifier.AssertExpectations(t)
}

func TestStockAlertSkipsWhenNothingLow(t *testing.T) {
	store := newTestStore(t)
	seedProduct(t, store, "OK", 5000, 50)

	notifier := new(mockNotifier)
	svc := NewStockAlertService(store.Products, notifier, "62811", 10, quiet)
	n, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestStockAlertSendFailureIsReported(t *testing.T) {
	store := newTestStore(t)
	seedProduct(t, store, "LOW", 5000, 1)

	notifier := new(mockNotifier)
	notifier.On("Send", mock.Anything, "62811", mock.Anything).Return(errors.New("status 500")).Once()

	svc := NewStockAlertService(store.Products, notifier, "62811", 10, quiet)
	_, err := svc.Run(context.Background())
	assert.Error(t, err)
	notifier.AssertNumberOfCalls(t, "Send", 1)
}

func TestStockAlertDisabledWithoutNotifier(t *testing.T) {
	store := newTestStore(t)
	seedProduct(t, store, "LOW", 5000, 1)

	svc := NewStockAlertService(store.Products, nil, "", 10, quiet)
	assert.False(t, svc.Enabled())
	n, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStockAlertSchedule(t *testing.T) {
	store := newTestStore(t)
	svc := NewStockAlertService(store.Products, nil, "", 10, quiet)

	c := cron.New(cron.WithSeconds())
	id, err := svc.Schedule(c, "0 0 8 * * *", time.Second)
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = svc.Schedule(c, "not a spec", time.Second)
	assert.Error(t, err)
}
