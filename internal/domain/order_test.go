package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string {
	return &s
}

func TestValidOrderStatus(t *testing.T) {
	for _, status := range []string{
		OrderStatusReceived, OrderStatusInProgress, OrderStatusPaused,
		OrderStatusFinished, OrderStatusPaid,
	} {
		assert.True(t, ValidOrderStatus(status), status)
	}

	assert.False(t, ValidOrderStatus("DELIVERED"))
	assert.False(t, ValidOrderStatus(""))
	assert.False(t, ValidOrderStatus("paid"))
}

func TestApplyTransition_PausedStoresReason(t *testing.T) {
	now := time.Now().UTC()
	order := Order{Status: OrderStatusInProgress}

	previous := order.ApplyTransition(OrderStatusPaused, strPtr("aguardando peça"), now)

	assert.Equal(t, OrderStatusInProgress, previous)
	assert.Equal(t, OrderStatusPaused, order.Status)
	assert.Equal(t, "aguardando peça", *order.PausedReason)
}

func TestApplyTransition_LeavingPausedClearsReason(t *testing.T) {
	now := time.Now().UTC()
	order := Order{Status: OrderStatusPaused, PausedReason: strPtr("aguardando peça")}

	order.ApplyTransition(OrderStatusInProgress, nil, now)

	assert.Equal(t, OrderStatusInProgress, order.Status)
	assert.Nil(t, order.PausedReason)
}

func TestApplyTransition_ReenteringPausedWithoutReasonClearsIt(t *testing.T) {
	now := time.Now().UTC()
	order := Order{Status: OrderStatusPaused, PausedReason: strPtr("old reason")}

	order.ApplyTransition(OrderStatusPaused, nil, now)

	assert.Nil(t, order.PausedReason)
}

func TestApplyTransition_FinishedStampsOnce(t *testing.T) {
	now := time.Now().UTC()
	order := Order{Status: OrderStatusInProgress}

	order.ApplyTransition(OrderStatusFinished, nil, now)
	assert.NotNil(t, order.FinishedAt)
	first := *order.FinishedAt

	later := now.Add(time.Hour)
	order.ApplyTransition(OrderStatusFinished, nil, later)

	assert.Equal(t, first, *order.FinishedAt, "re-entering FINISHED must not re-stamp")
}

func TestApplyTransition_PaidStampsAndBackfillsFinished(t *testing.T) {
	now := time.Now().UTC()
	order := Order{Status: OrderStatusInProgress}

	order.ApplyTransition(OrderStatusPaid, nil, now)

	assert.NotNil(t, order.PaidAt)
	assert.NotNil(t, order.FinishedAt, "paying an unfinished order backfills finishedAt")
	assert.Equal(t, now, *order.PaidAt)
	assert.Equal(t, now, *order.FinishedAt)
}

func TestApplyTransition_PaidKeepsExistingFinishedAt(t *testing.T) {
	finished := time.Now().UTC().Add(-time.Hour)
	order := Order{Status: OrderStatusFinished, FinishedAt: &finished}

	order.ApplyTransition(OrderStatusPaid, nil, time.Now().UTC())

	assert.Equal(t, finished, *order.FinishedAt)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, (&Order{Status: OrderStatusPaid}).IsTerminal())
	assert.False(t, (&Order{Status: OrderStatusFinished}).IsTerminal())
}

func TestApplyTransition_FullLifecycle(t *testing.T) {
	base := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	order := Order{Status: OrderStatusReceived, CreatedAt: base}

	order.ApplyTransition(OrderStatusInProgress, nil, base.Add(1*time.Hour))
	order.ApplyTransition(OrderStatusPaused, strPtr("aguardando peça"), base.Add(2*time.Hour))
	assert.Equal(t, "aguardando peça", *order.PausedReason)

	order.ApplyTransition(OrderStatusInProgress, nil, base.Add(3*time.Hour))
	assert.Nil(t, order.PausedReason)

	order.ApplyTransition(OrderStatusFinished, nil, base.Add(4*time.Hour))
	order.ApplyTransition(OrderStatusPaid, nil, base.Add(5*time.Hour))

	assert.Equal(t, OrderStatusPaid, order.Status)
	assert.Nil(t, order.PausedReason)
	assert.Equal(t, base.Add(4*time.Hour), *order.FinishedAt)
	assert.Equal(t, base.Add(5*time.Hour), *order.PaidAt)
}

func TestOrderTotal(t *testing.T) {
	items := []OrderItem{
		{ServiceName: "Troca de tela", Price: 100.00, Quantity: 1},
		{ServiceName: "Película", Price: 50.00, Quantity: 2},
	}

	assert.Equal(t, 200.00, OrderTotal(items))
	assert.Equal(t, 100.00, items[1].LineTotal())
}
