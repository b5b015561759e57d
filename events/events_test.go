package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/settleup-engine/models"
)

func TestGroupChangedMessage_JSON(t *testing.T) {
	msg := NewGroupChangedMessage(42, "payment.created")
	_, err := uuid.Parse(msg.ID)
	require.NoError(t, err)

	body, err := msg.ToJSON()
	require.NoError(t, err)

	decoded, err := GroupChangedMessageFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, decoded.ID)
	assert.Equal(t, int64(42), decoded.GroupID)
	assert.Equal(t, "payment.created", decoded.Reason)
	assert.True(t, decoded.Timestamp.Equal(msg.Timestamp))
}

func TestGroupChangedMessageFromJSON_Malformed(t *testing.T) {
	_, err := GroupChangedMessageFromJSON([]byte("not json"))
	assert.Error(t, err)

	_, err = GroupChangedMessageFromJSON([]byte(`{"reason":"expense.created"}`))
	assert.Error(t, err)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{12, 30 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, isConnectionError(nil))
	assert.True(t, isConnectionError(amqp091.ErrClosed))
	assert.True(t, isConnectionError(errors.New("message channel closed")))
	assert.True(t, isConnectionError(errors.New("unexpected EOF")))
	assert.False(t, isConnectionError(errors.New("invalid input")))
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	var (
		mu    sync.Mutex
		calls = map[int64]int{}
		done  = make(chan struct{}, 10)
	)
	d := NewDebouncer(30*time.Millisecond, func(groupID int64) {
		mu.Lock()
		calls[groupID]++
		mu.Unlock()
		done <- struct{}{}
	})
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Trigger(1)
	}
	d.Trigger(2)

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("debounced call never fired")
		}
	}

	// Give a stray timer the chance to misfire
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[int64]int{1: 1, 2: 1}, calls)
	assert.Zero(t, d.Pending())
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	fired := make(chan int64, 1)
	d := NewDebouncer(20*time.Millisecond, func(groupID int64) { fired <- groupID })

	d.Trigger(7)
	assert.Equal(t, 1, d.Pending())
	d.Stop()
	d.Trigger(8)

	select {
	case groupID := <-fired:
		t.Fatalf("group %d fired after stop", groupID)
	case <-time.After(80 * time.Millisecond):
	}
	assert.Zero(t, d.Pending())
}

type fakeSettler struct {
	mu     sync.Mutex
	groups []int64
	done   chan struct{}
}

func (f *fakeSettler) SettleGroup(ctx context.Context, groupID int64) (*models.GroupSettlement, error) {
	f.mu.Lock()
	f.groups = append(f.groups, groupID)
	f.mu.Unlock()
	f.done <- struct{}{}
	return &models.GroupSettlement{GroupID: groupID, Source: models.BalanceSourceExpenses}, nil
}

func TestRefresher_HandleMessageDebouncesPerGroup(t *testing.T) {
	settler := &fakeSettler{done: make(chan struct{}, 4)}
	refresher := NewRefresher(settler, 20*time.Millisecond, time.Second)
	defer refresher.Stop()

	ctx := context.Background()
	require.NoError(t, refresher.HandleMessage(ctx, NewGroupChangedMessage(3, "expense.created")))
	require.NoError(t, refresher.HandleMessage(ctx, NewGroupChangedMessage(3, "payment.created")))

	select {
	case <-settler.done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never ran")
	}
	time.Sleep(50 * time.Millisecond)

	settler.mu.Lock()
	defer settler.mu.Unlock()
	assert.Equal(t, []int64{3}, settler.groups)
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.PublishGroupChanged(context.Background(), 1, "member.added"))
}
