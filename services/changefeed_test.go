package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-system/internal/store"
	"raffle-system/models"
	"raffle-system/monitoring"
)

// countingStore counts snapshot fetches so tests can observe how many
// reconciliation passes actually ran.
type countingStore struct {
	*store.MemoryStore
	listCalls atomic.Int32
}

func (s *countingStore) ListSales(ctx context.Context) ([]models.Sale, error) {
	s.listCalls.Add(1)
	return s.MemoryStore.ListSales(ctx)
}

func setupFeed(debounce time.Duration) (*ChangeFeedListener, *countingStore, *WorkingSet) {
	remote := &countingStore{MemoryStore: store.NewMemoryStore()}
	set := NewWorkingSet()
	monitor := monitoring.NewMonitor()
	reconciler := NewRemoteSyncReconciler(remote, NewDuplicationGuard(), set, nil, monitor)
	feed := NewChangeFeedListener(nil, reconciler, monitor, debounce, "node-1")
	return feed, remote, set
}

func TestNotify_BurstCoalescesIntoOnePass(t *testing.T) {
	feed, remote, _ := setupFeed(50 * time.Millisecond)
	defer feed.Stop()

	for i := 0; i < 10; i++ {
		feed.Notify()
	}

	assert.Eventually(t, func() bool {
		return remote.listCalls.Load() == 1
	}, time.Second, 10*time.Millisecond)

	// No further passes after the burst settled.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), remote.listCalls.Load())
}

func TestNotify_SeparatedEventsEachTriggerAPass(t *testing.T) {
	feed, remote, _ := setupFeed(20 * time.Millisecond)
	defer feed.Stop()

	feed.Notify()
	require.Eventually(t, func() bool {
		return remote.listCalls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	feed.Notify()
	assert.Eventually(t, func() bool {
		return remote.listCalls.Load() == 2
	}, time.Second, 5*time.Millisecond)
}

func TestFire_UpdatesWorkingSetAndNotifiesSubscribers(t *testing.T) {
	feed, remote, set := setupFeed(10 * time.Millisecond)
	defer feed.Stop()

	_, err := remote.CreateSale(context.Background(), &models.Sale{
		Numbers: []int{1}, Buyer: models.Buyer{Name: "Ana", Phone: "555"},
	})
	require.NoError(t, err)

	var notified atomic.Int32
	id := feed.Subscribe(func() { notified.Add(1) })
	defer feed.Unsubscribe(id)

	feed.Notify()

	require.Eventually(t, func() bool {
		return notified.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	sales, _, _, _ := set.Snapshot()
	assert.Len(t, sales, 1)
}

func TestUnsubscribe_StopsCallbacks(t *testing.T) {
	feed, _, _ := setupFeed(time.Hour)
	defer feed.Stop()

	var notified atomic.Int32
	id := feed.Subscribe(func() { notified.Add(1) })

	feed.EmitStateChanged()
	assert.Equal(t, int32(1), notified.Load())

	feed.Unsubscribe(id)
	feed.EmitStateChanged()
	assert.Equal(t, int32(1), notified.Load())
}
