package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"raffle-system/internal/store"
	"raffle-system/monitoring"

	"github.com/pocketbase/pocketbase/core"
	pubnub "github.com/pubnub/go/v7"
)

const (
	// FeedChannel carries row-level change notifications between instances.
	FeedChannel = "raffle-changes"
	// StateChannel carries "state changed" pushes for UI re-renders.
	StateChannel = "raffle-state"
)

// ChangeFeedListener turns bursts of row-level change notifications into
// single reconciliation passes. Sources: PocketBase record hooks (covers
// this process and every browser session writing through the REST API) and
// a PubNub subscription (covers other server instances). Each notification
// restarts one debounce timer; when it fires, exactly one reconcile runs.
type ChangeFeedListener struct {
	pn         *pubnub.PubNub
	reconciler *RemoteSyncReconciler
	monitor    *monitoring.Monitor
	debounce   time.Duration
	uuid       string

	mu      sync.Mutex
	timer   *time.Timer
	subs    map[int]func()
	nextSub int

	stopChan chan struct{}
	stopOnce sync.Once
}

func NewChangeFeedListener(pn *pubnub.PubNub, reconciler *RemoteSyncReconciler, monitor *monitoring.Monitor, debounce time.Duration, uuid string) *ChangeFeedListener {
	return &ChangeFeedListener{
		pn:         pn,
		reconciler: reconciler,
		monitor:    monitor,
		debounce:   debounce,
		uuid:       uuid,
		subs:       make(map[int]func()),
		stopChan:   make(chan struct{}),
	}
}

type feedEvent struct {
	Collection string `json:"collection"`
	Action     string `json:"action"`
	RecordID   string `json:"record_id"`
}

// BindToApp hooks the watched collections so every committed write lands in
// the feed, whichever client produced it.
func (l *ChangeFeedListener) BindToApp(app core.App) {
	collections := []string{
		store.CollectionSales,
		store.CollectionReservations,
		store.CollectionAssignments,
		store.CollectionNumberOwners,
	}

	for _, collection := range collections {
		collection := collection
		app.OnRecordAfterCreateSuccess(collection).BindFunc(func(e *core.RecordEvent) error {
			l.recordEvent(collection, "create", e.Record.Id)
			return e.Next()
		})
		app.OnRecordAfterUpdateSuccess(collection).BindFunc(func(e *core.RecordEvent) error {
			l.recordEvent(collection, "update", e.Record.Id)
			return e.Next()
		})
		app.OnRecordAfterDeleteSuccess(collection).BindFunc(func(e *core.RecordEvent) error {
			l.recordEvent(collection, "delete", e.Record.Id)
			return e.Next()
		})
	}
}

func (l *ChangeFeedListener) recordEvent(collection, action, recordID string) {
	l.monitor.TrackFeedEvent(collection, action)

	if l.pn != nil {
		l.pn.Publish().
			Channel(FeedChannel).
			Message(map[string]any{
				"collection": collection,
				"action":     action,
				"record_id":  recordID,
			}).
			Execute()
	}

	l.Notify()
}

// Start consumes cross-instance feed events from PubNub. Safe to call with
// no PubNub configured; the PocketBase hooks alone then drive the feed.
func (l *ChangeFeedListener) Start(ctx context.Context) {
	if l.pn == nil {
		return
	}

	listener := pubnub.NewListener()
	l.pn.AddListener(listener)
	l.pn.Subscribe().
		Channels([]string{FeedChannel}).
		Execute()

	go func() {
		for {
			select {
			case message := <-listener.Message:
				l.handleRemoteEvent(message)
			case <-l.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (l *ChangeFeedListener) handleRemoteEvent(message *pubnub.PNMessage) {
	if message == nil || message.Publisher == l.uuid {
		// Our own publishes already went through recordEvent.
		return
	}

	var event feedEvent
	data, ok := message.Message.(map[string]interface{})
	if !ok {
		return
	}
	jsonData, _ := json.Marshal(data)
	if err := json.Unmarshal(jsonData, &event); err != nil {
		log.Printf("Error parsing change feed event: %v", err)
		return
	}

	l.monitor.TrackFeedEvent(event.Collection, event.Action)
	l.Notify()
}

// Notify restarts the debounce timer. Bursts of notifications collapse into
// the pending timer; a reconciliation pass never overlaps another because
// the reconciler serializes passes itself.
func (l *ChangeFeedListener) Notify() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.timer == nil {
		l.timer = time.AfterFunc(l.debounce, l.fire)
		return
	}
	l.timer.Reset(l.debounce)
}

func (l *ChangeFeedListener) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := l.reconciler.Reconcile(ctx, "changefeed"); err != nil {
		// Working set untouched; the next notification retries.
		return
	}
	l.EmitStateChanged()
}

// Subscribe registers a callback invoked after every state change. Returns
// an id for Unsubscribe.
func (l *ChangeFeedListener) Subscribe(fn func()) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextSub++
	l.subs[l.nextSub] = fn
	return l.nextSub
}

func (l *ChangeFeedListener) Unsubscribe(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.subs, id)
}

// EmitStateChanged fans the re-render signal out to in-process subscribers
// and, when PubNub is configured, to browser sessions.
func (l *ChangeFeedListener) EmitStateChanged() {
	l.mu.Lock()
	callbacks := make([]func(), 0, len(l.subs))
	for _, fn := range l.subs {
		callbacks = append(callbacks, fn)
	}
	l.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}

	if l.pn != nil {
		l.pn.Publish().
			Channel(StateChannel).
			Message(map[string]any{"type": "state_changed"}).
			Execute()
	}
}

func (l *ChangeFeedListener) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopChan)
		l.mu.Lock()
		if l.timer != nil {
			l.timer.Stop()
		}
		l.mu.Unlock()
		if l.pn != nil {
			l.pn.Unsubscribe().
				Channels([]string{FeedChannel}).
				Execute()
		}
	})
}
