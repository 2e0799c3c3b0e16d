// Package inmem provides an in-process channel provider wiring multiple
// accounts together. It backs integration tests and the simulator; real
// deployments plug the host messenger's secure-channel stack into the same
// interfaces instead.
package inmem

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/model/messages"
	"github.com/groupweave/weave-go/network"
)

// link is one established pairwise channel between two accounts.
type link struct {
	a group.UserID
	b group.UserID
}

func (l link) peerOf(userID group.UserID) (group.UserID, bool) {
	switch userID {
	case l.a:
		return l.b, true
	case l.b:
		return l.a, true
	}
	return 0, false
}

// Hub routes channel handshakes and control messages between in-process
// accounts. All callbacks and deliveries run on a single dispatch goroutine,
// preserving global order, so engines never re-enter themselves and
// per-channel ordering holds.
type Hub struct {
	mu       sync.Mutex
	log      zerolog.Logger
	accounts map[group.UserID]*Account
	links    map[group.ChannelID]link
	nextID   group.ChannelID
	opens    map[group.UserID]int

	// onOpen, when set, can veto a handshake, typically with a
	// *network.RateLimitedError to exercise backoff paths
	onOpen func(from, to group.UserID) error

	// queue is unbounded so tasks can fan out further tasks from within the
	// dispatch goroutine without blocking against their own consumer
	queue    []func()
	inflight int
	cond     *sync.Cond
	stopped  bool
}

func NewHub(log zerolog.Logger) *Hub {
	h := &Hub{
		log:      log.With().Str("component", "inmem_hub").Logger(),
		accounts: make(map[group.UserID]*Account),
		links:    make(map[group.ChannelID]link),
		opens:    make(map[group.UserID]int),
	}
	h.cond = sync.NewCond(&h.mu)
	go h.dispatch()
	return h
}

// Join registers an account with the hub and returns its provider handle.
func (h *Hub) Join(userID group.UserID) *Account {
	h.mu.Lock()
	defer h.mu.Unlock()

	acc := &Account{hub: h, userID: userID}
	h.accounts[userID] = acc
	return acc
}

// SetOpenHook installs a veto hook for channel handshakes.
func (h *Hub) SetOpenHook(hook func(from, to group.UserID) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onOpen = hook
}

// LinkCount returns the number of currently established channels.
func (h *Hub) LinkCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.links)
}

// OpenCount returns how many successful handshakes the user initiated.
func (h *Hub) OpenCount(userID group.UserID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.opens[userID]
}

// Settle blocks until every queued handshake callback, delivery and ack has
// run and no new ones were produced, then returns.
func (h *Hub) Settle() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for h.inflight > 0 && !h.stopped {
		h.cond.Wait()
	}
}

// Stop shuts the dispatch goroutine down. Pending tasks are discarded.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	h.cond.Broadcast()
}

func (h *Hub) dispatch() {
	h.mu.Lock()
	for {
		for len(h.queue) == 0 && !h.stopped {
			h.cond.Wait()
		}
		if h.stopped {
			h.mu.Unlock()
			return
		}
		task := h.queue[0]
		h.queue = h.queue[1:]
		h.mu.Unlock()

		task()

		h.mu.Lock()
		h.inflight--
		if h.inflight == 0 {
			h.cond.Broadcast()
		}
	}
}

// enqueue schedules a task on the dispatch goroutine. Caller holds the
// hub mutex.
func (h *Hub) enqueue(task func()) {
	h.inflight++
	h.queue = append(h.queue, task)
	h.cond.Broadcast()
}

// Account is one registered user's view of the hub. It implements both the
// channel factory and the conduit for that user.
type Account struct {
	hub      *Hub
	userID   group.UserID
	receiver func(channel group.ChannelID, msg messages.Control)
	discard  func(channel group.ChannelID, historyDeleted bool)
}

var _ network.ChannelFactory = (*Account)(nil)
var _ network.Conduit = (*Account)(nil)

// SetReceiver installs the inbound control-message handler, typically the
// engine's OnControlMessageReceived.
func (a *Account) SetReceiver(receiver func(channel group.ChannelID, msg messages.Control)) {
	a.hub.mu.Lock()
	defer a.hub.mu.Unlock()
	a.receiver = receiver
}

// SetDiscardReceiver installs the handler for provider-side channel
// discards, typically the engine's OnChannelDiscarded.
func (a *Account) SetDiscardReceiver(receiver func(channel group.ChannelID, historyDeleted bool)) {
	a.hub.mu.Lock()
	defer a.hub.mu.Unlock()
	a.discard = receiver
}

// DiscardChannel tears the channel down provider-side, the way a peer
// deleting the conversation on its device would, and notifies the discard
// receivers on both ends.
func (a *Account) DiscardChannel(channel group.ChannelID, historyDeleted bool) {
	h := a.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	l, exists := h.links[channel]
	if !exists {
		return
	}
	delete(h.links, channel)

	for _, userID := range []group.UserID{l.a, l.b} {
		acc := h.accounts[userID]
		if acc == nil || acc.discard == nil {
			continue
		}
		receiver := acc.discard
		h.enqueue(func() { receiver(channel, historyDeleted) })
	}
}

func (a *Account) OpenChannel(userID group.UserID, done network.ChannelCallback) {
	h := a.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.onOpen != nil {
		if err := h.onOpen(a.userID, userID); err != nil {
			h.enqueue(func() { done(0, err) })
			return
		}
	}
	if _, exists := h.accounts[userID]; !exists {
		h.enqueue(func() { done(0, fmt.Errorf("no such user: %d", userID)) })
		return
	}

	h.nextID++
	channel := h.nextID
	h.links[channel] = link{a: a.userID, b: userID}
	h.opens[a.userID]++

	h.log.Debug().
		Int64("from", int64(a.userID)).
		Int64("to", int64(userID)).
		Int32("channel", int32(channel)).
		Msg("channel opened")

	h.enqueue(func() { done(channel, nil) })
}

func (a *Account) PeerUser(channel group.ChannelID) (group.UserID, error) {
	h := a.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	l, exists := h.links[channel]
	if !exists {
		return 0, fmt.Errorf("no such channel: %d", channel)
	}
	peer, member := l.peerOf(a.userID)
	if !member {
		return 0, fmt.Errorf("channel %d does not involve user %d", channel, a.userID)
	}
	return peer, nil
}

func (a *Account) CloseChannel(channel group.ChannelID, dropHistory bool) {
	h := a.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.links, channel)
}

func (a *Account) Send(channel group.ChannelID, msg messages.Control) error {
	return a.deliver(channel, msg, nil)
}

func (a *Account) SendAcked(channel group.ChannelID, msg messages.Control, ack network.SendCallback) error {
	return a.deliver(channel, msg, ack)
}

// deliver queues the message for the peer's receiver and, when requested, an
// acknowledgment for the sender. The ack models transport receipt and fires
// once the message is queued, before the peer handles it.
func (a *Account) deliver(channel group.ChannelID, msg messages.Control, ack network.SendCallback) error {
	h := a.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	l, exists := h.links[channel]
	if !exists {
		return fmt.Errorf("no such channel: %d", channel)
	}
	peerID, member := l.peerOf(a.userID)
	if !member {
		return fmt.Errorf("channel %d does not involve user %d", channel, a.userID)
	}
	peer := h.accounts[peerID]
	if peer == nil || peer.receiver == nil {
		return fmt.Errorf("user %d is not receiving", peerID)
	}

	if ack != nil {
		h.enqueue(func() { ack(nil) })
	}
	receiver := peer.receiver
	h.enqueue(func() { receiver(channel, msg) })

	return nil
}
