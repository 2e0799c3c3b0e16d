package inmem_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/model/messages"
	"github.com/groupweave/weave-go/network"
	"github.com/groupweave/weave-go/network/inmem"
	"github.com/groupweave/weave-go/utils/unittest"
)

// openBetween opens a channel from a to the given user and waits for it.
func openBetween(t *testing.T, hub *inmem.Hub, a *inmem.Account, to group.UserID) group.ChannelID {
	var mu sync.Mutex
	var opened group.ChannelID
	a.OpenChannel(to, func(channel group.ChannelID, err error) {
		require.NoError(t, err)
		mu.Lock()
		opened = channel
		mu.Unlock()
	})
	hub.Settle()
	mu.Lock()
	defer mu.Unlock()
	require.NotZero(t, opened)
	return opened
}

func TestHubOpenAndSend(t *testing.T) {
	hub := inmem.NewHub(unittest.Logger())
	defer hub.Stop()

	alice := hub.Join(1)
	bob := hub.Join(2)

	var mu sync.Mutex
	var received []messages.Control
	bob.SetReceiver(func(channel group.ChannelID, msg messages.Control) {
		mu.Lock()
		received = append(received, msg)
		mu.Unlock()
	})

	channel := openBetween(t, hub, alice, 2)
	assert.Equal(t, 1, hub.LinkCount())
	assert.Equal(t, 1, hub.OpenCount(1))

	// both ends attribute the channel to the other
	peer, err := alice.PeerUser(channel)
	require.NoError(t, err)
	assert.Equal(t, group.UserID(2), peer)
	peer, err = bob.PeerUser(channel)
	require.NoError(t, err)
	assert.Equal(t, group.UserID(1), peer)

	require.NoError(t, alice.Send(channel, messages.ConfirmJoin{}))
	hub.Settle()

	mu.Lock()
	require.Len(t, received, 1)
	mu.Unlock()
}

func TestHubSendAcked(t *testing.T) {
	hub := inmem.NewHub(unittest.Logger())
	defer hub.Stop()

	alice := hub.Join(1)
	bob := hub.Join(2)
	bob.SetReceiver(func(group.ChannelID, messages.Control) {})

	channel := openBetween(t, hub, alice, 2)

	var mu sync.Mutex
	acked := false
	err := alice.SendAcked(channel, messages.DeleteMember{UserID: 2}, func(err error) {
		require.NoError(t, err)
		mu.Lock()
		acked = true
		mu.Unlock()
	})
	require.NoError(t, err)
	hub.Settle()

	mu.Lock()
	assert.True(t, acked)
	mu.Unlock()
}

func TestHubOpenHook(t *testing.T) {
	hub := inmem.NewHub(unittest.Logger())
	defer hub.Stop()

	alice := hub.Join(1)
	hub.Join(2)

	hub.SetOpenHook(func(from, to group.UserID) error {
		return network.NewRateLimitedError(30 * time.Second)
	})

	var mu sync.Mutex
	var openErr error
	alice.OpenChannel(2, func(channel group.ChannelID, err error) {
		mu.Lock()
		openErr = err
		mu.Unlock()
	})
	hub.Settle()

	mu.Lock()
	defer mu.Unlock()
	retryAfter, limited := network.IsRateLimited(openErr)
	assert.True(t, limited)
	assert.Equal(t, 30*time.Second, retryAfter)
	assert.Equal(t, 0, hub.LinkCount())
}

func TestHubDiscardNotifiesBothEnds(t *testing.T) {
	hub := inmem.NewHub(unittest.Logger())
	defer hub.Stop()

	alice := hub.Join(1)
	bob := hub.Join(2)

	var mu sync.Mutex
	discards := make(map[group.UserID]bool)
	alice.SetDiscardReceiver(func(channel group.ChannelID, historyDeleted bool) {
		mu.Lock()
		discards[1] = historyDeleted
		mu.Unlock()
	})
	bob.SetDiscardReceiver(func(channel group.ChannelID, historyDeleted bool) {
		mu.Lock()
		discards[2] = historyDeleted
		mu.Unlock()
	})

	channel := openBetween(t, hub, alice, 2)
	bob.DiscardChannel(channel, true)
	hub.Settle()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, discards, 2)
	assert.True(t, discards[1])
	assert.True(t, discards[2])
	assert.Equal(t, 0, hub.LinkCount())

	// the link is gone, further sends fail
	assert.Error(t, alice.Send(channel, messages.ConfirmJoin{}))
}

// TestHubDeepFanOut replies to one delivery with thousands of sends from
// inside the dispatch goroutine itself, queueing far more tasks than any
// fixed buffer would hold before the consumer gets to drain them.
func TestHubDeepFanOut(t *testing.T) {
	hub := inmem.NewHub(unittest.Logger())
	defer hub.Stop()

	alice := hub.Join(1)
	bob := hub.Join(2)

	const fanout = 3000
	var mu sync.Mutex
	received := 0

	alice.SetReceiver(func(group.ChannelID, messages.Control) {
		mu.Lock()
		received++
		mu.Unlock()
	})
	bob.SetReceiver(func(ch group.ChannelID, msg messages.Control) {
		for i := 0; i < fanout; i++ {
			require.NoError(t, bob.Send(ch, msg))
		}
	})

	channel := openBetween(t, hub, alice, 2)
	require.NoError(t, alice.Send(channel, messages.ConfirmJoin{}))
	hub.Settle()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, fanout, received)
}

func TestHubCloseChannel(t *testing.T) {
	hub := inmem.NewHub(unittest.Logger())
	defer hub.Stop()

	alice := hub.Join(1)
	hub.Join(2)

	channel := openBetween(t, hub, alice, 2)
	alice.CloseChannel(channel, false)

	assert.Equal(t, 0, hub.LinkCount())
	assert.Error(t, alice.Send(channel, messages.ConfirmJoin{}))
}
