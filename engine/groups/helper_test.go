package groups

import (
	"os"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/module"
	"github.com/groupweave/weave-go/module/events"
	"github.com/groupweave/weave-go/module/metrics"
	modulemock "github.com/groupweave/weave-go/module/mock"
	"github.com/groupweave/weave-go/network/inmem"
	"github.com/groupweave/weave-go/network/mocknetwork"
	bstorage "github.com/groupweave/weave-go/storage/badger"
	"github.com/groupweave/weave-go/utils/unittest"
)

// recorder collects lifecycle events for assertions. Callbacks arrive from
// the hub's dispatch goroutine, so access is synchronized.
type recorder struct {
	mu      sync.Mutex
	updated []*group.EncryptedGroup
	removed []group.InternalID
	joins   []group.InternalID
}

func (r *recorder) GroupUpdated(g *group.EncryptedGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, g)
}

func (r *recorder) GroupRemoved(internalID group.InternalID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, internalID)
}

func (r *recorder) JoinRequested(g *group.EncryptedGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joins = append(r.joins, g.InternalID)
}

// popJoins drains the pending join requests.
func (r *recorder) popJoins() []group.InternalID {
	r.mu.Lock()
	defer r.mu.Unlock()
	joins := r.joins
	r.joins = nil
	return joins
}

func (r *recorder) removedIDs() []group.InternalID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]group.InternalID(nil), r.removed...)
}

// node is one simulated account: an engine wired to the shared hub with its
// own badger store.
type node struct {
	userID   group.UserID
	engine   *Engine
	account  *inmem.Account
	recorder *recorder
	db       *badger.DB
	dir      string

	// unresolvable lists user ids this node's resolver rejects
	unresolvable map[group.UserID]bool
}

// newNode wires an engine for the given user into the hub. Every user id in
// the network resolves; tests override the resolver for failure cases.
func newNode(t *testing.T, hub *inmem.Hub, userID group.UserID) *node {
	dir := unittest.TempDir(t)
	db := unittest.BadgerDB(t, dir)

	me := modulemock.NewLocal(t)
	me.On("UserID").Return(userID).Maybe()

	unresolvable := make(map[group.UserID]bool)
	resolver := modulemock.NewUserResolver(t)
	resolver.On("Resolve", mock.Anything).Return(
		func(id group.UserID) *module.User { return &module.User{ID: id} },
		func(id group.UserID) error {
			if unresolvable[id] {
				return module.ErrUserNotFound
			}
			return nil
		},
	).Maybe()

	chats := modulemock.NewChatDirectory(t)

	rec := &recorder{}
	dist := events.NewDistributor()
	dist.AddConsumer(rec)

	account := hub.Join(userID)
	store := bstorage.NewGroups(metrics.NewNoopCollector(), db)

	engine, err := New(
		unittest.Logger(),
		metrics.NewNoopCollector(),
		me,
		store,
		account,
		account,
		resolver,
		chats,
		dist,
	)
	require.NoError(t, err)
	require.NoError(t, engine.Load())

	account.SetReceiver(engine.OnControlMessageReceived)
	account.SetDiscardReceiver(engine.OnChannelDiscarded)

	return &node{
		userID:       userID,
		engine:       engine,
		account:      account,
		recorder:     rec,
		db:           db,
		dir:          dir,
		unresolvable: unresolvable,
	}
}

// harness is a single engine over real storage with mocked network parts,
// for unit tests that drive one side of the protocol directly.
type harness struct {
	engine       *Engine
	channels     *mocknetwork.ChannelFactory
	con          *mocknetwork.Conduit
	chats        *modulemock.ChatDirectory
	recorder     *recorder
	store        *bstorage.Groups
	unresolvable map[group.UserID]bool
}

// withEngine runs f with an engine for the given user backed by a throwaway
// badger database and mocked channel provider.
func withEngine(t *testing.T, userID group.UserID, f func(*harness)) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {

		me := modulemock.NewLocal(t)
		me.On("UserID").Return(userID).Maybe()

		unresolvable := make(map[group.UserID]bool)
		resolver := modulemock.NewUserResolver(t)
		resolver.On("Resolve", mock.Anything).Return(
			func(id group.UserID) *module.User { return &module.User{ID: id} },
			func(id group.UserID) error {
				if unresolvable[id] {
					return module.ErrUserNotFound
				}
				return nil
			},
		).Maybe()

		channels := mocknetwork.NewChannelFactory(t)
		con := mocknetwork.NewConduit(t)
		chats := modulemock.NewChatDirectory(t)

		rec := &recorder{}
		dist := events.NewDistributor()
		dist.AddConsumer(rec)

		store := bstorage.NewGroups(metrics.NewNoopCollector(), db)

		engine, err := New(
			unittest.Logger(),
			metrics.NewNoopCollector(),
			me,
			store,
			channels,
			con,
			resolver,
			chats,
			dist,
		)
		require.NoError(t, err)

		f(&harness{
			engine:       engine,
			channels:     channels,
			con:          con,
			chats:        chats,
			recorder:     rec,
			store:        store,
			unresolvable: unresolvable,
		})
	})
}

// seed persists the group and loads it into the engine's registry.
func (h *harness) seed(t *testing.T, eg *group.EncryptedGroup) {
	require.NoError(t, h.store.Store(eg))
	h.engine.register(eg)
}

// runWithNetwork runs f against a hub with one node per user id.
func runWithNetwork(t *testing.T, userIDs []group.UserID, f func(*inmem.Hub, map[group.UserID]*node)) {
	hub := inmem.NewHub(unittest.Logger())
	defer hub.Stop()

	nodes := make(map[group.UserID]*node, len(userIDs))
	for _, userID := range userIDs {
		n := newNode(t, hub, userID)
		defer os.RemoveAll(n.dir)
		defer n.db.Close()
		nodes[userID] = n
	}

	f(hub, nodes)
}

// converge drives ticks, deliveries and join acceptance until the network is
// quiescent, accepting every invitation as it surfaces.
func converge(t *testing.T, hub *inmem.Hub, nodes map[group.UserID]*node, rounds int) {
	for i := 0; i < rounds; i++ {
		hub.Settle()
		for _, n := range nodes {
			for _, internalID := range n.recorder.popJoins() {
				require.NoError(t, n.engine.AcceptJoin(internalID))
			}
		}
		for _, n := range nodes {
			n.engine.Tick()
		}
	}
	hub.Settle()
}

// groupOn returns the user's local copy of the group with the given external
// id, requiring it to exist.
func groupOn(t *testing.T, n *node, externalID group.ExternalID) *group.EncryptedGroup {
	eg, err := n.engine.GroupByExternalID(externalID)
	require.NoError(t, err)
	return eg
}
