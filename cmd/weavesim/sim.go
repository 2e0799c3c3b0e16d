package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"

	"github.com/groupweave/weave-go/engine/groups"
	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/module"
	"github.com/groupweave/weave-go/module/events"
	"github.com/groupweave/weave-go/module/metrics"
	"github.com/groupweave/weave-go/network"
	"github.com/groupweave/weave-go/network/inmem"
	bstorage "github.com/groupweave/weave-go/storage/badger"
)

type simConfig struct {
	members        int
	addMembers     int
	rounds         int
	rateLimitEvery int
	retryAfter     time.Duration
}

// identity is the simulated account's view of itself.
type identity group.UserID

func (i identity) UserID() group.UserID { return group.UserID(i) }

// openDirectory resolves every user and reports idle conversations. The
// simulator has no message traffic, only protocol control flow.
type openDirectory struct{}

func (openDirectory) Resolve(userID group.UserID) (*module.User, error) {
	return &module.User{ID: userID, Name: fmt.Sprintf("user-%d", userID)}, nil
}

func (openDirectory) UnreadCount(group.ChannelID) int           { return 0 }
func (openDirectory) LastMessageTime(group.ChannelID) time.Time { return time.Time{} }

// autoAccepter accepts every invitation as soon as it surfaces.
type autoAccepter struct {
	log    zerolog.Logger
	engine *groups.Engine
}

func (a *autoAccepter) GroupUpdated(*group.EncryptedGroup) {}

func (a *autoAccepter) GroupRemoved(group.InternalID) {}

func (a *autoAccepter) JoinRequested(eg *group.EncryptedGroup) {
	// the engine holds its lock during the callback, accept asynchronously
	go func() {
		err := a.engine.AcceptJoin(eg.InternalID)
		if err != nil {
			a.log.Warn().Err(err).Msg("could not accept join")
		}
	}()
}

type account struct {
	userID group.UserID
	engine *groups.Engine
	db     *badger.DB
	dir    string
}

func runSimulation(log zerolog.Logger, conf simConfig) error {
	if conf.members < 2 {
		return fmt.Errorf("need at least 2 members, got %d", conf.members)
	}

	hub := inmem.NewHub(log)
	defer hub.Stop()

	if conf.rateLimitEvery > 0 {
		opens := 0
		hub.SetOpenHook(func(from, to group.UserID) error {
			opens++
			if opens%conf.rateLimitEvery == 0 {
				return network.NewRateLimitedError(conf.retryAfter)
			}
			return nil
		})
	}

	total := conf.members + conf.addMembers
	accounts := make([]*account, 0, total)
	defer func() {
		for _, acc := range accounts {
			acc.db.Close()
			os.RemoveAll(acc.dir)
		}
	}()

	for i := 0; i < total; i++ {
		// only the first account carries the prometheus collector, the
		// default registry tolerates each metric once
		collector := module.GroupsMetrics(metrics.NewNoopCollector())
		if i == 0 {
			collector = metrics.NewGroupsCollector()
		}
		acc, err := newAccount(log, hub, group.UserID(i+1), collector)
		if err != nil {
			return err
		}
		accounts = append(accounts, acc)
	}

	owner := accounts[0]
	memberIDs := make([]group.UserID, 0, conf.members-1)
	for _, acc := range accounts[1:conf.members] {
		memberIDs = append(memberIDs, acc.userID)
	}

	eg, err := owner.engine.CreateGroup("weavesim", memberIDs)
	if err != nil {
		return fmt.Errorf("could not create group: %w", err)
	}
	log.Info().
		Int64("external_id", int64(eg.ExternalID)).
		Int("members", conf.members).
		Msg("group creation started")

	err = driveToConvergence(log, hub, accounts[:conf.members], eg.ExternalID, conf.rounds)
	if err != nil {
		return err
	}
	log.Info().Msg("initial group converged")

	if conf.addMembers > 0 {
		added := make([]group.UserID, 0, conf.addMembers)
		for _, acc := range accounts[conf.members:] {
			added = append(added, acc.userID)
		}
		err = owner.engine.AddMembers(eg.InternalID, added)
		if err != nil {
			return fmt.Errorf("could not add members: %w", err)
		}
		err = driveToConvergence(log, hub, accounts, eg.ExternalID, conf.rounds)
		if err != nil {
			return err
		}
		log.Info().Int("added", conf.addMembers).Msg("grown group converged")
	}

	err = owner.engine.Rename(eg.InternalID, "weavesim (renamed)")
	if err != nil {
		return fmt.Errorf("could not rename group: %w", err)
	}
	hub.Settle()

	for _, acc := range accounts {
		local, err := acc.engine.GroupByExternalID(eg.ExternalID)
		if err != nil {
			return fmt.Errorf("user %d lost the group: %w", acc.userID, err)
		}
		log.Info().
			Int64("user_id", int64(acc.userID)).
			Str("state", local.State.String()).
			Str("name", local.Name).
			Int("inner_chats", len(local.InnerChats)).
			Msg("final state")
	}
	log.Info().Int("channels", hub.LinkCount()).Msg("simulation done")

	return nil
}

func newAccount(log zerolog.Logger, hub *inmem.Hub, userID group.UserID, collector module.GroupsMetrics) (*account, error) {
	dir, err := os.MkdirTemp("", fmt.Sprintf("weavesim-%d-", userID))
	if err != nil {
		return nil, fmt.Errorf("could not create state dir: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("could not open state database: %w", err)
	}

	provider := hub.Join(userID)
	store := bstorage.NewGroups(metrics.NewNoopCollector(), db)
	dist := events.NewDistributor()

	engine, err := groups.New(
		log.With().Int64("user_id", int64(userID)).Logger(),
		collector,
		identity(userID),
		store,
		provider,
		provider,
		openDirectory{},
		openDirectory{},
		dist,
	)
	if err != nil {
		return nil, fmt.Errorf("could not build engine: %w", err)
	}
	if err := engine.Load(); err != nil {
		return nil, err
	}

	dist.AddConsumer(&autoAccepter{log: log, engine: engine})
	provider.SetReceiver(engine.OnControlMessageReceived)
	provider.SetDiscardReceiver(engine.OnChannelDiscarded)

	return &account{userID: userID, engine: engine, db: db, dir: dir}, nil
}

// driveToConvergence ticks every engine until each local copy of the group
// reports Initialized or the round budget runs out.
func driveToConvergence(log zerolog.Logger, hub *inmem.Hub, accounts []*account, externalID group.ExternalID, rounds int) error {
	for round := 0; round < rounds; round++ {
		for _, acc := range accounts {
			acc.engine.Tick()
		}
		hub.Settle()

		converged := true
		for _, acc := range accounts {
			local, err := acc.engine.GroupByExternalID(externalID)
			if err != nil || local.State != group.StateInitialized {
				converged = false
				break
			}
		}
		if converged {
			log.Debug().Int("rounds", round+1).Msg("converged")
			return nil
		}
	}
	return fmt.Errorf("no convergence within %d rounds", rounds)
}
