// Package groups implements the encrypted group protocol engine for one
// account. The engine owns every local group, serializes all state
// transitions behind a single mutex, and coordinates with other members
// exclusively through control messages over pairwise secure channels.
package groups

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"golang.org/x/exp/slices"

	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/model/messages"
	"github.com/groupweave/weave-go/module"
	"github.com/groupweave/weave-go/network"
	"github.com/groupweave/weave-go/storage"
)

var (
	// ErrNoMembers is returned when a group is created with an empty member
	// list.
	ErrNoMembers = errors.New("group needs at least one member")

	// ErrTooManyMembers is returned when an operation would push the group
	// past the member ceiling.
	ErrTooManyMembers = fmt.Errorf("group cannot exceed %d members", group.MaxMembers)

	// ErrNotOwner is returned when a member-only account attempts an
	// owner-only operation.
	ErrNotOwner = errors.New("operation restricted to the group owner")

	// ErrNotInitialized is returned when an owner operation targets a group
	// that has not converged yet.
	ErrNotInitialized = errors.New("group is not initialized")

	// ErrAlreadyMember is returned when an added user is already a member.
	ErrAlreadyMember = errors.New("user is already a group member")

	// ErrUnknownMember is returned when an operation targets a user with no
	// inner chat in the group.
	ErrUnknownMember = errors.New("user is not a group member")

	// ErrAvatarTooLarge is returned when an avatar exceeds the payload bound.
	ErrAvatarTooLarge = fmt.Errorf("avatar exceeds %d bytes", group.MaxAvatarBytes)

	// ErrNotAwaitingDecision is returned when accepting or declining a join
	// on a group that is not waiting for the local user's decision.
	ErrNotAwaitingDecision = errors.New("group is not awaiting a join decision")
)

// Engine drives the lifecycle of all encrypted groups of a single account.
//
// All mutations, whether triggered by local operations, inbound control
// messages or channel-open callbacks, run under one mutex, so handlers can
// read and transition state without further coordination. Channel opening is
// the only long-running work and happens outside the lock, guarded by the
// scheduler's single-flight flag.
type Engine struct {
	mu       sync.Mutex
	log      zerolog.Logger
	metrics  module.GroupsMetrics
	me       module.Local
	groups   storage.Groups
	channels network.ChannelFactory
	con      network.Conduit
	resolver module.UserResolver
	chats    module.ChatDirectory
	events   module.GroupEvents

	byInternal map[group.InternalID]*group.EncryptedGroup
	byExternal map[group.ExternalID]group.InternalID
	byChannel  map[group.ChannelID]group.InternalID

	opening      *atomic.Bool
	blockedUntil time.Time
	now          func() time.Time
	rng          *rand.Rand
}

// New returns an engine for the local account. Call Load before use to
// restore persisted groups.
func New(
	log zerolog.Logger,
	metrics module.GroupsMetrics,
	me module.Local,
	groups storage.Groups,
	channels network.ChannelFactory,
	con network.Conduit,
	resolver module.UserResolver,
	chats module.ChatDirectory,
	events module.GroupEvents,
) (*Engine, error) {

	e := &Engine{
		log:        log.With().Str("engine", "groups").Logger(),
		metrics:    metrics,
		me:         me,
		groups:     groups,
		channels:   channels,
		con:        con,
		resolver:   resolver,
		chats:      chats,
		events:     events,
		byInternal: make(map[group.InternalID]*group.EncryptedGroup),
		byExternal: make(map[group.ExternalID]group.InternalID),
		byChannel:  make(map[group.ChannelID]group.InternalID),
		opening:    atomic.NewBool(false),
		now:        time.Now,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	return e, nil
}

// Load restores all persisted groups into the in-memory registry. Groups
// resume in whatever state they were stored in; the scheduler picks up any
// pending channel openings on the next tick.
func (e *Engine) Load() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	all, err := e.groups.All()
	if err != nil {
		return fmt.Errorf("could not load groups: %w", err)
	}
	for _, eg := range all {
		e.register(eg)
	}

	e.log.Info().Int("groups", len(all)).Msg("loaded persisted groups")
	return nil
}

// register adds the group to all lookup indexes. Caller holds the mutex.
func (e *Engine) register(eg *group.EncryptedGroup) {
	e.byInternal[eg.InternalID] = eg
	e.byExternal[eg.ExternalID] = eg.InternalID
	for _, chat := range eg.InnerChats {
		if chat.HasChannel() {
			e.byChannel[chat.Channel] = eg.InternalID
		}
	}
}

// deindex removes the group from all lookup indexes. Caller holds the mutex.
func (e *Engine) deindex(eg *group.EncryptedGroup) {
	delete(e.byInternal, eg.InternalID)
	delete(e.byExternal, eg.ExternalID)
	for _, chat := range eg.InnerChats {
		if chat.HasChannel() {
			delete(e.byChannel, chat.Channel)
		}
	}
}

// lookup returns the group with the given internal id, falling back to
// storage if it is not in the registry. Caller holds the mutex.
func (e *Engine) lookup(internalID group.InternalID) (*group.EncryptedGroup, error) {
	eg, exists := e.byInternal[internalID]
	if exists {
		return eg, nil
	}
	eg, err := e.groups.ByInternalID(internalID)
	if err != nil {
		return nil, err
	}
	e.register(eg)
	return eg, nil
}

// groupByChannel returns the group owning the inner chat bound to the given
// channel, or nil. Caller holds the mutex.
func (e *Engine) groupByChannel(channel group.ChannelID) *group.EncryptedGroup {
	internalID, exists := e.byChannel[channel]
	if !exists {
		return nil
	}
	return e.byInternal[internalID]
}

// freshInternalID draws a random internal id not used by any local group.
// Caller holds the mutex.
func (e *Engine) freshInternalID() group.InternalID {
	for {
		id := group.InternalID(e.rng.Int31n(1<<30) + 1)
		if _, taken := e.byInternal[id]; !taken {
			return id
		}
	}
}

// freshExternalID draws a random provider-wide correlation id. Collisions
// across accounts are vanishingly unlikely in the 63-bit space.
func (e *Engine) freshExternalID() group.ExternalID {
	return group.ExternalID(e.rng.Int63n(1<<62) + 1)
}

// saveInnerChat persists one inner-chat row and keeps the channel index in
// step. Caller holds the mutex.
func (e *Engine) saveInnerChat(eg *group.EncryptedGroup, chat *group.InnerChat) error {
	err := e.groups.UpsertInnerChat(eg.InternalID, chat)
	if err != nil {
		return fmt.Errorf("could not persist inner chat: %w", err)
	}
	if chat.HasChannel() {
		e.byChannel[chat.Channel] = eg.InternalID
	}
	return nil
}

// setGroupState transitions the group and persists the record row. Caller
// holds the mutex.
func (e *Engine) setGroupState(eg *group.EncryptedGroup, state group.State) error {
	e.log.Debug().
		Int32("group", int32(eg.InternalID)).
		Str("from", eg.State.String()).
		Str("to", state.String()).
		Msg("group state transition")
	eg.State = state
	err := e.groups.Update(eg)
	if err != nil {
		return fmt.Errorf("could not persist group state: %w", err)
	}
	return nil
}

// checkConvergence promotes a mesh-completing group to Initialized once
// every inner chat is Initialized. It is evaluated after every inner-chat
// transition and is a no-op otherwise. A non-owner member additionally
// reports the completed mesh to the owner. Caller holds the mutex.
func (e *Engine) checkConvergence(eg *group.EncryptedGroup) error {
	if !eg.IsInState(group.StateWaitingSecondaryChatCreation, group.StateNewMemberWaitingSecondaryChatCreation) {
		return nil
	}
	if !eg.AllInnerChatsInState(group.InnerChatInitialized) {
		return nil
	}

	err := e.setGroupState(eg, group.StateInitialized)
	if err != nil {
		return err
	}
	e.metrics.GroupInitialized()
	e.log.Info().Int32("group", int32(eg.InternalID)).Msg("group initialized")

	if owner := eg.OwnerInnerChat(); owner != nil {
		err = e.con.Send(owner.Channel, messages.AllSecondaryChatsInitialized{})
		if err != nil {
			e.log.Warn().Err(err).
				Int32("group", int32(eg.InternalID)).
				Msg("could not report mesh completion to owner")
		}
	}

	return nil
}

// sendToMembers delivers the message best-effort to every member whose inner
// chat has an open channel, skipping the listed users. Failures are
// aggregated and logged but do not interrupt the fan-out. Caller holds the
// mutex.
func (e *Engine) sendToMembers(eg *group.EncryptedGroup, msg messages.Control, except ...group.UserID) {
	var result *multierror.Error
	for _, chat := range eg.InnerChats {
		if !chat.HasChannel() {
			continue
		}
		if slices.Contains(except, chat.UserID) {
			continue
		}
		err := e.con.Send(chat.Channel, msg)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("user %d: %w", chat.UserID, err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		e.log.Warn().Err(err).
			Int32("group", int32(eg.InternalID)).
			Str("message", msg.Code().String()).
			Msg("partial fan-out failure")
	}
}

// removeMember drops a member's inner chat from the group, closing its
// channel and re-evaluating convergence. Caller holds the mutex.
func (e *Engine) removeMember(eg *group.EncryptedGroup, userID group.UserID) error {
	chat := eg.InnerChatByUserID(userID)
	if chat == nil {
		return ErrUnknownMember
	}
	if chat.HasChannel() {
		e.channels.CloseChannel(chat.Channel, false)
		delete(e.byChannel, chat.Channel)
	}
	err := e.groups.RemoveInnerChat(eg.InternalID, userID)
	if err != nil {
		return fmt.Errorf("could not remove inner chat: %w", err)
	}
	eg.RemoveInnerChatByUserID(userID)

	// the departed member may have been the last hole in the mesh
	err = e.checkConvergence(eg)
	if err != nil {
		return err
	}

	return nil
}

// removeGroup deletes the group locally, closing every open channel.
// Caller holds the mutex.
func (e *Engine) removeGroup(eg *group.EncryptedGroup, dropHistory bool) error {
	for _, chat := range eg.InnerChats {
		if chat.HasChannel() {
			e.channels.CloseChannel(chat.Channel, dropHistory)
		}
	}
	err := e.groups.Remove(eg.InternalID)
	if err != nil {
		return fmt.Errorf("could not remove group: %w", err)
	}
	e.deindex(eg)
	e.events.GroupRemoved(eg.InternalID)
	return nil
}
