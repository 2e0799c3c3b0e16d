package groups

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/model/messages"
)

// CreateGroup starts the formation of a new group owned by the local
// account. The group is persisted before any network activity; the scheduler
// opens the primary channels on subsequent ticks.
func (e *Engine) CreateGroup(name string, memberIDs []group.UserID) (*group.EncryptedGroup, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	members := make([]group.UserID, 0, len(memberIDs))
	for _, userID := range memberIDs {
		if userID == e.me.UserID() || slices.Contains(members, userID) {
			continue
		}
		members = append(members, userID)
	}
	if len(members) == 0 {
		return nil, ErrNoMembers
	}
	if len(members)+1 > group.MaxMembers {
		return nil, ErrTooManyMembers
	}
	for _, userID := range members {
		_, err := e.resolver.Resolve(userID)
		if err != nil {
			return nil, fmt.Errorf("could not resolve member %d: %w", userID, err)
		}
	}

	eg := &group.EncryptedGroup{
		ExternalID:  e.freshExternalID(),
		InternalID:  e.freshInternalID(),
		Name:        name,
		OwnerUserID: e.me.UserID(),
		State:       group.StateCreatingChats,
	}
	for _, userID := range members {
		eg.AddInnerChat(group.NewInnerChat(userID))
	}

	err := e.groups.Store(eg)
	if err != nil {
		return nil, fmt.Errorf("could not persist group: %w", err)
	}
	e.register(eg)
	e.events.GroupUpdated(eg)

	e.log.Info().
		Int32("group", int32(eg.InternalID)).
		Int("members", len(members)).
		Msg("group creation started")

	return eg, nil
}

// AcceptJoin confirms a pending invitation. The local member list is checked
// against the resolver first: an invitation naming any unresolvable user
// fails the group instead of joining it.
func (e *Engine) AcceptJoin(internalID group.InternalID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	eg, err := e.lookup(internalID)
	if err != nil {
		return err
	}
	if !eg.IsInState(group.StateJoiningNotConfirmed, group.StateNewMemberJoiningNotConfirmed) {
		return ErrNotAwaitingDecision
	}

	for _, chat := range eg.InnerChats {
		_, err := e.resolver.Resolve(chat.UserID)
		if err != nil {
			e.log.Warn().Err(err).
				Int32("group", int32(eg.InternalID)).
				Int64("user_id", int64(chat.UserID)).
				Msg("cannot resolve fellow member, failing join")
			return e.failGroup(eg)
		}
	}

	next := group.StateWaitingConfirmationFromOwner
	if eg.State == group.StateNewMemberJoiningNotConfirmed {
		next = group.StateNewMemberWaitingSecondaryChatCreation
	}
	err = e.setGroupState(eg, next)
	if err != nil {
		return err
	}

	owner := eg.OwnerInnerChat()
	err = e.con.Send(owner.Channel, messages.ConfirmJoin{})
	if err != nil {
		return fmt.Errorf("could not confirm join to owner: %w", err)
	}
	e.events.GroupUpdated(eg)

	return nil
}

// DeclineJoin rejects a pending invitation, deleting the local group and
// discarding the owner channel together with its history.
func (e *Engine) DeclineJoin(internalID group.InternalID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	eg, err := e.lookup(internalID)
	if err != nil {
		return err
	}
	if !eg.IsInState(group.StateJoiningNotConfirmed, group.StateNewMemberJoiningNotConfirmed) {
		return ErrNotAwaitingDecision
	}

	return e.removeGroup(eg, true)
}

// failGroup moves the group and its non-terminal inner chats into the failed
// state and notifies the owner, who fans the failure out to everyone else.
// Caller holds the mutex.
func (e *Engine) failGroup(eg *group.EncryptedGroup) error {
	err := e.setGroupState(eg, group.StateInitializationFailed)
	if err != nil {
		return err
	}
	for _, chat := range eg.InnerChats {
		if chat.IsInState(group.InnerChatCancelled, group.InnerChatInitializationFailed) {
			continue
		}
		chat.State = group.InnerChatInitializationFailed
		err = e.saveInnerChat(eg, chat)
		if err != nil {
			return err
		}
	}
	e.metrics.GroupFailed()

	if owner := eg.OwnerInnerChat(); owner != nil && owner.HasChannel() {
		err = e.con.Send(owner.Channel, messages.GroupCreationFailed{})
		if err != nil {
			e.log.Warn().Err(err).
				Int32("group", int32(eg.InternalID)).
				Msg("could not report group failure to owner")
		}
	} else {
		// the local account owns the group, fan the failure out directly
		e.sendToMembers(eg, messages.GroupCreationFailed{})
	}
	e.events.GroupUpdated(eg)

	return nil
}
