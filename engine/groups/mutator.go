package groups

import (
	"fmt"

	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/model/messages"
)

// ownedGroup returns the group if the local account owns it and it has
// converged. All mutating owner operations start here. Caller holds the
// mutex.
func (e *Engine) ownedGroup(internalID group.InternalID) (*group.EncryptedGroup, error) {
	eg, err := e.lookup(internalID)
	if err != nil {
		return nil, err
	}
	if eg.OwnerUserID != e.me.UserID() {
		return nil, ErrNotOwner
	}
	if !eg.IsInState(group.StateInitialized) {
		return nil, ErrNotInitialized
	}
	return eg, nil
}

// Rename changes the group name and fans the change out to all members.
func (e *Engine) Rename(internalID group.InternalID, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	eg, err := e.ownedGroup(internalID)
	if err != nil {
		return err
	}

	eg.Name = name
	err = e.groups.Update(eg)
	if err != nil {
		return fmt.Errorf("could not persist name: %w", err)
	}
	e.sendToMembers(eg, messages.ChangeGroupInfo{Flags: messages.FlagName, Name: name})
	e.events.GroupUpdated(eg)

	return nil
}

// SetAvatar sets the group avatar and fans the change out to all members.
func (e *Engine) SetAvatar(internalID group.InternalID, avatar []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(avatar) > group.MaxAvatarBytes {
		return ErrAvatarTooLarge
	}
	eg, err := e.ownedGroup(internalID)
	if err != nil {
		return err
	}

	eg.Avatar = avatar
	err = e.groups.Update(eg)
	if err != nil {
		return fmt.Errorf("could not persist avatar: %w", err)
	}
	e.sendToMembers(eg, messages.ChangeGroupInfo{Flags: messages.FlagAvatar, Avatar: avatar})
	e.events.GroupUpdated(eg)

	return nil
}

// DeleteAvatar clears the group avatar, fanned out as an avatar delta with
// empty bytes.
func (e *Engine) DeleteAvatar(internalID group.InternalID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	eg, err := e.ownedGroup(internalID)
	if err != nil {
		return err
	}

	eg.Avatar = nil
	err = e.groups.Update(eg)
	if err != nil {
		return fmt.Errorf("could not persist avatar: %w", err)
	}
	e.sendToMembers(eg, messages.ChangeGroupInfo{Flags: messages.FlagAvatar})
	e.events.GroupUpdated(eg)

	return nil
}

// AddMembers adds users to an established group. Existing members are
// informed immediately; the owner's channel to each new member is opened by
// the scheduler, and the new members then initiate the rest of their mesh
// themselves.
func (e *Engine) AddMembers(internalID group.InternalID, userIDs []group.UserID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	eg, err := e.ownedGroup(internalID)
	if err != nil {
		return err
	}

	if len(eg.InnerChats)+len(userIDs)+1 > group.MaxMembers {
		return ErrTooManyMembers
	}
	for _, userID := range userIDs {
		if userID == e.me.UserID() || eg.InnerChatByUserID(userID) != nil {
			return fmt.Errorf("user %d: %w", userID, ErrAlreadyMember)
		}
		_, err := e.resolver.Resolve(userID)
		if err != nil {
			return fmt.Errorf("could not resolve member %d: %w", userID, err)
		}
	}

	for _, userID := range userIDs {
		// announce before adding, so the announcement cannot reach the new
		// member's own unopened chat
		e.sendToMembers(eg, messages.AddMember{UserID: userID})

		chat := group.NewInnerChat(userID)
		chat.State = group.InnerChatNewMemberCreatingChannel
		eg.AddInnerChat(chat)

		err = e.saveInnerChat(eg, chat)
		if err != nil {
			return err
		}
		err = e.groups.Update(eg)
		if err != nil {
			return fmt.Errorf("could not persist member order: %w", err)
		}

		e.log.Info().
			Int32("group", int32(eg.InternalID)).
			Int64("user_id", int64(userID)).
			Msg("member added")
	}
	e.events.GroupUpdated(eg)

	return nil
}

// KickMember removes a member from the group. Every other member is informed
// best-effort, but the local removal of a reachable member waits until the
// transport confirms the removal notice went out on the member's own
// channel, so the member cannot miss being kicked because of local eagerness.
func (e *Engine) KickMember(internalID group.InternalID, userID group.UserID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	eg, err := e.ownedGroup(internalID)
	if err != nil {
		return err
	}
	if userID == e.me.UserID() {
		return fmt.Errorf("owner cannot kick itself")
	}
	target := eg.InnerChatByUserID(userID)
	if target == nil {
		return ErrUnknownMember
	}

	notice := messages.DeleteMember{UserID: userID}
	e.sendToMembers(eg, notice, userID)

	if !target.HasChannel() {
		err = e.removeMember(eg, userID)
		if err != nil {
			return err
		}
		e.events.GroupUpdated(eg)
		return nil
	}

	err = e.con.SendAcked(target.Channel, notice, func(sendErr error) {
		e.onKickAcked(internalID, userID, sendErr)
	})
	if err != nil {
		return fmt.Errorf("could not send removal notice: %w", err)
	}

	return nil
}

// onKickAcked finishes a kick once the transport confirmed the removal
// notice. On failure the member stays and the kick can be retried.
func (e *Engine) onKickAcked(internalID group.InternalID, userID group.UserID, sendErr error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	lg := e.log.With().
		Int32("group", int32(internalID)).
		Int64("user_id", int64(userID)).
		Logger()

	if sendErr != nil {
		lg.Warn().Err(sendErr).Msg("removal notice not confirmed, member kept")
		return
	}

	eg, exists := e.byInternal[internalID]
	if !exists {
		return
	}
	err := e.removeMember(eg, userID)
	if err != nil {
		lg.Error().Err(err).Msg("could not remove kicked member")
		return
	}
	lg.Info().Msg("member kicked")
	e.events.GroupUpdated(eg)
}
