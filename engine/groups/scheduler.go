package groups

import (
	"fmt"
	"time"

	"golang.org/x/exp/slices"

	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/model/messages"
	"github.com/groupweave/weave-go/network"
)

// Tick advances pending channel work. It is cheap, idempotent and safe to
// call from any goroutine at any frequency; the host drives it from its
// periodic update loop.
//
// At most one channel handshake is in flight per account at any time. The
// provider applies aggressive rate limits to handshakes, so the scheduler
// opens channels strictly one by one and backs off globally whenever the
// provider says so.
func (e *Engine) Tick() {
	if !e.opening.CompareAndSwap(false, true) {
		return
	}

	e.mu.Lock()

	// flush invitations owed on already-open channels before opening more
	e.flushPendingInvitations()

	if e.now().Before(e.blockedUntil) {
		e.mu.Unlock()
		e.opening.Store(false)
		return
	}

	eg, chat := e.nextChannelToOpen()
	if chat == nil {
		e.mu.Unlock()
		e.opening.Store(false)
		return
	}
	internalID := eg.InternalID
	userID := chat.UserID
	e.mu.Unlock()

	e.log.Debug().
		Int32("group", int32(internalID)).
		Int64("user_id", int64(userID)).
		Msg("opening channel")

	// the single-flight flag stays held until the handshake reports back
	e.channels.OpenChannel(userID, func(channel group.ChannelID, err error) {
		e.onChannelOpened(internalID, userID, channel, err)
	})
}

// nextChannelToOpen picks the single inner chat whose channel to open next.
// Mesh completion outranks new formations, which outrank channels to newly
// added members; within a tier groups are scanned by ascending internal id
// and inner chats in member order, so repeated failures retry the same
// channel rather than starving it. Caller holds the mutex.
func (e *Engine) nextChannelToOpen() (*group.EncryptedGroup, *group.InnerChat) {

	sorted := make([]*group.EncryptedGroup, 0, len(e.byInternal))
	for _, eg := range e.byInternal {
		sorted = append(sorted, eg)
	}
	slices.SortFunc(sorted, func(a, b *group.EncryptedGroup) int {
		return int(a.InternalID) - int(b.InternalID)
	})

	// secondary mesh completion; between two members the one with the
	// smaller user id initiates, a newly added member initiates all
	for _, eg := range sorted {
		if !eg.IsInState(group.StateWaitingSecondaryChatCreation, group.StateNewMemberWaitingSecondaryChatCreation) {
			continue
		}
		for _, chat := range eg.InnerChats {
			if chat.HasChannel() || !chat.IsInState(group.InnerChatCreatingChannel) {
				continue
			}
			if eg.State == group.StateWaitingSecondaryChatCreation && chat.UserID < e.me.UserID() {
				continue
			}
			return eg, chat
		}
	}

	// primary channels for groups the local account is forming
	for _, eg := range sorted {
		if !eg.IsInState(group.StateCreatingChats) {
			continue
		}
		for _, chat := range eg.InnerChats {
			if !chat.HasChannel() && chat.IsInState(group.InnerChatCreatingChannel) {
				return eg, chat
			}
		}
	}

	// channels to newly added members, opened by the owner only
	for _, eg := range sorted {
		if !eg.IsInState(group.StateInitialized) || eg.OwnerUserID != e.me.UserID() {
			continue
		}
		for _, chat := range eg.InnerChats {
			if !chat.HasChannel() && chat.IsInState(group.InnerChatNewMemberCreatingChannel) {
				return eg, chat
			}
		}
	}

	return nil, nil
}

// onChannelOpened commits the result of a handshake started by Tick. The
// group is re-validated first: it may have been removed, failed or advanced
// past the need for this channel while the handshake was in flight.
func (e *Engine) onChannelOpened(internalID group.InternalID, userID group.UserID, channel group.ChannelID, err error) {
	defer e.opening.Store(false)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		retryAfter, limited := network.IsRateLimited(err)
		if limited {
			e.blockedUntil = e.now().Add(retryAfter + time.Second)
			e.metrics.RateLimited(retryAfter.Seconds())
			e.log.Warn().
				Dur("retry_after", retryAfter).
				Time("blocked_until", e.blockedUntil).
				Msg("channel opening rate limited")
			return
		}
		e.metrics.ChannelOpenFailed()
		e.log.Warn().Err(err).
			Int32("group", int32(internalID)).
			Int64("user_id", int64(userID)).
			Msg("could not open channel")
		return
	}

	eg, exists := e.byInternal[internalID]
	if !exists {
		e.channels.CloseChannel(channel, false)
		return
	}
	chat := eg.InnerChatByUserID(userID)
	if chat == nil || chat.HasChannel() {
		e.channels.CloseChannel(channel, false)
		return
	}

	var next group.InnerChatState
	switch {
	case eg.IsInState(group.StateCreatingChats) && chat.IsInState(group.InnerChatCreatingChannel):
		next = group.InnerChatNeedSendInvitation
	case eg.IsInState(group.StateWaitingSecondaryChatCreation, group.StateNewMemberWaitingSecondaryChatCreation) &&
		chat.IsInState(group.InnerChatCreatingChannel):
		next = group.InnerChatNeedSendSecondaryInvitation
	case eg.IsInState(group.StateInitialized) && chat.IsInState(group.InnerChatNewMemberCreatingChannel):
		next = group.InnerChatNewMemberNeedSendInvitation
	default:
		// the group moved on while the handshake was in flight
		e.channels.CloseChannel(channel, false)
		return
	}

	e.metrics.ChannelOpened()
	chat.SetChannel(channel)
	chat.State = next
	err = e.saveInnerChat(eg, chat)
	if err != nil {
		e.log.Error().Err(err).Msg("could not persist opened channel")
		return
	}

	err = e.sendInvitation(eg, chat)
	if err != nil {
		// the channel is bound and persisted, the invitation is retried on
		// the next tick
		e.log.Warn().Err(err).
			Int32("group", int32(eg.InternalID)).
			Int64("user_id", int64(userID)).
			Msg("could not send invitation on fresh channel")
	}
	e.events.GroupUpdated(eg)
}

// flushPendingInvitations retries invitations owed on channels that opened
// without a successful follow-up send, which happens on send failures and on
// restarts between the handshake and the send. Caller holds the mutex.
func (e *Engine) flushPendingInvitations() {
	for _, eg := range e.byInternal {
		for _, chat := range eg.InnerChats {
			if !chat.IsInState(
				group.InnerChatNeedSendInvitation,
				group.InnerChatNeedSendSecondaryInvitation,
				group.InnerChatNewMemberNeedSendInvitation,
			) {
				continue
			}
			err := e.sendInvitation(eg, chat)
			if err != nil {
				e.log.Warn().Err(err).
					Int32("group", int32(eg.InternalID)).
					Int64("user_id", int64(chat.UserID)).
					Msg("could not flush pending invitation")
			}
		}
	}
}

// sendInvitation sends whichever message the chat's state owes on its open
// channel and advances the chat on success. Caller holds the mutex.
func (e *Engine) sendInvitation(eg *group.EncryptedGroup, chat *group.InnerChat) error {

	var msg messages.Control
	var next group.InnerChatState
	switch chat.State {
	case group.InnerChatNeedSendInvitation:
		msg = messages.CreateGroup{
			ExternalID:  eg.ExternalID,
			Name:        eg.Name,
			OwnerUserID: eg.OwnerUserID,
			MemberIDs:   eg.MemberIDs(),
		}
		next = group.InnerChatInvitationSent
	case group.InnerChatNeedSendSecondaryInvitation:
		msg = messages.StartSecondaryInnerChat{ExternalID: eg.ExternalID}
		next = group.InnerChatInitialized
	case group.InnerChatNewMemberNeedSendInvitation:
		msg = messages.CreateGroupForNewMember{
			ExternalID:  eg.ExternalID,
			Name:        eg.Name,
			OwnerUserID: eg.OwnerUserID,
			MemberIDs:   eg.MemberIDs(),
		}
		next = group.InnerChatNewMemberInvitationSent
	default:
		return nil
	}

	err := e.con.Send(chat.Channel, msg)
	if err != nil {
		return fmt.Errorf("could not send %s: %w", msg.Code(), err)
	}
	chat.State = next
	err = e.saveInnerChat(eg, chat)
	if err != nil {
		return err
	}

	// the last primary invitation moves the owner to waiting for confirms
	if eg.IsInState(group.StateCreatingChats) && eg.AllInnerChatsInState(group.InnerChatInvitationSent) {
		err = e.setGroupState(eg, group.StateWaitingConfirmationFromMembers)
		if err != nil {
			return err
		}
	}

	// a sent secondary invitation completes this chat's part of the mesh
	if next == group.InnerChatInitialized {
		err = e.checkConvergence(eg)
		if err != nil {
			return err
		}
	}

	return nil
}
