package groups

import (
	"fmt"

	"github.com/groupweave/weave-go/model/group"
)

// OnChannelDiscarded handles the provider tearing one of our pairwise
// channels down, typically because the peer deleted the conversation on its
// device. Channels not bound to any group are ignored.
//
// A group still converging cannot survive the loss of a channel and fails
// outright. An established group degrades member by member: the discarded
// inner chat stays around as Cancelled so its history remains reachable, or
// is dropped entirely when the peer deleted the history too. Once no live
// inner chat remains the group itself becomes Cancelled.
func (e *Engine) OnChannelDiscarded(channel group.ChannelID, historyDeleted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	eg := e.groupByChannel(channel)
	if eg == nil {
		return
	}
	chat := eg.InnerChatByChannel(channel)
	if chat == nil {
		return
	}
	if eg.IsInState(group.StateInitializationFailed, group.StateCancelled) {
		// the group is already dead, nothing left to tear down
		return
	}

	e.log.Info().
		Int32("group", int32(eg.InternalID)).
		Int64("user_id", int64(chat.UserID)).
		Bool("history_deleted", historyDeleted).
		Msg("channel discarded by provider")

	var err error
	if eg.IsInState(group.StateInitialized) {
		err = e.cancelInnerChat(eg, chat, historyDeleted)
	} else {
		err = e.failGroup(eg)
	}
	if err != nil {
		e.log.Error().Err(err).
			Int32("group", int32(eg.InternalID)).
			Msg("could not process channel discard")
	}
}

// cancelInnerChat marks a discarded inner chat on an established group and
// promotes the group to Cancelled once every remaining inner chat is
// cancelled. Caller holds the mutex.
func (e *Engine) cancelInnerChat(eg *group.EncryptedGroup, chat *group.InnerChat, historyDeleted bool) error {
	if historyDeleted {
		// nothing left to show for this member, drop the chat entirely
		delete(e.byChannel, chat.Channel)
		err := e.groups.RemoveInnerChat(eg.InternalID, chat.UserID)
		if err != nil {
			return fmt.Errorf("could not remove inner chat: %w", err)
		}
		eg.RemoveInnerChatByUserID(chat.UserID)
	} else {
		chat.State = group.InnerChatCancelled
		err := e.saveInnerChat(eg, chat)
		if err != nil {
			return err
		}
	}

	if eg.AllInnerChatsInState(group.InnerChatCancelled) {
		err := e.setGroupState(eg, group.StateCancelled)
		if err != nil {
			return err
		}
		e.log.Info().Int32("group", int32(eg.InternalID)).Msg("group cancelled")
	}
	e.events.GroupUpdated(eg)

	return nil
}
