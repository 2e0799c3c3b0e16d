package module

import (
	"time"

	"github.com/groupweave/weave-go/model/group"
)

// ChatDirectory exposes per-channel conversation facts owned by the host
// messaging runtime. The registry aggregates these across a group's inner
// chats for the derived unread count and last-message time.
type ChatDirectory interface {

	// UnreadCount returns the number of unread messages in the conversation
	// carried by the given channel.
	UnreadCount(channel group.ChannelID) int

	// LastMessageTime returns the timestamp of the newest message in the
	// conversation carried by the given channel, or the zero time if the
	// conversation is empty.
	LastMessageTime(channel group.ChannelID) time.Time
}
