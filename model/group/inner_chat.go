package group

import (
	"golang.org/x/exp/slices"
)

// InnerChat is one member's pairwise secure channel as seen by the local
// account. The channel handle is absent until the underlying handshake
// completes; once set it is never cleared except by removing the member.
type InnerChat struct {
	UserID  UserID
	Channel ChannelID
	State   InnerChatState
}

// NewInnerChat returns an inner chat for the given member with no channel,
// in the initial primary-creation state.
func NewInnerChat(userID UserID) *InnerChat {
	return &InnerChat{
		UserID: userID,
		State:  InnerChatCreatingChannel,
	}
}

// HasChannel reports whether the secure channel handshake has completed.
func (c *InnerChat) HasChannel() bool {
	return c.Channel != 0
}

// SetChannel binds the inner chat to its secure channel handle.
func (c *InnerChat) SetChannel(channel ChannelID) {
	c.Channel = channel
}

// IsInState reports whether the inner chat is in any of the given states.
func (c *InnerChat) IsInState(states ...InnerChatState) bool {
	return slices.Contains(states, c.State)
}
