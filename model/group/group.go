package group

import (
	"golang.org/x/exp/slices"
)

// MaxMembers is the ceiling on group size, counting the owner. Creation
// requests and inbound creation invitations above this are rejected.
const MaxMembers = 20

// MaxAvatarBytes bounds inbound avatar payloads (150x150 at 3 bytes per
// pixel). Larger deltas are dropped by the dispatcher.
const MaxAvatarBytes = 150 * 150 * 3

// UserID identifies an account across the provider.
type UserID int64

// ExternalID is the provider-wide correlation identifier of a group. It is
// assigned by the creator and shared by every member's local copy.
type ExternalID int64

// InternalID is the local, per-account identifier of a group. It is used for
// storage keys and for addressing the group from the surrounding application.
type InternalID int32

// ChannelID is the handle of a pairwise secure channel, as issued by the
// external channel provider. The zero value means the handshake for this
// inner chat has not completed yet.
type ChannelID int32

// EncryptedGroup is a logical multi-party encrypted group, synthesized from
// one pairwise secure channel per member. The local account's own membership
// is implicit: there is no inner chat to self.
//
// An EncryptedGroup is owned exclusively by its account's engine. All
// cross-device coordination happens through control messages over the inner
// chats' secure channels, never through shared state.
type EncryptedGroup struct {
	ExternalID  ExternalID
	InternalID  InternalID
	Name        string
	Avatar      []byte
	OwnerUserID UserID
	State       State
	InnerChats  []*InnerChat
}

// AddInnerChat appends a member's inner chat to the group.
func (g *EncryptedGroup) AddInnerChat(chat *InnerChat) {
	g.InnerChats = append(g.InnerChats, chat)
}

// InnerChatByUserID returns the inner chat of the given member, or nil if the
// user is not a member.
func (g *EncryptedGroup) InnerChatByUserID(userID UserID) *InnerChat {
	for _, chat := range g.InnerChats {
		if chat.UserID == userID {
			return chat
		}
	}
	return nil
}

// InnerChatByChannel returns the inner chat bound to the given secure
// channel, or nil if no inner chat uses that channel.
func (g *EncryptedGroup) InnerChatByChannel(channel ChannelID) *InnerChat {
	for _, chat := range g.InnerChats {
		if chat.HasChannel() && chat.Channel == channel {
			return chat
		}
	}
	return nil
}

// RemoveInnerChatByUserID removes the member's inner chat, returning whether
// a chat was removed.
func (g *EncryptedGroup) RemoveInnerChatByUserID(userID UserID) bool {
	n := len(g.InnerChats)
	g.InnerChats = slices.DeleteFunc(g.InnerChats, func(chat *InnerChat) bool {
		return chat.UserID == userID
	})
	return len(g.InnerChats) != n
}

// OwnerInnerChat returns the inner chat towards the group owner. For the
// owner's own copy of the group it returns nil.
func (g *EncryptedGroup) OwnerInnerChat() *InnerChat {
	return g.InnerChatByUserID(g.OwnerUserID)
}

// MemberIDs returns the user ids of all inner chats, in insertion order.
func (g *EncryptedGroup) MemberIDs() []UserID {
	ids := make([]UserID, 0, len(g.InnerChats))
	for _, chat := range g.InnerChats {
		ids = append(ids, chat.UserID)
	}
	return ids
}

// IsInState reports whether the group is in any of the given states.
func (g *EncryptedGroup) IsInState(states ...State) bool {
	return slices.Contains(states, g.State)
}

// AllInnerChatsInState reports whether every inner chat is in the given state.
// The convergence invariant is AllInnerChatsInState(InnerChatInitialized).
func (g *EncryptedGroup) AllInnerChatsInState(state InnerChatState) bool {
	for _, chat := range g.InnerChats {
		if chat.State != state {
			return false
		}
	}
	return true
}

// NoneInnerChatsInState reports whether no inner chat is in the given state.
func (g *EncryptedGroup) NoneInnerChatsInState(state InnerChatState) bool {
	for _, chat := range g.InnerChats {
		if chat.State == state {
			return false
		}
	}
	return true
}

// HasAvatar reports whether an owner-set avatar is present.
func (g *EncryptedGroup) HasAvatar() bool {
	return len(g.Avatar) > 0
}
