package unittest

import (
	"math/rand"

	"github.com/groupweave/weave-go/model/group"
)

func UserIDFixture() group.UserID {
	return group.UserID(rand.Int63n(1<<40) + 1)
}

func ExternalIDFixture() group.ExternalID {
	return group.ExternalID(rand.Int63())
}

func InternalIDFixture() group.InternalID {
	return group.InternalID(rand.Int31n(1<<30) + 1)
}

func ChannelIDFixture() group.ChannelID {
	return group.ChannelID(rand.Int31n(1<<30) + 1)
}

func InnerChatFixture(options ...func(*group.InnerChat)) *group.InnerChat {
	chat := group.NewInnerChat(UserIDFixture())
	for _, option := range options {
		option(chat)
	}
	return chat
}

func WithInnerChatUser(userID group.UserID) func(*group.InnerChat) {
	return func(chat *group.InnerChat) {
		chat.UserID = userID
	}
}

func WithInnerChatState(state group.InnerChatState) func(*group.InnerChat) {
	return func(chat *group.InnerChat) {
		chat.State = state
	}
}

func WithInnerChatChannel(channel group.ChannelID) func(*group.InnerChat) {
	return func(chat *group.InnerChat) {
		chat.SetChannel(channel)
	}
}

// GroupFixture returns a group with n member inner chats, freshly created by
// its owner (state CreatingChats, all inner chats CreatingChannel).
func GroupFixture(n int, options ...func(*group.EncryptedGroup)) *group.EncryptedGroup {
	eg := &group.EncryptedGroup{
		ExternalID:  ExternalIDFixture(),
		InternalID:  InternalIDFixture(),
		Name:        "group fixture",
		OwnerUserID: UserIDFixture(),
		State:       group.StateCreatingChats,
	}
	for i := 0; i < n; i++ {
		eg.AddInnerChat(InnerChatFixture())
	}
	for _, option := range options {
		option(eg)
	}
	return eg
}

func WithGroupState(state group.State) func(*group.EncryptedGroup) {
	return func(eg *group.EncryptedGroup) {
		eg.State = state
	}
}

func WithOwner(ownerUserID group.UserID) func(*group.EncryptedGroup) {
	return func(eg *group.EncryptedGroup) {
		eg.OwnerUserID = ownerUserID
	}
}

func WithMembers(userIDs ...group.UserID) func(*group.EncryptedGroup) {
	return func(eg *group.EncryptedGroup) {
		eg.InnerChats = nil
		for _, userID := range userIDs {
			eg.AddInnerChat(InnerChatFixture(WithInnerChatUser(userID)))
		}
	}
}

// InitializedGroupFixture returns a fully converged group: every inner chat
// has a channel and is Initialized, as is the group.
func InitializedGroupFixture(userIDs ...group.UserID) *group.EncryptedGroup {
	eg := GroupFixture(0, WithGroupState(group.StateInitialized))
	for _, userID := range userIDs {
		eg.AddInnerChat(InnerChatFixture(
			WithInnerChatUser(userID),
			WithInnerChatChannel(ChannelIDFixture()),
			WithInnerChatState(group.InnerChatInitialized),
		))
	}
	return eg
}
