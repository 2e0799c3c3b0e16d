package groups

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/storage"
	"github.com/groupweave/weave-go/utils/unittest"
)

// TestDerivedUnreadCount checks that the group's unread count aggregates the
// inner chats', skipping chats without channels.
func TestDerivedUnreadCount(t *testing.T) {
	withEngine(t, 1, func(h *harness) {

		chA, chB := group.ChannelID(11), group.ChannelID(12)
		eg := ownedInitializedGroup(t, h, chA, chB)
		eg.AddInnerChat(unittest.InnerChatFixture(
			unittest.WithInnerChatUser(4),
			unittest.WithInnerChatState(group.InnerChatNewMemberCreatingChannel),
		))

		h.chats.On("UnreadCount", chA).Return(3).Once()
		h.chats.On("UnreadCount", chB).Return(4).Once()

		total, err := h.engine.UnreadCount(eg.InternalID)
		require.NoError(t, err)
		assert.Equal(t, 7, total)
	})
}

// TestDerivedLastMessageTime checks that the group's activity time is the
// newest inner-chat message time.
func TestDerivedLastMessageTime(t *testing.T) {
	withEngine(t, 1, func(h *harness) {

		chA, chB := group.ChannelID(11), group.ChannelID(12)
		eg := ownedInitializedGroup(t, h, chA, chB)

		older := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		newer := older.Add(time.Hour)
		h.chats.On("LastMessageTime", chA).Return(newer).Once()
		h.chats.On("LastMessageTime", chB).Return(older).Once()

		latest, err := h.engine.LastMessageTime(eg.InternalID)
		require.NoError(t, err)
		assert.Equal(t, newer, latest)
	})
}

// TestChannelHidden checks that inner-chat channels are flagged as hidden
// from standalone listing while foreign channels are not.
func TestChannelHidden(t *testing.T) {
	withEngine(t, 1, func(h *harness) {

		chA, chB := group.ChannelID(11), group.ChannelID(12)
		ownedInitializedGroup(t, h, chA, chB)

		assert.True(t, h.engine.ChannelHidden(chA))
		assert.True(t, h.engine.ChannelHidden(chB))
		assert.False(t, h.engine.ChannelHidden(group.ChannelID(999)))
	})
}

// TestSuppressPreview checks that previews are suppressed exactly while the
// channel's group has not converged.
func TestSuppressPreview(t *testing.T) {
	withEngine(t, 1, func(h *harness) {

		pending := unittest.GroupFixture(0,
			unittest.WithOwner(1),
			unittest.WithGroupState(group.StateWaitingConfirmationFromMembers),
		)
		pendingChannel := group.ChannelID(21)
		pending.AddInnerChat(unittest.InnerChatFixture(
			unittest.WithInnerChatUser(2),
			unittest.WithInnerChatChannel(pendingChannel),
			unittest.WithInnerChatState(group.InnerChatInvitationSent),
		))
		h.seed(t, pending)

		readyChannel := group.ChannelID(22)
		ownedInitializedGroup(t, h, readyChannel, 23)

		assert.True(t, h.engine.SuppressPreview(pendingChannel))
		assert.False(t, h.engine.SuppressPreview(readyChannel))
		assert.False(t, h.engine.SuppressPreview(group.ChannelID(999)))
	})
}

// TestRegistryLookups checks the id lookups and the initialized predicate.
func TestRegistryLookups(t *testing.T) {
	withEngine(t, 1, func(h *harness) {

		eg := ownedInitializedGroup(t, h, 11, 12)

		byInternal, err := h.engine.GroupByInternalID(eg.InternalID)
		require.NoError(t, err)
		assert.Equal(t, eg.ExternalID, byInternal.ExternalID)

		byExternal, err := h.engine.GroupByExternalID(eg.ExternalID)
		require.NoError(t, err)
		assert.Equal(t, eg.InternalID, byExternal.InternalID)

		assert.True(t, h.engine.IsInitialized(eg.InternalID))
		assert.False(t, h.engine.IsInitialized(group.InternalID(424242)))

		_, err = h.engine.GroupByExternalID(unittest.ExternalIDFixture())
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

// TestLoadRestoresRegistry checks that a restarted engine resumes from
// storage with all lookups intact.
func TestLoadRestoresRegistry(t *testing.T) {
	withEngine(t, 1, func(h *harness) {

		eg := unittest.GroupFixture(0,
			unittest.WithOwner(1),
			unittest.WithGroupState(group.StateWaitingConfirmationFromMembers),
		)
		channel := group.ChannelID(31)
		eg.AddInnerChat(unittest.InnerChatFixture(
			unittest.WithInnerChatUser(2),
			unittest.WithInnerChatChannel(channel),
			unittest.WithInnerChatState(group.InnerChatInvitationSent),
		))
		require.NoError(t, h.store.Store(eg))

		// nothing is registered until Load
		assert.False(t, h.engine.ChannelHidden(channel))

		require.NoError(t, h.engine.Load())

		assert.True(t, h.engine.ChannelHidden(channel))
		restored, err := h.engine.GroupByExternalID(eg.ExternalID)
		require.NoError(t, err)
		assert.Equal(t, eg.InternalID, restored.InternalID)
		assert.Equal(t, group.StateWaitingConfirmationFromMembers, restored.State)
	})
}
