package badger_test

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/module/metrics"
	"github.com/groupweave/weave-go/storage"
	bstorage "github.com/groupweave/weave-go/storage/badger"
	"github.com/groupweave/weave-go/utils/unittest"
)

func TestGroupStoreRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		groups := bstorage.NewGroups(metrics.NewNoopCollector(), db)

		eg := unittest.GroupFixture(3)
		eg.Avatar = []byte{1, 2, 3}
		require.NoError(t, groups.Store(eg))

		actual, err := groups.ByInternalID(eg.InternalID)
		require.NoError(t, err)
		assert.Equal(t, eg.ExternalID, actual.ExternalID)
		assert.Equal(t, eg.Name, actual.Name)
		assert.Equal(t, eg.Avatar, actual.Avatar)
		assert.Equal(t, eg.State, actual.State)
		// inner chats come back in insertion order
		assert.Equal(t, eg.MemberIDs(), actual.MemberIDs())

		byExternal, err := groups.ByExternalID(eg.ExternalID)
		require.NoError(t, err)
		assert.Equal(t, eg.InternalID, byExternal.InternalID)
	})
}

func TestGroupStoreTwice(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		groups := bstorage.NewGroups(metrics.NewNoopCollector(), db)

		eg := unittest.GroupFixture(2)
		require.NoError(t, groups.Store(eg))
		err := groups.Store(eg)
		require.ErrorIs(t, err, storage.ErrAlreadyExists)
	})
}

func TestGroupRetrieveUnknown(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		groups := bstorage.NewGroups(metrics.NewNoopCollector(), db)

		_, err := groups.ByInternalID(unittest.InternalIDFixture())
		require.ErrorIs(t, err, storage.ErrNotFound)

		_, err = groups.ByExternalID(unittest.ExternalIDFixture())
		require.ErrorIs(t, err, storage.ErrNotFound)

		_, err = groups.InternalIDByChannel(unittest.ChannelIDFixture())
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestGroupUpdateRecord(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		groups := bstorage.NewGroups(metrics.NewNoopCollector(), db)

		eg := unittest.GroupFixture(2)
		require.NoError(t, groups.Store(eg))

		eg.Name = "renamed"
		eg.State = group.StateWaitingConfirmationFromMembers
		require.NoError(t, groups.Update(eg))

		// bypass the cache by reloading through a fresh store
		fresh := bstorage.NewGroups(metrics.NewNoopCollector(), db)
		actual, err := fresh.ByInternalID(eg.InternalID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", actual.Name)
		assert.Equal(t, group.StateWaitingConfirmationFromMembers, actual.State)
	})
}

func TestInnerChatUpsertIndexesChannel(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		groups := bstorage.NewGroups(metrics.NewNoopCollector(), db)

		eg := unittest.GroupFixture(2)
		require.NoError(t, groups.Store(eg))

		chat := eg.InnerChats[0]
		channel := unittest.ChannelIDFixture()
		chat.SetChannel(channel)
		chat.State = group.InnerChatInvitationSent
		require.NoError(t, groups.UpsertInnerChat(eg.InternalID, chat))

		internalID, err := groups.InternalIDByChannel(channel)
		require.NoError(t, err)
		assert.Equal(t, eg.InternalID, internalID)

		fresh := bstorage.NewGroups(metrics.NewNoopCollector(), db)
		actual, err := fresh.ByInternalID(eg.InternalID)
		require.NoError(t, err)
		restored := actual.InnerChatByUserID(chat.UserID)
		require.NotNil(t, restored)
		assert.Equal(t, channel, restored.Channel)
		assert.Equal(t, group.InnerChatInvitationSent, restored.State)
	})
}

func TestInnerChatRemove(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		groups := bstorage.NewGroups(metrics.NewNoopCollector(), db)

		eg := unittest.GroupFixture(3)
		channel := unittest.ChannelIDFixture()
		eg.InnerChats[1].SetChannel(channel)
		require.NoError(t, groups.Store(eg))

		removed := eg.InnerChats[1].UserID
		require.NoError(t, groups.RemoveInnerChat(eg.InternalID, removed))

		_, err := groups.InternalIDByChannel(channel)
		require.ErrorIs(t, err, storage.ErrNotFound)

		fresh := bstorage.NewGroups(metrics.NewNoopCollector(), db)
		actual, err := fresh.ByInternalID(eg.InternalID)
		require.NoError(t, err)
		assert.Len(t, actual.InnerChats, 2)
		assert.Nil(t, actual.InnerChatByUserID(removed))
	})
}

func TestGroupRemove(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		groups := bstorage.NewGroups(metrics.NewNoopCollector(), db)

		eg := unittest.InitializedGroupFixture(1, 2, 3)
		require.NoError(t, groups.Store(eg))
		require.NoError(t, groups.Remove(eg.InternalID))

		_, err := groups.ByInternalID(eg.InternalID)
		require.ErrorIs(t, err, storage.ErrNotFound)
		_, err = groups.ByExternalID(eg.ExternalID)
		require.ErrorIs(t, err, storage.ErrNotFound)
		for _, chat := range eg.InnerChats {
			_, err = groups.InternalIDByChannel(chat.Channel)
			require.ErrorIs(t, err, storage.ErrNotFound)
		}
	})
}

func TestGroupsAll(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		groups := bstorage.NewGroups(metrics.NewNoopCollector(), db)

		expected := make(map[group.InternalID]bool)
		for i := 0; i < 4; i++ {
			eg := unittest.GroupFixture(2)
			require.NoError(t, groups.Store(eg))
			expected[eg.InternalID] = true
		}

		all, err := groups.All()
		require.NoError(t, err)
		require.Len(t, all, 4)
		for _, eg := range all {
			assert.True(t, expected[eg.InternalID])
		}
	})
}
