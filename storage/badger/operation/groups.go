package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/groupweave/weave-go/model/group"
)

// GroupRecord is the stored shape of a group's own row. Inner chats live in
// their own rows; MemberOrder preserves their insertion order across
// restarts.
type GroupRecord struct {
	InternalID  group.InternalID
	ExternalID  group.ExternalID
	Name        string
	Avatar      []byte
	OwnerUserID group.UserID
	State       group.State
	MemberOrder []group.UserID
}

func InsertGroup(internalID group.InternalID, record *GroupRecord) func(*badger.Txn) error {
	return insert(makePrefix(codeGroup, internalID), record)
}

func UpdateGroup(internalID group.InternalID, record *GroupRecord) func(*badger.Txn) error {
	return update(makePrefix(codeGroup, internalID), record)
}

func RetrieveGroup(internalID group.InternalID, record *GroupRecord) func(*badger.Txn) error {
	return retrieve(makePrefix(codeGroup, internalID), record)
}

func RemoveGroup(internalID group.InternalID) func(*badger.Txn) error {
	return remove(makePrefix(codeGroup, internalID))
}

// ListGroups appends every stored group record to records, in key order
// (ascending internal id, unsigned).
func ListGroups(records *[]*GroupRecord) func(*badger.Txn) error {
	return traverse([]byte{codeGroup}, func() (createFunc, handleFunc) {
		var record GroupRecord
		create := func() interface{} {
			record = GroupRecord{}
			return &record
		}
		handle := func() error {
			stored := record
			*records = append(*records, &stored)
			return nil
		}
		return create, handle
	})
}

func UpsertInnerChat(internalID group.InternalID, userID group.UserID, chat *group.InnerChat) func(*badger.Txn) error {
	return upsert(makePrefix(codeInnerChat, internalID, userID), chat)
}

func RetrieveInnerChat(internalID group.InternalID, userID group.UserID, chat *group.InnerChat) func(*badger.Txn) error {
	return retrieve(makePrefix(codeInnerChat, internalID, userID), chat)
}

func RemoveInnerChat(internalID group.InternalID, userID group.UserID) func(*badger.Txn) error {
	return remove(makePrefix(codeInnerChat, internalID, userID))
}

// RemoveInnerChats deletes all inner-chat rows of the group.
func RemoveInnerChats(internalID group.InternalID) func(*badger.Txn) error {
	return removeByPrefix(makePrefix(codeInnerChat, internalID))
}

// ListInnerChats appends every inner chat of the group to chats, in key
// order (ascending user id); callers re-order by the group record's
// MemberOrder.
func ListInnerChats(internalID group.InternalID, chats *[]*group.InnerChat) func(*badger.Txn) error {
	return traverse(makePrefix(codeInnerChat, internalID), func() (createFunc, handleFunc) {
		var chat group.InnerChat
		create := func() interface{} {
			chat = group.InnerChat{}
			return &chat
		}
		handle := func() error {
			stored := chat
			*chats = append(*chats, &stored)
			return nil
		}
		return create, handle
	})
}

func InsertExternalIDIndex(externalID group.ExternalID, internalID group.InternalID) func(*badger.Txn) error {
	return insert(makePrefix(codeIndexExternalID, externalID), internalID)
}

func LookupInternalIDByExternalID(externalID group.ExternalID, internalID *group.InternalID) func(*badger.Txn) error {
	return retrieve(makePrefix(codeIndexExternalID, externalID), internalID)
}

func RemoveExternalIDIndex(externalID group.ExternalID) func(*badger.Txn) error {
	return remove(makePrefix(codeIndexExternalID, externalID))
}

func UpsertChannelIndex(channel group.ChannelID, internalID group.InternalID) func(*badger.Txn) error {
	return upsert(makePrefix(codeIndexChannel, channel), internalID)
}

func LookupInternalIDByChannel(channel group.ChannelID, internalID *group.InternalID) func(*badger.Txn) error {
	return retrieve(makePrefix(codeIndexChannel, channel), internalID)
}

func RemoveChannelIndex(channel group.ChannelID) func(*badger.Txn) error {
	return remove(makePrefix(codeIndexChannel, channel))
}
