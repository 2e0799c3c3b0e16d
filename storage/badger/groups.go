package badger

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"golang.org/x/exp/slices"

	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/module"
	"github.com/groupweave/weave-go/storage"
	"github.com/groupweave/weave-go/storage/badger/operation"
)

// Groups implements persistent storage for encrypted groups on top of
// badger. A group is stored as one record row plus one row per inner chat,
// with lookup indexes by external id and by channel handle, so that a single
// inner-chat transition does not rewrite the whole group.
type Groups struct {
	db    *badger.DB
	cache *Cache
}

var _ storage.Groups = (*Groups)(nil)

func NewGroups(collector module.CacheMetrics, db *badger.DB) *Groups {

	g := &Groups{db: db}

	store := func(internalID group.InternalID, resource interface{}) error {
		return db.Update(g.storeTx(resource.(*group.EncryptedGroup)))
	}

	retrieve := func(internalID group.InternalID) (interface{}, error) {
		var eg *group.EncryptedGroup
		err := db.View(func(tx *badger.Txn) error {
			var err error
			eg, err = retrieveTx(internalID)(tx)
			return err
		})
		return eg, err
	}

	g.cache = newCache(collector,
		withLimit(128),
		withStore(store),
		withRetrieve(retrieve),
		withResource("encrypted_group"))

	return g
}

func (g *Groups) Store(eg *group.EncryptedGroup) error {
	return g.cache.Put(eg.InternalID, eg)
}

func (g *Groups) storeTx(eg *group.EncryptedGroup) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		err := operation.InsertGroup(eg.InternalID, recordFromGroup(eg))(tx)
		if err != nil {
			return fmt.Errorf("could not insert group record: %w", err)
		}
		err = operation.InsertExternalIDIndex(eg.ExternalID, eg.InternalID)(tx)
		if err != nil {
			return fmt.Errorf("could not index external id: %w", err)
		}
		for _, chat := range eg.InnerChats {
			err = writeInnerChat(eg.InternalID, chat)(tx)
			if err != nil {
				return err
			}
		}
		return nil
	}
}

func (g *Groups) Update(eg *group.EncryptedGroup) error {
	err := g.db.Update(operation.UpdateGroup(eg.InternalID, recordFromGroup(eg)))
	if err != nil {
		return fmt.Errorf("could not update group record: %w", err)
	}
	return nil
}

func (g *Groups) UpsertInnerChat(internalID group.InternalID, chat *group.InnerChat) error {
	err := g.db.Update(writeInnerChat(internalID, chat))
	if err != nil {
		return fmt.Errorf("could not upsert inner chat: %w", err)
	}
	return nil
}

func (g *Groups) RemoveInnerChat(internalID group.InternalID, userID group.UserID) error {
	err := g.db.Update(func(tx *badger.Txn) error {

		var chat group.InnerChat
		err := operation.RetrieveInnerChat(internalID, userID, &chat)(tx)
		if err != nil {
			return fmt.Errorf("could not retrieve inner chat: %w", err)
		}

		err = operation.RemoveInnerChat(internalID, userID)(tx)
		if err != nil {
			return fmt.Errorf("could not remove inner chat: %w", err)
		}
		if chat.HasChannel() {
			err = operation.RemoveChannelIndex(chat.Channel)(tx)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("could not remove channel index: %w", err)
			}
		}

		// drop the member from the stored order
		var record operation.GroupRecord
		err = operation.RetrieveGroup(internalID, &record)(tx)
		if err != nil {
			return fmt.Errorf("could not retrieve group record: %w", err)
		}
		record.MemberOrder = slices.DeleteFunc(record.MemberOrder, func(id group.UserID) bool {
			return id == userID
		})
		err = operation.UpdateGroup(internalID, &record)(tx)
		if err != nil {
			return fmt.Errorf("could not update member order: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}
	return nil
}

func (g *Groups) Remove(internalID group.InternalID) error {
	err := g.db.Update(func(tx *badger.Txn) error {

		eg, err := retrieveTx(internalID)(tx)
		if err != nil {
			return err
		}

		err = operation.RemoveGroup(internalID)(tx)
		if err != nil {
			return fmt.Errorf("could not remove group record: %w", err)
		}
		err = operation.RemoveExternalIDIndex(eg.ExternalID)(tx)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("could not remove external id index: %w", err)
		}
		for _, chat := range eg.InnerChats {
			if !chat.HasChannel() {
				continue
			}
			err = operation.RemoveChannelIndex(chat.Channel)(tx)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("could not remove channel index: %w", err)
			}
		}
		err = operation.RemoveInnerChats(internalID)(tx)
		if err != nil {
			return fmt.Errorf("could not remove inner chats: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	g.cache.Remove(internalID)
	return nil
}

func (g *Groups) ByInternalID(internalID group.InternalID) (*group.EncryptedGroup, error) {
	resource, err := g.cache.Get(internalID)
	if err != nil {
		return nil, err
	}
	return resource.(*group.EncryptedGroup), nil
}

func (g *Groups) ByExternalID(externalID group.ExternalID) (*group.EncryptedGroup, error) {
	var internalID group.InternalID
	err := g.db.View(operation.LookupInternalIDByExternalID(externalID, &internalID))
	if err != nil {
		return nil, err
	}
	return g.ByInternalID(internalID)
}

func (g *Groups) InternalIDByChannel(channel group.ChannelID) (group.InternalID, error) {
	var internalID group.InternalID
	err := g.db.View(operation.LookupInternalIDByChannel(channel, &internalID))
	if err != nil {
		return 0, err
	}
	return internalID, nil
}

func (g *Groups) All() ([]*group.EncryptedGroup, error) {
	var records []*operation.GroupRecord
	err := g.db.View(operation.ListGroups(&records))
	if err != nil {
		return nil, fmt.Errorf("could not list group records: %w", err)
	}
	groups := make([]*group.EncryptedGroup, 0, len(records))
	for _, record := range records {
		eg, err := g.ByInternalID(record.InternalID)
		if err != nil {
			return nil, fmt.Errorf("could not retrieve group %d: %w", record.InternalID, err)
		}
		groups = append(groups, eg)
	}
	return groups, nil
}

// writeInnerChat stores an inner-chat row and keeps the channel index in
// step.
func writeInnerChat(internalID group.InternalID, chat *group.InnerChat) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		err := operation.UpsertInnerChat(internalID, chat.UserID, chat)(tx)
		if err != nil {
			return fmt.Errorf("could not store inner chat: %w", err)
		}
		if chat.HasChannel() {
			err = operation.UpsertChannelIndex(chat.Channel, internalID)(tx)
			if err != nil {
				return fmt.Errorf("could not index channel: %w", err)
			}
		}
		return nil
	}
}

// retrieveTx assembles a group from its record row and inner-chat rows,
// restoring the original inner-chat order.
func retrieveTx(internalID group.InternalID) func(*badger.Txn) (*group.EncryptedGroup, error) {
	return func(tx *badger.Txn) (*group.EncryptedGroup, error) {

		var record operation.GroupRecord
		err := operation.RetrieveGroup(internalID, &record)(tx)
		if err != nil {
			return nil, err
		}

		var chats []*group.InnerChat
		err = operation.ListInnerChats(internalID, &chats)(tx)
		if err != nil {
			return nil, fmt.Errorf("could not list inner chats: %w", err)
		}

		byUser := make(map[group.UserID]*group.InnerChat, len(chats))
		for _, chat := range chats {
			byUser[chat.UserID] = chat
		}

		eg := &group.EncryptedGroup{
			ExternalID:  record.ExternalID,
			InternalID:  record.InternalID,
			Name:        record.Name,
			Avatar:      record.Avatar,
			OwnerUserID: record.OwnerUserID,
			State:       record.State,
		}
		for _, userID := range record.MemberOrder {
			chat, exists := byUser[userID]
			if !exists {
				return nil, fmt.Errorf("missing inner chat row for user %d", userID)
			}
			eg.InnerChats = append(eg.InnerChats, chat)
		}

		return eg, nil
	}
}

func recordFromGroup(eg *group.EncryptedGroup) *operation.GroupRecord {
	return &operation.GroupRecord{
		InternalID:  eg.InternalID,
		ExternalID:  eg.ExternalID,
		Name:        eg.Name,
		Avatar:      eg.Avatar,
		OwnerUserID: eg.OwnerUserID,
		State:       eg.State,
		MemberOrder: eg.MemberIDs(),
	}
}
