package storage

import (
	"github.com/groupweave/weave-go/model/group"
)

// Groups represents persistent storage for encrypted groups and their inner
// chats. Formation must be resumable after a crash, so every state
// transition is written before any dependent control message is sent.
type Groups interface {

	// Store inserts the group with all of its inner chats and indexes it by
	// external id and by every bound channel.
	// Expected errors during normal operations:
	//   - storage.ErrAlreadyExists if a group with the same internal id exists.
	Store(g *group.EncryptedGroup) error

	// Update overwrites the group's own record (name, avatar, state, member
	// order). Inner chats are persisted separately via UpsertInnerChat.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the group is not stored.
	Update(g *group.EncryptedGroup) error

	// UpsertInnerChat writes one member's inner chat and, if the chat has a
	// channel, the channel-to-group index entry.
	UpsertInnerChat(internalID group.InternalID, chat *group.InnerChat) error

	// RemoveInnerChat deletes one member's inner chat and its channel index
	// entry, and drops the member from the stored order.
	RemoveInnerChat(internalID group.InternalID, userID group.UserID) error

	// Remove deletes the group, its inner chats and all index entries.
	Remove(internalID group.InternalID) error

	// ByInternalID returns the group with all inner chats attached, in their
	// original insertion order.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if no group with the given internal id is known.
	ByInternalID(internalID group.InternalID) (*group.EncryptedGroup, error)

	// ByExternalID returns the group carrying the given provider-wide id.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if no group with the given external id is known.
	ByExternalID(externalID group.ExternalID) (*group.EncryptedGroup, error)

	// InternalIDByChannel resolves the group owning the inner chat bound to
	// the given secure channel.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the channel belongs to no known group.
	InternalIDByChannel(channel group.ChannelID) (group.InternalID, error)

	// All returns every stored group, ordered by internal id.
	All() ([]*group.EncryptedGroup, error)
}
