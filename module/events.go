package module

import (
	"github.com/groupweave/weave-go/model/group"
)

// GroupEvents is implemented by consumers of group lifecycle notifications,
// typically the conversation list and notification layers of the host
// application. Implementations must be non-blocking: callbacks are invoked
// synchronously inside the account's serialized mutation path.
type GroupEvents interface {

	// GroupUpdated is called after a group or one of its inner chats changed
	// state and the change was persisted.
	GroupUpdated(g *group.EncryptedGroup)

	// GroupRemoved is called after the local copy of a group was deleted,
	// whether by decline, kick or cancellation.
	GroupRemoved(internalID group.InternalID)

	// JoinRequested is called when an inbound creation invitation produced a
	// local group pending the user's accept/decline decision.
	JoinRequested(g *group.EncryptedGroup)
}
