package module

import (
	"github.com/groupweave/weave-go/model/group"
)

// Local encapsulates the local account's identity. One engine instance is
// constructed per account; nothing in the engine reaches for process-wide
// account state.
type Local interface {

	// UserID returns the local account's own user id.
	UserID() group.UserID
}
