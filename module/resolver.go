package module

import (
	"errors"

	"github.com/groupweave/weave-go/model/group"
)

// ErrUserNotFound is returned by UserResolver when the user id is unknown to
// the local account.
var ErrUserNotFound = errors.New("user not found")

// User is the resolver's view of an account. The engine only needs identity
// and a display name for logging.
type User struct {
	ID   group.UserID
	Name string
}

// UserResolver validates that a user identity is known locally. Joining a
// group whose member list contains an unresolvable user fails the join.
type UserResolver interface {

	// Resolve returns the user with the given id.
	// Expected errors during normal operations:
	//   - ErrUserNotFound if the user id is unknown locally.
	Resolve(userID group.UserID) (*User, error)
}
