// Package network defines the engine's view of the pairwise secure-channel
// capability. Key exchange, encryption and delivery live behind these
// interfaces; the engine only opens channels and sends typed control
// messages over them.
package network

import (
	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/model/messages"
)

// ChannelCallback receives the result of an asynchronous channel-open
// attempt. Exactly one of channel and err is meaningful. The callback may be
// invoked from any goroutine; the engine re-enters its serialized mutation
// path before touching state.
type ChannelCallback func(channel group.ChannelID, err error)

// ChannelFactory opens and closes pairwise secure channels.
type ChannelFactory interface {

	// OpenChannel starts a secure channel handshake with the given user and
	// invokes done when it completes or fails. A rate-limited failure is
	// reported as a *RateLimitedError.
	OpenChannel(userID group.UserID, done ChannelCallback)

	// PeerUser returns the user on the far end of the channel. The provider
	// knows this from the handshake; the engine uses it to attribute inbound
	// first-contact messages.
	PeerUser(channel group.ChannelID) (group.UserID, error)

	// CloseChannel discards the channel. With dropHistory set, the carried
	// conversation is deleted on both ends as far as the provider allows.
	CloseChannel(channel group.ChannelID, dropHistory bool)
}

// SendCallback receives the transport-level outcome of an acknowledged send.
type SendCallback func(err error)

// Conduit sends control messages over already-open secure channels.
type Conduit interface {

	// Send transmits the message best-effort. Delivery is not guaranteed and
	// no outcome is reported; handlers on the receiving side tolerate loss,
	// reordering and duplication.
	Send(channel group.ChannelID, msg messages.Control) error

	// SendAcked transmits the message and invokes ack once the transport
	// confirms the send (server receipt, not peer receipt). Used where local
	// teardown must not outrun an outbound notice, such as kicking a member.
	SendAcked(channel group.ChannelID, msg messages.Control, ack SendCallback) error
}
