package module

// GroupsMetrics collects protocol-level counters for the encrypted group
// engine.
type GroupsMetrics interface {

	// ChannelOpened is called when a channel-open attempt completes
	// successfully.
	ChannelOpened()

	// ChannelOpenFailed is called when a channel-open attempt fails for a
	// reason other than rate limiting.
	ChannelOpenFailed()

	// RateLimited is called when the provider throttles a channel-open
	// attempt, with the backoff window in seconds.
	RateLimited(seconds float64)

	// ControlMessageHandled is called when an inbound control message passes
	// its precondition and is applied.
	ControlMessageHandled(messageType string)

	// ControlMessageDropped is called when an inbound control message fails
	// its precondition and is dropped.
	ControlMessageDropped(messageType string)

	// GroupInitialized is called when a group converges to Initialized.
	GroupInitialized()

	// GroupFailed is called when a group reaches InitializationFailed.
	GroupFailed()
}
