package metrics

// NoopCollector satisfies the engine's metrics interfaces without recording
// anything. Used in tests and by hosts that do not run prometheus.
type NoopCollector struct{}

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) ChannelOpened()                           {}
func (nc *NoopCollector) ChannelOpenFailed()                       {}
func (nc *NoopCollector) RateLimited(seconds float64)              {}
func (nc *NoopCollector) ControlMessageHandled(messageType string) {}
func (nc *NoopCollector) ControlMessageDropped(messageType string) {}
func (nc *NoopCollector) GroupInitialized()                        {}
func (nc *NoopCollector) GroupFailed()                             {}
func (nc *NoopCollector) CacheHit(resource string)                 {}
func (nc *NoopCollector) CacheMiss(resource string)                {}
func (nc *NoopCollector) CacheEntries(resource string, count uint) {}
