package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespaceGroups = "groups"

// GroupsCollector is the prometheus-backed implementation of
// module.GroupsMetrics.
type GroupsCollector struct {
	channelsOpened         prometheus.Counter
	channelOpenFailures    prometheus.Counter
	rateLimitWindowSeconds prometheus.Histogram
	messagesHandled        *prometheus.CounterVec
	messagesDropped        *prometheus.CounterVec
	groupsInitialized      prometheus.Counter
	groupsFailed           prometheus.Counter
}

func NewGroupsCollector() *GroupsCollector {

	gc := &GroupsCollector{

		channelsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceGroups,
			Name:      "channels_opened_total",
			Help:      "count of successfully opened inner-chat secure channels",
		}),

		channelOpenFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceGroups,
			Name:      "channel_open_failures_total",
			Help:      "count of channel-open attempts failed for non-rate-limit reasons",
		}),

		rateLimitWindowSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespaceGroups,
			Buckets:   []float64{1, 5, 30, 60, 300, 3600},
			Name:      "rate_limit_window_seconds",
			Help:      "backoff windows imposed by the channel provider",
		}),

		messagesHandled: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceGroups,
			Name:      "control_messages_handled_total",
			Help:      "count of inbound control messages applied",
		}, []string{"message"}),

		messagesDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceGroups,
			Name:      "control_messages_dropped_total",
			Help:      "count of inbound control messages dropped by precondition",
		}, []string{"message"}),

		groupsInitialized: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceGroups,
			Name:      "initialized_total",
			Help:      "count of groups converged to the initialized state",
		}),

		groupsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceGroups,
			Name:      "failed_total",
			Help:      "count of groups reaching the initialization-failed state",
		}),
	}

	return gc
}

func (gc *GroupsCollector) ChannelOpened() {
	gc.channelsOpened.Inc()
}

func (gc *GroupsCollector) ChannelOpenFailed() {
	gc.channelOpenFailures.Inc()
}

func (gc *GroupsCollector) RateLimited(seconds float64) {
	gc.rateLimitWindowSeconds.Observe(seconds)
}

func (gc *GroupsCollector) ControlMessageHandled(messageType string) {
	gc.messagesHandled.With(prometheus.Labels{"message": messageType}).Inc()
}

func (gc *GroupsCollector) ControlMessageDropped(messageType string) {
	gc.messagesDropped.With(prometheus.Labels{"message": messageType}).Inc()
}

func (gc *GroupsCollector) GroupInitialized() {
	gc.groupsInitialized.Inc()
}

func (gc *GroupsCollector) GroupFailed() {
	gc.groupsFailed.Inc()
}
