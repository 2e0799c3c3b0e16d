package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/module/events"
	modulemock "github.com/groupweave/weave-go/module/mock"
	"github.com/groupweave/weave-go/utils/unittest"
)

func TestDistributorFansOut(t *testing.T) {
	dist := events.NewDistributor()

	first := modulemock.NewGroupEvents(t)
	second := modulemock.NewGroupEvents(t)
	dist.AddConsumer(first)
	dist.AddConsumer(second)

	eg := unittest.GroupFixture(2)
	first.On("GroupUpdated", eg).Once()
	second.On("GroupUpdated", eg).Once()
	dist.GroupUpdated(eg)

	first.On("JoinRequested", eg).Once()
	second.On("JoinRequested", eg).Once()
	dist.JoinRequested(eg)

	first.On("GroupRemoved", eg.InternalID).Once()
	second.On("GroupRemoved", eg.InternalID).Once()
	dist.GroupRemoved(eg.InternalID)
}

func TestDistributorWithoutConsumers(t *testing.T) {
	dist := events.NewDistributor()

	// must be safe with nobody listening
	dist.GroupUpdated(unittest.GroupFixture(1))
	dist.GroupRemoved(group.InternalID(7))
	assert.NotPanics(t, func() { dist.JoinRequested(unittest.GroupFixture(1)) })
}
