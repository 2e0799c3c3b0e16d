// Package events provides a simple synchronous distributor for group
// lifecycle notifications.
package events

import (
	"sync"

	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/module"
)

// Distributor fans group lifecycle events out to all registered consumers,
// in registration order. It implements module.GroupEvents itself so it can
// be injected wherever a single consumer is expected.
type Distributor struct {
	mu        sync.RWMutex
	consumers []module.GroupEvents
}

var _ module.GroupEvents = (*Distributor)(nil)

func NewDistributor() *Distributor {
	return &Distributor{}
}

// AddConsumer registers a consumer for all subsequent events.
func (d *Distributor) AddConsumer(consumer module.GroupEvents) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.consumers = append(d.consumers, consumer)
}

func (d *Distributor) GroupUpdated(g *group.EncryptedGroup) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, consumer := range d.consumers {
		consumer.GroupUpdated(g)
	}
}

func (d *Distributor) GroupRemoved(internalID group.InternalID) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, consumer := range d.consumers {
		consumer.GroupRemoved(internalID)
	}
}

func (d *Distributor) JoinRequested(g *group.EncryptedGroup) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, consumer := range d.consumers {
		consumer.JoinRequested(g)
	}
}
