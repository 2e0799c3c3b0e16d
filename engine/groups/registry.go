package groups

import (
	"time"

	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/storage"
)

// GroupByInternalID returns the group with the given local id. The returned
// group is the engine's live copy and must be treated as read-only.
func (e *Engine) GroupByInternalID(internalID group.InternalID) (*group.EncryptedGroup, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lookup(internalID)
}

// GroupByExternalID returns the local copy of the group with the given
// provider-wide id.
func (e *Engine) GroupByExternalID(externalID group.ExternalID) (*group.EncryptedGroup, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	internalID, exists := e.byExternal[externalID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return e.lookup(internalID)
}

// IsInitialized reports whether the group has converged. Unknown groups
// report false.
func (e *Engine) IsInitialized(internalID group.InternalID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	eg, exists := e.byInternal[internalID]
	return exists && eg.IsInState(group.StateInitialized)
}

// UnreadCount aggregates the unread counts of all inner chats into the
// group's derived unread count.
func (e *Engine) UnreadCount(internalID group.InternalID) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	eg, err := e.lookup(internalID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, chat := range eg.InnerChats {
		if chat.HasChannel() {
			total += e.chats.UnreadCount(chat.Channel)
		}
	}
	return total, nil
}

// LastMessageTime returns the most recent message time across all inner
// chats, the group's derived activity timestamp.
func (e *Engine) LastMessageTime(internalID group.InternalID) (time.Time, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	eg, err := e.lookup(internalID)
	if err != nil {
		return time.Time{}, err
	}
	var latest time.Time
	for _, chat := range eg.InnerChats {
		if !chat.HasChannel() {
			continue
		}
		if t := e.chats.LastMessageTime(chat.Channel); t.After(latest) {
			latest = t
		}
	}
	return latest, nil
}

// ChannelHidden reports whether the channel belongs to a group's inner chat
// and should therefore not surface as a standalone conversation; the group
// itself represents it.
func (e *Engine) ChannelHidden(channel group.ChannelID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, exists := e.byChannel[channel]
	return exists
}

// SuppressPreview reports whether message previews for the channel should be
// withheld because its group has not converged yet.
func (e *Engine) SuppressPreview(channel group.ChannelID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	eg := e.groupByChannel(channel)
	return eg != nil && !eg.IsInState(group.StateInitialized)
}
