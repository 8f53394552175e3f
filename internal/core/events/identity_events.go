package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeIdentityDeactivated = "identity.deactivated"
)

// NewIdentityDeactivatedEvent is published when an account is deactivated or
// removed upstream. Subscribers enforce the session-lifetime rule: every
// session owned by the identity must be terminated.
func NewIdentityDeactivatedEvent(canonicalID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeIdentityDeactivated,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"canonical_id": canonicalID,
		},
	}
}

// CanonicalIDFromEvent extracts the owning identity from a deactivation
// event payload. Returns empty string when the payload is malformed.
func CanonicalIDFromEvent(event Event) string {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return ""
	}
	canonicalID, _ := data["canonical_id"].(string)
	return canonicalID
}
