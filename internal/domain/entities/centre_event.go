package entities

import (
	"time"

	"github.com/google/uuid"
)

// CentreEventType represents the type of directory change event
type CentreEventType string

const (
	// CentreEventTypeReloaded is published after a bulk (re)load of centres and offerings
	CentreEventTypeReloaded CentreEventType = "centres.reloaded"

	// CentreEventTypeUpdated is published when a single centre changes
	CentreEventTypeUpdated CentreEventType = "centre.updated"
)

// CentreEvent notifies API instances that directory data changed
type CentreEvent struct {
	ID        string          `json:"id"`
	EventType CentreEventType `json:"event_type"`
	CentreID  string          `json:"centre_id,omitempty"`
	Count     int             `json:"count,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewCentreEvent creates a new centre event
func NewCentreEvent(eventType CentreEventType, centreID string, count int) *CentreEvent {
	return &CentreEvent{
		ID:        uuid.NewString(),
		EventType: eventType,
		CentreID:  centreID,
		Count:     count,
		Timestamp: time.Now().UTC(),
	}
}
