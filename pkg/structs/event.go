package structs

import (
	"time"
)

// Event is a domain event raised by the content management layer.
type Event struct {
	Trigger     Trigger     `json:"trigger"`
	ContentType string      `json:"content_type"`
	Entity      interface{} `json:"entity"`
	OccurredAt  time.Time   `json:"occurred_at"`
}
