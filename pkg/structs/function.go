package structs

import (
	"strings"
)

// Trigger is the kind of domain event a function reacts to.
type Trigger string

const (
	TriggerContentItemCreated Trigger = "content_item_created"
	TriggerContentItemUpdated Trigger = "content_item_updated"
	TriggerContentItemDeleted Trigger = "content_item_deleted"
)

func ToTrigger(s string) Trigger {
	switch strings.ToLower(s) {
	case "content_item_created":
		return TriggerContentItemCreated
	case "content_item_updated":
		return TriggerContentItemUpdated
	case "content_item_deleted":
		return TriggerContentItemDeleted
	default:
		return ""
	}
}

// Function is a user authored script, owned by the content management layer.
type Function struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	DeveloperName string  `json:"developer_name"`
	Code          string  `json:"code"`
	Trigger       Trigger `json:"trigger"`
	IsActive      bool    `json:"is_active"`
}

// FunctionRun is the payload of a governed-function job.
type FunctionRun struct {
	FunctionID    string      `json:"function_id"`
	DeveloperName string      `json:"developer_name"`
	Code          string      `json:"code"`
	Trigger       Trigger     `json:"trigger"`
	ContentType   string      `json:"content_type,omitempty"`
	Entity        interface{} `json:"entity"`
}

const (
	ResultJSON       = "json"
	ResultHTML       = "html"
	ResultRedirect   = "redirect"
	ResultStatusCode = "status_code"
	ResultValue      = "value"
)

// FunctionResult is what a function's run(payload) returned.
type FunctionResult struct {
	Type       string      `json:"type"`
	StatusCode int         `json:"status_code,omitempty"`
	Body       interface{} `json:"body,omitempty"`
	Location   string      `json:"location,omitempty"`
}
