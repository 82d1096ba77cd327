package model

import "time"

// EventType enumerates what the notification stream carries.
type EventType string

const (
	EventToast          EventType = "toast"
	EventUploadProgress EventType = "upload_progress"
	EventBatchCompleted EventType = "batch_completed"
	EventDrawer         EventType = "drawer"
)

// ToastKind separates success from failure toasts.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a user-visible notification.
type Toast struct {
	Kind        ToastKind `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

// UploadProgress reports the aggregate state of a running batch.
type UploadProgress struct {
	BatchID   string  `json:"batch_id"`
	Progress  float64 `json:"progress"`
	Uploading bool    `json:"uploading"`
	Settled   int     `json:"settled"`
	Total     int     `json:"total"`
}

// Event is one message on a user's notification stream.
type Event struct {
	Type       EventType       `json:"type"`
	Toast      *Toast          `json:"toast,omitempty"`
	Progress   *UploadProgress `json:"progress,omitempty"`
	DrawerOpen *bool           `json:"drawer_open,omitempty"`
	At         time.Time       `json:"at"`
}

// ToastEvent wraps a toast into a stream event.
func ToastEvent(kind ToastKind, title, description string) Event {
	return Event{
		Type:  EventToast,
		Toast: &Toast{Kind: kind, Title: title, Description: description},
		At:    time.Now().UTC(),
	}
}
