package core

import "fmt"

// Notification is a human-readable outcome of a save or delete action.
type Notification struct {
	StudentID string
	Action    string
	Success   bool
	Message   string
	Err       error

	// ClientError marks failures caused by the request: bad input, stale
	// version, missing or finished course.
	ClientError bool
}

func (n Notification) String() string {
	status := "succeeded"
	if !n.Success {
		status = "failed"
	}
	if n.Message == "" {
		return fmt.Sprintf("%s %s for student %s", n.Action, status, n.StudentID)
	}
	return fmt.Sprintf("%s %s for student %s: %s", n.Action, status, n.StudentID, n.Message)
}

// Notifier is any service that can deliver success/failure signals.
type Notifier interface {
	Notify(n Notification)
}
