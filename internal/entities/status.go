package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the reading state of a catalog record. The persisted and JSON form
// is the upper-case name; Label returns the display text.
type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusInactive   Status = "INACTIVE"
	StatusCompleted  Status = "COMPLETED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusOverdue    Status = "OVERDUE"
)

var statusLabels = map[Status]string{
	StatusActive:     "Active",
	StatusInactive:   "Inactive",
	StatusCompleted:  "Completed",
	StatusInProgress: "In progress",
	StatusOverdue:    "Overdue",
}

// AllStatuses lists the statuses in display order.
func AllStatuses() []Status {
	return []Status{StatusActive, StatusInactive, StatusCompleted, StatusInProgress, StatusOverdue}
}

func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus accepts a status name ("IN_PROGRESS", "in_progress") or its
// label ("In progress").
func ParseStatus(value string) (Status, error) {
	value = strings.TrimSpace(value)
	candidate := Status(strings.ToUpper(value))
	if candidate.IsValid() {
		return candidate, nil
	}
	for status, label := range statusLabels {
		if strings.EqualFold(label, value) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", value)
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
