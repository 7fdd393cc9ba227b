package entity

import (
	"time"
)

// ReminderPriority represents the urgency tier of an unclaimed CRC amount
type ReminderPriority string

const (
	PriorityNone   ReminderPriority = "NONE"
	PriorityLow    ReminderPriority = "LOW"
	PriorityMedium ReminderPriority = "MEDIUM"
	PriorityHigh   ReminderPriority = "HIGH"
	PriorityUrgent ReminderPriority = "URGENT"
)

// PriorityFor classifies an unclaimed amount against the configured daily
// unit. Amounts below one daily unit need no reminder at all.
func PriorityFor(amount, dailyUnit float64) ReminderPriority {
	switch {
	case amount >= 5*dailyUnit:
		return PriorityUrgent
	case amount >= 3*dailyUnit:
		return PriorityHigh
	case amount >= 2*dailyUnit:
		return PriorityMedium
	case amount >= dailyUnit:
		return PriorityLow
	default:
		return PriorityNone
	}
}

// NeedsReminder reports whether an unclaimed amount is worth a reminder,
// i.e. at least one daily unit has accrued.
func NeedsReminder(amount, dailyUnit float64) bool {
	return amount >= dailyUnit
}

// ToneMarker returns the marker prepended to reminder texts of this tier.
func (p ReminderPriority) ToneMarker() string {
	switch p {
	case PriorityUrgent:
		return "🚨"
	case PriorityHigh:
		return "⚠️"
	case PriorityMedium:
		return "⏰"
	case PriorityLow:
		return "💤"
	default:
		return ""
	}
}

// Reminder represents one composed reminder message for a flagged connection.
type Reminder struct {
	Connection Connection       `json:"connection"`
	Priority   ReminderPriority `json:"priority"`
	Text       string           `json:"text"`
}

// ReminderRequest represents a broadcast request received from a host
// application. Identifier is the raw user input (address or name-service
// handle); Channel names the delivery target for the dispatch collaborator.
type ReminderRequest struct {
	Identifier string `json:"identifier"`
	Channel    string `json:"channel"`
	DryRun     bool   `json:"dry_run"`
}

// ReminderMessage represents the payload handed to the dispatch collaborator.
type ReminderMessage struct {
	Channel  string           `json:"channel"`
	Text     string           `json:"text"`
	Priority ReminderPriority `json:"priority"`
	SentAt   time.Time        `json:"sent_at"`
}
