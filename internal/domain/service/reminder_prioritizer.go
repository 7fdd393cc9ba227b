package service

import (
	"fmt"
	"sort"

	"circles-claim-reminder/internal/domain/entity"
)

// ReminderPrioritizer classifies and ranks a snapshot's connections by
// unclaimed amount and composes the reminder text for each one. No I/O.
type ReminderPrioritizer struct {
	dailyUnit  float64
	hourlyRate float64
}

// NewReminderPrioritizer creates a new reminder prioritizer
func NewReminderPrioritizer(dailyUnit, hourlyRate float64) *ReminderPrioritizer {
	if dailyUnit <= 0 {
		dailyUnit = DefaultDailyUnit
	}
	if hourlyRate <= 0 {
		hourlyRate = DefaultHourlyRate
	}
	return &ReminderPrioritizer{dailyUnit: dailyUnit, hourlyRate: hourlyRate}
}

// Prioritize filters connections by the needs-reminder predicate, orders
// them by descending unclaimed amount, and composes one message each.
func (p *ReminderPrioritizer) Prioritize(snapshot *entity.AggregationSnapshot) []entity.Reminder {
	flagged := make([]entity.Connection, 0, len(snapshot.Connections))
	for _, conn := range snapshot.Connections {
		if entity.NeedsReminder(conn.Unclaimed, p.dailyUnit) {
			flagged = append(flagged, conn)
		}
	}

	sort.SliceStable(flagged, func(i, j int) bool {
		return flagged[i].Unclaimed > flagged[j].Unclaimed
	})

	reminders := make([]entity.Reminder, 0, len(flagged))
	for _, conn := range flagged {
		priority := entity.PriorityFor(conn.Unclaimed, p.dailyUnit)
		reminders = append(reminders, entity.Reminder{
			Connection: conn,
			Priority:   priority,
			Text:       p.composeText(conn, priority),
		})
	}
	return reminders
}

// NeedsReminder reports whether a single connection clears the reminder
// threshold under the configured daily unit.
func (p *ReminderPrioritizer) NeedsReminder(conn entity.Connection) bool {
	return entity.NeedsReminder(conn.Unclaimed, p.dailyUnit)
}

// composeText renders the reminder line for one flagged connection.
func (p *ReminderPrioritizer) composeText(conn entity.Connection, priority entity.ReminderPriority) string {
	name := conn.Name
	if name == "" {
		name = entity.ShortAddress(conn.Address)
	}
	return fmt.Sprintf("%s %s has %s (%.1f CRC). Remind them to mint!",
		priority.ToneMarker(), name, p.describeDuration(conn.Unclaimed), conn.Unclaimed)
}

// describeDuration converts an unclaimed amount back into elapsed time under
// the configured hourly rate.
func (p *ReminderPrioritizer) describeDuration(amount float64) string {
	hours := int(amount / p.hourlyRate)
	return fmt.Sprintf("%d days, %d hours of unclaimed CRC", hours/24, hours%24)
}
