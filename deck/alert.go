package deck

import "time"

type (
	// Alert is a diagnostic message for the user. Alerts are the only error
	// reporting channel of the engine side: the render path never returns
	// errors, it absorbs faults and posts an Alert through the broker.
	Alert struct {
		Name     string
		Priority AlertPriority
		Message  string
		Duration time.Duration
	}

	AlertPriority int
)

const (
	None AlertPriority = iota
	Info
	Warning
	Error
)

const defaultAlertDuration = 3 * time.Second

// AddAlert queues an alert, replacing a pending alert with the same name so
// a repeating fault does not flood the list.
func (m *Model) AddAlert(a Alert) {
	if a.Duration == 0 {
		a.Duration = defaultAlertDuration
	}
	for i := range m.alerts {
		if m.alerts[i].Name == a.Name && a.Name != "" {
			m.alerts[i] = a
			return
		}
	}
	m.alerts = append(m.alerts, a)
}

// Alerts drains and returns the queued alerts.
func (m *Model) Alerts() []Alert {
	a := m.alerts
	m.alerts = nil
	return a
}
