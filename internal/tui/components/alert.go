package components

import tea "github.com/charmbracelet/bubbletea"

// AlertLevel indicates the severity of an alert.
type AlertLevel int

const (
	AlertInfo AlertLevel = iota
	AlertWarning
	AlertCritical
)

// AlertMsg asks the application to show an alert in the alert bar.
type AlertMsg struct {
	Level   AlertLevel
	Message string
}

// Alert returns a command emitting an AlertMsg.
func Alert(level AlertLevel, message string) tea.Cmd {
	return func() tea.Msg {
		return AlertMsg{Level: level, Message: message}
	}
}
