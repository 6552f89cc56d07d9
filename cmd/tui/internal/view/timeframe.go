package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

// Timeframe is a predefined or custom date range.
type Timeframe int

const (
	TimeframeAll Timeframe = iota
	TimeframeThisWeek
	TimeframeLastWeek
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeThisYear
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeAll:
		return "All Time"
	case TimeframeThisWeek:
		return "This Week"
	case TimeframeLastWeek:
		return "Last Week"
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeThisYear:
		return "This Year"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// timeframeRange returns the first and last day of tf relative to now.
// Weeks start on Monday.
func timeframeRange(tf Timeframe, now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	monday := today.AddDate(0, 0, 1-weekday)
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	switch tf {
	case TimeframeThisWeek:
		return monday, today
	case TimeframeLastWeek:
		return monday.AddDate(0, 0, -7), monday.AddDate(0, 0, -1)
	case TimeframeThisMonth:
		return firstOfMonth, today
	case TimeframeLastMonth:
		return firstOfMonth.AddDate(0, -1, 0), firstOfMonth.AddDate(0, 0, -1)
	case TimeframeThisYear:
		return time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC), today
	}

	return time.Time{}, time.Time{}
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

// TimeframeSelectedMsg carries the chosen range. Start and End are nil for
// All Time.
type TimeframeSelectedMsg struct {
	Start *time.Time
	End   *time.Time
	Field record.DateField
	Label string
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

var dateFields = []record.DateField{record.DateIssue, record.DateDue, record.DateUpdated}

// TimeframePicker selects a date range and the record date it applies to.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe
	fieldIdx int
	now      func() time.Time

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewTimeframePicker() TimeframePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "From: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "To:   "

	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   TimeframeAll,
		now:        time.Now,
		startInput: si,
		endInput:   ei,
	}
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(keyMsg)
		case timeframeStateCustom:
			if next, cmd, handled := m.updateCustom(keyMsg); handled {
				return next, cmd
			}
		}
	}

	if m.state == timeframeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m TimeframePicker) field() record.DateField {
	return dateFields[m.fieldIdx]
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > TimeframeAll {
			m.selected--
		}
	case "down", "j":
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case "f":
		m.fieldIdx = (m.fieldIdx + 1) % len(dateFields)
	case "enter":
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		}

		sel := TimeframeSelectedMsg{Field: m.field(), Label: m.selected.String()}

		if m.selected != TimeframeAll {
			start, end := timeframeRange(m.selected, m.now())
			end = endOfDay(end)
			sel.Start, sel.End = &start, &end
		}

		return m, func() tea.Msg { return sel }
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink, true

	case "enter":
		start, err := time.Parse(time.DateOnly, m.startInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid start date (YYYY-MM-DD)")
			return m, nil, true
		}

		end, err := time.Parse(time.DateOnly, m.endInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid end date (YYYY-MM-DD)")
			return m, nil, true
		}

		if end.Before(start) {
			m.err = fmt.Errorf("end date is before start date")
			return m, nil, true
		}

		m.err = nil
		last := endOfDay(end)
		sel := TimeframeSelectedMsg{
			Start: &start,
			End:   &last,
			Field: m.field(),
			Label: start.Format(time.DateOnly) + " to " + end.Format(time.DateOnly),
		}

		return m, func() tea.Msg { return sel }, true

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var cmds []tea.Cmd

	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Custom range on %s date:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.field(),
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	s := fmt.Sprintf("Date range on %s date (f to change):\n\n", activeStyle(string(m.field())))
	for i := TimeframeAll; i <= TimeframeCustom; i++ {
		cursor := " "
		if m.selected == i {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, i.String())
	}

	s += "\n(Enter to select, Esc to back)"

	return lipgloss.NewStyle().Render(s + errStr)
}

// IsSelecting reports whether the picker shows the preset list rather than
// the custom inputs.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
