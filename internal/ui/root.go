package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vinke29/taskdeck/internal/cascade"
	"github.com/vinke29/taskdeck/internal/dates"
	"github.com/vinke29/taskdeck/internal/model"
	"github.com/vinke29/taskdeck/internal/session"
	"github.com/vinke29/taskdeck/internal/ui/theme"
)

// Mode represents the current input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdd
	ModeAddSubtask
	ModeEdit
	ModeDueDate
	ModeConfirmDelete
	ModeReorder
)

// row is one rendered line the cursor can land on: a task, or one of
// its visible subtasks.
type row struct {
	section   Section
	taskID    int
	subtaskID int // 0 for task rows
}

// RootModel is the main application model
type RootModel struct {
	session *session.Session
	keys    KeyMap
	help    help.Model
	input   textinput.Model

	width  int
	height int

	mode      Mode
	cursor    int
	rows      []row
	sortByDue bool

	// Target of the current input-mode operation
	editTaskID    int
	editSubtaskID int

	helpVisible bool
	statusMsg   string
	errorMsg    string
	syncErr     string
}

// NewRootModel creates the root model over a signed-in session.
func NewRootModel(sess *session.Session) RootModel {
	h := help.New()
	h.ShowAll = false

	input := textinput.New()
	input.CharLimit = 256

	m := RootModel{
		session: sess,
		keys:    DefaultKeyMap(),
		help:    h,
		input:   input,
	}
	m.rebuildRows()
	return m
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	return nil
}

// refreshAfterCompleteDelay re-renders once the deferred completion
// timer had a chance to migrate a fully-checked task.
func refreshAfterCompleteDelay() tea.Cmd {
	return tea.Tick(session.DefaultCompleteDelay+100*time.Millisecond, func(time.Time) tea.Msg {
		return RefreshMsg{}
	})
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		m.errorMsg = ""
		return m.handleKey(msg)

	case RefreshMsg:
		m.rebuildRows()
		return m, nil

	case SyncErrorMsg:
		m.syncErr = "sync paused, changes saved locally"
		return m, nil
	}

	return m, nil
}

func (m RootModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c always quits, whatever the mode
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.mode != ModeNormal && m.mode != ModeReorder {
		return m.handleInputKey(msg)
	}
	if m.mode == ModeReorder {
		return m.handleReorderKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.ThemeCycle):
		m.cycleTheme()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
		m.help.ShowAll = m.helpVisible
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		if len(m.rows) > 0 {
			m.cursor = len(m.rows) - 1
		}
		return m, nil

	case key.Matches(msg, m.keys.NextSection):
		m.jumpToNextSection()
		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.mode = ModeAdd
		m.input.Placeholder = "New task (text due:tomorrow)"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.AddSubtask):
		r, ok := m.currentRow()
		if !ok || r.section != SectionActive {
			return m, nil
		}
		m.mode = ModeAddSubtask
		m.editTaskID = r.taskID
		m.input.Placeholder = "New subtask"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Edit):
		return m, m.startEdit()

	case key.Matches(msg, m.keys.DueDate):
		r, ok := m.currentRow()
		if !ok || r.section != SectionActive {
			return m, nil
		}
		m.mode = ModeDueDate
		m.editTaskID = r.taskID
		m.editSubtaskID = r.subtaskID
		m.input.Placeholder = "Due (tomorrow, friday, 2026-01-15, empty clears)"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggleCurrent()

	case key.Matches(msg, m.keys.Delete):
		r, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		m.mode = ModeConfirmDelete
		m.editTaskID = r.taskID
		m.editSubtaskID = r.subtaskID
		return m, nil

	case key.Matches(msg, m.keys.Expand):
		r, ok := m.currentRow()
		if ok && r.subtaskID == 0 && r.section == SectionActive {
			if t := m.findActive(r.taskID); t != nil && len(t.Subtasks) > 0 {
				m.session.SetExpanded(r.taskID, !t.IsExpanded)
				m.rebuildRows()
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Reorder):
		if m.sortByDue {
			m.statusMsg = "Turn off due sort (s) to reorder"
			return m, nil
		}
		r, ok := m.currentRow()
		if ok && r.subtaskID == 0 && r.section == SectionActive {
			m.mode = ModeReorder
			m.editTaskID = r.taskID
			m.statusMsg = "Reordering: j/k to move, enter to finish"
		}
		return m, nil

	case key.Matches(msg, m.keys.SortByDue):
		m.sortByDue = !m.sortByDue
		if m.sortByDue {
			m.statusMsg = "Sorted by due date"
		} else {
			m.statusMsg = "Manual order"
		}
		m.rebuildRows()
		return m, nil

	case key.Matches(msg, m.keys.Restore):
		m.restoreCurrent()
		return m, nil
	}

	return m, nil
}

// handleReorderKey moves the selected task through the active list by
// swapping it with its neighbor, one drag-and-drop commit per step.
func (m RootModel) handleReorderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm), key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Reorder):
		m.mode = ModeNormal
		m.statusMsg = ""
		return m, nil

	case key.Matches(msg, m.keys.Down):
		active := m.session.ActiveTasks()
		idx := taskIndex(active, m.editTaskID)
		if idx >= 0 && idx < len(active)-1 {
			m.session.BeginDrag(m.editTaskID)
			m.session.DragOver(active[idx+1].ID)
			m.session.Drop()
			m.rebuildRows()
			m.moveCursorToTask(m.editTaskID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		active := m.session.ActiveTasks()
		idx := taskIndex(active, m.editTaskID)
		if idx > 0 {
			// Moving up is the neighbor above dropping below us.
			m.session.BeginDrag(active[idx-1].ID)
			m.session.DragOver(m.editTaskID)
			m.session.Drop()
			m.rebuildRows()
			m.moveCursorToTask(m.editTaskID)
		}
		return m, nil
	}

	return m, nil
}

func (m RootModel) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeConfirmDelete {
		switch msg.String() {
		case "y", "Y", "enter":
			m.deleteCurrent()
			m.mode = ModeNormal
			m.rebuildRows()
		default:
			m.mode = ModeNormal
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		m.submitInput()
		m.mode = ModeNormal
		m.input.Blur()
		m.rebuildRows()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *RootModel) submitInput() {
	text := strings.TrimSpace(m.input.Value())

	switch m.mode {
	case ModeAdd:
		if text == "" {
			return
		}
		title, due := splitDueWord(text)
		id := m.session.AddTask(title, due)
		m.statusMsg = "Added task"
		m.rebuildRows()
		m.moveCursorToTask(id)

	case ModeAddSubtask:
		if text == "" {
			return
		}
		if id := m.session.AddSubtask(m.editTaskID, text); id == 0 {
			m.errorMsg = "task not found"
		}

	case ModeEdit:
		if text == "" {
			return
		}
		if m.editSubtaskID != 0 {
			sub := m.findSubtask(m.editTaskID, m.editSubtaskID)
			if sub != nil {
				m.session.EditSubtask(m.editTaskID, m.editSubtaskID, text, sub.Notes)
			}
			return
		}
		if t := m.findActive(m.editTaskID); t != nil {
			m.session.EditTask(m.editTaskID, cascade.Details{
				Text:    text,
				Notes:   t.Notes,
				DueDate: t.DueDate,
			})
		}

	case ModeDueDate:
		var due *time.Time
		if text != "" {
			due = dates.ParseNatural(text, time.Now())
			if due == nil {
				m.errorMsg = fmt.Sprintf("cannot parse date %q", text)
				return
			}
		}
		if m.editSubtaskID != 0 {
			m.session.SetSubtaskDueDate(m.editTaskID, m.editSubtaskID, due)
		} else {
			m.session.SetTaskDueDate(m.editTaskID, due)
		}
	}
}

func (m *RootModel) startEdit() tea.Cmd {
	r, ok := m.currentRow()
	if !ok || r.section != SectionActive {
		return nil
	}

	m.mode = ModeEdit
	m.editTaskID = r.taskID
	m.editSubtaskID = r.subtaskID

	current := ""
	if r.subtaskID != 0 {
		if sub := m.findSubtask(r.taskID, r.subtaskID); sub != nil {
			current = sub.Text
		}
	} else if t := m.findActive(r.taskID); t != nil {
		current = t.Text
	}

	m.input.Placeholder = "Edit"
	m.input.SetValue(current)
	m.input.CursorEnd()
	m.input.Focus()
	return textinput.Blink
}

func (m *RootModel) toggleCurrent() tea.Cmd {
	r, ok := m.currentRow()
	if !ok {
		return nil
	}

	if r.section == SectionActive {
		if r.subtaskID != 0 {
			m.session.ToggleSubtask(r.taskID, r.subtaskID)
			m.rebuildRows()
			// The task may migrate after the completion delay.
			return refreshAfterCompleteDelay()
		}
		m.session.ToggleTask(r.taskID)
		m.rebuildRows()
		return nil
	}

	// Completed section: toggling a task reactivates it.
	if r.subtaskID == 0 {
		m.session.ToggleTask(r.taskID)
		m.rebuildRows()
	}
	return nil
}

func (m *RootModel) restoreCurrent() {
	r, ok := m.currentRow()
	if !ok || r.section != SectionCompleted {
		return
	}

	if r.subtaskID != 0 {
		m.session.RestoreSubtaskFromCompletedTask(r.taskID, r.subtaskID)
	} else {
		m.session.RestoreTask(r.taskID)
	}
	m.rebuildRows()
	m.moveCursorToTask(r.taskID)
}

func (m *RootModel) deleteCurrent() {
	if m.editSubtaskID != 0 {
		m.session.DeleteSubtask(m.editTaskID, m.editSubtaskID)
		m.statusMsg = "Deleted subtask"
		return
	}
	m.session.DeleteTask(m.editTaskID)
	m.statusMsg = "Deleted task"
}

// activeTasks is the active list in display order: canonical order, or
// due date ascending when the sort toggle is on. Sorting is a view over
// the canonical order and never writes back.
func (m RootModel) activeTasks() []model.Task {
	tasks := m.session.ActiveTasks()
	if m.sortByDue {
		return model.SortByDueDate(tasks)
	}
	return tasks
}

// rebuildRows recomputes the flat cursor rows from the session state.
func (m *RootModel) rebuildRows() {
	var rows []row
	for _, t := range m.activeTasks() {
		rows = append(rows, row{section: SectionActive, taskID: t.ID})
		if t.IsExpanded {
			for _, sub := range t.Subtasks {
				if sub.Hidden {
					continue
				}
				rows = append(rows, row{section: SectionActive, taskID: t.ID, subtaskID: sub.ID})
			}
		}
	}
	for _, t := range m.session.CompletedTasks() {
		rows = append(rows, row{section: SectionCompleted, taskID: t.ID})
		if t.IsExpanded {
			for _, sub := range t.Subtasks {
				if sub.Hidden {
					continue
				}
				rows = append(rows, row{section: SectionCompleted, taskID: t.ID, subtaskID: sub.ID})
			}
		}
	}
	m.rows = rows

	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m RootModel) currentRow() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *RootModel) moveCursorToTask(taskID int) {
	for i, r := range m.rows {
		if r.taskID == taskID && r.subtaskID == 0 {
			m.cursor = i
			return
		}
	}
}

func (m *RootModel) jumpToNextSection() {
	r, ok := m.currentRow()
	if !ok {
		return
	}
	want := SectionCompleted
	if r.section == SectionCompleted {
		want = SectionActive
	}
	for i, candidate := range m.rows {
		if candidate.section == want {
			m.cursor = i
			return
		}
	}
}

func (m RootModel) findActive(taskID int) *model.Task {
	tasks := m.session.ActiveTasks()
	for i := range tasks {
		if tasks[i].ID == taskID {
			return &tasks[i]
		}
	}
	return nil
}

func (m RootModel) findSubtask(taskID, subtaskID int) *model.Subtask {
	t := m.findActive(taskID)
	if t == nil {
		return nil
	}
	if idx := t.SubtaskIndex(subtaskID); idx >= 0 {
		return &t.Subtasks[idx]
	}
	return nil
}

func taskIndex(tasks []model.Task, id int) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// splitDueWord strips a trailing "due:<word>" from quick-add input.
func splitDueWord(text string) (string, *time.Time) {
	words := strings.Fields(text)
	var titleParts []string
	var due *time.Time

	for _, word := range words {
		if strings.HasPrefix(strings.ToLower(word), "due:") {
			dateStr := strings.TrimPrefix(strings.ToLower(word), "due:")
			if parsed := dates.ParseNatural(dateStr, time.Now()); parsed != nil {
				due = parsed
				continue
			}
		}
		titleParts = append(titleParts, word)
	}

	return strings.Join(titleParts, " "), due
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	contentHeight := m.height - 4
	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		content = m.renderList()
	}

	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)

	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("taskdeck")

	infoStyle := lipgloss.NewStyle().Foreground(t.Subtle).Padding(0, 1)
	user := infoStyle.Render(fmt.Sprintf("[%s]", m.session.UserID()))

	right := infoStyle.Render(fmt.Sprintf("theme: %s", t.Name))
	if m.syncErr != "" {
		right = lipgloss.NewStyle().Foreground(t.Warning).Padding(0, 1).Render("offline") + right
	}

	left := lipgloss.JoinHorizontal(lipgloss.Center, title, user)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m RootModel) renderList() string {
	styles := theme.Current.Styles
	now := time.Now()

	active := m.activeTasks()
	completed := m.session.CompletedTasks()
	byID := map[int]*model.Task{}
	for i := range active {
		byID[active[i].ID] = &active[i]
	}
	for i := range completed {
		byID[completed[i].ID] = &completed[i]
	}

	var b strings.Builder
	lastSection := Section(-1)

	for i, r := range m.rows {
		if r.section != lastSection {
			lastSection = r.section
			b.WriteString(styles.SectionTitle.Render(r.section.String()))
			b.WriteString("\n")
		}

		t := byID[r.taskID]
		if t == nil {
			continue
		}

		selected := i == m.cursor
		if r.subtaskID != 0 {
			if idx := t.SubtaskIndex(r.subtaskID); idx >= 0 {
				b.WriteString(m.renderSubtaskRow(t.Subtasks[idx], selected))
			}
		} else {
			b.WriteString(m.renderTaskRow(*t, r.section, selected, now))
		}
		b.WriteString("\n")
	}

	if len(m.rows) == 0 {
		b.WriteString(styles.Placeholder.Render("  No tasks. Press 'a' to add one."))
		b.WriteString("\n")
	}

	if m.mode == ModeAdd || m.mode == ModeAddSubtask || m.mode == ModeEdit || m.mode == ModeDueDate {
		b.WriteString("\n")
		b.WriteString(styles.InputFocused.Render(m.input.View()))
	}
	if m.mode == ModeConfirmDelete {
		b.WriteString("\n")
		prompt := "Delete task? (y/n)"
		if m.editSubtaskID != 0 {
			prompt = "Delete subtask? (y/n)"
		}
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Current.Theme.Error).Render(prompt))
	}

	return b.String()
}

func (m RootModel) renderTaskRow(t model.Task, section Section, selected bool, now time.Time) string {
	styles := theme.Current.Styles

	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}

	fold := "  "
	if len(t.Subtasks) > 0 {
		fold = "▸ "
		if t.IsExpanded {
			fold = "▾ "
		}
	}

	line := fmt.Sprintf("%s%s %s", fold, check, t.Text)
	if t.DueDate != nil && section == SectionActive {
		line += "  " + styles.DueDate.Render(dates.FormatDue(*t.DueDate, now))
	}
	if t.Notes != "" {
		line += " " + styles.Notes.Render("≡")
	}

	style := styles.TaskNormal
	switch {
	case m.mode == ModeReorder && t.ID == m.editTaskID:
		style = styles.TaskDragged
	case selected:
		style = styles.TaskSelected
	case section == SectionCompleted || t.Completed:
		style = styles.TaskDone
	case t.IsOverdue():
		style = styles.TaskOverdue
	case t.IsDueToday():
		style = styles.TaskDueToday
	}
	return style.Render(line)
}

func (m RootModel) renderSubtaskRow(sub model.Subtask, selected bool) string {
	styles := theme.Current.Styles

	check := "[ ]"
	if sub.Completed {
		check = "[x]"
	}
	line := fmt.Sprintf("%s %s", check, sub.Text)

	style := styles.Subtask
	switch {
	case selected:
		style = styles.SubtaskSelected
	case sub.Completed:
		style = styles.SubtaskDone
	}
	return style.Render(line)
}

func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	keyHint := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var statusLine string
	if m.errorMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg)
	}

	var line1, line2 string
	switch m.mode {
	case ModeReorder:
		line1 = keyHint("j/k", "move") + sep + keyHint("enter", "finish")
	case ModeNormal:
		line1 = keyHint("a", "add") + sep +
			keyHint("A", "subtask") + sep +
			keyHint("enter", "edit") + sep +
			keyHint("tab", "done") + sep +
			keyHint("d", "del") + sep +
			keyHint("t", "due")
		line2 = keyHint("r", "reorder") + sep +
			keyHint("s", "sort") + sep +
			keyHint("u", "restore") + sep +
			keyHint("]", "section") + sep +
			keyHint("l/h", "fold") + sep +
			keyHint("?", "help")
	default:
		line1 = keyHint("enter", "confirm") + sep + keyHint("esc", "cancel")
	}

	var lines []string
	if statusLine != "" {
		lines = append(lines, statusLine)
	}
	if line1 != "" {
		lines = append(lines, line1)
	}
	if line2 != "" {
		lines = append(lines, line2)
	}
	return strings.Join(lines, "\n")
}

func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Primary).MarginBottom(1)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Secondary).MarginTop(1)
	keyStyle := lipgloss.NewStyle().Foreground(t.Foreground).Bold(true).Width(12)
	descStyle := lipgloss.NewStyle().Foreground(t.Subtle)

	writeKeys := func(b *strings.Builder, pairs [][]string) {
		for _, kv := range pairs {
			b.WriteString(keyStyle.Render(kv[0]))
			b.WriteString(descStyle.Render(kv[1]))
			b.WriteString("\n")
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Taskdeck Help"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Navigation"))
	b.WriteString("\n")
	writeKeys(&b, [][]string{
		{"↑/k ↓/j", "Move cursor"},
		{"g / G", "Go to top/bottom"},
		{"]", "Jump between sections"},
	})

	b.WriteString(sectionStyle.Render("Tasks"))
	b.WriteString("\n")
	writeKeys(&b, [][]string{
		{"a", "Add task (supports due:tomorrow)"},
		{"A", "Add subtask under the current task"},
		{"enter", "Edit title"},
		{"tab", "Toggle done"},
		{"t", "Set due date"},
		{"d", "Delete (with confirm)"},
		{"l/h", "Fold/unfold subtasks"},
		{"r", "Reorder with j/k"},
		{"s", "Sort by due date (view only)"},
	})

	b.WriteString(sectionStyle.Render("Completed"))
	b.WriteString("\n")
	writeKeys(&b, [][]string{
		{"tab", "Bring a task back"},
		{"u", "Restore task, or one subtask of it"},
	})

	b.WriteString(sectionStyle.Render("System"))
	b.WriteString("\n")
	writeKeys(&b, [][]string{
		{"ctrl+t", "Cycle theme"},
		{"q / ctrl+c", "Quit"},
	})

	b.WriteString("\n")
	b.WriteString(descStyle.Render("Press ? to close"))
	return b.String()
}

func (m *RootModel) cycleTheme() {
	themes := theme.Available()
	current := theme.Current.Theme.Name

	for i, t := range themes {
		if t.Name == current {
			next := themes[(i+1)%len(themes)]
			theme.SetTheme(next)
			m.statusMsg = fmt.Sprintf("Theme: %s", next.Name)
			return
		}
	}
}
