// Package ui renders the chat in the terminal. It is a thin consumer of
// store snapshots and events; all conversation state lives in the store.
package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"xiaozhou/internal/app"
	"xiaozhou/internal/chat"
	"xiaozhou/internal/config"
)

const sidebarWidth = 28

type mode int

const (
	modeChat mode = iota
	modePicker
	modeKeyEntry
)

// storeEventMsg carries a store change into the bubbletea loop.
type storeEventMsg chat.Event

// Model is the root TUI model.
type Model struct {
	app    *app.App
	styles *Styles
	md     *markdownRenderer

	ta       textarea.Model
	vp       viewport.Model
	keyInput textinput.Model

	mode      mode
	pickerIdx int

	width  int
	height int
	ready  bool

	status    string
	statusErr bool
	version   string
}

// NewModel creates the root model.
func NewModel(a *app.App, cfg *config.Config, version string) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask anything..."
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.Focus()

	ki := textinput.New()
	ki.Placeholder = "paste an API key, empty to clear"
	ki.EchoMode = textinput.EchoPassword

	return Model{
		app:      a,
		styles:   DefaultStyles(),
		md:       newMarkdownRenderer(cfg.UI.MarkdownWidth),
		ta:       ta,
		keyInput: ki,
		version:  version,
	}
}

// Run starts the TUI program and bridges store events into it.
func Run(a *app.App, cfg *config.Config, version string) error {
	p := tea.NewProgram(NewModel(a, cfg, version), tea.WithAltScreen())
	a.Store().SetChangeHandler(func(ev chat.Event) {
		p.Send(storeEventMsg(ev))
	})
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		chatWidth := m.width - sidebarWidth - 2
		chatHeight := m.height - 7
		if chatHeight < 3 {
			chatHeight = 3
		}
		if !m.ready {
			m.vp = viewport.New(chatWidth, chatHeight)
			m.ready = true
		} else {
			m.vp.Width = chatWidth
			m.vp.Height = chatHeight
		}
		m.ta.SetWidth(m.width - 2)
		m.md.Resize(chatWidth - 2)
		m.refreshTranscript()
		return m, nil

	case storeEventMsg:
		m.refreshTranscript()
		if chat.Event(msg).Kind == chat.MessageUpdated && chat.Event(msg).SessionID == m.app.Store().ActiveID() {
			m.vp.GotoBottom()
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modePicker:
			return m.updatePicker(msg)
		case modeKeyEntry:
			return m.updateKeyEntry(msg)
		default:
			return m.updateChat(msg)
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "enter":
		text := m.ta.Value()
		m.status, m.statusErr = "", false
		if err := m.app.Send(text); err != nil {
			if err != app.ErrEmptyMessage {
				m.status, m.statusErr = err.Error(), true
			}
			return m, nil
		}
		m.ta.Reset()
		return m, nil

	case "ctrl+n":
		m.app.NewSession()
		return m, nil

	case "ctrl+x":
		if id := m.app.Store().ActiveID(); id != "" {
			m.app.DeleteSession(id)
		}
		return m, nil

	case "tab", "shift+tab":
		m.cycleSession(msg.String() == "tab")
		return m, nil

	case "ctrl+p":
		m.mode = modePicker
		m.pickerIdx = m.activePersonaIndex()
		return m, nil

	case "ctrl+s":
		m.app.ToggleSearch()
		return m, nil

	case "ctrl+y":
		m.copyLastReply()
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	personas := m.app.Personas()
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modeChat
	case "up", "k":
		if m.pickerIdx > 0 {
			m.pickerIdx--
		}
	case "down", "j":
		if m.pickerIdx < len(personas)-1 {
			m.pickerIdx++
		}
	case "enter":
		m.app.SelectPersona(personas[m.pickerIdx].ID)
		m.mode = modeChat
	case "e":
		m.keyInput.SetValue(personas[m.pickerIdx].UserAPIKey)
		m.keyInput.Focus()
		m.mode = modeKeyEntry
	}
	return m, nil
}

func (m Model) updateKeyEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modePicker
		return m, nil
	case "enter":
		personas := m.app.Personas()
		m.app.UpdateCredential(personas[m.pickerIdx].ID, strings.TrimSpace(m.keyInput.Value()))
		m.mode = modePicker
		return m, nil
	}

	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m *Model) cycleSession(forward bool) {
	sessions := m.app.Store().Sessions()
	if len(sessions) == 0 {
		return
	}
	active := m.app.Store().ActiveID()
	idx := 0
	for i, s := range sessions {
		if s.ID == active {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(sessions)
	} else {
		idx = (idx - 1 + len(sessions)) % len(sessions)
	}
	m.app.SelectSession(sessions[idx].ID)
	m.refreshTranscript()
	m.vp.GotoBottom()
}

func (m *Model) activePersonaIndex() int {
	active := m.app.ActivePersona().ID
	for i, p := range m.app.Personas() {
		if p.ID == active {
			return i
		}
	}
	return 0
}

func (m *Model) copyLastReply() {
	session, ok := m.app.Store().ActiveSession()
	if !ok {
		return
	}
	for i := len(session.Messages) - 1; i >= 0; i-- {
		msg := session.Messages[i]
		if msg.Role == chat.RoleModel && !msg.IsError && msg.Text != "" {
			if err := clipboard.WriteAll(msg.Text); err == nil {
				m.status, m.statusErr = "reply copied", false
			}
			return
		}
	}
}

// refreshTranscript rebuilds the viewport content from the active session
// snapshot.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	session, ok := m.app.Store().ActiveSession()
	if !ok || len(session.Messages) == 0 {
		m.vp.SetContent(m.welcome())
		return
	}

	var sb strings.Builder
	for _, msg := range session.Messages {
		sb.WriteString(m.renderMessage(msg))
		sb.WriteString("\n")
	}
	m.vp.SetContent(sb.String())
}

func (m *Model) renderMessage(msg chat.Message) string {
	var sb strings.Builder

	switch {
	case msg.Role == chat.RoleUser:
		sb.WriteString(m.styles.UserLabel.Render("You") + "\n")
		sb.WriteString(msg.Text + "\n")

	case msg.IsError:
		sb.WriteString(m.styles.ModelLabel.Render("Assistant") + "\n")
		sb.WriteString(m.styles.ErrorText.Render(msg.Text) + "\n")

	default:
		sb.WriteString(m.styles.ModelLabel.Render("Assistant") + "\n")
		if msg.ThinkingLog != "" {
			sb.WriteString(m.styles.Thinking.Render("thinking · "+msg.ThinkingLog) + "\n")
		}
		if msg.Text == "" {
			sb.WriteString(m.styles.Thinking.Render("...") + "\n")
		} else {
			sb.WriteString(m.md.Render(msg.Text))
		}
		for _, src := range msg.GroundingSources {
			sb.WriteString(m.styles.Source.Render(fmt.Sprintf("· %s (%s)", src.Title, src.URI)) + "\n")
		}
	}

	return sb.String()
}

func (m *Model) welcome() string {
	p := m.app.ActivePersona()
	return fmt.Sprintf("\n  %s\n\n  %s\n\n  %s\n",
		m.styles.Header.Render("小周AI"),
		m.styles.Status.Render(fmt.Sprintf("%s is ready. Ask for writing, coding, or live web lookups.", p.Name)),
		m.styles.Hint.Render("ctrl+p personas · ctrl+s search toggle · ctrl+n new chat"))
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := m.viewHeader()
	var body string
	if m.mode == modePicker || m.mode == modeKeyEntry {
		body = m.viewPicker()
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.viewSidebar(), m.vp.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.ta.View(),
		m.viewStatus(),
	)
}

func (m Model) viewHeader() string {
	p := m.app.ActivePersona()
	search := m.styles.SearchOff.Render("search off")
	if m.app.SearchEnabled() {
		search = m.styles.SearchOn.Render("search on")
	}
	title := "小周AI"
	if s, ok := m.app.Store().ActiveSession(); ok {
		title = s.Title
	}
	return m.styles.Header.Render(title) + "  " +
		m.styles.HeaderPersona.Render(p.Name) + "  " + search
}

func (m Model) viewSidebar() string {
	sessions := m.app.Store().Sessions()
	active := m.app.Store().ActiveID()

	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("Chats") + "\n")
	if len(sessions) == 0 {
		sb.WriteString(m.styles.Hint.Render("ctrl+n to start") + "\n")
	}
	for _, s := range sessions {
		line := s.Title
		if m.app.Store().Processing(s.ID) {
			line += " …"
		}
		if s.ID == active {
			sb.WriteString(m.styles.SessionActive.Render("> "+line) + "\n")
		} else {
			sb.WriteString(m.styles.SessionItem.Render("  "+line) + "\n")
		}
	}

	return m.styles.Sidebar.Width(sidebarWidth).Height(m.vp.Height).Render(sb.String())
}

func (m Model) viewPicker() string {
	personas := m.app.Personas()
	activeID := m.app.ActivePersona().ID

	var sb strings.Builder
	sb.WriteString(m.styles.PickerTitle.Render("Personas") + "\n\n")
	for i, p := range personas {
		cursor := "  "
		if i == m.pickerIdx {
			cursor = m.styles.PickerCursor.Render("> ")
		}
		name := p.Name
		if p.ID == activeID {
			name += " (active)"
		}
		badge := ""
		if p.UserAPIKey != "" {
			badge = " " + m.styles.KeyBadge.Render("[key set]")
		}
		sb.WriteString(cursor + m.styles.PickerItem.Render(name) + badge + "\n")
		sb.WriteString("    " + m.styles.PickerDesc.Render(p.Provider+" · "+p.Description) + "\n")
	}

	if m.mode == modeKeyEntry {
		sb.WriteString("\n" + m.styles.Status.Render("API key for "+personas[m.pickerIdx].Name) + "\n")
		sb.WriteString(m.keyInput.View() + "\n")
	} else {
		sb.WriteString("\n" + m.styles.Hint.Render("enter select · e edit key · esc close") + "\n")
	}

	return lipgloss.NewStyle().Height(m.vp.Height).Render(sb.String())
}

func (m Model) viewStatus() string {
	if m.status != "" {
		if m.statusErr {
			return m.styles.StatusError.Render(m.status)
		}
		return m.styles.Status.Render(m.status)
	}
	hints := "enter send · tab switch chat · ctrl+n new · ctrl+x delete · ctrl+p personas · ctrl+s search · ctrl+y copy · ctrl+c quit"
	return m.styles.Hint.Render(hints)
}
