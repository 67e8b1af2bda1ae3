package ui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	colorPrimary = lipgloss.Color("#4D6BFE")
	colorMuted   = lipgloss.Color("240")
	colorDim     = lipgloss.Color("238")
	colorError   = lipgloss.Color("#EF4444")
	colorOK      = lipgloss.Color("#22C55E")
	colorWarn    = lipgloss.Color("#F59E0B")
)

// Styles groups every lipgloss style used by the TUI.
type Styles struct {
	Header        lipgloss.Style
	HeaderPersona lipgloss.Style
	Sidebar       lipgloss.Style
	SessionItem   lipgloss.Style
	SessionActive lipgloss.Style
	UserLabel     lipgloss.Style
	ModelLabel    lipgloss.Style
	ErrorText     lipgloss.Style
	Thinking      lipgloss.Style
	Source        lipgloss.Style
	Status        lipgloss.Style
	StatusError   lipgloss.Style
	SearchOn      lipgloss.Style
	SearchOff     lipgloss.Style
	PickerTitle   lipgloss.Style
	PickerItem    lipgloss.Style
	PickerCursor  lipgloss.Style
	PickerDesc    lipgloss.Style
	KeyBadge      lipgloss.Style
	Hint          lipgloss.Style
}

// DefaultStyles returns the default style set.
func DefaultStyles() *Styles {
	return &Styles{
		Header:        lipgloss.NewStyle().Bold(true),
		HeaderPersona: lipgloss.NewStyle().Foreground(colorMuted),
		Sidebar:       lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderRight(true).BorderForeground(colorDim).PaddingRight(1),
		SessionItem:   lipgloss.NewStyle().Foreground(colorMuted),
		SessionActive: lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		UserLabel:     lipgloss.NewStyle().Foreground(colorOK).Bold(true),
		ModelLabel:    lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		ErrorText:     lipgloss.NewStyle().Foreground(colorError),
		Thinking:      lipgloss.NewStyle().Foreground(colorDim).Italic(true),
		Source:        lipgloss.NewStyle().Foreground(colorMuted).Underline(true),
		Status:        lipgloss.NewStyle().Foreground(colorMuted),
		StatusError:   lipgloss.NewStyle().Foreground(colorError),
		SearchOn:      lipgloss.NewStyle().Foreground(colorOK),
		SearchOff:     lipgloss.NewStyle().Foreground(colorDim),
		PickerTitle:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		PickerItem:    lipgloss.NewStyle(),
		PickerCursor:  lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		PickerDesc:    lipgloss.NewStyle().Foreground(colorMuted),
		KeyBadge:      lipgloss.NewStyle().Foreground(colorWarn),
		Hint:          lipgloss.NewStyle().Foreground(colorDim),
	}
}
