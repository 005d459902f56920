package components

import (
	"imgview/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// StatusBar shows the scan spinner or the last message
type StatusBar struct {
	text    string
	isError bool
	styles  styles.Styles
	spinner spinner.Model
	loading bool
}

func NewStatusBar(st styles.Styles) *StatusBar {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = st.Accent

	return &StatusBar{
		styles:  st,
		spinner: s,
	}
}

// SetStyles restyles the bar after a theme switch
func (s *StatusBar) SetStyles(st styles.Styles) {
	s.styles = st
	s.spinner.Style = st.Accent
}

// SetLoading starts or stops the spinner. Starting returns the first tick.
func (s *StatusBar) SetLoading(loading bool) tea.Cmd {
	wasLoading := s.loading
	s.loading = loading
	if loading && !wasLoading {
		return s.spinner.Tick
	}
	return nil
}

func (s *StatusBar) Loading() bool {
	return s.loading
}

func (s *StatusBar) SetText(text string) {
	s.text = text
	s.isError = false
}

func (s *StatusBar) SetError(text string) {
	s.text = text
	s.isError = true
}

func (s *StatusBar) Text() string {
	return s.text
}

// Update advances the spinner; ticks arriving while idle are dropped so the
// tick loop stops.
func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	if !s.loading {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

func (s *StatusBar) View() string {
	if s.text == "" && !s.loading {
		return ""
	}

	if s.loading {
		return s.spinner.View() + " " + s.styles.Text.Render(s.text)
	}
	if s.isError {
		return s.styles.Error.Render(s.text)
	}
	return s.styles.Muted.Render(s.text)
}
