package tui

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"imgview/internal/config"
	"imgview/internal/imaging"
	"imgview/internal/log"
	"imgview/internal/palette"
	"imgview/internal/scan"
	"imgview/internal/tui/common"
	"imgview/internal/tui/components"
	"imgview/internal/tui/messages"
	"imgview/internal/tui/styles"
	"imgview/internal/tui/views"
	"imgview/internal/viewer"
	"imgview/internal/watch"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/afero"
)

// Options configure a TUI session
type Options struct {
	FS    afero.Fs // OS filesystem when nil
	Path  string   // Directory or image opened at startup, if any
	Watch bool     // Rescan when the directory changes
}

// Model is the bubbletea model. It is mutated in place since the
// controller keeps it as its listener and display.
type Model struct {
	cfg  *config.Config
	opts Options

	// send delivers messages to the running program
	send func(tea.Msg)

	ctrl    *viewer.Controller
	decoder *imaging.Decoder
	filter  *scan.Filter

	keys      keyMap
	help      help.Model
	status    *components.StatusBar
	input     textinput.Model
	prompting bool

	palette palette.Palette
	styles  styles.Styles

	image   image.Image
	info    imaging.Info
	preview string
	width   int
	height  int

	// cmds queued by controller callbacks during one Update
	queued   []tea.Cmd
	quitting bool
}

var (
	_ tea.Model          = (*Model)(nil)
	_ viewer.Listener    = (*Model)(nil)
	_ viewer.Displayer   = (*Model)(nil)
	_ common.ModelReader = (*Model)(nil)
)

// New creates the model. send must be set with SetSender before the
// first scan completes.
func New(cfg *config.Config, opts Options) *Model {
	if cfg == nil {
		cfg = config.New()
	}
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}

	input := textinput.New()
	input.Prompt = "Open: "
	input.Placeholder = "directory or image"
	input.CharLimit = 4096

	m := &Model{
		cfg:     cfg,
		opts:    opts,
		decoder: imaging.NewDecoder(opts.FS),
		filter:  scan.MustFilter(),
		keys:    defaultKeyMap(),
		help:    help.New(),
		input:   input,
	}

	p, err := palette.Lookup(cfg.Theme, cfg.Palettes)
	if err != nil {
		log.LogWithError(err).Warn("Falling back to dark theme")
		p, _ = palette.Lookup(palette.Dark, nil)
	}
	m.status = components.NewStatusBar(styles.FromPalette(p))
	m.applyPalette(p)

	var ctrlOpts []viewer.Option
	if opts.Watch || cfg.Watch.Enabled {
		debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
		w, err := watch.New(m.filter, debounce, func(dir string) {
			m.ctrl.DirectoryChanged(dir)
		})
		if err != nil {
			log.LogWithError(err).Warn("Directory watcher unavailable")
		} else if err := w.Start(); err != nil {
			log.LogWithError(err).Warn("Cannot start directory watcher")
			w.Stop()
		} else {
			ctrlOpts = append(ctrlOpts, viewer.WithWatcher(w))
		}
	}

	m.ctrl = viewer.NewController(scan.NewLoader(opts.FS, m.filter), m, m, m.post, ctrlOpts...)
	return m
}

// Run starts the program on the alternate screen and blocks until it quits
func Run(cfg *config.Config, opts Options) error {
	m := New(cfg, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	m.SetSender(p.Send)
	_, err := p.Run()
	return err
}

// SetSender sets the function posted work is delivered through
func (m *Model) SetSender(send func(tea.Msg)) {
	m.send = send
}

// Controller returns the viewer controller
func (m *Model) Controller() *viewer.Controller {
	return m.ctrl
}

// Close cancels scanning and stops the watcher
func (m *Model) Close() {
	m.ctrl.Close()
}

// post hands fn to the update loop. Send blocks until the loop receives
// the message, so it runs on its own goroutine.
func (m *Model) post(fn func()) {
	send := m.send
	if send == nil {
		log.Warn("No program to post to, dropping work")
		return
	}
	go send(messages.PostMsg{Fn: fn})
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	if m.opts.Path == "" {
		return nil
	}
	path := m.opts.Path
	return func() tea.Msg {
		return messages.OpenMsg{Path: path}
	}
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	return views.RenderMainView(m)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case messages.PostMsg:
		msg.Fn()
	case messages.OpenMsg:
		m.open(msg.Path)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.preview = m.renderPreview()
	case tea.KeyMsg:
		if m.prompting {
			cmd = m.handlePromptKey(msg)
		} else {
			cmd = m.handleKey(msg)
		}
	default:
		cmd = m.status.Update(msg)
	}

	m.queued = append(m.queued, cmd)
	cmds := m.queued
	m.queued = nil
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.Close()
		return tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.ctrl.MoveNext()
	case key.Matches(msg, m.keys.Previous):
		m.ctrl.MovePrevious()
	case key.Matches(msg, m.keys.Open):
		m.prompting = true
		m.input.SetValue(m.ctrl.Directory())
		m.input.CursorEnd()
		return m.input.Focus()
	case key.Matches(msg, m.keys.Cancel):
		m.ctrl.CancelScan()
	case key.Matches(msg, m.keys.Rescan):
		if !m.ctrl.Rescan() {
			m.status.SetText("Nothing to rescan, press o to open a folder")
		}
	case key.Matches(msg, m.keys.Theme):
		next := palette.Light
		if m.palette.Name() == palette.Light {
			next = palette.Dark
		}
		m.SetTheme(next)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		return nil
	case tea.KeyCtrlC:
		m.closePrompt()
		m.quitting = true
		m.Close()
		return tea.Quit
	case tea.KeyEnter:
		path := strings.TrimSpace(m.input.Value())
		m.closePrompt()
		if path != "" {
			m.open(path)
		}
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) closePrompt() {
	m.prompting = false
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) open(path string) {
	// Failures reach the status bar through ScanFinished
	_ = m.ctrl.Open(expandHome(path))
}

// SetTheme applies the named palette. Unknown names keep the current one.
func (m *Model) SetTheme(name string) {
	p, err := palette.Lookup(name, m.cfg.Palettes)
	if err != nil {
		log.LogWithError(err).With(log.F("theme", name)).Warn("Keeping current theme")
		m.status.SetError("Unknown theme " + name)
		return
	}
	m.applyPalette(p)
}

func (m *Model) applyPalette(p palette.Palette) {
	m.palette = p
	m.styles = styles.FromPalette(p)
	m.status.SetStyles(m.styles)
	m.input.PromptStyle = m.styles.Accent
	m.input.TextStyle = m.styles.Text
	m.help.Styles.ShortKey = m.styles.Accent
	m.help.Styles.FullKey = m.styles.Accent
	m.help.Styles.ShortDesc = m.styles.Help
	m.help.Styles.FullDesc = m.styles.Help
}

// ThemeName returns the active palette name
func (m *Model) ThemeName() string {
	return m.palette.Name()
}

// ScanStarted implements viewer.Listener
func (m *Model) ScanStarted(dir string) {
	m.status.SetText("Scanning " + dir + "...")
	m.queued = append(m.queued, m.status.SetLoading(true))
}

// ScanFinished implements viewer.Listener
func (m *Model) ScanFinished(outcome viewer.Outcome) {
	// A bad path typed during a scan does not stop the spinner
	if !outcome.Failed() || !m.ctrl.Scanning() {
		m.status.SetLoading(false)
	}
	switch {
	case outcome.Cancelled():
		m.status.SetText("Scan cancelled")
	case outcome.Failed():
		m.status.SetError("Cannot open " + outcome.Dir + ": " + outcome.Err.Error())
	default:
		m.status.SetText("Found: " + english.Plural(outcome.Count, "image", "") + " in " + outcome.Dir)
	}
}

// ImageChanged implements viewer.Listener. The preview itself is replaced
// by Display, so a failed decode leaves the previous one in place.
func (m *Model) ImageChanged(state viewer.State) {
	if state.Empty() {
		m.image = nil
		m.info = imaging.Info{}
		m.preview = ""
	}
}

// Display implements viewer.Displayer
func (m *Model) Display(path string) error {
	img, info, err := m.decoder.Decode(path)
	if err != nil {
		return err
	}
	m.image = img
	m.info = info
	m.preview = m.renderPreview()
	return nil
}

func (m *Model) renderPreview() string {
	if m.image == nil {
		return ""
	}
	w, h := m.cfg.Preview.Width, m.cfg.Preview.Height
	// Leave room for padding, the frame and the lines around it
	if m.width > 0 {
		w = min(w, m.width-8)
	}
	if m.height > 0 {
		h = min(h, m.height-12)
	}
	if w < 1 || h < 1 {
		return ""
	}
	return components.RenderPreview(imaging.Thumbnail(m.image, w, h*2))
}

func (m *Model) Directory() string     { return m.ctrl.Directory() }
func (m *Model) State() viewer.State   { return m.ctrl.State() }
func (m *Model) Preview() string       { return m.preview }
func (m *Model) Info() imaging.Info    { return m.info }
func (m *Model) StatusView() string    { return m.status.View() }
func (m *Model) HelpView() string      { return m.help.View(m.keys) }
func (m *Model) Styles() styles.Styles { return m.styles }

func (m *Model) Prompt() (string, bool) {
	return m.input.View(), m.prompting
}

// StatusText returns the status bar message without styling
func (m *Model) StatusText() string {
	return m.status.Text()
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
