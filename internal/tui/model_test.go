package tui

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"imgview/internal/config"
	"imgview/internal/palette"
	"imgview/internal/tui/messages"
	"imgview/pkg/testutils"

	alsrt "github.com/alecthomas/assert"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedFs blocks Open of gated until release is closed
type gatedFs struct {
	afero.Fs
	gated   string
	opened  chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedFs) Open(name string) (afero.File, error) {
	if name == g.gated {
		g.once.Do(func() { close(g.opened) })
		<-g.release
	}
	return g.Fs.Open(name)
}

func testFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	testutils.CreateMemImageFiles(t, fs, "/photos", "a.png", "c.gif", "notes.txt")
	require.NoError(t, afero.WriteFile(fs, "/photos/b.png", []byte("corrupt"), 0644))
	require.NoError(t, fs.MkdirAll("/empty", 0755))
	return fs
}

// newTestModel returns a model whose posted work arrives on msgs instead of
// a running program
func newTestModel(t *testing.T, fs afero.Fs, opts Options) (*Model, chan tea.Msg) {
	t.Helper()
	opts.FS = fs
	m := New(config.New(), opts)
	msgs := make(chan tea.Msg, 16)
	m.SetSender(func(msg tea.Msg) { msgs <- msg })
	t.Cleanup(m.Close)
	return m, msgs
}

func pump(t *testing.T, m *Model, msgs chan tea.Msg) tea.Cmd {
	t.Helper()
	select {
	case msg := <-msgs:
		_, cmd := m.Update(msg)
		return cmd
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for posted work")
		return nil
	}
}

func press(m *Model, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func openPhotos(t *testing.T, m *Model, msgs chan tea.Msg) {
	t.Helper()
	m.Update(messages.OpenMsg{Path: "/photos"})
	pump(t, m, msgs)
}

func TestModelInitialization(t *testing.T) {
	m, _ := newTestModel(t, testFs(t), Options{})

	assert.Nil(t, m.Init())
	assert.Equal(t, palette.Dark, m.ThemeName())
	assert.True(t, m.State().Empty())
	assert.Empty(t, m.Directory())
	assert.Contains(t, testutils.StripANSI(m.View()), "Press o to open a folder")
}

func TestInitOpensStartupPath(t *testing.T) {
	m, msgs := newTestModel(t, testFs(t), Options{Path: "/photos/c.gif"})

	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()
	alsrt.Equal(t, messages.OpenMsg{Path: "/photos/c.gif"}, msg)

	_, cmd = m.Update(msg)
	assert.NotNil(t, cmd, "scan start should tick the spinner")
	assert.True(t, m.status.Loading())
	alsrt.Equal(t, "Scanning /photos...", m.StatusText())

	pump(t, m, msgs)

	assert.False(t, m.status.Loading())
	alsrt.Equal(t, "Found: 3 images in /photos", m.StatusText())
	alsrt.Equal(t, "/photos", m.Directory())
	alsrt.Equal(t, 3, m.State().Images.Len())
	// The cursor starts on the first image, not the launch file
	alsrt.Equal(t, "/photos/a.png", m.Info().Path)
	assert.NotEmpty(t, m.Preview())

	view := testutils.StripANSI(m.View())
	assert.Contains(t, view, "1 / 3  a.png  4x3 png")
}

func TestNavigationKeys(t *testing.T) {
	m, msgs := newTestModel(t, testFs(t), Options{})
	openPhotos(t, m, msgs)

	tests := []struct {
		key    string
		cursor int
	}{
		{"right", 1},
		{"l", 2},
		{"n", 0},
		{"left", 2},
		{"h", 1},
		{"p", 0},
	}
	for _, tt := range tests {
		press(m, tt.key)
		assert.Equal(t, tt.cursor, m.State().Cursor, "after %q", tt.key)
	}
}

func TestCorruptImageKeepsPreview(t *testing.T) {
	m, msgs := newTestModel(t, testFs(t), Options{})
	openPhotos(t, m, msgs)
	before := m.Preview()

	press(m, "right")

	alsrt.Equal(t, 1, m.State().Cursor)
	alsrt.Equal(t, before, m.Preview())
	alsrt.Equal(t, "/photos/a.png", m.Info().Path)

	view := testutils.StripANSI(m.View())
	assert.Contains(t, view, "2 / 3  b.png")
	assert.NotContains(t, view, "4x3")
}

func TestOpenPrompt(t *testing.T) {
	m, msgs := newTestModel(t, testFs(t), Options{})
	openPhotos(t, m, msgs)

	press(m, "o")
	view, active := m.Prompt()
	require.True(t, active)
	assert.Contains(t, view, "Open:")
	alsrt.Equal(t, "/photos", m.input.Value())

	// Keys go to the input while the prompt is open
	press(m, "q")
	assert.False(t, m.quitting)
	alsrt.Equal(t, "/photosq", m.input.Value())

	m.input.SetValue("/empty")
	press(m, "enter")
	_, active = m.Prompt()
	assert.False(t, active)
	alsrt.Equal(t, "Scanning /empty...", m.StatusText())

	pump(t, m, msgs)
	alsrt.Equal(t, "Found: 0 images in /empty", m.StatusText())
	assert.True(t, m.State().Empty())
	assert.Empty(t, m.Preview())
	assert.Contains(t, testutils.StripANSI(m.View()), "No images in /empty")
}

func TestPromptEscape(t *testing.T) {
	m, _ := newTestModel(t, testFs(t), Options{})

	press(m, "o")
	m.input.SetValue("/photos")
	press(m, "esc")

	_, active := m.Prompt()
	assert.False(t, active)
	assert.False(t, m.Controller().Scanning())
	assert.Empty(t, m.input.Value())
}

func TestMissingDirectoryIsRecoverable(t *testing.T) {
	m, msgs := newTestModel(t, testFs(t), Options{})
	openPhotos(t, m, msgs)

	m.Update(messages.OpenMsg{Path: "/missing"})

	assert.Contains(t, m.StatusText(), "Cannot open /missing")
	assert.Contains(t, testutils.StripANSI(m.StatusView()), "Cannot open /missing")
	alsrt.Equal(t, 3, m.State().Images.Len())
	alsrt.Equal(t, "/photos", m.Directory())
}

func TestMissingDirectoryDuringScanKeepsSpinner(t *testing.T) {
	fs := &gatedFs{Fs: testFs(t), gated: "/photos", opened: make(chan struct{}), release: make(chan struct{})}
	m, msgs := newTestModel(t, fs, Options{})

	m.Update(messages.OpenMsg{Path: "/photos"})
	<-fs.opened
	m.Update(messages.OpenMsg{Path: "/missing"})

	assert.True(t, m.status.Loading())
	assert.Contains(t, m.StatusText(), "Cannot open /missing")

	close(fs.release)
	pump(t, m, msgs)

	assert.False(t, m.status.Loading())
	alsrt.Equal(t, "Found: 3 images in /photos", m.StatusText())
	alsrt.Equal(t, "/photos", m.Directory())
}

func TestCancelScan(t *testing.T) {
	fs := &gatedFs{Fs: testFs(t), gated: "/photos", opened: make(chan struct{}), release: make(chan struct{})}
	m, msgs := newTestModel(t, fs, Options{})

	m.Update(messages.OpenMsg{Path: "/photos"})
	<-fs.opened
	press(m, "c")
	close(fs.release)
	pump(t, m, msgs)

	alsrt.Equal(t, "Scan cancelled", m.StatusText())
	assert.False(t, m.status.Loading())
	assert.True(t, m.State().Empty())
	assert.Empty(t, m.Directory())
}

func TestRescan(t *testing.T) {
	fs := testFs(t)
	m, msgs := newTestModel(t, fs, Options{})

	press(m, "r")
	assert.Contains(t, m.StatusText(), "Nothing to rescan")

	openPhotos(t, m, msgs)
	press(m, "right")
	testutils.CreateMemImageFiles(t, fs, "/photos", "d.bmp")

	press(m, "r")
	pump(t, m, msgs)
	alsrt.Equal(t, 4, m.State().Images.Len())
	alsrt.Equal(t, 0, m.State().Cursor)
}

func TestThemeToggle(t *testing.T) {
	m, _ := newTestModel(t, testFs(t), Options{})

	press(m, "t")
	alsrt.Equal(t, palette.Light, m.ThemeName())
	press(m, "t")
	alsrt.Equal(t, palette.Dark, m.ThemeName())

	m.SetTheme("no-such-theme")
	alsrt.Equal(t, palette.Dark, m.ThemeName())
	alsrt.Equal(t, "Unknown theme no-such-theme", m.StatusText())
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t, testFs(t), Options{})

	assert.NotContains(t, m.HelpView(), "rescan")
	press(m, "?")
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.HelpView(), "rescan")
	assert.Contains(t, m.HelpView(), "cancel scan")
}

func TestQuit(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			m, _ := newTestModel(t, testFs(t), Options{})

			cmd := press(m, k)
			require.NotNil(t, cmd)
			assert.True(t, m.quitting)
			assert.Empty(t, m.View())
		})
	}
}

func TestWindowSizeLimitsPreview(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/big", 0755))
	require.NoError(t, afero.WriteFile(fs, "/big/wide.png", testutils.EncodeImage(t, "wide.png", 200, 100), 0644))

	m, msgs := newTestModel(t, fs, Options{})
	m.Update(messages.OpenMsg{Path: "/big"})
	pump(t, m, msgs)

	lines := func() int {
		return len(splitLines(testutils.StripANSI(m.Preview())))
	}
	// 64 columns wide keeps the 2:1 aspect ratio: 32 pixel rows
	alsrt.Equal(t, 16, lines())

	m.Update(tea.WindowSizeMsg{Width: 40, Height: 40})
	alsrt.Equal(t, 8, lines())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	alsrt.Equal(t, "/photos", expandHome("/photos"))
	alsrt.Equal(t, home, expandHome("~"))
	alsrt.Equal(t, filepath.Join(home, "photos"), expandHome("~/photos"))
	alsrt.Equal(t, "~user/photos", expandHome("~user/photos"))
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}
