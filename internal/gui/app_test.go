//go:build !nogui

package gui

import (
	"sync"
	"testing"
	"time"

	"imgview/internal/config"
	"imgview/internal/palette"
	"imgview/pkg/testutils"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pump stands in for fyne.Do so tests decide when results are applied
type pump chan func()

func (p pump) post(fn func()) { p <- fn }

func (p pump) runNext(t *testing.T) {
	t.Helper()
	select {
	case fn := <-p:
		fn()
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for posted work")
	}
}

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

func newTestApp(t *testing.T, fs afero.Fs) (*App, pump) {
	t.Helper()
	p := make(pump, 16)
	a, err := newApp(test.NewTempApp(t), config.New(), Options{FS: fs, Post: p.post})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, p
}

func openPhotos(t *testing.T, a *App, p pump) {
	t.Helper()
	require.NoError(t, a.Controller().Open("/photos"))
	p.runNext(t)
}

func TestNewApp(t *testing.T) {
	a, _ := newTestApp(t, testFs(t))

	require.NotNil(t, a.Window())
	_, ok := a.Window().Content().(*fyne.Container)
	assert.True(t, ok, "Window content should be a *fyne.Container")
	assert.False(t, a.overlay.Visible())
	assert.Equal(t, palette.Dark, a.ThemeName())

	menu := a.Window().MainMenu()
	require.NotNil(t, menu)
	require.Len(t, menu.Items, 2)

	var labels []string
	for _, item := range menu.Items[0].Items {
		labels = append(labels, item.Label)
	}
	assert.Equal(t, []string{"Open Image...", "Open Folder...", "Cancel Scan", "", "Exit"}, labels)

	labels = nil
	for _, item := range menu.Items[1].Items {
		labels = append(labels, item.Label)
	}
	assert.Equal(t, []string{"Light Theme", "Dark Theme", "", "Toggle Full Screen"}, labels)
}

func TestOpenFolderShowsFirstImage(t *testing.T) {
	a, p := newTestApp(t, testFs(t))

	require.NoError(t, a.Controller().Open("/photos"))
	assert.True(t, a.overlay.Visible())
	assert.Equal(t, "Scanning photos...", a.scanLabel.Text)

	p.runNext(t)

	assert.False(t, a.overlay.Visible())
	assert.NotNil(t, a.image.Image)
	assert.Equal(t, "1 / 3  a.png  (4x3 png, "+a.info.HumanSize()+")", a.status.Text)
	assert.Equal(t, "imgview - /photos", a.Window().Title())
}

func TestKeyboardNavigation(t *testing.T) {
	a, p := newTestApp(t, testFs(t))
	openPhotos(t, a, p)

	a.typedKey(&fyne.KeyEvent{Name: fyne.KeyRight})
	assert.Contains(t, a.status.Text, "2 / 3  b.png")

	a.typedKey(&fyne.KeyEvent{Name: fyne.KeyRight})
	assert.Contains(t, a.status.Text, "3 / 3  c.gif")

	a.typedKey(&fyne.KeyEvent{Name: fyne.KeyRight})
	assert.Contains(t, a.status.Text, "1 / 3  a.png")

	a.typedKey(&fyne.KeyEvent{Name: fyne.KeyLeft})
	assert.Contains(t, a.status.Text, "3 / 3  c.gif")
}

func TestCorruptImageKeepsPreviousFrame(t *testing.T) {
	a, p := newTestApp(t, testFs(t))
	openPhotos(t, a, p)
	before := a.image.Image

	a.typedKey(&fyne.KeyEvent{Name: fyne.KeyRight})

	assert.Same(t, before, a.image.Image)
	assert.Equal(t, "2 / 3  b.png", a.status.Text)
	assert.Equal(t, 1, a.Controller().State().Cursor)
}

func TestEmptyFolder(t *testing.T) {
	a, p := newTestApp(t, testFs(t))
	openPhotos(t, a, p)

	require.NoError(t, a.Controller().Open("/empty"))
	p.runNext(t)

	assert.Nil(t, a.image.Image)
	assert.Equal(t, "Found: 0 images in /empty", a.status.Text)
}

func TestMissingFolderIsRecoverable(t *testing.T) {
	a, p := newTestApp(t, testFs(t))
	openPhotos(t, a, p)
	status := a.status.Text

	err := a.Controller().Open("/missing")
	require.Error(t, err)
	assert.False(t, a.overlay.Visible())
	assert.Equal(t, status, a.status.Text)
	assert.Equal(t, 3, a.Controller().State().Images.Len())
}

func TestMissingFolderDuringScanKeepsOverlay(t *testing.T) {
	fs := &gatedFs{Fs: testFs(t), gated: "/photos", opened: make(chan struct{}), release: make(chan struct{})}
	a, p := newTestApp(t, fs)

	require.NoError(t, a.Controller().Open("/photos"))
	<-fs.opened
	require.Error(t, a.Controller().Open("/missing"))
	assert.True(t, a.overlay.Visible())
	assert.True(t, a.Controller().Scanning())

	close(fs.release)
	p.runNext(t)

	assert.False(t, a.overlay.Visible())
	assert.Equal(t, 3, a.Controller().State().Images.Len())
	assert.Equal(t, "imgview - /photos", a.Window().Title())
}

func TestCancelButton(t *testing.T) {
	fs := &gatedFs{Fs: testFs(t), gated: "/photos", opened: make(chan struct{}), release: make(chan struct{})}
	a, p := newTestApp(t, fs)

	require.NoError(t, a.Controller().Open("/photos"))
	<-fs.opened
	test.Tap(a.cancelBtn)
	close(fs.release)
	p.runNext(t)

	assert.False(t, a.overlay.Visible())
	assert.Nil(t, a.image.Image)
	assert.True(t, a.Controller().State().Empty())
}

func TestFullScreen(t *testing.T) {
	a, _ := newTestApp(t, testFs(t))
	w := a.Window()
	require.False(t, w.FullScreen())

	test.DoubleTap(a.surface)
	assert.True(t, w.FullScreen())

	a.typedKey(&fyne.KeyEvent{Name: fyne.KeyEscape})
	assert.False(t, w.FullScreen())

	a.ToggleFullScreen()
	assert.True(t, w.FullScreen())
	a.ToggleFullScreen()
	assert.False(t, w.FullScreen())
}

func TestSetTheme(t *testing.T) {
	a, _ := newTestApp(t, testFs(t))

	a.SetTheme(palette.Light)
	assert.Equal(t, palette.Light, a.ThemeName())

	light, err := palette.Lookup(palette.Light, nil)
	require.NoError(t, err)
	want, _ := light.Color(palette.Background)
	th := a.fyneApp.Settings().Theme()
	assert.Equal(t, want, th.Color(theme.ColorNameBackground, theme.VariantLight))
	assert.Equal(t, light.Text(), th.Color(theme.ColorNameForeground, theme.VariantLight))

	a.SetTheme("no-such-theme")
	assert.Equal(t, palette.Light, a.ThemeName())

	a.SetTheme(palette.Dark)
	assert.Equal(t, palette.Dark, a.ThemeName())
}

func TestPaletteThemeFallsBackToDefault(t *testing.T) {
	p, err := palette.Lookup("bare", palette.Overrides{"bare": {"background": "#101010"}})
	require.NoError(t, err)
	th := newPaletteTheme(p)

	assert.Equal(t, theme.DefaultTheme().Color(theme.ColorNameError, theme.VariantDark),
		th.Color(theme.ColorNameError, theme.VariantLight))
	// No text colour defined: white
	r, g, b, _ := th.Color(theme.ColorNameForeground, theme.VariantDark).RGBA()
	assert.Equal(t, []uint32{0xFFFF, 0xFFFF, 0xFFFF}, []uint32{r, g, b})
}
