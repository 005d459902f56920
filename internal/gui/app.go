//go:build !nogui

package gui

import (
	"fmt"
	"path/filepath"
	"time"

	"imgview/internal/config"
	"imgview/internal/errors"
	"imgview/internal/imaging"
	"imgview/internal/log"
	"imgview/internal/palette"
	"imgview/internal/scan"
	"imgview/internal/viewer"
	"imgview/internal/watch"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/afero"
)

// App is the GUI application
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	cfg     *config.Config
	opts    Options

	ctrl    *viewer.Controller
	decoder *imaging.Decoder
	watcher *watch.Watcher
	filter  *scan.Filter

	// Widgets
	image     *canvas.Image
	surface   *imageSurface
	status    *widget.Label
	overlay   *fyne.Container
	scanLabel *widget.Label
	cancelBtn *widget.Button

	themeName string
	info      imaging.Info
}

var _ Interface = (*App)(nil)

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return true
}

// Run creates the GUI and blocks until the window is closed
func Run(cfg *config.Config, opts Options) error {
	a, err := NewApp(cfg, opts)
	if err != nil {
		return err
	}
	a.Run()
	return nil
}

// NewApp creates a new GUI application
func NewApp(cfg *config.Config, opts Options) (*App, error) {
	return newApp(app.NewWithID("io.github.imgview"), cfg, opts)
}

func newApp(fyneApp fyne.App, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.Post == nil {
		opts.Post = fyne.Do
	}

	a := &App{
		fyneApp: fyneApp,
		cfg:     cfg,
		opts:    opts,
		decoder: imaging.NewDecoder(opts.FS),
		filter:  scan.MustFilter(),
	}

	var ctrlOpts []viewer.Option
	if opts.Watch || cfg.Watch.Enabled {
		debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
		w, err := watch.New(a.filter, debounce, func(dir string) {
			a.ctrl.DirectoryChanged(dir)
		})
		if err != nil {
			// The viewer still works without rescans
			log.LogWithError(err).Warn("Directory watcher unavailable")
		} else {
			a.watcher = w
			ctrlOpts = append(ctrlOpts, viewer.WithWatcher(w))
		}
	}

	loader := scan.NewLoader(opts.FS, a.filter)
	a.ctrl = viewer.NewController(loader, a, a, opts.Post, ctrlOpts...)

	a.window = fyneApp.NewWindow("imgview")
	a.setupMainWindow()
	a.SetTheme(cfg.Theme)

	if a.watcher != nil {
		if err := a.watcher.Start(); err != nil {
			log.LogWithError(err).Warn("Cannot start directory watcher")
		}
	}

	return a, nil
}

// Window returns the main window
func (a *App) Window() fyne.Window {
	return a.window
}

// Controller returns the viewer controller driving the window
func (a *App) Controller() *viewer.Controller {
	return a.ctrl
}

// Run shows the window, opens the startup path and runs the event loop
func (a *App) Run() {
	a.fyneApp.Lifecycle().SetOnStarted(func() {
		if a.opts.Path != "" {
			_ = a.ctrl.Open(a.opts.Path)
		}
	})
	a.window.ShowAndRun()
	a.ctrl.Close()
}

func (a *App) setupMainWindow() {
	a.image = canvas.NewImageFromImage(nil)
	a.image.FillMode = canvas.ImageFillContain
	a.image.ScaleMode = canvas.ImageScaleSmooth
	a.surface = newImageSurface(a.image, a.ToggleFullScreen)

	a.status = widget.NewLabel("Open a folder to start (File > Open Folder...)")
	a.status.Truncation = fyne.TextTruncateEllipsis

	progress := widget.NewProgressBarInfinite()
	a.scanLabel = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	a.cancelBtn = widget.NewButton("Cancel", func() {
		a.ctrl.CancelScan()
	})
	a.overlay = container.NewCenter(container.NewVBox(a.scanLabel, progress, a.cancelBtn))
	a.overlay.Hide()

	content := container.NewBorder(
		nil,
		a.status,
		nil,
		nil,
		container.NewStack(a.surface, a.overlay),
	)

	a.window.SetMainMenu(a.mainMenu())
	a.window.Canvas().SetOnTypedKey(a.typedKey)
	a.window.SetContent(content)
	a.window.Resize(fyne.NewSize(float32(a.cfg.Window.Width), float32(a.cfg.Window.Height)))
	a.window.SetFullScreen(a.cfg.Window.Fullscreen)
	a.window.SetOnClosed(func() {
		a.ctrl.Close()
	})
}

func (a *App) mainMenu() *fyne.MainMenu {
	exit := fyne.NewMenuItem("Exit", func() {
		a.window.Close()
	})
	exit.IsQuit = true

	file := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", a.showOpenImage),
		fyne.NewMenuItem("Open Folder...", a.showOpenFolder),
		fyne.NewMenuItem("Cancel Scan", func() { a.ctrl.CancelScan() }),
		fyne.NewMenuItemSeparator(),
		exit,
	)
	view := fyne.NewMenu("View",
		fyne.NewMenuItem("Light Theme", func() { a.SetTheme(palette.Light) }),
		fyne.NewMenuItem("Dark Theme", func() { a.SetTheme(palette.Dark) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Full Screen", a.ToggleFullScreen),
	)
	return fyne.NewMainMenu(file, view)
}

func (a *App) showOpenImage() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.ShowError("Open Image", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()
		_ = a.ctrl.Open(path)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter(a.filter.Extensions()))
	d.Show()
}

func (a *App) showOpenFolder() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			a.ShowError("Open Folder", err)
			return
		}
		if uri == nil {
			return
		}
		_ = a.ctrl.Open(uri.Path())
	}, a.window)
}

func (a *App) typedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyRight:
		a.ctrl.MoveNext()
	case fyne.KeyLeft:
		a.ctrl.MovePrevious()
	case fyne.KeyEscape:
		if a.window.FullScreen() {
			a.window.SetFullScreen(false)
			return
		}
		a.window.Close()
	}
}

// ToggleFullScreen switches between full screen and windowed mode
func (a *App) ToggleFullScreen() {
	a.window.SetFullScreen(!a.window.FullScreen())
}

// SetTheme applies the named palette. Unknown names are logged and the
// current theme is kept.
func (a *App) SetTheme(name string) {
	p, err := palette.Lookup(name, a.cfg.Palettes)
	if err != nil {
		log.LogWithError(err).With(log.F("theme", name)).Warn("Keeping current theme")
		return
	}
	a.themeName = p.Name()
	a.fyneApp.Settings().SetTheme(newPaletteTheme(p))
}

// ThemeName returns the active palette name
func (a *App) ThemeName() string {
	return a.themeName
}

// Display decodes path and shows it. On failure the previous frame stays.
func (a *App) Display(path string) error {
	img, info, err := a.decoder.Decode(path)
	if err != nil {
		return err
	}
	a.info = info
	a.image.Image = img
	a.image.Refresh()
	return nil
}

// ScanStarted shows the loading overlay
func (a *App) ScanStarted(dir string) {
	a.scanLabel.SetText("Scanning " + filepath.Base(dir) + "...")
	a.cancelBtn.Enable()
	a.overlay.Show()
}

// ScanFinished hides the overlay and reports failures. A path that failed
// to resolve while another scan runs leaves the overlay up.
func (a *App) ScanFinished(outcome viewer.Outcome) {
	switch {
	case outcome.Cancelled():
		a.overlay.Hide()
		return
	case outcome.Failed():
		if !a.ctrl.Scanning() {
			a.overlay.Hide()
		}
		a.ShowError("Cannot open folder", outcome.Err)
		return
	}
	a.overlay.Hide()
	a.window.SetTitle("imgview - " + outcome.Dir)
	if outcome.Count == 0 {
		a.status.SetText("Found: 0 images in " + outcome.Dir)
	}
}

// ImageChanged updates the status bar, clearing the canvas for an empty set
func (a *App) ImageChanged(state viewer.State) {
	path, ok := state.Current()
	if !ok {
		a.image.Image = nil
		a.image.Refresh()
		return
	}
	index, total := state.Position()
	text := fmt.Sprintf("%d / %d  %s", index, total, state.Name())
	if a.info.Path == path {
		text += "  (" + a.info.String() + ")"
	}
	a.status.SetText(text)
}

// ShowError displays an error dialog
func (a *App) ShowError(title string, err error) {
	if err == nil {
		return
	}
	log.LogWithError(err).Warn(title)
	msg := err.Error()
	if errors.IsAccessOrNotFound(err) {
		msg = "The folder could not be read. It may have been moved, or you may not have permission to open it.\n\n" + msg
	}
	dialog.ShowInformation(title, msg, a.window)
}

// Close stops scanning and watching
func (a *App) Close() {
	a.ctrl.Close()
}
