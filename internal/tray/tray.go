package tray

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
	"go.uber.org/zap"
)

const title = "MotionControllerView"

// ShutdownFunc is called when "Exit" is clicked
type ShutdownFunc func()

// Tray manages the system tray icon and menu
type Tray struct {
	url          string
	shutdownFunc ShutdownFunc
	log          *zap.Logger

	once         sync.Once
	shuttingDown atomic.Bool
	ready        atomic.Bool

	mu          sync.Mutex
	controllers []string

	menuStatus *systray.MenuItem
	menuOpen   *systray.MenuItem
	menuExit   *systray.MenuItem
}

// New creates a tray that opens url from its menu.
func New(url string, shutdownFn ShutdownFunc, log *zap.Logger) *Tray {
	return &Tray{
		url:          url,
		shutdownFunc: shutdownFn,
		log:          log.Named("tray"),
	}
}

// Run initializes and runs the system tray (blocks until Quit())
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() {
		t.onReady(iconData)
	}, t.onExit)
}

func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle(title)
	systray.SetTooltip(title + " - " + t.url)

	t.menuStatus = systray.AddMenuItem("", "Bound motion controllers")
	t.menuStatus.Disable()
	systray.AddSeparator()
	t.menuOpen = systray.AddMenuItem("Open Browser", "Open web interface")
	t.menuExit = systray.AddMenuItem("Exit", "Quit application")
	t.ready.Store(true)
	t.refresh()

	go t.handleMenuClicks()

	t.log.Info("system tray initialized", zap.String("url", t.url))
}

func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				t.once.Do(t.shutdownFunc)
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	t.log.Info("system tray exiting")
}

// ControllerBound records a controller whose model finished loading.
// Safe to call before the tray is ready.
func (t *Tray) ControllerBound(key string) {
	t.mu.Lock()
	t.controllers = append(t.controllers, key)
	t.mu.Unlock()
	t.refresh()
}

func (t *Tray) refresh() {
	if !t.ready.Load() {
		return
	}
	t.mu.Lock()
	label := statusLabel(t.controllers)
	t.mu.Unlock()
	t.menuStatus.SetTitle(label)
}

func statusLabel(controllers []string) string {
	switch len(controllers) {
	case 0:
		return "No controllers"
	case 1:
		return controllers[0]
	default:
		return fmt.Sprintf("%d controllers", len(controllers))
	}
}

func (t *Tray) openBrowser() {
	if t.shuttingDown.Load() {
		return
	}
	if err := browserCommand(runtime.GOOS, t.url).Start(); err != nil {
		t.log.Warn("failed to open browser", zap.Error(err))
	}
}

func browserCommand(goos, url string) *exec.Cmd {
	switch goos {
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		return exec.Command("open", url)
	default:
		return exec.Command("xdg-open", url)
	}
}
