// Package tray puts a camdeck entry in the system tray when the server runs
// on a desktop.
package tray

import (
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
	"github.com/edaniels/golog"
)

// ShutdownFunc is called when "Exit" is clicked.
type ShutdownFunc func()

// Tray manages the system tray icon and menu.
type Tray struct {
	url          string
	logger       golog.Logger
	shutdownFunc ShutdownFunc
	once         sync.Once
	shuttingDown atomic.Bool
	menuOpen     *systray.MenuItem
	menuExit     *systray.MenuItem
}

func New(url string, shutdownFn ShutdownFunc, logger golog.Logger) *Tray {
	return &Tray{url: url, logger: logger, shutdownFunc: shutdownFn}
}

// Run initializes and runs the system tray; blocks until Quit.
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() {
		t.onReady(iconData)
	}, func() {
		t.shuttingDown.Store(true)
	})
}

func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle("camdeck")
	systray.SetTooltip("camdeck - " + t.url)

	t.menuOpen = systray.AddMenuItem("Open Control Deck", "Open the browser UI")
	t.menuExit = systray.AddMenuItem("Exit", "Quit camdeck")

	go t.handleMenuClicks()
	t.logger.Debug("system tray initialized")
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

func (t *Tray) openBrowser() {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", t.url)
	case "darwin":
		cmd = exec.Command("open", t.url)
	default:
		cmd = exec.Command("xdg-open", t.url)
	}
	if err := cmd.Start(); err != nil {
		t.logger.Warnw("failed to open browser", "error", err)
	}
}
