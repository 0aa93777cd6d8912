// Package tray provides a system tray menu for a running session.
package tray

import (
	"strings"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/fingerfold/internal/finger"
	"github.com/ayusman/fingerfold/internal/session"
)

// Tray shows the current fold status and lets the user end the session.
type Tray struct {
	onPreview func()
	onQuit    func()
	status    string
	mu        sync.RWMutex

	menuStatus *systray.MenuItem

	ready     chan struct{}
	readyOnce sync.Once
	quit      func()
}

// New creates a new Tray.
func New() *Tray {
	return &Tray{
		status: StatusText(nil),
		ready:  make(chan struct{}),
		quit:   systray.Quit,
	}
}

// OnPreview sets the callback for the "Open Preview" menu item.
func (t *Tray) OnPreview(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPreview = fn
}

// OnQuit sets the callback for the "Quit" menu item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// It must be called from the main goroutine and blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray icon and makes Run return. It waits until the tray
// loop is up, so it is safe to call before Run has been entered.
func (t *Tray) Quit() {
	<-t.ready
	t.quit()
}

func (t *Tray) markReady() {
	t.readyOnce.Do(func() { close(t.ready) })
}

func (t *Tray) onReady() {
	defer t.markReady()

	systray.SetTitle("fingerfold")
	systray.SetTooltip("fingerfold hand tracking")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(t.status, "Fingers currently folded")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuPreview := systray.AddMenuItem("Open Preview", "Show the web preview address")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "End the session")

	go func() {
		for {
			select {
			case <-menuPreview.ClickedCh:
				t.handlePreview()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) handlePreview() {
	t.mu.RLock()
	callback := t.onPreview
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit only asks the session to stop. The session calls Quit once its
// resources are released.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// ObserveFrame updates the status line when the set of folded fingers changes.
func (t *Tray) ObserveFrame(r session.FrameResult) {
	text := StatusText(r.Folded())

	t.mu.Lock()
	defer t.mu.Unlock()
	if text == t.status {
		return
	}
	t.status = text
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(text)
	}
}

// Status returns the current status line.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// StatusText renders folded fingers as "Folded: index, ring". Duplicates
// from several hands are listed once, in finger order.
func StatusText(folded []finger.Finger) string {
	var seen [finger.Count]bool
	for _, f := range folded {
		seen[f] = true
	}

	var names []string
	for _, f := range finger.All {
		if seen[f] {
			names = append(names, f.String())
		}
	}
	if len(names) == 0 {
		return "Folded: none"
	}
	return "Folded: " + strings.Join(names, ", ")
}
