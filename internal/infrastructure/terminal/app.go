// Package terminal provides the interactive front end.
// Framework/driver layer: it turns typed lines and dropped files into calls on
// the usecases and leaves all drawing to the Renderer.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/0xcro3dile/polit/internal/domain/entities"
	"github.com/0xcro3dile/polit/internal/domain/ports"
	"github.com/0xcro3dile/polit/internal/domain/usecases"
	"github.com/0xcro3dile/polit/internal/logging"
)

// Event is one input to the event loop.
type Event interface{ isEvent() }

// LineEvent is one line typed by the user.
type LineEvent struct{ Text string }

// DropEvent is a file that landed in the drop folder.
type DropEvent struct{ Path string }

func (LineEvent) isEvent() {}
func (DropEvent) isEvent() {}

// App is the single event loop. Network calls run on their own goroutines and
// report back through the usecases' observers.
type App struct {
	chat     *usecases.ChatUseCase
	upload   *usecases.UploadUseCase
	nav      *usecases.NavigationUseCase
	loader   ports.FileLoader
	watcher  ports.FileWatcher
	dropDir  string
	renderer *Renderer
	logger   *logging.Logger

	wg sync.WaitGroup
}

// NewApp wires the usecases to the renderer. watcher may be nil when no drop
// folder is configured.
func NewApp(
	chat *usecases.ChatUseCase,
	upload *usecases.UploadUseCase,
	nav *usecases.NavigationUseCase,
	loader ports.FileLoader,
	watcher ports.FileWatcher,
	dropDir string,
	renderer *Renderer,
	logger *logging.Logger,
) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	chat.Observe(renderer)
	upload.Observe(renderer)
	nav.Observe(renderer)

	return &App{
		chat:     chat,
		upload:   upload,
		nav:      nav,
		loader:   loader,
		watcher:  watcher,
		dropDir:  dropDir,
		renderer: renderer,
		logger:   logger,
	}
}

// Run reads lines from in until :quit, end of input or ctx cancellation.
// At end of input it waits for outstanding requests so piped sessions see
// every reply; :quit and cancellation return at once.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	var drops <-chan ports.FileEvent
	if a.watcher != nil && a.dropDir != "" {
		ch, err := a.watcher.Watch(ctx, a.dropDir)
		if err != nil {
			return err
		}
		drops = ch
		defer a.watcher.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				a.wg.Wait()
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if a.Handle(ctx, LineEvent{Text: line}) {
				return nil
			}
		case ev, ok := <-drops:
			if !ok {
				drops = nil
				continue
			}
			if ev.Operation == ports.FileCreated {
				a.Handle(ctx, DropEvent{Path: ev.Path})
			}
		}
	}
}

// Handle dispatches one event and reports whether the loop should stop.
func (a *App) Handle(ctx context.Context, ev Event) bool {
	switch ev := ev.(type) {
	case DropEvent:
		if a.nav.Current() != entities.ViewUpload {
			a.renderer.Notice("Ignored %s: open the upload view (:go upload) to drop files.", ev.Path)
			return false
		}
		a.selectPath(ctx, ev.Path)
	case LineEvent:
		return a.handleLine(ctx, ev.Text)
	}
	return false
}

func (a *App) handleLine(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)

	if a.nav.IsOpen() {
		switch trimmed {
		case "1":
			a.choose(entities.MenuUploadPDF)
			return false
		case "2":
			a.choose(entities.MenuSettings)
			return false
		case "3":
			a.choose(entities.MenuHelp)
			return false
		}
	}

	if strings.HasPrefix(trimmed, ":") {
		return a.command(ctx, trimmed)
	}

	if a.nav.Current() != entities.ViewChat {
		if trimmed != "" {
			a.renderer.Notice("Switch to the chat view with :go chat to send messages.")
		}
		return false
	}

	draft := a.chat.Snapshot().Draft
	if strings.HasSuffix(line, "\\") {
		a.chat.SetDraft(draft + strings.TrimSuffix(line, "\\"))
		a.chat.KeyPress(ctx, entities.KeyEvent{Key: entities.KeyEnter, Shift: true})
		return false
	}

	text := draft + line
	if strings.TrimSpace(text) == "" {
		return false
	}
	// Take the draft now so a continuation typed while the request is
	// outstanding starts fresh.
	a.chat.SetDraft("")
	a.goSend(ctx, text)
	return false
}

func (a *App) goSend(ctx context.Context, text string) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if _, err := a.chat.Send(ctx, text); err != nil {
			a.logger.Error("chat send failed", "error", err)
		}
	}()
}

func (a *App) command(ctx context.Context, input string) bool {
	name, arg, _ := strings.Cut(strings.TrimPrefix(input, ":"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "quit", "q":
		return true
	case "help":
		a.renderer.Help()
	case "menu":
		a.nav.Toggle()
	case "new":
		a.nav.NewChat()
	case "settings":
		a.choose(entities.MenuSettings)
	case "go":
		switch arg {
		case "upload":
			a.choose(entities.MenuUploadPDF)
		case "chat":
			a.nav.Navigate(entities.ViewChat)
		default:
			a.renderer.Error("Unknown view %q. Use :go upload or :go chat.", arg)
		}
	case "close":
		a.upload.Dismiss()
		a.nav.Close()
	case "pick":
		if arg == "" {
			a.renderer.Error("Usage: :pick <path>")
			return false
		}
		if a.nav.Current() != entities.ViewUpload {
			a.choose(entities.MenuUploadPDF)
		}
		a.selectPath(ctx, arg)
	case "upload":
		a.startUpload(ctx)
	default:
		a.renderer.Error("Unknown command :%s. Type :help for the list.", name)
	}
	return false
}

func (a *App) choose(item entities.MenuItem) {
	err := a.nav.Choose(item)
	if errors.Is(err, usecases.ErrNotImplemented) {
		a.renderer.Notice("%s is not available yet.", menuLabel(item))
		return
	}
	if err != nil {
		a.renderer.Error("%v", err)
	}
}

func menuLabel(item entities.MenuItem) string {
	switch item {
	case entities.MenuUploadPDF:
		return "Upload PDF"
	case entities.MenuSettings:
		return "Settings"
	case entities.MenuHelp:
		return "Help"
	}
	return string(item)
}

// selectPath loads a dropped or picked file and offers it to the upload flow.
// Validation failures are presented by the flow itself.
func (a *App) selectPath(ctx context.Context, path string) {
	file, err := a.loader.Load(ctx, path)
	if err != nil {
		a.renderer.Error("Cannot open %s: %v", path, err)
		return
	}

	err = a.upload.Select(*file)
	switch {
	case errors.Is(err, usecases.ErrUploadInFlight):
		a.renderer.Notice("An upload is in progress; wait for it to finish.")
	case err != nil:
		a.logger.Info("selection rejected", "file", file.Name, "error", err)
	}
}

func (a *App) startUpload(ctx context.Context) {
	switch a.upload.Snapshot().State {
	case entities.UploadIdle:
		a.renderer.Error("No file selected. Use :pick <path> first.")
		return
	case entities.UploadInFlight:
		a.renderer.Notice("An upload is already in progress.")
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		outcome, err := a.upload.Upload(ctx)
		if err != nil {
			// Lost a race with another :upload; the flow state is unchanged.
			a.logger.Debug("upload not started", "error", err)
			return
		}
		a.logger.Info("upload settled", "success", outcome.Success, "message", outcome.Message)
	}()
}
