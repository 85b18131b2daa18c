package usecases

import (
	"errors"
	"fmt"
	"sync"

	"github.com/0xcro3dile/polit/internal/domain/entities"
	"github.com/0xcro3dile/polit/internal/domain/ports"
)

// ErrNotImplemented is returned by placeholder menu entries.
var ErrNotImplemented = errors.New("not implemented")

// NavigationUseCase is the header: a dropdown toggle plus the current view.
type NavigationUseCase struct {
	mu        sync.Mutex
	view      entities.View
	open      bool
	observers []ports.NavigationObserver
}

// NewNavigationUseCase starts on the chat view with the menu closed.
func NewNavigationUseCase(observers ...ports.NavigationObserver) *NavigationUseCase {
	return &NavigationUseCase{view: entities.ViewChat, observers: observers}
}

// Observe registers an additional observer.
func (uc *NavigationUseCase) Observe(o ports.NavigationObserver) {
	uc.mu.Lock()
	uc.observers = append(uc.observers, o)
	uc.mu.Unlock()
}

// Toggle opens or closes the dropdown.
func (uc *NavigationUseCase) Toggle() {
	uc.mu.Lock()
	uc.open = !uc.open
	uc.publishLocked()
}

// Close closes the dropdown if it is open.
func (uc *NavigationUseCase) Close() {
	uc.mu.Lock()
	if !uc.open {
		uc.mu.Unlock()
		return
	}
	uc.open = false
	uc.publishLocked()
}

// Navigate switches to view and closes the dropdown.
func (uc *NavigationUseCase) Navigate(view entities.View) error {
	if view != entities.ViewChat && view != entities.ViewUpload {
		return fmt.Errorf("unknown view %q", view)
	}
	uc.mu.Lock()
	uc.view = view
	uc.open = false
	uc.publishLocked()
	return nil
}

// NewChat is the header button. It only returns to the chat view; the log is
// never cleared.
func (uc *NavigationUseCase) NewChat() {
	_ = uc.Navigate(entities.ViewChat)
}

// Choose activates a dropdown entry.
func (uc *NavigationUseCase) Choose(item entities.MenuItem) error {
	switch item {
	case entities.MenuUploadPDF:
		return uc.Navigate(entities.ViewUpload)
	case entities.MenuSettings, entities.MenuHelp:
		uc.Close()
		return fmt.Errorf("%s: %w", item, ErrNotImplemented)
	default:
		return fmt.Errorf("unknown menu item %q", item)
	}
}

// Current returns the active view.
func (uc *NavigationUseCase) Current() entities.View {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.view
}

// IsOpen reports whether the dropdown is shown.
func (uc *NavigationUseCase) IsOpen() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.open
}

// publishLocked releases mu before notifying.
func (uc *NavigationUseCase) publishLocked() {
	view, open, observers := uc.view, uc.open, uc.observers
	uc.mu.Unlock()
	for _, o := range observers {
		o.NavigationChanged(view, open)
	}
}
