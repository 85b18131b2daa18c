// Package usecases - chat.go relays user utterances to the query endpoint.
package usecases

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/0xcro3dile/polit/internal/domain/entities"
	"github.com/0xcro3dile/polit/internal/domain/ports"
)

// Bot fallbacks shown when the server gives nothing usable.
const (
	MsgReplyMissing    = "I apologize, but I am having trouble processing your request."
	MsgConnectionError = "I apologize, but I am having trouble connecting to the server."
)

// ChatUseCase keeps the append-only conversation log.
// Sends are independent: several may be in flight, and replies are appended
// in arrival order with no correlation to the message that caused them.
type ChatUseCase struct {
	client ports.QueryClient
	ids    ports.IDGenerator
	now    func() time.Time

	mu        sync.Mutex
	// notifyMu is taken before mu is released so observers see changes in order.
	notifyMu  sync.Mutex
	messages  []entities.ChatMessage
	draft     string
	inFlight  int
	observers []ports.ChatObserver
}

// NewChatUseCase creates a ChatUseCase with injected dependencies.
func NewChatUseCase(client ports.QueryClient, ids ports.IDGenerator, observers ...ports.ChatObserver) *ChatUseCase {
	return &ChatUseCase{
		client:    client,
		ids:       ids,
		now:       time.Now,
		observers: observers,
	}
}

// Observe registers an additional observer.
func (uc *ChatUseCase) Observe(o ports.ChatObserver) {
	uc.mu.Lock()
	uc.observers = append(uc.observers, o)
	uc.mu.Unlock()
}

// SetDraft replaces the pending input text.
func (uc *ChatUseCase) SetDraft(text string) {
	uc.mu.Lock()
	if uc.draft == text {
		uc.mu.Unlock()
		return
	}
	uc.draft = text
	uc.publishLocked()
}

// KeyPress handles a key on the input. Enter without Shift sends the draft,
// Shift+Enter continues the draft on a new line.
func (uc *ChatUseCase) KeyPress(ctx context.Context, ev entities.KeyEvent) (*entities.ChatMessage, error) {
	if ev.Key != entities.KeyEnter {
		return nil, nil
	}
	if ev.Shift {
		uc.mu.Lock()
		draft := uc.draft + "\n"
		uc.mu.Unlock()
		uc.SetDraft(draft)
		return nil, nil
	}

	uc.mu.Lock()
	draft := uc.draft
	uc.mu.Unlock()
	return uc.Send(ctx, draft)
}

// Send appends the user message at once, then blocks for the reply and appends
// the bot message. Blank text is ignored. The returned message is the bot reply.
func (uc *ChatUseCase) Send(ctx context.Context, text string) (*entities.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	uc.mu.Lock()
	uc.messages = append(uc.messages, entities.ChatMessage{
		ID:        uc.ids.NewID(),
		Text:      text,
		Sender:    entities.SenderUser,
		Timestamp: uc.now(),
	})
	uc.draft = ""
	uc.inFlight++
	uc.publishLocked()

	reply := MsgConnectionError
	resp, err := uc.client.Ask(ctx, text)
	if err == nil {
		reply = MsgReplyMissing
		if resp != nil && resp.Response != nil && *resp.Response != "" {
			reply = *resp.Response
		}
	}

	uc.mu.Lock()
	bot := entities.ChatMessage{
		ID:        uc.ids.NewID(),
		Text:      reply,
		Sender:    entities.SenderBot,
		Timestamp: uc.now(),
	}
	uc.messages = append(uc.messages, bot)
	uc.inFlight--
	uc.publishLocked()

	return &bot, nil
}

// Messages returns a copy of the log in append order.
func (uc *ChatUseCase) Messages() []entities.ChatMessage {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return append([]entities.ChatMessage(nil), uc.messages...)
}

// Busy reports whether any send is awaiting its reply.
func (uc *ChatUseCase) Busy() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.inFlight > 0
}

// Snapshot returns the current render-side state.
func (uc *ChatUseCase) Snapshot() entities.ChatSnapshot {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.snapshotLocked()
}

func (uc *ChatUseCase) snapshotLocked() entities.ChatSnapshot {
	return entities.ChatSnapshot{
		Messages: append([]entities.ChatMessage(nil), uc.messages...),
		Draft:    uc.draft,
		Busy:     uc.inFlight > 0,
	}
}

// publishLocked must be called with mu held; it releases mu. Observers must not
// call back into the use case.
func (uc *ChatUseCase) publishLocked() {
	snap, observers := uc.snapshotLocked(), uc.observers
	uc.notifyMu.Lock()
	uc.mu.Unlock()
	defer uc.notifyMu.Unlock()
	notifyChat(observers, snap)
}

func notifyChat(observers []ports.ChatObserver, snap entities.ChatSnapshot) {
	for _, o := range observers {
		o.ChatChanged(snap)
	}
}
