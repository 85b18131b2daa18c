// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces only.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/0xcro3dile/polit/internal/domain/entities"
	"github.com/0xcro3dile/polit/internal/domain/ports"
)

// User-facing upload messages.
const (
	MsgFileTooLarge    = "File size exceeds 10MB limit. Please choose a smaller file."
	MsgNotPDF          = "Please upload a PDF file."
	MsgUploadSucceeded = "PDF uploaded and vectorized successfully!"
	MsgInvalidResponse = "Invalid response format"
	MsgNetworkError    = "Network error occurred"
	MsgUploadFailed    = "Error uploading file. Please try again."
)

var (
	// ErrFileTooLarge rejects a selection over entities.MaxUploadBytes.
	ErrFileTooLarge = errors.New("file exceeds upload limit")
	// ErrNotPDF rejects a selection whose MIME type is not application/pdf.
	ErrNotPDF = errors.New("file is not a PDF")
	// ErrNoCandidate means Upload was invoked with nothing selected.
	ErrNoCandidate = errors.New("no file selected")
	// ErrUploadInFlight means the flow is busy with a transfer.
	ErrUploadInFlight = errors.New("upload already in progress")
)

// UploadUseCase drives the single-file upload state machine:
// Idle -> Ready -> InFlight -> Idle, with the result presented after every settlement.
type UploadUseCase struct {
	uploader ports.Uploader

	mu         sync.Mutex
	// notifyMu is taken before mu is released so observers see changes in order.
	notifyMu   sync.Mutex
	state      entities.UploadState
	candidate  *entities.UploadCandidate
	progress   int
	attempt    uint64
	outcome    *entities.UploadOutcome
	resultOpen bool
	observers  []ports.UploadObserver
}

// NewUploadUseCase creates an UploadUseCase with injected dependencies.
func NewUploadUseCase(uploader ports.Uploader, observers ...ports.UploadObserver) *UploadUseCase {
	return &UploadUseCase{
		uploader:  uploader,
		observers: observers,
	}
}

// Observe registers an additional observer.
func (uc *UploadUseCase) Observe(o ports.UploadObserver) {
	uc.mu.Lock()
	uc.observers = append(uc.observers, o)
	uc.mu.Unlock()
}

// Select validates a dropped or picked file and holds it as the candidate.
// A rejected file clears any held candidate and presents a failure outcome.
func (uc *UploadUseCase) Select(file entities.SelectedFile) error {
	uc.mu.Lock()
	if uc.state == entities.UploadInFlight {
		uc.mu.Unlock()
		return ErrUploadInFlight
	}

	var rejection error
	switch {
	case file.ExceedsLimit():
		rejection = ErrFileTooLarge
		uc.reject(MsgFileTooLarge)
	case !file.IsPDF():
		rejection = ErrNotPDF
		uc.reject(MsgNotPDF)
	default:
		uc.candidate = &entities.UploadCandidate{SelectedFile: file}
		uc.state = entities.UploadReady
	}
	uc.publishLocked()
	if rejection != nil {
		return fmt.Errorf("select %s: %w", file.Name, rejection)
	}
	return nil
}

// reject must be called with mu held.
func (uc *UploadUseCase) reject(message string) {
	uc.candidate = nil
	uc.state = entities.UploadIdle
	uc.outcome = &entities.UploadOutcome{Success: false, Message: message}
	uc.resultOpen = true
}

// Upload transmits the held candidate and blocks until the request settles.
// The returned outcome is also presented to observers. The only errors are
// precondition violations; transfer failures are outcomes.
func (uc *UploadUseCase) Upload(ctx context.Context) (*entities.UploadOutcome, error) {
	uc.mu.Lock()
	switch uc.state {
	case entities.UploadInFlight:
		uc.mu.Unlock()
		return nil, ErrUploadInFlight
	case entities.UploadIdle:
		uc.mu.Unlock()
		return nil, ErrNoCandidate
	}
	candidate := *uc.candidate
	uc.state = entities.UploadInFlight
	uc.progress = 0
	uc.attempt++
	attempt := uc.attempt
	uc.publishLocked()

	reply, err := uc.uploader.Upload(ctx, candidate, func(sent, total int64) {
		uc.reportProgress(attempt, sent, total)
	})
	outcome := buildOutcome(candidate, reply, err)

	uc.mu.Lock()
	uc.candidate = nil
	uc.progress = 0
	uc.state = entities.UploadIdle
	uc.outcome = &outcome
	uc.resultOpen = true
	uc.publishLocked()

	return &outcome, nil
}

// reportProgress converts byte counts to a percentage. Values only move forward
// within one attempt and late callbacks from a settled attempt are dropped.
func (uc *UploadUseCase) reportProgress(attempt uint64, sent, total int64) {
	if total <= 0 {
		return
	}
	pct := int(math.Round(float64(sent) / float64(total) * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	uc.mu.Lock()
	if uc.state != entities.UploadInFlight || uc.attempt != attempt || pct <= uc.progress {
		uc.mu.Unlock()
		return
	}
	uc.progress = pct
	uc.publishLocked()
}

// Dismiss clears the presented outcome. Safe to call repeatedly.
func (uc *UploadUseCase) Dismiss() {
	uc.mu.Lock()
	if uc.outcome == nil && !uc.resultOpen {
		uc.mu.Unlock()
		return
	}
	uc.outcome = nil
	uc.resultOpen = false
	uc.publishLocked()
}

// Snapshot returns the current render-side state.
func (uc *UploadUseCase) Snapshot() entities.UploadSnapshot {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.snapshotLocked()
}

func (uc *UploadUseCase) snapshotLocked() entities.UploadSnapshot {
	snap := entities.UploadSnapshot{
		State:      uc.state,
		Progress:   uc.progress,
		ResultOpen: uc.resultOpen,
	}
	if uc.candidate != nil {
		c := *uc.candidate
		snap.Candidate = &c
	}
	if uc.outcome != nil {
		o := *uc.outcome
		snap.Outcome = &o
	}
	return snap
}

// buildOutcome maps a settled transfer to the outcome shown to the user.
func buildOutcome(candidate entities.UploadCandidate, reply *entities.UploadReply, err error) entities.UploadOutcome {
	if err != nil {
		var statusErr *ports.StatusError
		switch {
		case errors.As(err, &statusErr):
			return entities.UploadOutcome{Message: fmt.Sprintf("Upload failed with status: %d", statusErr.Code)}
		case errors.Is(err, ports.ErrInvalidResponse):
			return entities.UploadOutcome{Message: MsgInvalidResponse}
		case errors.Is(err, ports.ErrNetwork):
			return entities.UploadOutcome{Message: MsgNetworkError}
		default:
			return entities.UploadOutcome{Message: MsgUploadFailed}
		}
	}
	if reply == nil {
		return entities.UploadOutcome{Message: MsgInvalidResponse}
	}

	message := reply.Message
	if message == "" {
		message = MsgUploadSucceeded
	}
	return entities.UploadOutcome{
		Success:               true,
		Message:               message,
		FileName:              candidate.Name,
		FileSizeBytes:         candidate.SizeBytes,
		VectorCount:           reply.VectorCount,
		ProcessingTimeSeconds: reply.ProcessingTime,
	}
}

// publishLocked must be called with mu held; it releases mu. Observers must not
// call back into the use case.
func (uc *UploadUseCase) publishLocked() {
	snap, observers := uc.snapshotLocked(), uc.observers
	uc.notifyMu.Lock()
	uc.mu.Unlock()
	defer uc.notifyMu.Unlock()
	notifyUpload(observers, snap)
}

func notifyUpload(observers []ports.UploadObserver, snap entities.UploadSnapshot) {
	for _, o := range observers {
		o.UploadChanged(snap)
	}
}
