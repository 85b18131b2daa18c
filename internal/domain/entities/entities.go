// Package entities contains core business entities.
// These are plain session-scoped values with no knowledge of transport or rendering.
package entities

import "time"

// MaxUploadBytes is the largest file accepted for upload (10 MiB).
const MaxUploadBytes int64 = 10 << 20

// PDFMimeType is the only MIME type eligible for upload.
const PDFMimeType = "application/pdf"

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatMessage is one entry of the conversation log.
// Immutable once created; the log only ever grows.
type ChatMessage struct {
	ID        string
	Text      string
	Sender    Sender
	Timestamp time.Time
}

// ChatSnapshot is the render-side view of the chat flow.
type ChatSnapshot struct {
	Messages []ChatMessage
	Draft    string
	Busy     bool
}

// SelectedFile is what a drop or the file picker hands to the upload flow.
type SelectedFile struct {
	Path      string
	Name      string
	SizeBytes int64
	MimeType  string
	Pages     int // 0 when unknown
}

// IsPDF reports whether the file carries the PDF MIME type.
func (f SelectedFile) IsPDF() bool {
	return f.MimeType == PDFMimeType
}

// ExceedsLimit reports whether the file is over MaxUploadBytes.
func (f SelectedFile) ExceedsLimit() bool {
	return f.SizeBytes > MaxUploadBytes
}

// UploadCandidate is a validated file waiting to be transmitted.
type UploadCandidate struct {
	SelectedFile
}

// UploadReply is the decoded success body of the upload endpoint.
type UploadReply struct {
	Message        string   `json:"message,omitempty"`
	VectorCount    *int     `json:"vectorCount,omitempty"`
	ProcessingTime *float64 `json:"processingTime,omitempty"`
}

// UploadOutcome is the terminal result of one upload attempt or rejected selection.
type UploadOutcome struct {
	Success               bool
	Message               string
	FileName              string
	FileSizeBytes         int64
	VectorCount           *int
	ProcessingTimeSeconds *float64
}

// UploadState is the upload flow's position in its state machine.
type UploadState int

const (
	UploadIdle UploadState = iota
	UploadReady
	UploadInFlight
)

func (s UploadState) String() string {
	switch s {
	case UploadIdle:
		return "idle"
	case UploadReady:
		return "ready"
	case UploadInFlight:
		return "in-flight"
	default:
		return "unknown"
	}
}

// UploadSnapshot is the render-side view of the upload flow.
type UploadSnapshot struct {
	State      UploadState
	Candidate  *UploadCandidate
	Progress   int
	Outcome    *UploadOutcome
	ResultOpen bool
}

// QueryReply is the decoded body of the query endpoint.
// Response is nil when the server omitted the field.
type QueryReply struct {
	Response *string `json:"response,omitempty"`
}

// View is a top-level screen reachable from the header.
type View string

const (
	ViewChat   View = "chat"
	ViewUpload View = "upload"
)

// MenuItem is an entry of the header dropdown.
type MenuItem string

const (
	MenuUploadPDF MenuItem = "upload-pdf"
	MenuSettings  MenuItem = "settings"
	MenuHelp      MenuItem = "help"
)

// Key is a key of interest to the chat composer.
type Key int

const (
	KeyOther Key = iota
	KeyEnter
)

// KeyEvent is a key press on the chat input.
type KeyEvent struct {
	Key   Key
	Shift bool
}
