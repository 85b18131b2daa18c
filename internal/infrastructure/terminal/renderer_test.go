package terminal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/0xcro3dile/polit/internal/domain/entities"
)

func newTestRenderer() (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewRenderer(&buf, true), &buf
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestRenderer_PrintsOnlyNewMessages(t *testing.T) {
	r, buf := newTestRenderer()
	user := entities.ChatMessage{ID: "1", Text: "Hello", Sender: entities.SenderUser, Timestamp: time.Now()}
	bot := entities.ChatMessage{ID: "2", Text: "Hi there", Sender: entities.SenderBot, Timestamp: time.Now()}

	r.ChatChanged(entities.ChatSnapshot{Messages: []entities.ChatMessage{user}, Busy: true})
	r.ChatChanged(entities.ChatSnapshot{Messages: []entities.ChatMessage{user, bot}})

	want := "You: Hello\nBot is typing...\nBot: Hi there\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderer_MultilineMessage(t *testing.T) {
	r, buf := newTestRenderer()
	msg := entities.ChatMessage{ID: "1", Text: "first\nsecond", Sender: entities.SenderUser}

	r.ChatChanged(entities.ChatSnapshot{Messages: []entities.ChatMessage{msg}})

	if got := buf.String(); got != "You: first\n     second\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestRenderer_DraftChangesPrintNothing(t *testing.T) {
	r, buf := newTestRenderer()
	r.ChatChanged(entities.ChatSnapshot{Draft: "typing"})

	if buf.Len() != 0 {
		t.Errorf("draft updates should be silent, got %q", buf.String())
	}
}

func TestRenderer_UploadLifecycle(t *testing.T) {
	r, buf := newTestRenderer()
	candidate := &entities.UploadCandidate{SelectedFile: entities.SelectedFile{
		Name: "report.pdf", SizeBytes: 5_242_880, MimeType: entities.PDFMimeType, Pages: 12,
	}}

	r.UploadChanged(entities.UploadSnapshot{State: entities.UploadReady, Candidate: candidate})
	r.UploadChanged(entities.UploadSnapshot{State: entities.UploadInFlight, Candidate: candidate})
	for _, p := range []int{3, 7, 15, 55, 100} {
		r.UploadChanged(entities.UploadSnapshot{State: entities.UploadInFlight, Candidate: candidate, Progress: p})
	}
	r.UploadChanged(entities.UploadSnapshot{
		State:      entities.UploadIdle,
		ResultOpen: true,
		Outcome: &entities.UploadOutcome{
			Success:               true,
			Message:               "PDF uploaded and vectorized successfully!",
			FileName:              "report.pdf",
			FileSizeBytes:         5_242_880,
			VectorCount:           intPtr(42),
			ProcessingTimeSeconds: floatPtr(1.5),
		},
	})

	out := buf.String()
	for _, want := range []string{
		"Selected report.pdf (5.0 MiB, 12 pages)",
		"Uploading report.pdf...",
		"Upload progress: 0%",
		"Upload progress: 15%",
		"Upload progress: 55%",
		"Upload progress: 100%",
		"Upload Successful: PDF uploaded and vectorized successfully!",
		"File name: report.pdf",
		"File size: 5.00MB",
		"Vectors created: 42",
		"Processing time: 1.50s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// 3% and 7% share a decile with 0%.
	if strings.Contains(out, "Upload progress: 3%") || strings.Contains(out, "Upload progress: 7%") {
		t.Errorf("progress should be throttled per decile:\n%s", out)
	}
}

func TestRenderer_FailureOmitsDetails(t *testing.T) {
	r, buf := newTestRenderer()
	r.UploadChanged(entities.UploadSnapshot{
		State:      entities.UploadIdle,
		ResultOpen: true,
		Outcome:    &entities.UploadOutcome{Message: "Upload failed with status: 500"},
	})

	out := buf.String()
	if !strings.Contains(out, "Upload Failed: Upload failed with status: 500") {
		t.Errorf("missing failure line:\n%s", out)
	}
	if strings.Contains(out, "File size") || strings.Contains(out, "Vectors") {
		t.Errorf("failure should not show file details:\n%s", out)
	}
}

func TestRenderer_RepeatedRejectionsEachShown(t *testing.T) {
	r, buf := newTestRenderer()
	snap := entities.UploadSnapshot{
		State:      entities.UploadIdle,
		ResultOpen: true,
		Outcome:    &entities.UploadOutcome{Message: "Please upload a PDF file."},
	}

	r.UploadChanged(snap)
	r.UploadChanged(snap)

	if n := strings.Count(buf.String(), "Please upload a PDF file."); n != 2 {
		t.Errorf("expected both rejections shown, got %d", n)
	}
}

func TestRenderer_DismissIsSilent(t *testing.T) {
	r, buf := newTestRenderer()
	r.UploadChanged(entities.UploadSnapshot{State: entities.UploadIdle})

	if buf.Len() != 0 {
		t.Errorf("dismiss should print nothing, got %q", buf.String())
	}
}

func TestRenderer_Navigation(t *testing.T) {
	r, buf := newTestRenderer()

	r.NavigationChanged(entities.ViewChat, true)
	r.NavigationChanged(entities.ViewUpload, false)
	r.NavigationChanged(entities.ViewChat, false)

	out := buf.String()
	for _, want := range []string{"Menu: [1] Upload PDF", "== Upload PDF ==", "up to 10 MiB", "== Chat =="} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderer_NotInteractiveForBuffers(t *testing.T) {
	r, _ := newTestRenderer()
	if r.interactive {
		t.Error("a buffer is not a terminal")
	}
}
