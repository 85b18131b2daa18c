package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/0xcro3dile/polit/internal/domain/entities"
)

// Renderer draws state changes to a line-oriented terminal.
// It implements ports.ChatObserver, ports.UploadObserver and ports.NavigationObserver,
// so everything it prints is a consequence of a state change.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer
	// interactive redraws the progress line in place; otherwise each step is a new line.
	interactive bool

	shown        int // chat messages already printed
	busy         bool
	last         entities.UploadSnapshot
	progressLine bool
	lastDecile   int
	view         entities.View

	user, bot, accent, ok, fail, dim *color.Color
}

// NewRenderer writes to out. Colors and in-place redraws are only used when out
// is a terminal and noColor is false.
func NewRenderer(out io.Writer, noColor bool) *Renderer {
	interactive := false
	if f, ok := out.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	r := &Renderer{
		out:         out,
		interactive: interactive,
		view:        entities.ViewChat,
		user:        color.New(color.FgGreen, color.Bold),
		bot:         color.New(color.FgCyan, color.Bold),
		accent:      color.New(color.FgMagenta, color.Bold),
		ok:          color.New(color.FgGreen),
		fail:        color.New(color.FgRed),
		dim:         color.New(color.Faint),
	}
	if noColor || !interactive {
		for _, c := range []*color.Color{r.user, r.bot, r.accent, r.ok, r.fail, r.dim} {
			c.DisableColor()
		}
	}
	return r
}

// Banner prints the start-up header.
func (r *Renderer) Banner(uploadURL, queryURL, dropDir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.println(r.accent.Sprint("polit") + " - chat with your documents")
	r.println(r.dim.Sprintf("query: %s  upload: %s", queryURL, uploadURL))
	if dropDir != "" {
		r.println(r.dim.Sprintf("drop folder: %s", dropDir))
	}
	r.println(r.dim.Sprint("Type a message and press Enter. End a line with \\ to continue it. :help lists commands."))
}

// Notice prints an informational line.
func (r *Renderer) Notice(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.println(r.dim.Sprintf(format, args...))
}

// Error prints a problem the user should know about.
func (r *Renderer) Error(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.println(r.fail.Sprintf(format, args...))
}

// Help prints the command list.
func (r *Renderer) Help() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range helpLines {
		r.println(line)
	}
}

var helpLines = []string{
	"Commands:",
	"  :menu            open or close the menu (then 1, 2 or 3 to choose)",
	"  :go upload|chat  switch view",
	"  :new             new chat",
	"  :pick <path>     select a PDF for upload",
	"  :upload          upload the selected PDF",
	"  :close           close the result or the menu",
	"  :settings        settings",
	"  :help            this list",
	"  :quit            exit",
}

func (r *Renderer) ChatChanged(snap entities.ChatSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, msg := range snap.Messages[min(r.shown, len(snap.Messages)):] {
		r.printMessage(msg)
	}
	r.shown = max(r.shown, len(snap.Messages))

	if snap.Busy && !r.busy {
		r.println(r.dim.Sprint("Bot is typing..."))
	}
	r.busy = snap.Busy
}

func (r *Renderer) printMessage(msg entities.ChatMessage) {
	label := r.user.Sprint("You: ")
	if msg.Sender == entities.SenderBot {
		label = r.bot.Sprint("Bot: ")
	}
	lines := strings.Split(msg.Text, "\n")
	r.println(label + lines[0])
	for _, line := range lines[1:] {
		r.println("     " + line)
	}
}

func (r *Renderer) UploadChanged(snap entities.UploadSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	last := r.last
	r.last = snap

	switch snap.State {
	case entities.UploadReady:
		if snap.Candidate == nil {
			return
		}
		if last.State == entities.UploadReady && last.Candidate != nil && *last.Candidate == *snap.Candidate {
			return
		}
		r.println(fmt.Sprintf("Selected %s", r.describe(snap.Candidate.SelectedFile)))
		r.println(r.dim.Sprint("Type :upload to send it."))

	case entities.UploadInFlight:
		if last.State != entities.UploadInFlight {
			name := ""
			if snap.Candidate != nil {
				name = snap.Candidate.Name
			}
			r.println(fmt.Sprintf("Uploading %s...", name))
			r.lastDecile = -1
		}
		r.printProgress(snap.Progress)

	case entities.UploadIdle:
		// Every Idle notification with the result open carries a fresh outcome.
		if snap.ResultOpen && snap.Outcome != nil {
			r.endProgress()
			r.printOutcome(*snap.Outcome)
		}
	}
}

func (r *Renderer) describe(f entities.SelectedFile) string {
	desc := fmt.Sprintf("%s (%s", f.Name, humanize.IBytes(uint64(f.SizeBytes)))
	if f.Pages > 0 {
		desc += fmt.Sprintf(", %d pages", f.Pages)
	}
	return desc + ")"
}

func (r *Renderer) printProgress(pct int) {
	if r.interactive {
		const width = 30
		filled := pct * width / 100
		bar := strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
		fmt.Fprintf(r.out, "\r[%s] %3d%%", bar, pct)
		r.progressLine = true
		return
	}
	// Non-terminal output gets one line per ten percent.
	decile := pct / 10
	if decile == r.lastDecile {
		return
	}
	r.lastDecile = decile
	r.println(fmt.Sprintf("Upload progress: %d%%", pct))
}

func (r *Renderer) endProgress() {
	if r.progressLine {
		fmt.Fprintln(r.out)
		r.progressLine = false
	}
}

func (r *Renderer) printOutcome(o entities.UploadOutcome) {
	if !o.Success {
		r.println(r.fail.Sprint("Upload Failed: ") + o.Message)
		r.println(r.dim.Sprint("Type :close to dismiss."))
		return
	}

	r.println(r.ok.Sprint("Upload Successful: ") + o.Message)
	r.println(fmt.Sprintf("  File name: %s", o.FileName))
	r.println(fmt.Sprintf("  File size: %.2fMB", float64(o.FileSizeBytes)/1024/1024))
	if o.VectorCount != nil {
		r.println(fmt.Sprintf("  Vectors created: %d", *o.VectorCount))
	}
	if o.ProcessingTimeSeconds != nil {
		r.println(fmt.Sprintf("  Processing time: %.2fs", *o.ProcessingTimeSeconds))
	}
	r.println(r.dim.Sprint("Type :close to dismiss."))
}

func (r *Renderer) NavigationChanged(view entities.View, menuOpen bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if view != r.view {
		r.view = view
		switch view {
		case entities.ViewUpload:
			r.println(r.accent.Sprint("== Upload PDF =="))
			r.println(r.dim.Sprintf("PDF only, up to %s. Use :pick <path> or drop a file into the drop folder.",
				humanize.IBytes(uint64(entities.MaxUploadBytes))))
		default:
			r.println(r.accent.Sprint("== Chat =="))
		}
	}
	if menuOpen {
		r.println("Menu: [1] Upload PDF  [2] Settings  [3] Help")
	}
}

// println must be called with mu held.
func (r *Renderer) println(s string) {
	r.endProgress()
	fmt.Fprintln(r.out, s)
}
