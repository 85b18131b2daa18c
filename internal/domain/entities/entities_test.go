package entities

import "testing"

func TestSelectedFile_IsPDF(t *testing.T) {
	pdf := SelectedFile{Name: "report.pdf", MimeType: "application/pdf"}
	txt := SelectedFile{Name: "notes.txt", MimeType: "text/plain"}

	if !pdf.IsPDF() {
		t.Error("expected application/pdf to be a PDF")
	}
	if txt.IsPDF() {
		t.Error("text/plain should not be a PDF")
	}
}

func TestSelectedFile_ExceedsLimit(t *testing.T) {
	cases := []struct {
		size int64
		want bool
	}{
		{0, false},
		{5 * 1024 * 1024, false},
		{MaxUploadBytes, false},
		{MaxUploadBytes + 1, true},
		{12 * 1024 * 1024, true},
	}
	for _, c := range cases {
		f := SelectedFile{SizeBytes: c.size}
		if got := f.ExceedsLimit(); got != c.want {
			t.Errorf("size %d: expected %v, got %v", c.size, c.want, got)
		}
	}
}

func TestMaxUploadBytes(t *testing.T) {
	if MaxUploadBytes != 10_485_760 {
		t.Errorf("expected 10485760, got %d", MaxUploadBytes)
	}
}

func TestUploadState_String(t *testing.T) {
	if UploadIdle.String() != "idle" || UploadReady.String() != "ready" || UploadInFlight.String() != "in-flight" {
		t.Error("state names not set correctly")
	}
	if UploadState(42).String() != "unknown" {
		t.Error("out of range state should be unknown")
	}
}
