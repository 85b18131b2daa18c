// Package uploader provides the PDF upload adapter.
// Adapter implementing ports.Uploader with a streamed multipart body.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/0xcro3dile/polit/internal/domain/entities"
	"github.com/0xcro3dile/polit/internal/domain/ports"
	"github.com/0xcro3dile/polit/internal/logging"
)

// DefaultURL is the upload endpoint used when none is configured.
const DefaultURL = "http://localhost:8000/upload-pdf"

// FormField is the multipart field carrying the file.
const FormField = "file"

// HTTPUploader implements ports.Uploader against a fixed upload endpoint.
type HTTPUploader struct {
	url    string
	client *http.Client
	logger *logging.Logger
}

// NewHTTPUploader creates an uploader. A nil httpClient means a client with no timeout.
func NewHTTPUploader(url string, httpClient *http.Client, logger *logging.Logger) *HTTPUploader {
	if url == "" {
		url = DefaultURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &HTTPUploader{
		url:    url,
		client: httpClient,
		logger: logger,
	}
}

// Upload streams the candidate and decodes the reply.
// Errors wrap ports.ErrNetwork, ports.ErrInvalidResponse or are a *ports.StatusError.
// A file whose size differs from the selection fails with ports.ErrFileChanged
// before any request is sent.
func (u *HTTPUploader) Upload(ctx context.Context, candidate entities.UploadCandidate, progress ports.ProgressFunc) (*entities.UploadReply, error) {
	file, err := os.Open(candidate.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", candidate.Name, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", candidate.Name, err)
	}
	if info.Size() != candidate.SizeBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, selected at %d",
			ports.ErrFileChanged, candidate.Name, info.Size(), candidate.SizeBytes)
	}

	body, contentType, total, err := multipartBody(file, info.Size(), candidate.Name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, newProgressReader(body, total, progress))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)

	u.logger.Info("upload started", "file", candidate.Name, "size", humanize.IBytes(uint64(info.Size())), "url", u.url)

	resp, err := u.client.Do(req)
	if err != nil {
		u.logger.Warn("upload transport failed", "file", candidate.Name, "error", err)
		return nil, fmt.Errorf("%w: %w", ports.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		u.logger.Warn("upload rejected", "file", candidate.Name, "status", resp.StatusCode)
		return nil, &ports.StatusError{Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ports.ErrNetwork, err)
	}

	reply, err := decodeReply(raw)
	if err != nil {
		u.logger.Warn("upload reply did not decode", "file", candidate.Name, "error", err)
		return nil, err
	}

	u.logger.Info("upload finished", "file", candidate.Name, "status", resp.StatusCode)
	return reply, nil
}

// decodeReply accepts any parseable JSON body except null. Optional fields are
// taken from an object only when their types fit; other bodies yield an empty reply.
func decodeReply(raw []byte) (*entities.UploadReply, error) {
	var v any
	if err := json.Unmarshal(bytes.TrimSpace(raw), &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrInvalidResponse, err)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: body is null", ports.ErrInvalidResponse)
	}

	reply := &entities.UploadReply{}
	fields, ok := v.(map[string]any)
	if !ok {
		return reply, nil
	}
	if msg, ok := fields["message"].(string); ok {
		reply.Message = msg
	}
	if n, ok := fields["vectorCount"].(float64); ok && n == math.Trunc(n) {
		count := int(n)
		reply.VectorCount = &count
	}
	if secs, ok := fields["processingTime"].(float64); ok {
		reply.ProcessingTime = &secs
	}
	return reply, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody frames file as a single-part form without buffering its content,
// so the exact length is known before the first byte is sent.
func multipartBody(file io.Reader, size int64, name string) (io.Reader, string, int64, error) {
	var framing bytes.Buffer
	mw := multipart.NewWriter(&framing)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FormField, quoteEscaper.Replace(name)))
	header.Set("Content-Type", entities.PDFMimeType)
	if _, err := mw.CreatePart(header); err != nil {
		return nil, "", 0, fmt.Errorf("framing multipart body: %w", err)
	}
	headLen := framing.Len()
	if err := mw.Close(); err != nil {
		return nil, "", 0, fmt.Errorf("framing multipart body: %w", err)
	}

	framed := framing.Bytes()
	head, tail := framed[:headLen], framed[headLen:]
	body := io.MultiReader(bytes.NewReader(head), io.LimitReader(file, size), bytes.NewReader(tail))
	total := int64(len(head)) + size + int64(len(tail))

	return body, mw.FormDataContentType(), total, nil
}
