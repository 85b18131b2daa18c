package uploader

import (
	"io"

	"github.com/0xcro3dile/polit/internal/domain/ports"
)

// progressReader reports cumulative bytes handed to the transport.
type progressReader struct {
	r        io.Reader
	sent     int64
	total    int64
	progress ports.ProgressFunc
}

func newProgressReader(r io.Reader, total int64, progress ports.ProgressFunc) io.Reader {
	if progress == nil {
		return r
	}
	return &progressReader{r: r, total: total, progress: progress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.progress(p.sent, p.total)
	}
	return n, err
}
