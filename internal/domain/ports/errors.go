package ports

import (
	"errors"
	"fmt"
)

// Upload transport failures. Adapters wrap causes with these so usecases can map
// them to outcomes without knowing about HTTP.
var (
	// ErrNetwork means no response arrived.
	ErrNetwork = errors.New("network error")
	// ErrInvalidResponse means a 200 arrived with a body that is not JSON, or is null.
	ErrInvalidResponse = errors.New("invalid response format")
	// ErrFileChanged means the file on disk no longer matches the selected size.
	ErrFileChanged = errors.New("file changed since selection")
)

// StatusError reports a non-200 reply from the upload endpoint.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}
