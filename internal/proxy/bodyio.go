package proxy

import (
	"bytes"
	"io"
)

// bodyReaderAdapter turns the request's already-buffered body bytes into
// an io.Reader the upstream client can consume.
type bodyReaderAdapter struct {
	*bytes.Reader
}

func newBodyReaderAdapter(data []byte) *bodyReaderAdapter {
	return &bodyReaderAdapter{Reader: bytes.NewReader(data)}
}

func readAllAndClose(r io.ReadCloser) ([]byte, error) {
	defer r.Close()
	return io.ReadAll(r)
}
