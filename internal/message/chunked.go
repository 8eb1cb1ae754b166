package message

import (
	"fmt"
	"io"
)

// chunkedWriter emits the chunked transfer-coding framing spec.md §4.3
// defines: each chunk as "<hex-length>\r\n<bytes>\r\n", terminated by
// "0\r\n\r\n". Grounded on the teacher's chunk_writer.go Write/close pair.
type chunkedWriter struct {
	w      io.Writer
	closed bool
}

func (cw *chunkedWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if _, err := fmt.Fprintf(cw.w, "%x\r\n", len(p)); err != nil {
		return 0, err
	}
	n, err := cw.w.Write(p)
	if err != nil {
		return n, err
	}
	if _, err := cw.w.Write(crlf); err != nil {
		return n, err
	}
	return n, nil
}

func (cw *chunkedWriter) Close() error {
	if cw.closed {
		return nil
	}
	cw.closed = true
	_, err := cw.w.Write(finalChunk)
	return err
}

var (
	crlf       = []byte("\r\n")
	finalChunk = []byte("0\r\n\r\n")
)
