package message

import (
	"bufio"
	"fmt"
	"io"
)

// Flusher is implemented by destinations (netx.Conn) that support the
// post-write flush spec.md §4.3 requires ("after writing, the writer
// flushes the socket once to minimize TTFB").
type Flusher interface {
	Flush()
}

// Corker is implemented by destinations (netx.Conn) that support holding
// outgoing data at the kernel level so the status line, headers and first
// body chunk coalesce into as few on-wire segments as possible, per
// spec.md §4.1. Write corks before the status line and uncorks once the
// body has been handed to the destination, releasing everything onto the
// wire in one go.
type Corker interface {
	Cork()
	Uncork()
}

// Write serializes resp onto w: status line, headers, blank line, body.
// Write calls the body's ContributeHeaders itself before the status line,
// so Content-Length / Transfer-Encoding reflect the final body. A response
// with no body attached (nil) gets Content-Length: 0 unless it already
// carries Content-Length or Transfer-Encoding.
//
// Grounded on the teacher's response_server.go header-then-body ordering
// and chunk_writer.go's single trailing flush.
func Write(w io.Writer, version string, resp *Response, isHead bool) error {
	if c, ok := w.(Corker); ok {
		c.Cork()
		defer c.Uncork()
	}

	bw := bufio.NewWriter(w)

	body := resp.Body
	if body == nil {
		body = EmptyBody{}
	}
	body.ContributeHeaders(resp.Headers)
	if resp.Body == nil && !resp.Headers.Has("Content-Length") && !resp.Headers.Has("Transfer-Encoding") {
		resp.Headers.Set("Content-Length", "0")
	}

	if _, err := fmt.Fprintf(bw, "%s %d %s\r\n", version, resp.StatusCode, ReasonPhrase(resp.StatusCode)); err != nil {
		return err
	}
	var headerErr error
	resp.Headers.Each(func(name, value string) {
		if headerErr != nil {
			return
		}
		_, headerErr = fmt.Fprintf(bw, "%s: %s\r\n", name, value)
	})
	if headerErr != nil {
		return headerErr
	}
	if _, err := bw.Write(crlf); err != nil {
		return err
	}
	// Flush the status line and headers before handing the body writer the
	// raw destination: FileBody's zero-copy sendfile path only triggers
	// against the real socket, not a *bufio.Writer wrapping it.
	if err := bw.Flush(); err != nil {
		return err
	}

	if err := body.WriteTo(w, isHead); err != nil {
		return err
	}
	if f, ok := w.(Flusher); ok {
		f.Flush()
	}
	return nil
}
