package message

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestWriteBytesBody(t *testing.T) {
	resp := NewResponse(200)
	resp.Headers.Set("Content-Type", "text/plain")
	resp.Body = &BytesBody{Data: []byte("hi")}

	var buf bytes.Buffer
	if err := Write(&buf, "HTTP/1.1", resp, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("status line wrong: %q", out)
	}
	if !strings.Contains(out, "Content-Length: 2\r\n") {
		t.Errorf("missing Content-Length: %q", out)
	}
	if strings.Contains(out, "Transfer-Encoding") {
		t.Errorf("Bytes body must not carry Transfer-Encoding (invariant 2, spec.md §8): %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\nhi") {
		t.Errorf("body not at end: %q", out)
	}
}

func TestWriteStreamBodyChunked(t *testing.T) {
	resp := NewResponse(200)
	resp.Body = NewStreamBody(io.NopCloser(strings.NewReader("hello world")))
	resp.Body.(*StreamBody).ChunkSize = 4

	var buf bytes.Buffer
	if err := Write(&buf, "HTTP/1.1", resp, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Transfer-Encoding: chunked\r\n") {
		t.Errorf("missing Transfer-Encoding: %q", out)
	}
	if strings.Contains(out, "Content-Length") {
		t.Errorf("Stream body must not carry Content-Length (invariant 3, spec.md §8): %q", out)
	}
	if !strings.HasSuffix(out, "0\r\n\r\n") {
		t.Errorf("missing final chunk terminator: %q", out)
	}

	// decode the chunked body back out and verify round trip.
	idx := strings.Index(out, "\r\n\r\n")
	body := out[idx+4:]
	r := bufio.NewReader(strings.NewReader(body))
	var decoded []byte
	for {
		sizeLine, err := r.ReadString('\n')
		if err != nil {
			t.Fatal(err)
		}
		sizeLine = strings.TrimSpace(sizeLine)
		if sizeLine == "0" {
			break
		}
		var n int
		if _, err := fscanHex(sizeLine, &n); err != nil {
			t.Fatal(err)
		}
		chunk := make([]byte, n)
		if _, err := io.ReadFull(r, chunk); err != nil {
			t.Fatal(err)
		}
		decoded = append(decoded, chunk...)
		r.Discard(2) // trailing CRLF
	}
	if string(decoded) != "hello world" {
		t.Errorf("decoded chunked body = %q, want \"hello world\"", decoded)
	}
}

func TestWriteHeadSuppressesBody(t *testing.T) {
	resp := NewResponse(200)
	resp.Body = &BytesBody{Data: []byte("hello")}

	var buf bytes.Buffer
	if err := Write(&buf, "HTTP/1.1", resp, true); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.HasSuffix(out, "hello") {
		t.Errorf("HEAD response must not include body bytes: %q", out)
	}
}

func TestWriteEmptyBodyNoContentLength(t *testing.T) {
	resp := NewResponse(204)
	resp.Body = EmptyBody{}
	var buf bytes.Buffer
	if err := Write(&buf, "HTTP/1.1", resp, false); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "Content-Length") {
		t.Errorf("Empty body must not carry Content-Length: %q", buf.String())
	}
}

func fscanHex(s string, n *int) (int, error) {
	v := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'f':
			d = int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = int(c-'A') + 10
		default:
			continue
		}
		v = v*16 + d
	}
	*n = v
	return v, nil
}
