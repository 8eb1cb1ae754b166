package compress

import (
	"bytes"

	"github.com/forgehttp/forge/internal/message"
)

// Apply compresses body under coding, where possible. Only Bytes and File
// bodies are eligible: a File body is read whole into memory and swapped
// for Bytes, matching the candidate's buffer to the now-compressed bytes
// (spec.md §4.8). Any other body variant is returned unchanged, with
// applied=false telling the caller not to set Content-Encoding.
func Apply(body message.Body, coding Coding) (out message.Body, applied bool, err error) {
	switch b := body.(type) {
	case *message.BytesBody:
		compressed, err := compressBytes(b.Data, coding)
		if err != nil {
			return body, false, err
		}
		return compressed, true, nil
	case *message.FileBody:
		loaded, err := b.Reload()
		if err != nil {
			return body, false, err
		}
		compressed, err := compressBytes(loaded.Data, coding)
		if err != nil {
			return body, false, err
		}
		return compressed, true, nil
	default:
		return body, false, nil
	}
}

func compressBytes(data []byte, coding Coding) (*message.BytesBody, error) {
	var buf bytes.Buffer
	enc, err := NewEncoder(coding, &buf)
	if err != nil {
		return nil, err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return &message.BytesBody{Data: buf.Bytes()}, nil
}
