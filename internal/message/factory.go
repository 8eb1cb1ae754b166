package message

import (
	"encoding/json"
	"html"

	"github.com/forgehttp/forge/internal/header"
)

// Factory builds responses with default headers pre-injected (C7,
// spec.md §2). defaults is unioned left-biased onto every constructed
// response so callers' explicit headers always win.
type Factory struct {
	Defaults *header.Map
}

func NewFactory(defaults *header.Map) *Factory {
	if defaults == nil {
		defaults = header.New()
	}
	return &Factory{Defaults: defaults}
}

func (f *Factory) apply(resp *Response) *Response {
	resp.Headers = resp.Headers.UnionLeftBiased(f.Defaults)
	return resp
}

// Status returns a bare response with the given status code and no body.
func (f *Factory) Status(code int) *Response {
	return f.apply(NewResponse(code))
}

// JSON marshals v and returns a 200 application/json response.
func (f *Factory) JSON(v any) (*Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	resp := NewResponse(200)
	resp.Headers.Set("Content-Type", "application/json; charset=utf-8")
	resp.Body = &BytesBody{Data: data}
	return f.apply(resp), nil
}

// HTML returns a 200 text/html response from a raw (already-escaped-by-the-
// caller-if-needed) HTML body.
func (f *Factory) HTML(code int, body string) *Response {
	resp := NewResponse(code)
	resp.Headers.Set("Content-Type", "text/html; charset=utf-8")
	resp.Body = &BytesBody{Data: []byte(body)}
	return f.apply(resp)
}

// PlainError builds a minimal escaped-text error body for a given status
// code, used by the worker loop's HandlerException fallback (spec.md §7).
func (f *Factory) PlainError(code int, message string) *Response {
	body := "<html><body><h1>" + html.EscapeString(ReasonPhrase(code)) + "</h1><p>" +
		html.EscapeString(message) + "</p></body></html>"
	return f.HTML(code, body)
}

// Redirect returns a response with the given status code and Location
// header (spec.md §2 "redirect" convenience constructor).
func (f *Factory) Redirect(code int, location string) *Response {
	resp := NewResponse(code)
	resp.Headers.Set("Location", location)
	return f.apply(resp)
}
