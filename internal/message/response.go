package message

import "github.com/forgehttp/forge/internal/header"

// Response is the mutable record a handler chain produces and the response
// writer serializes (spec.md §3).
type Response struct {
	StatusCode int
	Headers    *header.Map
	Body       Body
}

// NewResponse builds a Response with an initialized, empty header map and
// no body.
func NewResponse(statusCode int) *Response {
	return &Response{StatusCode: statusCode, Headers: header.New()}
}

// reasonPhrases is the canonical reason-phrase lookup table spec.md §3
// requires ("canonical reason phrase derived by table lookup").
var reasonPhrases = map[int]string{
	100: "Continue",
	101: "Switching Protocols",
	200: "OK",
	201: "Created",
	202: "Accepted",
	204: "No Content",
	206: "Partial Content",
	300: "Multiple Choices",
	301: "Moved Permanently",
	302: "Found",
	303: "See Other",
	304: "Not Modified",
	307: "Temporary Redirect",
	308: "Permanent Redirect",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	406: "Not Acceptable",
	408: "Request Timeout",
	409: "Conflict",
	410: "Gone",
	411: "Length Required",
	412: "Precondition Failed",
	413: "Payload Too Large",
	414: "URI Too Long",
	415: "Unsupported Media Type",
	426: "Upgrade Required",
	429: "Too Many Requests",
	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
}

// ReasonPhrase returns the canonical reason phrase for code, or "Unknown"
// when unrecognized.
func ReasonPhrase(code int) string {
	if p, ok := reasonPhrases[code]; ok {
		return p
	}
	return "Unknown"
}
