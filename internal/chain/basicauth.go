package chain

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/forgehttp/forge/internal/message"
)

// BasicAuth gates Next behind RFC 7617 Basic authentication (spec.md
// §4.13): the Authorization header must carry scheme Basic, decode as
// "username:password", and match an entry in Credentials, compared with
// constant-time equality to avoid a timing oracle on the password.
type BasicAuth struct {
	Next        Handler
	Realm       string
	Credentials map[string]string // username -> password
}

func (s *BasicAuth) Handle(info ConnectionInfo, req *message.Request) *message.Response {
	if s.authorized(req) {
		return s.Next.Handle(info, req)
	}
	return s.challenge()
}

func (s *BasicAuth) authorized(req *message.Request) bool {
	auth, ok := req.Headers.Get("Authorization")
	if !ok {
		return false
	}
	scheme, payload, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Basic") {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return false
	}
	user, pass, found := strings.Cut(string(decoded), ":")
	if !found {
		return false
	}
	wantPass, ok := s.Credentials[user]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass)) == 1
}

func (s *BasicAuth) challenge() *message.Response {
	realm := s.Realm
	if realm == "" {
		realm = "auth"
	}
	resp := message.NewResponse(401)
	resp.Headers.Set("WWW-Authenticate", `Basic realm="`+realm+`", charset="UTF-8"`)
	resp.Headers.Set("Cache-Control", "no-store")
	resp.Headers.Set("Pragma", "no-cache")
	resp.Body = message.EmptyBody{}
	return resp
}
