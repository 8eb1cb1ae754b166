package compress

import "strings"

// Registry holds the server's compression policy: which codings are
// offered, and which response bodies qualify (spec.md §4.8 skip rules).
type Registry struct {
	Available    []Coding
	MinBytes     int64
	MaxBytes     int64
	SkipTypes    []string // content-type prefixes never compressed (e.g. "image/", "video/")
}

// DefaultRegistry mirrors the defaults named in spec.md §4.8: a 50-byte
// floor and a 10 MiB ceiling, with every codec this package implements
// offered.
func DefaultRegistry() *Registry {
	return &Registry{
		Available: []Coding{Brotli, Zstd, Gzip, XGzip, Deflate},
		MinBytes:  50,
		MaxBytes:  10 << 20,
	}
}

// Qualifies reports whether a response body of the given size and
// Content-Type should be considered for compression at all, independent of
// what the client's Accept-Encoding allows.
func (reg *Registry) Qualifies(size int64, contentType string) bool {
	if size >= 0 && size < reg.MinBytes {
		return false
	}
	if reg.MaxBytes > 0 && size > reg.MaxBytes {
		return false
	}
	ct := strings.ToLower(contentType)
	for _, skip := range reg.SkipTypes {
		if strings.HasPrefix(ct, skip) {
			return false
		}
	}
	return true
}
