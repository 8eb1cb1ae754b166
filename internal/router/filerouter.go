// Package router implements the two terminal C10 handlers: the file
// router (static document-root serving with conditional GET and
// directory listings) and the code router (exact-path dispatch table).
//
// Grounded on the teacher's filetransport package: file_handler.go's
// "clean the request path, then serveFile" shape (conditional evaluation
// here is a plain If-None-Match / If-Modified-Since check with early
// returns, not a tri-state result), adapted onto internal/urlutil's
// safe-resolution helpers since
// this repo owns its own path type rather than net/url.URL.
package router

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"html"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/forgehttp/forge/internal/chain"
	"github.com/forgehttp/forge/internal/message"
	"github.com/forgehttp/forge/internal/urlutil"
)

const httpDateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// FileRouter serves files from DocumentRoot (spec.md §4.14).
type FileRouter struct {
	DocumentRoot       string
	GenerateIndex      bool
	EnableETag         bool
	EnableLastModified bool
	DisableSymlinks    bool
}

func (f *FileRouter) Handle(info chain.ConnectionInfo, req *message.Request) *message.Response {
	if req.Method != "GET" {
		return message.NewResponse(405)
	}

	resolved, ok := urlutil.ResolveUnderRoot(f.DocumentRoot, req.Path, f.DisableSymlinks)
	if !ok {
		return message.NewResponse(400)
	}

	stat, err := os.Stat(resolved)
	if err != nil {
		return message.NewResponse(404)
	}

	if stat.IsDir() {
		indexPath := filepath.Join(resolved, "index.html")
		if indexStat, err := os.Stat(indexPath); err == nil && !indexStat.IsDir() {
			return f.serveFile(req, indexPath, indexStat)
		}
		if f.GenerateIndex {
			return f.serveFolder(req, resolved)
		}
		return message.NewResponse(404)
	}

	return f.serveFile(req, resolved, stat)
}

func (f *FileRouter) serveFile(req *message.Request, resolved string, stat os.FileInfo) *message.Response {
	var etag string
	if f.EnableETag {
		etag = weakETag(stat.Size(), stat.ModTime())
	}

	if etag != "" {
		if inm, ok := req.Headers.Get("If-None-Match"); ok && inm == etag {
			return notModified(etag, "")
		}
	}

	var lastModified string
	if f.EnableLastModified {
		lastModified = stat.ModTime().UTC().Truncate(time.Second).Format(httpDateFormat)
		if _, hasINM := req.Headers.Get("If-None-Match"); !hasINM {
			if ims, ok := req.Headers.Get("If-Modified-Since"); ok {
				if t, err := time.Parse(httpDateFormat, ims); err == nil &&
					!stat.ModTime().Truncate(time.Second).After(t) {
					return notModified(etag, lastModified)
				}
			}
		}
	}

	body, err := message.NewFileBody(resolved)
	if err != nil {
		return message.NewResponse(404)
	}

	resp := message.NewResponse(200)
	if etag != "" {
		resp.Headers.Set("ETag", etag)
	}
	if lastModified != "" {
		resp.Headers.Set("Last-Modified", lastModified)
	}
	resp.Headers.Set("Content-Type", contentTypeFor(resolved))
	resp.Body = body
	return resp
}

func notModified(etag, lastModified string) *message.Response {
	resp := message.NewResponse(304)
	if etag != "" {
		resp.Headers.Set("ETag", etag)
	}
	if lastModified != "" {
		resp.Headers.Set("Last-Modified", lastModified)
	}
	resp.Body = message.EmptyBody{}
	return resp
}

// weakETag computes the nginx-style weak validator W/"<size>-<mtime_ns>",
// base64-encoding each component per spec.md §4.14.
func weakETag(size int64, mtime time.Time) string {
	return fmt.Sprintf(`W/"%s-%s"`, b64Int(size), b64Int(mtime.UnixNano()))
}

func b64Int(v int64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	return base64.RawURLEncoding.EncodeToString(buf[:])
}

func contentTypeFor(resolved string) string {
	ext := filepath.Ext(resolved)
	ct := mime.TypeByExtension(ext)
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}

type listEntry struct {
	name    string
	kind    string // "Folder", "File", "Symlink"
	modTime time.Time
	size    int64
}

func (f *FileRouter) serveFolder(req *message.Request, resolved string) *message.Response {
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return message.NewResponse(500)
	}

	list := make([]listEntry, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		kind := "File"
		if e.IsDir() {
			kind = "Folder"
		} else if info.Mode()&fs.ModeSymlink != 0 {
			kind = "Symlink"
		}
		list = append(list, listEntry{name: e.Name(), kind: kind, modTime: info.ModTime(), size: info.Size()})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].name < list[j].name })

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><title>")
	b.WriteString(html.EscapeString(req.RawPath))
	b.WriteString("</title></head><body>\n<h1>")
	b.WriteString(html.EscapeString(req.RawPath))
	b.WriteString("</h1>\n<table>\n")

	if _, ok := urlutil.ParentWithinRoot(f.DocumentRoot, resolved); ok {
		b.WriteString(`<tr><td><a href="../">..</a></td><td>Folder</td><td></td><td></td></tr>` + "\n")
	}

	for _, e := range list {
		href := urlutil.EncodePath(e.name)
		if e.kind == "Folder" {
			href += "/"
		}
		b.WriteString("<tr><td><a href=\"")
		b.WriteString(html.EscapeString(href))
		b.WriteString("\">")
		b.WriteString(html.EscapeString(e.name))
		b.WriteString("</a></td><td>")
		b.WriteString(html.EscapeString(e.kind))
		b.WriteString("</td><td>")
		b.WriteString(html.EscapeString(e.modTime.UTC().Format(httpDateFormat)))
		b.WriteString("</td><td>")
		if e.kind == "File" {
			b.WriteString(strconv.FormatInt(e.size, 10))
		}
		b.WriteString("</td></tr>\n")
	}
	b.WriteString("</table>\n</body></html>\n")

	resp := message.NewResponse(200)
	resp.Headers.Set("Content-Type", "text/html; charset=utf-8")
	resp.Body = &message.BytesBody{Data: []byte(b.String())}
	return resp
}
