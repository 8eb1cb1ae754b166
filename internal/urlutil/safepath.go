package urlutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveUnderRoot resolves requestPath (a decoded, absolute web path) onto
// documentRoot and verifies, after symlink evaluation, that the result is a
// descendant of the resolved root (spec.md §4.14, invariant in §3: "File
// paths served by the file-router resolve, after symlink evaluation,
// strictly inside the configured document root").
//
// When disableSymlinks is true, any difference between the resolved and
// unresolved candidate is itself refused, matching spec.md §4.14 step 3.
func ResolveUnderRoot(documentRoot, requestPath string, disableSymlinks bool) (resolved string, ok bool) {
	clean := filepath.Clean("/" + requestPath)
	candidate := filepath.Join(documentRoot, strings.TrimPrefix(clean, "/"))

	rootResolved, err := filepath.EvalSymlinks(documentRoot)
	if err != nil {
		return "", false
	}

	target, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		if os.IsNotExist(err) {
			// Not-yet-resolvable (e.g. the leaf doesn't exist): fall back to
			// the lexical candidate so a 404 can be produced downstream
			// instead of a false 400.
			target = candidate
		} else {
			return "", false
		}
	}

	if disableSymlinks && target != candidate {
		return "", false
	}

	rel, err := filepath.Rel(rootResolved, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}

// ParentWithinRoot returns the parent directory of p, and whether that
// parent still resolves inside documentRoot -- used by the folder index to
// decide whether to emit a ".." link (spec.md §4.14).
func ParentWithinRoot(documentRoot, p string) (parent string, ok bool) {
	parent = filepath.Dir(p)
	rootResolved, err := filepath.EvalSymlinks(documentRoot)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(rootResolved, parent)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return parent, true
}
