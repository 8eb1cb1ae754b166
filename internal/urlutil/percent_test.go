package urlutil

import "testing"

func TestPercentRoundTrip(t *testing.T) {
	cases := []string{
		"/hello.txt",
		"/a b/c",
		"/日本語.txt",
		"/100%done",
		"/a/b/c?not-really-a-query",
	}
	for _, want := range cases {
		enc := EncodePath(want)
		got, err := DecodePath(enc)
		if err != nil {
			t.Fatalf("DecodePath(%q) error: %v", enc, err)
		}
		if got != want {
			t.Errorf("round trip: encode(%q)=%q decode=%q, want %q", want, enc, got, want)
		}
	}
}

func TestSplitTarget(t *testing.T) {
	tests := []struct{ target, path, query string }{
		{"/a/b", "/a/b", ""},
		{"/a/b?x=1", "/a/b", "?x=1"},
		{"/?x=1&y=2", "/", "?x=1&y=2"},
	}
	for _, tt := range tests {
		p, q := SplitTarget(tt.target)
		if p != tt.path || q != tt.query {
			t.Errorf("SplitTarget(%q) = (%q, %q), want (%q, %q)", tt.target, p, q, tt.path, tt.query)
		}
	}
}

func TestDecodeQueryPlusIsSpace(t *testing.T) {
	got, err := DecodeQueryComponent("a+b")
	if err != nil {
		t.Fatal(err)
	}
	if got != "a b" {
		t.Errorf("got %q, want %q", got, "a b")
	}
}

func TestDecodePathPlusIsLiteral(t *testing.T) {
	got, err := DecodePath("a+b")
	if err != nil {
		t.Fatal(err)
	}
	if got != "a+b" {
		t.Errorf("got %q, want %q", got, "a+b")
	}
}

func TestDecodeInvalidEscape(t *testing.T) {
	if _, err := DecodePath("%zz"); err == nil {
		t.Error("expected error for invalid escape")
	}
}
