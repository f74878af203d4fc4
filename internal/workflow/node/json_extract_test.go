package node

import "testing"

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `  {"a":1}  `, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "single line fence", in: "```json{\"a\":1}```", want: `{"a":1}`},
		{name: "unterminated fence", in: "```json\n{\"a\":1}", want: `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFence(tc.in); got != tc.want {
				t.Fatalf("StripCodeFence(%q)=%q want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestExtractJSONObjectBalanced(t *testing.T) {
	in := `Voici la fiche: {"a":{"b":"x}"},"c":"{\"q\""} et un commentaire {"z":1}`
	got, ok := ExtractJSONObject(in)
	if !ok {
		t.Fatalf("expected a balanced object")
	}
	want := `{"a":{"b":"x}"},"c":"{\"q\""}`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestExtractJSONObjectUnbalanced(t *testing.T) {
	for _, in := range []string{"", "no braces here", `{"a":1`, `} {`} {
		if got, ok := ExtractJSONObject(in); ok {
			t.Fatalf("ExtractJSONObject(%q) unexpectedly found %q", in, got)
		}
	}
}

func TestPreviewRaw(t *testing.T) {
	cases := []struct {
		raw  string
		max  int
		want string
	}{
		{"المراجعة", 3, "الم...[+5 chars]"},
		{"abc", 10, "abc"},
		{"abc", 3, "abc"},
		{"abc", 0, "[3 chars omitted]"},
	}
	for _, tc := range cases {
		if got := PreviewRaw(tc.raw, tc.max); got != tc.want {
			t.Fatalf("PreviewRaw(%q, %d) = %q, want %q", tc.raw, tc.max, got, tc.want)
		}
	}
}
