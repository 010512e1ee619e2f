package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/tilestock/internal/app/system/htmlsanitize"
)

func TestText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Kajaria Ceramics", "Kajaria Ceramics"},
		{"  padded  ", "padded"},
		{"<script>alert(1)</script>Raj", "Raj"},
		{"<b>bold</b> brand", "bold brand"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := htmlsanitize.Text(tc.in); got != tc.want {
			t.Errorf("Text(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}
