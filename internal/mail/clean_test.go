package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"tags removed", "<p>hello <b>world</b></p>", "hello world"},
		{"entities decoded", "tickets &amp; replies", "tickets & replies"},
		{"script dropped", "<script>alert(1)</script>done", "done"},
		{"newlines collapsed", "<p>one</p>\n<p>two</p>", "one two"},
		{"empty input", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripHTML(tc.in))
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace("  a\n\tb   c\r\n"))
	assert.Equal(t, "", CollapseWhitespace(" \n\t "))
}
