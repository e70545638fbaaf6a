package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "   ", want: ""},
		{name: "plain text", in: "  Startup raises\n\n seed round ", want: "Startup raises seed round"},
		{name: "inline tags", in: "<p>Startup <b>raises</b> seed round</p>", want: "Startup raises seed round"},
		{name: "paragraphs", in: "<p>First.</p><p>Second.</p>", want: "First. Second."},
		{name: "line breaks", in: "one<br>two<br/>three", want: "one two three"},
		{name: "entities", in: "Tom &amp; Jerry &mdash; reunion", want: "Tom & Jerry — reunion"},
		{name: "scripts dropped", in: "<div>Keep</div><script>alert('x')</script>", want: "Keep"},
		{name: "emoji kept", in: "<p>Launch day 🚀</p>", want: "Launch day 🚀"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}
