package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptionText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"inline", "<p>Hello <b>world</b></p>", "Hello world"},
		{"list", "<p>Hello <b>world</b></p><ul><li>One</li><li>Two</li></ul>", "Hello world\n\n- One\n\n- Two"},
		{"line break", "Line one<br>Line two", "Line one\nLine two"},
		{"script dropped", "<script>alert(1)</script><div>Kept</div>", "Kept"},
		{"whitespace collapsed", "<p>  lots \n of\t space </p>", "lots of space"},
		{"plain text", "no markup", "no markup"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescriptionText(tt.in))
		})
	}
}
