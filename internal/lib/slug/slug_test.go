package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple title", in: "Breaking News", want: "breaking-news"},
		{name: "punctuation collapsed", in: "Hello,  world!!!", want: "hello-world"},
		{name: "digits kept", in: "Top 10 stories of 2025", want: "top-10-stories-of-2025"},
		{name: "cyrillic transliterated", in: "Новости дня", want: "novosti-dnya"},
		{name: "soft sign dropped", in: "Большая статья", want: "bolshaya-statya"},
		{name: "leading and trailing junk", in: "  ---Title--- ", want: "title"},
		{name: "empty string", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}
