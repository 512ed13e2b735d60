package screenshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveMaxWidth(t *testing.T) {
	tests := []struct {
		name     string
		param    *uint32
		fallback uint32
		want     uint32
		wantOK   bool
	}{
		{"param wins over default", u32(500), 2000, 500, true},
		{"param without default", u32(800), 0, 800, true},
		{"explicit zero is kept", u32(0), 2000, 0, true},
		{"default applies", nil, 1200, 1200, true},
		{"neither", nil, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveMaxWidth(tt.param, tt.fallback)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
