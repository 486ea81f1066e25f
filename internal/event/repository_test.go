package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampLimit(t *testing.T) {
	cases := []struct {
		name      string
		requested int
		want      int
	}{
		{"zero falls back to the default page size", 0, 20},
		{"negative falls back to the default page size", -5, 20},
		{"in-range value passes through", 35, 35},
		{"the cap itself passes through", 100, 100},
		{"above the cap clamps to the cap", 500, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, clampLimit(tc.requested))
		})
	}
}
