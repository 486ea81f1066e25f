package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedEnums(t *testing.T) {
	cfg := &Config{
		Cities:     []string{"Tokyo", "Osaka"},
		Categories: []string{"Tech", "Social"},
	}

	assert.True(t, cfg.IsAllowedCity("Tokyo"))
	assert.True(t, cfg.IsAllowedCity("tokyo"))
	assert.False(t, cfg.IsAllowedCity("Gotham"))
	assert.False(t, cfg.IsAllowedCity(""))

	assert.True(t, cfg.IsAllowedCategory("Tech"))
	assert.True(t, cfg.IsAllowedCategory("tech"))
	assert.False(t, cfg.IsAllowedCategory("Knitting"))
}
