package platform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zatchheems/yactatt/config"
)

func TestRaspberryPiPlatform_StartRejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*config.DisplayConfig)
	}{
		{"unknown mapping", func(c *config.DisplayConfig) { c.HardwareMapping = "hzeller" }},
		{"too many rows for five address lines", func(c *config.DisplayConfig) { c.Rows = 128 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := config.Default().Display
			tt.mod(&conf)

			p := NewRaspberryPiPlatform(conf)
			err := p.Start()

			var hwErr *HardwareInitError
			assert.True(t, errors.As(err, &hwErr), "expected HardwareInitError, got %v", err)
			// Stop after a failed start must not block.
			p.Stop()
		})
	}
}

func TestRaspberryPiPlatform_Canvas(t *testing.T) {
	conf := config.Default().Display
	p := NewRaspberryPiPlatform(conf)
	c := p.Canvas()
	assert.Equal(t, conf.Cols, c.Width())
	assert.Equal(t, conf.Rows, c.Height())
}
