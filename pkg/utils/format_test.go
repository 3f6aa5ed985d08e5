package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatViews(t *testing.T) {
	cases := map[int64]string{
		-5:        "0",
		0:         "0",
		999:       "999",
		1_000:     "1.0K",
		1_234:     "1.2K",
		999_999:   "1000.0K",
		1_000_000: "1.0M",
		1_500_000: "1.5M",
		3_456_789: "3.5M",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatViews(in), "FormatViews(%d)", in)
	}
}

func TestFormatDuration(t *testing.T) {
	t.Run("空时长", func(t *testing.T) {
		assert.Equal(t, "", FormatDuration(0))
		assert.Equal(t, "", FormatDuration(-1))
	})
	t.Run("补零", func(t *testing.T) {
		assert.Equal(t, "0:05", FormatDuration(5))
		assert.Equal(t, "1:00", FormatDuration(60))
		assert.Equal(t, "12:34", FormatDuration(754))
		assert.Equal(t, "75:00", FormatDuration(4500))
	})
}
