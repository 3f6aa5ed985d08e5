package engagement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsVerified(t *testing.T) {
	n := func(v int64) *int64 { return &v }

	t.Run("边界", func(t *testing.T) {
		assert.False(t, IsVerified(n(999_999)))
		assert.True(t, IsVerified(n(1_000_000)))
		assert.False(t, IsVerified(nil))
		assert.False(t, IsVerified(n(0)))
	})

	t.Run("频道徽章场景", func(t *testing.T) {
		assert.True(t, IsVerifiedCount(1_500_000))
		assert.False(t, IsVerifiedCount(500_000))
	})
}
