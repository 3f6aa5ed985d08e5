package utils

import (
	"fmt"
	"strconv"
)

// FormatViews 1234 -> 1.2K, 3456789 -> 3.5M
func FormatViews(count int64) string {
	if count < 0 {
		count = 0
	}
	switch {
	case count >= 1_000_000:
		return strconv.FormatFloat(float64(count)/1_000_000, 'f', 1, 64) + "M"
	case count >= 1_000:
		return strconv.FormatFloat(float64(count)/1_000, 'f', 1, 64) + "K"
	}
	return strconv.FormatInt(count, 10)
}

// FormatDuration 秒数格式化为 m:ss, 0 或负数返回空串
func FormatDuration(seconds int64) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
