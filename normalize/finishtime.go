package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFinishTime is returned for finish times that are not H:MM:SS or MM:SS.
var ErrInvalidFinishTime = errors.New("invalid finish time")

// ParseFinishTime converts "H:MM:SS" or "MM:SS" into whole seconds.
// Fractional seconds ("1:02:03.4") are truncated.
func ParseFinishTime(s string) (int, error) {
	t := strings.TrimSpace(s)
	if whole, _, ok := strings.Cut(t, "."); ok {
		t = whole
	}
	parts := strings.Split(t, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFinishTime, s)
	}

	total := 0
	for i, p := range parts {
		if !allDigits(p) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFinishTime, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFinishTime, s)
		}
		// every field after the leading one is a base-60 digit
		if i > 0 && (n > 59 || len(p) != 2) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFinishTime, s)
		}
		total = total*60 + n
	}
	if total == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFinishTime, s)
	}
	return total, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatFinishTime renders seconds as H:MM:SS, or MM:SS under an hour.
func FormatFinishTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, sec := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}
