package utils

import (
	"fmt"
	"strconv"
)

// IsTruthy reports whether a query or flag value means "on". Only the
// spellings 1, true, TRUE and ON are accepted.
func IsTruthy(v string) bool {
	switch v {
	case "1", "true", "TRUE", "ON":
		return true
	default:
		return false
	}
}

// HumanBytes formats a byte count with a binary unit, e.g. "1.5 MiB".
// Negative counts mean unknown and render as "?".
func HumanBytes(n int64) string {
	if n < 0 {
		return "?"
	}
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Progress renders a transfer position as "current/total".
func Progress(current, total int64) string {
	return HumanBytes(current) + "/" + HumanBytes(total)
}
