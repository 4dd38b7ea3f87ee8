package utils

import (
	"fmt"
	"strings"
	"time"
)

// BuildOrderID mints a gateway order id of the form
// <prefix>_<courseId>_<userId>_<epochMillis>. The timestamp makes retried
// initiations distinguishable on the gateway side.
func BuildOrderID(prefix string, courseID, userID uint) string {
	return fmt.Sprintf("%s_%d_%d_%d", prefix, courseID, userID, time.Now().UnixMilli())
}

// SanitizeRedirectPath restricts a user-supplied redirect target to a local
// path, falling back to the home path for anything else.
func SanitizeRedirectPath(path string) string {
	if path == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return "/"
	}
	return path
}
