package version

import (
	"fmt"
	"runtime"
	"time"
)

var (
	Version   = "dev"                           // ex: v0.1.0
	Commit    = "none"                          // ex: abcd123
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2025-08-11T18:42:00Z
	GoVersion = runtime.Version()               // go version
)

// DefaultUserAgent is sent on outbound capabilities requests unless overridden.
const DefaultUserAgent = "data-tales.dev (data-sources) - OGC Service Explorer"

// UserAgent returns ua, or the default identifier tagged with the build version.
func UserAgent(ua string) string {
	if ua != "" {
		return ua
	}
	return fmt.Sprintf("%s/%s", DefaultUserAgent, Version)
}
