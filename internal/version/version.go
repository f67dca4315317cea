// Package version holds build-time variables injected by goreleaser ldflags.
package version

// These vars are overwritten at link time:
//
//	-X github.com/d9705996/hrportal/internal/version.Version=v2.0.0
//	-X github.com/d9705996/hrportal/internal/version.Commit=abc1234
//	-X github.com/d9705996/hrportal/internal/version.Date=2026-08-31T00:00:00Z
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
