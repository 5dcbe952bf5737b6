// Package version holds build information injected with -ldflags.
package version

var (
	Version    = "dev"
	CommitHash = "dev"
)

// String is the version line printed by the version command.
func String() string {
	return Version + " (commit: " + CommitHash + ")"
}
