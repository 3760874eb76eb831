// internal/app/system/status/status.go

// Package status holds the lifecycle status values shared by users,
// organizations, and events.
package status

const (
	Active   = "active"
	Disabled = "disabled"
	Archived = "archived"
)

// Valid reports whether s is a recognized lifecycle status.
func Valid(s string) bool {
	switch s {
	case Active, Disabled, Archived:
		return true
	}
	return false
}
