// internal/app/system/limits/limits.go
package limits

// Request body size limits for form submissions.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxFormSize bounds ordinary form posts. Descriptions cap at a few
	// kilobytes, so anything near this is hostile.
	MaxFormSize = 1 << 20 // 1 MB
)
