// internal/app/system/limits/limits.go
package limits

// Request body size limits for form posts.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxFormSize caps admin and doctor form submissions, including
	// prescription text.
	MaxFormSize = 1 << 20 // 1 MB

	// MaxLoginFormSize caps the sign-in form.
	MaxLoginFormSize = 16 << 10 // 16 KB
)
