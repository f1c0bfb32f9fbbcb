package constants

// Static route constants
const (
	APIRoute    = "/api"
	PublicRoute = "/"
	DocsRoute   = "/docs/v1"
)
