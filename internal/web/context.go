package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/datatidy/internal/audit"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for the
// activity history.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // Already processed by TrustedRealIP
	ua := r.Header.Get("User-Agent")
	ctx = audit.ContextWithIPAddress(ctx, ip)
	ctx = audit.ContextWithUserAgent(ctx, ua)
	return ctx
}
