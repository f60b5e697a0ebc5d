package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/gridtable/internal/core"
)

// WithRequestMetadata adds IP and User-Agent to context for service logs.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // Already processed by TrustedRealIP
	return core.ContextWithClient(ctx, ip, r.Header.Get("User-Agent"))
}
