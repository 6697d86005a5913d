package auth

import (
	"net/http"
	"strings"

	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
)

// Middleware rejects requests without a valid bearer token. It must run
// inside cerr.NewJSONResponseChiMiddleware so the rejection is rendered.
func Middleware(a *Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity, err := a.Verify(bearerToken(r))
			if err != nil {
				cerr.SetJSONError(ctx, cerr.NewReasonError(cerr.Unauthenticated, cerr.ReasonUnauthenticated, err.Error(), nil))
				return
			}
			clog.AddAttribute(ctx, clog.CallerAttributeKey, identity.Subject)
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, identity)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
