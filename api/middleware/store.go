package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rentkit/rentkit-backend/api/responses"
	pkgerrors "github.com/rentkit/rentkit-backend/pkg/errors"
	"github.com/rentkit/rentkit-backend/pkg/logger"
)

// StoreContext resolves the {storeID} route parameter and attaches it to the
// request context and log fields. Every store-scoped route sits behind it.
func StoreContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(chi.URLParam(r, "storeID"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store id is required"))
				return
			}

			storeID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id"))
				return
			}

			ctx := WithStoreID(r.Context(), storeID.String())
			if logg != nil {
				ctx = logg.WithStoreID(ctx, storeID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
