package controllers

import (
	"net/http"

	"github.com/rentkit/rentkit-backend/api/middleware"
	"github.com/rentkit/rentkit-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func StorePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "store", "status": "ok"}
		if store := middleware.StoreIDFromContext(r.Context()); store != "" {
			payload["store_id"] = store
		}
		responses.WriteSuccess(w, payload)
	}
}
