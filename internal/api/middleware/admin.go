package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
)

// AdminTokenHeader заголовок с токеном администратора
const AdminTokenHeader = "X-Admin-Token"

const msgAdminOnly = "admin token required"

// AdminOnly пропускает запрос только с верным X-Admin-Token
func AdminOnly(token string) func(http.Handler) http.Handler {
	expected := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(AdminTokenHeader))
			if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
				handlers.RespondUnauthorized(w, msgAdminOnly)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
