package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"wolftag/internal/auth"
	"wolftag/internal/room"
	"wolftag/internal/ws"
)

// SetupRoutes builds the router. authSvc may be nil when no database is
// configured; the game then runs guests-only.
func SetupRoutes(rm *room.Room, authSvc *auth.Service, accounts ws.AccountResolver,
	readLimit int64, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(rm, accounts, readLimit, log))
	if authSvc != nil {
		r.Post("/register", Register(authSvc, log))
		r.Post("/login", Login(authSvc, log))
	}
	return r
}
