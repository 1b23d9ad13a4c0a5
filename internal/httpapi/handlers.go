package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"wolftag/internal/auth"
	"wolftag/internal/stats"
)

type credentials struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type accountResponse struct {
	Name               string   `json:"name"`
	TagsInflicted      int64    `json:"tagsInflicted"`
	TimesTagged        int64    `json:"timesTagged"`
	DistanceTraveled   float64  `json:"distanceTraveled"`
	BackgroundsChanged int64    `json:"backgroundsChanged"`
	CurrentSkin        string   `json:"currentSkin,omitempty"`
	Unlocked           []string `json:"unlocked,omitempty"`
}

func Register(svc *auth.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		rec, err := svc.Register(creds.Name, creds.Password)
		switch {
		case errors.Is(err, auth.ErrBadName), errors.Is(err, auth.ErrBadPassword):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, stats.ErrNameTaken):
			http.Error(w, "name already taken", http.StatusConflict)
			return
		case err != nil:
			log.Warn("register failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeAccount(w, http.StatusCreated, rec)
	}
}

func Login(svc *auth.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		rec, err := svc.Login(creds.Name, creds.Password)
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			http.Error(w, "invalid name or password", http.StatusUnauthorized)
			return
		case err != nil:
			log.Warn("login failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeAccount(w, http.StatusOK, rec)
	}
}

func writeAccount(w http.ResponseWriter, status int, rec stats.Record) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(accountResponse{
		Name:               rec.Name,
		TagsInflicted:      rec.TagsInflicted,
		TimesTagged:        rec.TimesTagged,
		DistanceTraveled:   rec.DistanceTraveled,
		BackgroundsChanged: rec.BackgroundsChanged,
		CurrentSkin:        rec.CurrentSkin,
		Unlocked:           rec.Unlocked,
	})
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
