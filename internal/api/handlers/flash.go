package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/hugh/go-roster/internal/api/dto"
)

const (
	flashCookieName = "flash"
	flashMaxAge     = 300
)

func setFlash(w http.ResponseWriter, f dto.Flash, secure bool) {
	payload, err := json.Marshal(f)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   flashMaxAge,
	})
}

// popFlash returns the pending flash message, if any, and clears it.
// Malformed cookies are dropped.
func popFlash(w http.ResponseWriter, r *http.Request) *dto.Flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	payload, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f dto.Flash
	if err := json.Unmarshal(payload, &f); err != nil || f.Message == "" {
		return nil
	}
	if f.Kind != dto.FlashSuccess && f.Kind != dto.FlashError {
		f.Kind = dto.FlashError
	}
	return &f
}
