package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoSession indica que el request no trae sesión válida.
	ErrNoSession = errors.New("no session")
)

// Store es el backend de sesiones (redis en prod, memoria en dev/tests).
// Guarda únicamente session id -> user id; la sesión no es estado de aplicación.
type Store interface {
	Get(ctx context.Context, id string) (string, error)
	Set(ctx context.Context, id, userID string, ttl time.Duration) error
	Del(ctx context.Context, id string) error
}

// Manager maneja sesiones por cookie opaca.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
	secure     bool
}

func NewManager(store Store, cookieName string, ttl time.Duration, secure bool) *Manager {
	if cookieName == "" {
		cookieName = "petsoft_session"
	}
	return &Manager{
		store:      store,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Issue crea una sesión nueva para userID y escribe la cookie.
// Con manager nil (modo dev sin sesiones) es un no-op.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, userID string) (string, error) {
	if m == nil {
		return "", nil
	}
	id := newSessionID()
	if err := m.store.Set(ctx, id, userID, m.ttl); err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(m.ttl),
	})
	return id, nil
}

// Resolve devuelve el userID de la sesión del request.
// Cualquier cosa rara (sin cookie, id desconocido, expirado) => ErrNoSession.
// Fail closed: nunca adivinamos identidad.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrNoSession
	}

	userID, err := m.store.Get(ctx, cookie.Value)
	if err != nil || userID == "" {
		return "", ErrNoSession
	}
	return userID, nil
}

// Destroy borra la sesión del store y expira la cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if m == nil {
		return nil
	}
	cookie, err := r.Cookie(m.cookieName)
	if err == nil && cookie.Value != "" {
		if err := m.store.Del(ctx, cookie.Value); err != nil {
			return err
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func (m *Manager) CookieName() string { return m.cookieName }

func (m *Manager) TTL() time.Duration { return m.ttl }

func newSessionID() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// fallback improbable; uuid sigue siendo impredecible
		return uuid.NewString()
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
