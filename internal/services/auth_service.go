package services

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/facegate/backend/internal/middleware"
	"github.com/facegate/backend/internal/models"
)

const reasonNotRecognized = "Face not recognized"

// LoginRecorder receives the outcome of every login attempt.
// *audit.Logger satisfies it.
type LoginRecorder interface {
	RecordSuccess(ctx context.Context, faceID, userName string, confidence float64)
	RecordFailure(ctx context.Context, reason string)
}

// AuthService implements the face-login endpoints: user login, admin
// login, and logout.
type AuthService struct {
	ingestor *ImageIngestor
	resolver Resolver
	users    UserDirectory
	audit    LoginRecorder
	sessions *middleware.SessionManager
}

func NewAuthService(ingestor *ImageIngestor, resolver Resolver, users UserDirectory, recorder LoginRecorder, sessions *middleware.SessionManager) *AuthService {
	return &AuthService{
		ingestor: ingestor,
		resolver: resolver,
		users:    users,
		audit:    recorder,
		sessions: sessions,
	}
}

// Login handles POST /api/login. Recognition failures of any kind —
// transport errors included — are reported as an unrecognized face, never
// as a grant and never as a backend error. Every attempt is audited.
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Login attempt from IP: %s", r.RemoteAddr)
	ctx := r.Context()

	payload, err := s.ingestor.ExtractPayload(r)
	if err != nil {
		respondError(w, err)
		return
	}

	match, err := s.resolver.Resolve(ctx, payload.Bytes)
	if err != nil {
		log.Printf("[AUTH] Recognition failed, declining login: %v", err)
		s.failLogin(ctx, w)
		return
	}
	if match == nil {
		s.failLogin(ctx, w)
		return
	}

	user, err := s.users.GetUser(ctx, match.FaceID)
	if err != nil {
		log.Printf("[AUTH] User lookup failed for face %s: %v", match.FaceID, err)
		respondError(w, err)
		return
	}
	if user == nil {
		log.Printf("[AUTH] Matched face %s has no user record", match.FaceID)
		s.failLogin(ctx, w)
		return
	}

	s.audit.RecordSuccess(ctx, user.FaceID, user.Name, match.Similarity)

	sess := &models.Session{UserID: user.FaceID, UserName: user.Name, IsAdmin: user.IsAdmin}
	if err := s.sessions.Issue(w, sess); err != nil {
		log.Printf("[AUTH] Failed to issue session for %s: %v", user.FaceID, err)
		respondError(w, err)
		return
	}

	log.Printf("[AUTH] Login successful for %s (%s)", user.Name, user.FaceID)
	respondJSON(w, map[string]any{
		"success":    true,
		"message":    fmt.Sprintf("Welcome %s!", user.Name),
		"confidence": match.Similarity,
		"redirect":   "/dashboard",
	})
}

func (s *AuthService) failLogin(ctx context.Context, w http.ResponseWriter) {
	s.audit.RecordFailure(ctx, reasonNotRecognized)
	respondFailure(w, reasonNotRecognized)
}

// AdminLogin handles POST /api/admin-login. Unlike Login, a matcher
// transport error is surfaced to the caller instead of being absorbed
// into "not recognized"; admin logins are not audited in the logs table.
func (s *AuthService) AdminLogin(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Admin login attempt from IP: %s", r.RemoteAddr)
	ctx := r.Context()

	payload, err := s.ingestor.ExtractPayload(r)
	if err != nil {
		respondError(w, err)
		return
	}

	match, err := s.resolver.Resolve(ctx, payload.Bytes)
	if err != nil {
		log.Printf("[AUTH] Admin recognition failed: %v", err)
		respondError(w, err)
		return
	}
	if match == nil {
		respondFailure(w, "Admin not recognized")
		return
	}

	user, err := s.users.GetUser(ctx, match.FaceID)
	if err != nil {
		log.Printf("[AUTH] Admin lookup failed for face %s: %v", match.FaceID, err)
		respondError(w, err)
		return
	}
	if user == nil || !user.IsAdmin {
		respondFailure(w, "Admin not recognized")
		return
	}

	sess := &models.Session{UserID: user.FaceID, UserName: user.Name, IsAdmin: true}
	if err := s.sessions.Issue(w, sess); err != nil {
		log.Printf("[AUTH] Failed to issue admin session for %s: %v", user.FaceID, err)
		respondError(w, err)
		return
	}

	log.Printf("[AUTH] Admin login successful for %s (%s)", user.Name, user.FaceID)
	respondJSON(w, map[string]any{
		"success": true,
		"message": "Admin authenticated",
	})
}

// Logout handles POST /api/logout.
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w, r)
	respondJSON(w, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}
