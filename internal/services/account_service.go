package services

import (
	"log"
	"net/http"

	"github.com/facegate/backend/internal/middleware"
	"github.com/facegate/backend/internal/models"
)

// AccountService exposes read-only projections over user records.
type AccountService struct {
	users UserDirectory
}

func NewAccountService(users UserDirectory) *AccountService {
	return &AccountService{users: users}
}

// GetAccountInfo handles GET /api/account-info for the session user.
func (s *AccountService) GetAccountInfo(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		respondFailure(w, "Not logged in")
		return
	}

	user, err := s.users.GetUser(r.Context(), sess.UserID)
	if err != nil {
		log.Printf("[ACCOUNT] Lookup failed for %s: %v", sess.UserID, err)
		respondError(w, err)
		return
	}
	if user == nil {
		respondFailure(w, "User not found")
		return
	}

	accountNumber := user.AccountNumber
	if accountNumber == "" {
		accountNumber = "N/A"
	}
	balance := "0.00"
	if user.AccountBalance != nil {
		balance = user.AccountBalance.String()
	}

	respondJSON(w, map[string]any{
		"success":        true,
		"name":           user.Name,
		"account_number": accountNumber,
		"balance":        balance,
	})
}

// ListUsers handles GET /api/users for admins.
func (s *AccountService) ListUsers(w http.ResponseWriter, r *http.Request) {
	records, err := s.users.ListUsers(r.Context())
	if err != nil {
		log.Printf("[ACCOUNT] User listing failed: %v", err)
		respondError(w, err)
		return
	}

	summaries := make([]models.UserSummary, 0, len(records))
	for i := range records {
		summaries = append(summaries, records[i].Summary())
	}

	respondJSON(w, map[string]any{
		"success": true,
		"users":   summaries,
	})
}
