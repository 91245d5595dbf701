package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikhilraghav/complaintdesk/internal/api/response"
	"github.com/nikhilraghav/complaintdesk/internal/cache"
	"github.com/nikhilraghav/complaintdesk/internal/store"
	"github.com/nikhilraghav/complaintdesk/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

// Exact confirmation phrases for the destructive admin operations.
const (
	ResetConfirmationPhrase = "reset all processed complaints"
	PurgeConfirmationPhrase = "delete all complaint data"
)

// AdminStore is the slice of the store the admin handlers need.
type AdminStore interface {
	MarkAllUnprocessed(ctx context.Context) (int64, error)
	PurgeComplaints(ctx context.Context) (int64, error)
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}

type confirmRequest struct {
	Confirm bool   `json:"confirm"`
	Phrase  string `json:"phrase"`
}

// requireConfirmation decodes and validates the double-confirmation body.
// Destructive operations demand confirm:true plus the exact phrase.
func requireConfirmation(w http.ResponseWriter, r *http.Request, phrase string) bool {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return false
	}
	if !req.Confirm || req.Phrase != phrase {
		response.Error(w, http.StatusBadRequest, "CONFIRMATION_REQUIRED",
			"This operation requires confirm:true and the exact confirmation phrase",
			map[string]string{"phrase": phrase})
		return false
	}
	return true
}

// NewResetAllHandler returns an http.HandlerFunc for POST /api/v1/admin/reset.
// Every record goes back to pending and its analysis is cleared.
func NewResetAllHandler(st AdminStore, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireConfirmation(w, r, ResetConfirmationPhrase) {
			return
		}

		count, err := st.MarkAllUnprocessed(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to reset complaints", nil)
			return
		}

		_ = ca.Delete(r.Context(), cache.SummaryKey())

		response.JSON(w, map[string]int64{"reset": count})
	}
}

// NewPurgeHandler returns an http.HandlerFunc for POST /api/v1/admin/purge.
// All complaint rows are irreversibly deleted.
func NewPurgeHandler(st AdminStore, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireConfirmation(w, r, PurgeConfirmationPhrase) {
			return
		}

		count, err := st.PurgeComplaints(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to purge complaints", nil)
			return
		}

		_ = ca.Delete(r.Context(), cache.SummaryKey())

		response.JSON(w, map[string]int64{"deleted": count})
	}
}

const rawKeyBytes = 24

// NewCreateKeyHandler returns an http.HandlerFunc for POST /api/v1/admin/keys.
// The raw key appears in this response and nowhere else.
func NewCreateKeyHandler(st AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name   string   `json:"name"`
			Scopes []string `json:"scopes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}
		if len(req.Scopes) == 0 {
			req.Scopes = []string{"read"}
		}

		buf := make([]byte, rawKeyBytes)
		if _, err := rand.Read(buf); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to generate key", nil)
			return
		}
		rawKey := "cd_" + hex.EncodeToString(buf)

		hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.DefaultCost)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to hash key", nil)
			return
		}

		now := time.Now().UTC()
		key := &models.APIKey{
			ID:        uuid.New(),
			Name:      req.Name,
			KeyHash:   string(hash),
			KeyPrefix: rawKey[:8],
			Scopes:    req.Scopes,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := st.CreateAPIKey(r.Context(), key); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to store key", nil)
			return
		}

		response.Created(w, map[string]any{
			"id":         key.ID,
			"name":       key.Name,
			"key":        rawKey,
			"key_prefix": key.KeyPrefix,
			"scopes":     key.Scopes,
			"created_at": key.CreatedAt,
		})
	}
}

// NewListKeysHandler returns an http.HandlerFunc for GET /api/v1/admin/keys.
func NewListKeysHandler(st AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keys, err := st.ListAPIKeys(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list keys", nil)
			return
		}
		response.JSON(w, keys)
	}
}

// NewRevokeKeyHandler returns an http.HandlerFunc for DELETE /api/v1/admin/keys/{keyID}.
func NewRevokeKeyHandler(st AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keyID, err := uuid.Parse(chi.URLParam(r, "keyID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "keyID must be a UUID", nil)
			return
		}

		if err := st.RevokeAPIKey(r.Context(), keyID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Key not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to revoke key", nil)
			return
		}

		response.JSON(w, map[string]string{"status": "revoked"})
	}
}
