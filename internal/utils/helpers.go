package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SendErrorResponse writes an error as JSON.
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := models.ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
	}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Println(err)
	}
}

// SendError writes an ErrorResponse as JSON, preserving its code and
// transition details.
func SendError(w http.ResponseWriter, errResp *models.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errResp.StatusCode)
	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		log.Println(err)
	}
}

// GetSubject extracts the caller identity supplied by the identity
// collaborator. The service itself performs no authentication.
func GetSubject(r *http.Request) string {
	if subject := r.Header.Get("X-Subject-Id"); subject != "" {
		return subject
	}
	return r.URL.Query().Get("subjectId")
}

// AdminRole is the operator role the identity collaborator assigns to
// moderation staff.
const AdminRole = "ADMIN"

// GetRole extracts the caller role supplied by the identity
// collaborator alongside the subject id.
func GetRole(r *http.Request) string {
	if role := r.Header.Get("X-Subject-Role"); role != "" {
		return role
	}
	return r.URL.Query().Get("role")
}

// ParseLimitOffset parses limit and offset query parameters.
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 50 {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer [0:50]")
		}
	} else {
		limit = 5
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	} else {
		offset = 0
	}

	return limit, offset, nil
}

// CheckListingExists checks whether a listing exists.
func CheckListingExists(ctx context.Context, dbPool *pgxpool.Pool, listingId string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM listing WHERE id = $1)`
	err := dbPool.QueryRow(ctx, query, listingId).Scan(&exists)
	return exists, err
}

// CheckSlotExists checks whether a slot exists.
func CheckSlotExists(ctx context.Context, dbPool *pgxpool.Pool, slotId string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM slot WHERE id = $1)`
	err := dbPool.QueryRow(ctx, query, slotId).Scan(&exists)
	return exists, err
}

// CheckProfileOwner checks whether the subject owns the profile.
func CheckProfileOwner(ctx context.Context, dbPool *pgxpool.Pool, subjectId, profileId string) (bool, error) {
	var isOwner bool
	query := `SELECT EXISTS(SELECT 1 FROM profile WHERE id = $1 AND subject_id = $2)`
	err := dbPool.QueryRow(ctx, query, profileId, subjectId).Scan(&isOwner)
	return isOwner, err
}

// CheckListingOwner checks whether the subject owns the listing.
func CheckListingOwner(ctx context.Context, dbPool *pgxpool.Pool, subjectId, listingId string) (bool, error) {
	var isOwner bool
	query := `SELECT EXISTS(SELECT 1 FROM listing WHERE id = $1 AND owner_id = $2)`
	err := dbPool.QueryRow(ctx, query, listingId, subjectId).Scan(&isOwner)
	return isOwner, err
}
