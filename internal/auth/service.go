package auth

import (
	"crypto/subtle"
	"strings"

	"sfms-backend/internal/pkg/constants"
)

// StartInput is the principal hand-off body for a new session.
type StartInput struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	StaffKey string `json:"staff_key"`
}

// Principal is the identity kept in the session and returned by GET /session.
type Principal struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// ResolveStart validates a session start request. Role defaults to user;
// the staff role needs staffKey when one is configured.
func ResolveStart(in StartInput, staffKey string) (*Principal, error) {
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = constants.User
	}
	if !constants.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	if role == constants.Staff && staffKey != "" &&
		subtle.ConstantTimeCompare([]byte(in.StaffKey), []byte(staffKey)) != 1 {
		return nil, ErrStaffKeyRequired
	}
	return &Principal{UserID: strings.TrimSpace(in.UserID), Role: role}, nil
}

// VerifyPrincipal reads the principal stored in session. Anonymous sessions
// return ErrNotAuthenticated.
func VerifyPrincipal(sessionUser interface{}) (*Principal, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID := str(m["user_id"])
	role := str(m["role"])
	if userID == "" && role == "" {
		return nil, ErrNotAuthenticated
	}
	return &Principal{UserID: userID, Role: role}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
