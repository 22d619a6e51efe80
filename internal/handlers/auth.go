package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/adi-253/roomline/internal/models"
	"github.com/adi-253/roomline/internal/services"
)

// TokenIssuer mints bearer tokens for signed-in users.
type TokenIssuer interface {
	Issue(userID int64, nickname string) (string, error)
}

// AuthHandler exchanges a nickname for a bearer token. It exists so the
// dev server can be driven without an external identity provider.
type AuthHandler struct {
	users  *services.UserService
	issuer TokenIssuer
}

func NewAuthHandler(users *services.UserService, issuer TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer}
}

// SignIn handles POST /api/auth/sign-in
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	user, err := h.users.SignIn(req.Nickname)
	if err != nil {
		writeFailure(w, err)
		return
	}
	token, err := h.issuer.Issue(user.UserID, user.Nickname)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, "signed in", models.SignInResponse{AccessToken: token, User: user})
}
