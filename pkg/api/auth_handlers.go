package api

import (
	"net/http"

	"github.com/Chronolens/chronolens/pkg/authcore"
	"github.com/Chronolens/chronolens/pkg/catalog"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, err)
		return
	}

	hash, err := authcore.HashPassword(creds.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := s.catalog.AddUser(r.Context(), creds.Username, hash); err != nil {
		if catalog.AlreadyExists.Has(err) {
			writeError(w, authcore.Forbidden.Wrap(err))
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.catalog.GetUserByUsername(r.Context(), creds.Username)
	if err != nil {
		writeError(w, authcore.Forbidden.Wrap(err))
		return
	}

	if err := authcore.VerifyPassword(user.PasswordHash, creds.Password); err != nil {
		writeError(w, err)
		return
	}

	pair, err := s.signer.IssuePair(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	})
}

type refreshRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pair, err := s.signer.Refresh(req.AccessToken, req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	})
}
