package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
	"golang.org/x/crypto/bcrypt"

	"traceguard/pkg/platform/sentinel"
)

const minPasswordLength = 10

type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Fingerprint string `json:"fingerprint"`
}

type loginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Fingerprint == "" {
		writeError(w, http.StatusBadRequest, "email, password and fingerprint are required")
		return
	}

	admin, err := s.admins.Get(r.Context(), req.Email)
	if err != nil {
		// Same message as a wrong password so probing can't tell accounts
		// apart.
		loginAttempts.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte(req.Password)) != nil {
		loginAttempts.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	switch {
	case admin.Fingerprint == "":
		// First successful login binds this device as the trusted one.
		admin.Fingerprint = req.Fingerprint
		admin.DeviceDesc = describeDevice(r.UserAgent())
		if err := s.admins.Save(r.Context(), admin); err != nil {
			writeError(w, http.StatusInternalServerError, "could not bind device")
			return
		}
		s.log.InfoContext(r.Context(), "trusted device bound",
			"email", admin.Email, "device", admin.DeviceDesc)
	case admin.Fingerprint != req.Fingerprint:
		loginAttempts.WithLabelValues("untrusted").Inc()
		s.log.WarnContext(r.Context(), "login from untrusted device", "email", admin.Email)
		writeError(w, http.StatusUnauthorized, "untrusted device")
		return
	}

	token, tokenID, err := s.issuer.Issue(admin.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	if err := s.tokens.SetCurrent(r.Context(), admin.Email, tokenID); err != nil {
		writeError(w, http.StatusInternalServerError, "could not persist token")
		return
	}

	loginAttempts.WithLabelValues("accepted").Inc()
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Email: admin.Email})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type changePasswordResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("new password must be at least %d characters", minPasswordLength))
		return
	}

	admin, err := s.admins.Get(r.Context(), adminEmail(r.Context()))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unknown account")
			return
		}
		writeError(w, http.StatusInternalServerError, "account lookup failed")
		return
	}

	if bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte(req.OldPassword)) != nil {
		writeError(w, http.StatusBadRequest, "old password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not hash password")
		return
	}
	admin.PasswordHash = hash
	if err := s.admins.Save(r.Context(), admin); err != nil {
		writeError(w, http.StatusInternalServerError, "could not save account")
		return
	}

	// The fresh token becomes the account's only valid one; everything
	// issued before this point is dead.
	token, tokenID, err := s.issuer.Issue(admin.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	if err := s.tokens.SetCurrent(r.Context(), admin.Email, tokenID); err != nil {
		writeError(w, http.StatusInternalServerError, "could not persist token")
		return
	}

	writeJSON(w, http.StatusOK, changePasswordResponse{OK: true, Token: token})
}

// describeDevice turns a raw User-Agent into a short human-readable label
// for the trusted-device record.
func describeDevice(rawUA string) string {
	if rawUA == "" {
		return "Unknown Device"
	}

	ua := useragent.New(rawUA)
	name, _ := ua.Browser()
	os := ua.OS()
	if name == "" && os == "" {
		if idx := strings.IndexAny(rawUA, " ("); idx > 0 {
			return rawUA[:idx]
		}
		return rawUA
	}

	switch {
	case name != "" && os != "":
		return name + " on " + os
	case name != "":
		return name
	default:
		return os
	}
}
