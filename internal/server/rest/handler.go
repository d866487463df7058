package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/faceauth/internal/common"
	"github.com/dmitrijs2005/faceauth/internal/descriptor"
	"github.com/dmitrijs2005/faceauth/internal/server/services"
)

// RegisterRequest is the body of POST /register. Descriptor is either a
// JSON array of numbers or a string holding one.
type RegisterRequest struct {
	Username   string          `json:"username"`
	Descriptor json.RawMessage `json:"descriptor"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Descriptor json.RawMessage `json:"descriptor"`
}

type Response struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message,omitempty"`
	Username    string   `json:"username,omitempty"`
	Distance    *float64 `json:"distance,omitempty"`
	AccessToken string   `json:"access_token,omitempty"`
}

const messageNotRecognized = "Face not recognized"

func (s *HTTPServer) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: err.Error()})
		return
	}

	d, err := parseDescriptor(req.Descriptor)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	user, err := s.enrollment.Register(r.Context(), req.Username, d)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success:  true,
		Message:  "User registered successfully",
		Username: user.UserName,
	})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: err.Error()})
		return
	}

	d, err := parseDescriptor(req.Descriptor)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	result, err := s.authentication.Login(r.Context(), d)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeJSON(w, http.StatusOK, Response{Message: messageNotRecognized})
			return
		}
		s.writeError(r.Context(), w, err)
		return
	}

	distance := result.Distance
	writeJSON(w, http.StatusOK, Response{
		Success:     true,
		Message:     "Login successful",
		Username:    result.UserName,
		Distance:    &distance,
		AccessToken: result.AccessToken,
	})
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Response{Message: "missing token"})
		return
	}

	userName, err := s.authentication.WhoAmI(r.Context(), token)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Username: userName})
}

// writeError maps service errors to HTTP status codes. Internal failures
// are logged and reported with a generic message.
func (s *HTTPServer) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeJSON(w, http.StatusBadRequest, Response{Message: err.Error()})
	case errors.Is(err, common.ErrorAlreadyExists):
		writeJSON(w, http.StatusConflict, Response{Message: "Username already taken"})
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		writeJSON(w, http.StatusUnauthorized, Response{Message: err.Error()})
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, Response{Message: "Internal server error"})
	}
}

// decodeBody reads a single JSON object into v, rejecting unknown fields and
// trailing data.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid request body: unexpected data after JSON object")
	}
	return nil
}

// parseDescriptor accepts `[0.1, ...]` as well as `"[0.1, ...]"`.
func parseDescriptor(raw json.RawMessage) (descriptor.Descriptor, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: descriptor is required", common.ErrorInvalidDescriptor)
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorInvalidDescriptor, err)
		}
	}

	return services.ParseDescriptor(text)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
