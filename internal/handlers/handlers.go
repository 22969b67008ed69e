package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"keystroke-lab/backend/internal/auth"
	"keystroke-lab/backend/internal/insights"
	"keystroke-lab/backend/internal/models"
	"keystroke-lab/backend/internal/services"
	"keystroke-lab/backend/internal/store"
	"keystroke-lab/backend/internal/ws"
)

type Handler struct {
	Store      store.Store
	Auth       *auth.Service
	Hub        *ws.Hub
	Metrics    *services.Metrics
	CORSOrigin string
}

func New(s store.Store, a *auth.Service, hub *ws.Hub, m *services.Metrics, corsOrigin string) *Handler {
	return &Handler{Store: s, Auth: a, Hub: hub, Metrics: m, CORSOrigin: corsOrigin}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func validateEmail(email string) bool {
	return emailRegex.MatchString(email) && len(email) <= 255
}

func validateUsername(username string) bool {
	return len(username) >= 3 && len(username) <= 30 && usernameRegex.MatchString(username)
}

func validatePassword(password string) bool {
	// bcrypt truncates beyond 72 bytes.
	return len(password) >= 6 && len(password) <= 72
}

func (h *Handler) enableCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", h.CORSOrigin)
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{
		Error:     msg,
		Timestamp: time.Now().Unix(),
	})
}

// authenticate resolves the caller's user id or writes a 401.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, err := h.Auth.UserIDFromRequest(r)
	if err != nil {
		h.Metrics.IncrementAuthFailures()
		if errors.Is(err, auth.ErrNoToken) {
			writeError(w, http.StatusUnauthorized, "No authentication token provided")
		} else {
			writeError(w, http.StatusUnauthorized, "Invalid authentication token")
		}
		return 0, false
	}
	return userID, true
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if req.Email == "" || req.Password == "" || req.Username == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if !validateEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}
	if !validateUsername(req.Username) {
		writeError(w, http.StatusBadRequest, "Username must be 3-30 characters, alphanumeric and underscore only")
		return
	}
	if !validatePassword(req.Password) {
		writeError(w, http.StatusBadRequest, "Password must be 6-72 characters")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Password hashing error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: passwordHash,
	}
	if err := h.Store.CreateUser(r.Context(), &user); err != nil {
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			writeError(w, http.StatusConflict, "Email already registered")
		case errors.Is(err, store.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "Username already taken")
		default:
			log.Printf("Registration failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.Metrics.IncrementUsersRegistered()
	log.Printf("User registered: %s", req.Email)
	writeJSON(w, http.StatusCreated, models.RegisterResponse{
		Message: "User registered successfully",
		User:    user,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.Store.UserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		h.Metrics.IncrementAuthFailures()
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	} else if err != nil {
		log.Printf("Login error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.Metrics.IncrementAuthFailures()
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.Auth.GenerateToken(user.ID)
	if err != nil {
		log.Printf("Token generation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.Printf("User logged in: %s", req.Email)
	writeJSON(w, http.StatusOK, models.LoginResponse{
		Message: "Login successful",
		Token:   token,
		User:    user,
	})
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	user, err := h.Store.UserByID(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		log.Printf("GetCurrentUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Sessions dispatches /api/sessions by method: POST saves a completed test,
// GET lists the caller's history.
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	case http.MethodPost:
		h.saveSession(w, r)
	case http.MethodGet:
		h.listSessions(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func validateSessionPayload(req models.SaveSessionRequest) string {
	if req.Duration != 15 && req.Duration != 30 {
		return "Duration must be 15 or 30 seconds"
	}
	if req.WPM < 0 {
		return "WPM must not be negative"
	}
	if req.Accuracy < 0 || req.Accuracy > 100 {
		return "Accuracy must be between 0 and 100"
	}
	if req.TotalErrors < 0 {
		return "Total errors must not be negative"
	}
	if len(req.TypingDurations) == 0 {
		return "Typing durations must not be empty"
	}
	for _, d := range req.TypingDurations {
		if d < 0 {
			return "Typing durations must not be negative"
		}
	}
	if len(strings.Fields(req.Text)) == 0 {
		return "Text must not be empty"
	}
	return ""
}

func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req models.SaveSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if msg := validateSessionPayload(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	// WPM and accuracy arrive from the client and are range-checked but not
	// recomputed here; a known trust-boundary gap.
	scores, err := insights.Compute(req.TotalErrors, req.Text, req.TypingDurations)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Session has no scoreable signals")
		return
	}

	session := models.Session{
		UserID:          userID,
		WPM:             req.WPM,
		Accuracy:        req.Accuracy,
		TotalErrors:     req.TotalErrors,
		ErrorWords:      req.ErrorWords,
		TypingDurations: req.TypingDurations,
		Duration:        req.Duration,
		Text:            req.Text,
		Insights:        scores,
	}
	if session.ErrorWords == nil {
		session.ErrorWords = []string{}
	}

	if err := h.Store.CreateSession(r.Context(), &session); err != nil {
		log.Printf("CreateSession error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.Metrics.IncrementSessionsSaved()
	h.Hub.BroadcastSession(session)
	log.Printf("Session saved: ID=%d for user %d", session.ID, userID)

	writeJSON(w, http.StatusCreated, models.SaveSessionResponse{
		Message: "Session saved successfully",
		Session: session,
	})
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	sessions, err := h.Store.SessionsByUser(r.Context(), userID)
	if err != nil {
		log.Printf("ListSessions error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch sessions")
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}

// AnalyzeSession serves /api/sessions/analysis/{sessionId}. Existence is
// checked before ownership, so a non-owner probing an existing id gets 403
// while a missing id gets 404 for any caller.
func (h *Handler) AnalyzeSession(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/sessions/analysis/")
	sessionID, err := strconv.Atoi(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	session, err := h.Store.SessionByID(r.Context(), sessionID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	} else if err != nil {
		log.Printf("AnalyzeSession error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if session.UserID != userID {
		writeError(w, http.StatusForbidden, "Unauthorized access to session")
		return
	}

	// Recompute from the raw signals so records created before insights were
	// stored still get scored.
	scores, err := insights.ComputeSession(session)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Session has no scoreable signals")
		return
	}

	writeJSON(w, http.StatusOK, models.SessionAnalysis{
		Session:  session,
		Insights: scores,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, models.HealthStatus{
		Status:        "healthy",
		ActiveClients: h.Hub.ActiveClients(),
		Timestamp:     time.Now(),
	})
}

func (h *Handler) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, h.Metrics.Snapshot())
}
