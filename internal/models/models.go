package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Insights are the four derived behavioral scores, each clamped to [0,1].
type Insights struct {
	Impulsivity   float64 `json:"impulsivity"`
	CognitiveLoad float64 `json:"cognitive_load"`
	Resilience    float64 `json:"resilience"`
	Anxiety       float64 `json:"anxiety"`
}

// Session is one completed typing-test attempt. Records are append-only:
// insights are computed once at creation and never rewritten.
type Session struct {
	ID              int       `json:"id"`
	UserID          int       `json:"user_id"`
	WPM             float64   `json:"wpm"`
	Accuracy        float64   `json:"accuracy"`
	TotalErrors     int       `json:"total_errors"`
	ErrorWords      []string  `json:"error_words"`
	TypingDurations []float64 `json:"typing_durations"`
	Duration        int       `json:"duration"`
	Text            string    `json:"text"`
	Insights        Insights  `json:"insights"`
	CreatedAt       time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SaveSessionRequest struct {
	WPM             float64   `json:"wpm"`
	Accuracy        float64   `json:"accuracy"`
	TotalErrors     int       `json:"total_errors"`
	ErrorWords      []string  `json:"error_words"`
	TypingDurations []float64 `json:"typing_durations"`
	Duration        int       `json:"duration"`
	Text            string    `json:"text"`
}
