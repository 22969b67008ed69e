package models

import "time"

type RegisterResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

type SaveSessionResponse struct {
	Message string  `json:"message"`
	Session Session `json:"session"`
}

// SessionAnalysis pairs a stored record with insights recomputed from its raw
// signals, so records persisted before the insights column existed still get
// scored on read.
type SessionAnalysis struct {
	Session  Session  `json:"session"`
	Insights Insights `json:"insights"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp int64  `json:"timestamp"`
}

type HealthStatus struct {
	Status        string    `json:"status"`
	ActiveClients int       `json:"active_clients"`
	Timestamp     time.Time `json:"timestamp"`
}

type MetricsSnapshot struct {
	UsersRegistered int64 `json:"users_registered"`
	SessionsSaved   int64 `json:"sessions_saved"`
	AuthFailures    int64 `json:"auth_failures"`
	WSConnections   int64 `json:"ws_connections"`
	WSMessages      int64 `json:"ws_messages"`
	Timestamp       int64 `json:"timestamp"`
}
