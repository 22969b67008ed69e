package services

import (
	"sync/atomic"
	"time"

	"keystroke-lab/backend/internal/models"
)

// Metrics tracks process-wide counters. Handlers and the websocket hub share
// one injected instance.
type Metrics struct {
	usersRegistered atomic.Int64
	sessionsSaved   atomic.Int64
	authFailures    atomic.Int64

	wsConnections atomic.Int64
	wsMessages    atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncrementUsersRegistered() {
	m.usersRegistered.Add(1)
}

func (m *Metrics) IncrementSessionsSaved() {
	m.sessionsSaved.Add(1)
}

func (m *Metrics) IncrementAuthFailures() {
	m.authFailures.Add(1)
}

func (m *Metrics) IncrementWSConnections() {
	m.wsConnections.Add(1)
}

func (m *Metrics) DecrementWSConnections() {
	m.wsConnections.Add(-1)
}

func (m *Metrics) IncrementWSMessages() {
	m.wsMessages.Add(1)
}

func (m *Metrics) WSConnections() int64 {
	return m.wsConnections.Load()
}

func (m *Metrics) Snapshot() models.MetricsSnapshot {
	return models.MetricsSnapshot{
		UsersRegistered: m.usersRegistered.Load(),
		SessionsSaved:   m.sessionsSaved.Load(),
		AuthFailures:    m.authFailures.Load(),
		WSConnections:   m.wsConnections.Load(),
		WSMessages:      m.wsMessages.Load(),
		Timestamp:       time.Now().Unix(),
	}
}
