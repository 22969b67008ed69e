// Package api is the typed HTTP client used by the terminal test runner.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"keystroke-lab/backend/internal/models"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var apiErr models.ErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d, body: %s", method, path, resp.StatusCode, raw)
	}

	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

func (c *Client) Signup(email, username, password string) (models.User, error) {
	var resp models.RegisterResponse
	err := c.do(http.MethodPost, "/api/auth/signup", models.RegisterRequest{
		Email: email, Username: username, Password: password,
	}, &resp)
	return resp.User, err
}

// Login authenticates and stores the returned token for later calls.
func (c *Client) Login(email, password string) (models.User, error) {
	var resp models.LoginResponse
	err := c.do(http.MethodPost, "/api/auth/login", models.LoginRequest{
		Email: email, Password: password,
	}, &resp)
	if err != nil {
		return models.User{}, err
	}
	c.token = resp.Token
	return resp.User, nil
}

func (c *Client) CurrentUser() (models.User, error) {
	var user models.User
	err := c.do(http.MethodGet, "/api/auth/user", nil, &user)
	return user, err
}

func (c *Client) SaveSession(req models.SaveSessionRequest) (models.Session, error) {
	var resp models.SaveSessionResponse
	err := c.do(http.MethodPost, "/api/sessions", req, &resp)
	return resp.Session, err
}

func (c *Client) ListSessions() ([]models.Session, error) {
	var sessions []models.Session
	err := c.do(http.MethodGet, "/api/sessions", nil, &sessions)
	return sessions, err
}

func (c *Client) AnalyzeSession(id int) (models.SessionAnalysis, error) {
	var analysis models.SessionAnalysis
	err := c.do(http.MethodGet, fmt.Sprintf("/api/sessions/analysis/%d", id), nil, &analysis)
	return analysis, err
}
