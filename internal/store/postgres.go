package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"

	"keystroke-lab/backend/internal/models"
)

// Postgres implements Store on a database/sql handle using the pgx driver.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	err := p.db.QueryRowContext(ctx,
		`INSERT INTO users (email, username, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		u.Email, u.Username, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_email_key":
				return ErrEmailTaken
			case "users_username_key":
				return ErrUsernameTaken
			}
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (p *Postgres) UserByEmail(ctx context.Context, email string) (models.User, error) {
	return p.scanUser(p.db.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash, created_at
		 FROM users WHERE email = $1`, email))
}

func (p *Postgres) UserByID(ctx context.Context, id int) (models.User, error) {
	return p.scanUser(p.db.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash, created_at
		 FROM users WHERE id = $1`, id))
}

func (p *Postgres) scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	} else if err != nil {
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (p *Postgres) CreateSession(ctx context.Context, s *models.Session) error {
	errorWords, err := json.Marshal(s.ErrorWords)
	if err != nil {
		return fmt.Errorf("marshal error words: %w", err)
	}
	durations, err := json.Marshal(s.TypingDurations)
	if err != nil {
		return fmt.Errorf("marshal durations: %w", err)
	}
	insights, err := json.Marshal(s.Insights)
	if err != nil {
		return fmt.Errorf("marshal insights: %w", err)
	}

	err = p.db.QueryRowContext(ctx,
		`INSERT INTO sessions
		 (user_id, wpm, accuracy, total_errors, error_words, typing_durations, duration, text, insights)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		s.UserID, s.WPM, s.Accuracy, s.TotalErrors, errorWords, durations, s.Duration, s.Text, insights,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (p *Postgres) SessionByID(ctx context.Context, id int) (models.Session, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, user_id, wpm, accuracy, total_errors, error_words, typing_durations, duration, text, insights, created_at
		 FROM sessions WHERE id = $1`, id)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return models.Session{}, ErrNotFound
	} else if err != nil {
		return models.Session{}, fmt.Errorf("session by id: %w", err)
	}
	return s, nil
}

func (p *Postgres) SessionsByUser(ctx context.Context, userID int) ([]models.Session, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, user_id, wpm, accuracy, total_errors, error_words, typing_durations, duration, text, insights, created_at
		 FROM sessions WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("sessions by user: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (models.Session, error) {
	var s models.Session
	var errorWords, durations []byte
	var insights sql.NullString

	err := row.Scan(&s.ID, &s.UserID, &s.WPM, &s.Accuracy, &s.TotalErrors,
		&errorWords, &durations, &s.Duration, &s.Text, &insights, &s.CreatedAt)
	if err != nil {
		return models.Session{}, err
	}

	if err := json.Unmarshal(errorWords, &s.ErrorWords); err != nil {
		return models.Session{}, err
	}
	if err := json.Unmarshal(durations, &s.TypingDurations); err != nil {
		return models.Session{}, err
	}
	// Records predating the insights column carry NULL here; analysis
	// recomputes scores from the raw signals anyway.
	if insights.Valid {
		if err := json.Unmarshal([]byte(insights.String), &s.Insights); err != nil {
			return models.Session{}, err
		}
	}
	return s, nil
}
