package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/chorus-music/chorus/internal/models"
	"github.com/chorus-music/chorus/internal/shared"
	"golang.org/x/oauth2"
)

// SessionRepository implements [models.Repository] for [models.Session] persistence.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session into the database with generated ID and sequence
func (r *SessionRepository) Create(session *models.Session) error {
	sequence, err := NextSequence(r.db, "sessions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	session.SetID(id)
	session.SetSequence(sequence)

	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	token := session.Token()

	query := `
		INSERT INTO sessions (
			id, sequence, provider, username, email,
			access_token, refresh_token, token_type, expires_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var expiresAt any
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	_, err = r.db.Exec(query,
		id, sequence, session.Provider(), session.Username(), session.Email(),
		token.AccessToken, token.RefreshToken, token.TokenType, expiresAt,
		session.CreatedAt(), session.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID, excluding soft-deleted sessions
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	query := sessionSelect + " WHERE id = ? AND deleted_at IS NULL"

	session, err := r.scanSession(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return session, nil
}

// Current retrieves the most recently created live session, if any.
func (r *SessionRepository) Current() (*models.Session, error) {
	query := sessionSelect + " WHERE deleted_at IS NULL ORDER BY sequence DESC LIMIT 1"

	session, err := r.scanSession(r.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, shared.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query current session: %w", err)
	}

	return session, nil
}

// Update modifies an existing session in the database
func (r *SessionRepository) Update(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	session.SetUpdatedAt(now)
	token := session.Token()

	var expiresAt any
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	query := `
		UPDATE sessions
		SET username = ?, email = ?, access_token = ?, refresh_token = ?,
			token_type = ?, expires_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		session.Username(), session.Email(), token.AccessToken, token.RefreshToken,
		token.TokenType, expiresAt, now, session.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, session.ID())
	}

	return nil
}

// Delete soft-deletes a session by ID
func (r *SessionRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE sessions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}

	return nil
}

// DeleteAll soft-deletes every live session. Used by logout.
func (r *SessionRepository) DeleteAll() error {
	_, err := r.db.Exec("UPDATE sessions SET deleted_at = ? WHERE deleted_at IS NULL", time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// List retrieves all sessions matching the given criteria, excluding soft-deleted sessions
func (r *SessionRepository) List(criteria map[string]any) ([]*models.Session, error) {
	query := sessionSelect + " WHERE deleted_at IS NULL"

	args := []any{}

	if provider, ok := criteria["provider"].(string); ok && provider != "" {
		query += " AND provider = ?"
		args = append(args, provider)
	}
	if username, ok := criteria["username"].(string); ok && username != "" {
		query += " AND username = ?"
		args = append(args, username)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := r.scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

const sessionSelect = `
	SELECT id, sequence, provider, username, email,
		access_token, refresh_token, token_type, expires_at,
		created_at, updated_at, deleted_at
	FROM sessions
`

// scanner abstracts over *sql.Row and *sql.Rows for scanSession.
type scanner interface {
	Scan(dest ...any) error
}

func (r *SessionRepository) scanSession(row scanner) (*models.Session, error) {
	var (
		id           string
		sequence     int
		provider     string
		username     string
		email        string
		accessToken  string
		refreshToken string
		tokenType    string
		expiresAt    sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(&id, &sequence, &provider, &username, &email,
		&accessToken, &refreshToken, &tokenType, &expiresAt,
		&createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	token := oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenType,
	}
	if expiresAt.Valid {
		token.Expiry = expiresAt.Time
	}

	session := models.NewSession(sequence, provider, username, email, token)
	session.SetID(id)
	session.SetCreatedAt(createdAt)
	session.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		session.SetDeletedAt(&deletedAt.Time)
	}

	return session, nil
}
