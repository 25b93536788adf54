package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/legalaipro/lexauth"
)

const sessionColumns = `id, user_id, token_hash, ip_address, user_agent, expires_at, created_at, updated_at`

func (a *Adapter) CreateSession(session *lexauth.Session) error {
	ctx := context.Background()

	query := `INSERT INTO public.sessions (id, user_id, token_hash, ip_address, user_agent, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := a.pool.Exec(ctx, query,
		session.ID, session.UserID, session.TokenHash, session.IPAddress,
		session.UserAgent, session.ExpiresAt, session.CreatedAt, session.UpdatedAt,
	)
	return err
}

func (a *Adapter) GetSessionByHash(tokenHash string) (*lexauth.Session, error) {
	ctx := context.Background()
	q := `SELECT ` + sessionColumns + ` FROM public.sessions WHERE token_hash = $1`

	return a.scanSession(a.pool.QueryRow(ctx, q, tokenHash))
}

func (a *Adapter) GetSessionByID(id string) (*lexauth.Session, error) {
	ctx := context.Background()
	q := `SELECT ` + sessionColumns + ` FROM public.sessions WHERE id = $1`

	return a.scanSession(a.pool.QueryRow(ctx, q, id))
}

func (a *Adapter) GetUserSessions(userID string) ([]*lexauth.Session, error) {
	ctx := context.Background()
	q := `SELECT ` + sessionColumns + ` FROM public.sessions WHERE user_id = $1 ORDER BY created_at`

	rows, err := a.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*lexauth.Session
	for rows.Next() {
		session := &lexauth.Session{}
		err := rows.Scan(&session.ID, &session.UserID, &session.TokenHash, &session.IPAddress,
			&session.UserAgent, &session.ExpiresAt, &session.CreatedAt, &session.UpdatedAt)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (a *Adapter) UpdateSession(session *lexauth.Session) error {
	ctx := context.Background()
	q := `UPDATE public.sessions SET token_hash = $1, expires_at = $2, updated_at = $3 WHERE id = $4`

	tag, err := a.pool.Exec(ctx, q, session.TokenHash, session.ExpiresAt, session.UpdatedAt, session.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lexauth.ErrSessionNotFound
	}
	return nil
}

func (a *Adapter) DeleteSessionByID(id string) error {
	ctx := context.Background()
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lexauth.ErrSessionNotFound
	}
	return nil
}

func (a *Adapter) DeleteSessionByHash(tokenHash string) error {
	ctx := context.Background()
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lexauth.ErrSessionNotFound
	}
	return nil
}

func (a *Adapter) DeleteUserSessions(userID string) (int, error) {
	ctx := context.Background()
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (a *Adapter) DeleteExpiredSessions() (int, error) {
	ctx := context.Background()
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (a *Adapter) scanSession(row pgx.Row) (*lexauth.Session, error) {
	session := &lexauth.Session{}
	err := row.Scan(&session.ID, &session.UserID, &session.TokenHash, &session.IPAddress,
		&session.UserAgent, &session.ExpiresAt, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, lexauth.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}
