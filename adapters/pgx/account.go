package pgx

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/legalaipro/lexauth"
)

func (a *Adapter) CreateAccount(account *lexauth.Account) error {
	ctx := context.Background()

	query := `INSERT INTO public.accounts (id, user_id, provider_id, account_id, password)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`
	var createdAt, updatedAt time.Time

	err := a.pool.QueryRow(ctx, query,
		account.ID, account.UserID, account.ProviderID, account.AccountID, account.Password,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return err
	}

	account.CreatedAt = createdAt
	account.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) GetAccountByID(id string) (*lexauth.Account, error) {
	ctx := context.Background()
	q := `SELECT id, user_id, provider_id, account_id, password, created_at, updated_at
		FROM public.accounts WHERE id = $1`

	account := &lexauth.Account{}
	err := a.pool.QueryRow(ctx, q, id).Scan(
		&account.ID, &account.UserID, &account.ProviderID, &account.AccountID,
		&account.Password, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, lexauth.ErrUserNotFound
		}
		return nil, err
	}
	return account, nil
}

func (a *Adapter) GetAccountByUserAndProvider(userID, providerID string) ([]*lexauth.Account, error) {
	ctx := context.Background()
	q := `SELECT id, user_id, provider_id, account_id, password, created_at, updated_at
		FROM public.accounts WHERE user_id = $1 AND provider_id = $2`

	rows, err := a.pool.Query(ctx, q, userID, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*lexauth.Account
	for rows.Next() {
		account := &lexauth.Account{}
		err := rows.Scan(
			&account.ID, &account.UserID, &account.ProviderID, &account.AccountID,
			&account.Password, &account.CreatedAt, &account.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (a *Adapter) UpdateAccount(account *lexauth.Account) error {
	ctx := context.Background()
	q := `UPDATE public.accounts SET password = $1, updated_at = now() WHERE id = $2 RETURNING updated_at`
	var updatedAt time.Time
	err := a.pool.QueryRow(ctx, q, account.Password, account.ID).Scan(&updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return lexauth.ErrUserNotFound
		}
		return err
	}
	account.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) DeleteAccount(id string) error {
	ctx := context.Background()
	_, err := a.pool.Exec(ctx, `DELETE FROM public.accounts WHERE id = $1`, id)
	return err
}
