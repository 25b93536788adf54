package pgx

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/legalaipro/lexauth"
)

const userColumns = `id, email, name, role, country, bar_number, is_firm, firm_name, created_at, updated_at`

func (a *Adapter) CreateUser(user *lexauth.User) error {
	ctx := context.Background()

	query := `INSERT INTO public.users (id, email, name, role, country, bar_number, is_firm, firm_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at, updated_at`
	var createdAt, updatedAt time.Time

	err := a.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.Name, string(user.Role), user.Country,
		user.BarNumber, user.IsFirm, user.FirmName,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return err
	}

	user.CreatedAt = createdAt
	user.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) GetUserByID(id string) (*lexauth.User, error) {
	ctx := context.Background()
	q := `SELECT ` + userColumns + ` FROM public.users WHERE id = $1`

	return a.scanUser(a.pool.QueryRow(ctx, q, id))
}

func (a *Adapter) GetUserByEmail(email string) (*lexauth.User, error) {
	ctx := context.Background()
	q := `SELECT ` + userColumns + ` FROM public.users WHERE email = $1`

	return a.scanUser(a.pool.QueryRow(ctx, q, email))
}

func (a *Adapter) UpdateUser(user *lexauth.User) error {
	ctx := context.Background()
	q := `UPDATE public.users SET email = $1, name = $2, role = $3, country = $4,
		bar_number = $5, is_firm = $6, firm_name = $7, updated_at = now()
		WHERE id = $8 RETURNING updated_at`
	var updatedAt time.Time
	err := a.pool.QueryRow(ctx, q,
		user.Email, user.Name, string(user.Role), user.Country,
		user.BarNumber, user.IsFirm, user.FirmName, user.ID,
	).Scan(&updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return lexauth.ErrUserNotFound
		}
		return err
	}
	user.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) DeleteUser(id string) error {
	ctx := context.Background()
	_, err := a.pool.Exec(ctx, `DELETE FROM public.users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return nil
}

func (a *Adapter) scanUser(row pgx.Row) (*lexauth.User, error) {
	user := &lexauth.User{}
	var role string
	var barNumber, firmName *string
	err := row.Scan(&user.ID, &user.Email, &user.Name, &role, &user.Country,
		&barNumber, &user.IsFirm, &firmName, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, lexauth.ErrUserNotFound
		}
		return nil, err
	}
	user.Role = lexauth.Role(role)
	user.BarNumber = barNumber
	user.FirmName = firmName
	return user, nil
}
