package persistence

import (
	"context"
	"database/sql"

	"social-scheduler/domain/model"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) GetById(ctx context.Context, id int64) (model.User, error) {
	var user model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.name, u.user_name, u.password, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.id = $1`)
	if err != nil {
		return user, err
	}
	defer stmt.Close()
	row := stmt.QueryRowContext(ctx, id)
	if err := row.Scan(&user.ID, &user.Name, &user.UserName, &user.Password, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	var user model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.name, u.user_name, u.password, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.user_name = $1`)
	if err != nil {
		return user, err
	}
	defer stmt.Close()
	row := stmt.QueryRowContext(ctx, userName)
	if err := row.Scan(&user.ID, &user.Name, &user.UserName, &user.Password, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user model.User) error {
	stmt, err := r.db.PrepareContext(ctx, `INSERT INTO public.user (name, user_name, password) VALUES ($1, $2, $3)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.ExecContext(ctx, user.Name, user.UserName, user.Password)
	return err
}
