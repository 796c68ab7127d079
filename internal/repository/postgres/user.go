package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/repository"
)

type userRepository struct {
	db querier
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.TrustScore == 0 {
		user.TrustScore = domain.BaselineTrustScore
	}
	query := `INSERT INTO users (email, name, role, trust_score, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, user.Email, user.Name, user.Role, user.TrustScore, now, now).Scan(&user.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	user := &domain.User{}
	query := `SELECT id, email, name, role, trust_score, created_on, updated_on FROM users WHERE id = $1`
	var createdOn, updatedOn time.Time
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.TrustScore, &createdOn, &updatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: domain.EntityTypeUser, ID: id}
	}
	if err != nil {
		return nil, err
	}
	user.CreatedOn = createdOn.Format("2006-01-02")
	user.UpdatedOn = updatedOn.Format("2006-01-02")
	return user, nil
}

func (r *userRepository) UpdateTrustScore(ctx context.Context, userID, newScore int32) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET trust_score=$1, updated_on=$2 WHERE id=$3`, newScore, time.Now(), userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &domain.NotFoundError{Entity: domain.EntityTypeUser, ID: userID}
	}
	return nil
}
