package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/internal/domain/ports"
	"github.com/jroneil/MI-Tool/pkg/constants"
	apperrors "github.com/jroneil/MI-Tool/pkg/errors"
	"github.com/jroneil/MI-Tool/pkg/query"
)

var _ ports.UserRepository = (*UserRepository)(nil)

var userColumns = []string{
	constants.FieldID, constants.FieldEmail, constants.FieldName,
	constants.FieldPasswordHash, constants.FieldCreatedAt,
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and sets its id and creation time
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	u.CreatedAt = time.Now().UTC()
	q := query.Insert(constants.TableUser, map[string]interface{}{
		constants.FieldEmail:        u.Email,
		constants.FieldName:         u.Name,
		constants.FieldPasswordHash: u.PasswordHash,
		constants.FieldCreatedAt:    u.CreatedAt,
	}).Build()

	res, err := executor(ctx, r.db).ExecContext(ctx, q.SQL, q.Params...)
	if isDuplicateKey(err) {
		return apperrors.NewBadRequestConflict("User", "Email already registered")
	}
	if err != nil {
		return err
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, constants.FieldID, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, constants.FieldEmail, email)
}

func (r *UserRepository) getOne(ctx context.Context, column string, value interface{}) (*models.User, error) {
	q := query.From(constants.TableUser).Select(userColumns...).WhereEq(column, value).Limit(1).Build()

	var u models.User
	var name sql.NullString
	err := executor(ctx, r.db).QueryRowContext(ctx, q.SQL, q.Params...).
		Scan(&u.ID, &u.Email, &name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if name.Valid {
		u.Name = &name.String
	}
	return &u, nil
}
