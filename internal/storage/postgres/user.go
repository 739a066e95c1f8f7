package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"social_blog/internal/domain"
)

const userColumns = "id, email, username, full_name, bio, avatar_url, created_at, updated_at"

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u domain.NewUser) (*domain.User, error) {
	query := `
		INSERT INTO users (email, username, password_hash, full_name)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	var user domain.User
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &user, query, u.Email, u.Username, u.PasswordHash, u.FullName)
	if isUniqueViolation(err) {
		return nil, domain.ErrUserExists
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail includes the password hash; other lookups leave it empty.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, "SELECT "+userColumns+", password_hash FROM users WHERE email = $1", email)
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (s *UserStore) UpdateProfile(ctx context.Context, id int64, p domain.ProfileUpdate) (*domain.User, error) {
	var sb strings.Builder
	args := make([]interface{}, 0, 4)

	sb.WriteString("UPDATE users SET ")
	set := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sb.WriteString(column)
		sb.WriteString(" = $")
		sb.WriteString(strconv.Itoa(len(args)))
		sb.WriteString(", ")
	}
	set("full_name", p.FullName)
	set("bio", p.Bio)
	set("avatar_url", p.AvatarURL)

	args = append(args, id)
	sb.WriteString("updated_at = CURRENT_TIMESTAMP WHERE id = $")
	sb.WriteString(strconv.Itoa(len(args)))
	sb.WriteString(" RETURNING ")
	sb.WriteString(userColumns)

	return s.getOne(ctx, sb.String(), args...)
}

func (s *UserStore) getOne(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var user domain.User
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
