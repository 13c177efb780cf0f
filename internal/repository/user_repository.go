package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/edu-resource-hub/internal/model"
	"github.com/iliyamo/edu-resource-hub/internal/utils"
)

const userColumns = "id,username,email,password_hash,role,is_active,is_approved_teacher,is_blocked,block_reason,created_at,updated_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email or username already exists")

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.IsActive, &u.IsApprovedTeacher, &u.IsBlocked, &u.BlockReason,
		&u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user and returns its ID. Role is stored as given; the
// handler layer normalizes it and never lets a client register as ADMIN.
func (r *UserRepo) Create(ctx context.Context, username, email, password, role string, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role) VALUES (?,?,?,?)",
		username, email, hash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id, mapping sql.ErrNoRows to ErrUserNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// List returns a page of all users ordered by id. Used by the admin
// account listing.
func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id ASC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ListUnapprovedTeachers returns teacher accounts awaiting approval.
func (r *UserRepo) ListUnapprovedTeachers(ctx context.Context, offset, limit int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role=? AND is_approved_teacher=0 ORDER BY id ASC LIMIT ? OFFSET ?",
		"TEACHER", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ApproveTeacher marks a teacher account as approved. The write is
// idempotent: approving an already-approved teacher affects zero rows and
// is still success.
func (r *UserRepo) ApproveTeacher(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_approved_teacher=1, updated_at=CURRENT_TIMESTAMP WHERE id=?", id)
	return err
}

// SetBlocked blocks or unblocks an account. The reason is stored alongside
// the flag when blocking and cleared when unblocking.
func (r *UserRepo) SetBlocked(ctx context.Context, id uint64, blocked bool, reason *string) error {
	if !blocked {
		reason = nil
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_blocked=?, block_reason=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		blocked, reason, id)
	return err
}
