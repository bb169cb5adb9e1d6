package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-timetable-api/internal/models"
)

const staffColumns = `id, username, display_name, role, active, last_login, created_at, updated_at`

var staffSorts = map[string]string{
	"username":   "username",
	"last_login": "last_login",
	"created_at": "created_at",
	"role":       "role",
}

// UserRepository stores staff accounts and the audit trail of their edits.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) findOne(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM staff_users WHERE %s = $1 LIMIT 1", staffColumns, column)
	var user models.User
	err := r.db.GetContext(ctx, &user, query, value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, sql.ErrNoRows
	case err != nil:
		return nil, fmt.Errorf("find staff by %s: %w", column, err)
	}
	return &user, nil
}

// FindByUsername looks up a staff account by directory username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username", username)
}

// FindByID looks up a staff account by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "id", id)
}

// Upsert records a directory login. A first login inserts the account with
// user.Role; later logins keep the stored role and only bump last_login.
// user is overwritten with the stored row.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.LastLogin == nil {
		user.LastLogin = &now
	}

	query := `INSERT INTO staff_users (id, username, display_name, role, active, last_login, created_at, updated_at)
VALUES ($1, $2, $3, $4, TRUE, $5, $6, $6)
ON CONFLICT (username) DO UPDATE SET last_login = EXCLUDED.last_login, updated_at = EXCLUDED.updated_at
RETURNING ` + staffColumns
	if err := r.db.GetContext(ctx, user, query, user.ID, user.Username, user.DisplayName, user.Role, user.LastLogin, now); err != nil {
		return fmt.Errorf("upsert staff %s: %w", user.Username, err)
	}
	return nil
}

// UpdateLastLogin sets last_login for id.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE staff_users SET last_login = $2, updated_at = $3 WHERE id = $1`, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// SetRole changes the role of id. sql.ErrNoRows means no such account.
func (r *UserRepository) SetRole(ctx context.Context, id string, role models.UserRole) error {
	res, err := r.db.ExecContext(ctx, `UPDATE staff_users SET role = $2, updated_at = $3 WHERE id = $1`, id, role, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set staff role: %w", err)
	}
	return expectAffected(res)
}

// CountActiveByRole counts active accounts holding role.
func (r *UserRepository) CountActiveByRole(ctx context.Context, role models.UserRole) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM staff_users WHERE role = $1 AND active`, role); err != nil {
		return 0, fmt.Errorf("count %s accounts: %w", role, err)
	}
	return n, nil
}

// List returns a page of staff accounts and the total matching count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var where conditions
	if filter.Role != nil {
		where.add("role = ?", *filter.Role)
	}
	if filter.Active != nil {
		where.add("active = ?", *filter.Active)
	}
	if filter.Search != "" {
		where.add("(LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?)", "%"+strings.ToLower(filter.Search)+"%")
	}
	order := sortClause(filter.SortBy, filter.SortOrder, staffSorts, "username")

	var users []models.User
	total, err := selectPage(ctx, r.db, &users, staffColumns, where.from("FROM staff_users"), order, pageClause(filter.Page, filter.PageSize), where.args)
	if err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}
	return users, total, nil
}

// CreateAuditLog appends one entry to the audit trail.
func (r *UserRepository) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, new_values, ip_address, user_agent, created_at)
VALUES (:id, :user_id, :action, :resource, :resource_id, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("append audit log %s %s: %w", entry.Action, entry.Resource, err)
	}
	return nil
}
