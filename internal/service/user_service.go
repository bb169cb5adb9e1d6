package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-timetable-api/internal/models"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	SetRole(ctx context.Context, id string, role models.UserRole) error
	CountActiveByRole(ctx context.Context, role models.UserRole) (int, error)
}

// UserService administers staff accounts. At least one active superuser
// always remains.
type UserService struct {
	repo      userRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates a UserService. audit may be nil.
func NewUserService(repo userRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns a page of staff accounts.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}
	if users == nil {
		users = []models.User{}
	}
	return users, paginationFor(filter.Page, filter.PageSize, total), nil
}

// SetRole applies change. Setting the role a user already has is a no-op
// and is not audited. Superusers cannot demote themselves, and the last
// active superuser cannot be demoted by anyone.
func (s *UserService) SetRole(ctx context.Context, change models.RoleChange) (*models.User, error) {
	if err := s.validator.Struct(change); err != nil {
		return nil, appErrors.Validation(err, "invalid role payload")
	}
	if change.UserID == change.ActorID && change.Role != models.RoleSuperuser {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot remove your own superuser role")
	}

	user, err := s.findUser(ctx, change.UserID)
	if err != nil {
		return nil, err
	}
	previous := user.Role
	if previous == change.Role {
		return user, nil
	}

	if previous == models.RoleSuperuser && user.Active {
		remaining, err := s.repo.CountActiveByRole(ctx, models.RoleSuperuser)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count superusers")
		}
		if remaining <= 1 {
			return nil, appErrors.Clone(appErrors.ErrConflict, "at least one active superuser must remain")
		}
	}

	if err := s.repo.SetRole(ctx, change.UserID, change.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}
	s.logger.Info("staff role changed",
		zap.String("user_id", change.UserID),
		zap.String("actor_id", change.ActorID),
		zap.String("from", string(previous)),
		zap.String("to", string(change.Role)),
	)
	s.recordRoleChange(ctx, change, previous)

	return s.findUser(ctx, change.UserID)
}

func (s *UserService) findUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

func (s *UserService) recordRoleChange(ctx context.Context, change models.RoleChange, previous models.UserRole) {
	if s.audit == nil {
		return
	}
	details, _ := json.Marshal(map[string]models.UserRole{"from": previous, "to": change.Role})
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &change.ActorID,
		Action:     models.AuditActionUpdate,
		Resource:   "staff",
		ResourceID: &change.UserID,
		NewValues:  details,
		IPAddress:  change.IP,
		UserAgent:  change.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record role change audit log", zap.Error(err))
	}
}

const (
	defaultListPageSize = 20
	maxListPageSize     = 100
)

func paginationFor(page, pageSize, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > maxListPageSize {
		pageSize = defaultListPageSize
	}
	return &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
