package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-timetable-api/internal/models"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
)

type userRepoMock struct {
	users     map[string]*models.User
	setCalls  int
	auditLogs []*models.AuditLog
}

func newUserRepoMock(users ...*models.User) *userRepoMock {
	m := &userRepoMock{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *userRepoMock) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var result []models.User
	for _, u := range m.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		result = append(result, *u)
	}
	return result, len(result), nil
}

func (m *userRepoMock) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *userRepoMock) SetRole(ctx context.Context, id string, role models.UserRole) error {
	m.setCalls++
	u, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Role = role
	return nil
}

func (m *userRepoMock) CountActiveByRole(ctx context.Context, role models.UserRole) (int, error) {
	n := 0
	for _, u := range m.users {
		if u.Role == role && u.Active {
			n++
		}
	}
	return n, nil
}

func (m *userRepoMock) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func staffUser(id string, role models.UserRole) *models.User {
	return &models.User{ID: id, Username: id, Role: role, Active: true}
}

func TestUserServiceListPagination(t *testing.T) {
	repo := newUserRepoMock(staffUser("1", models.RoleStaff), staffUser("2", models.RoleSuperuser))
	svc := NewUserService(repo, repo, nil, zap.NewNop())

	role := models.RoleStaff
	users, pagination, err := svc.List(context.Background(), models.UserFilter{Role: &role, PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)

	missing := models.UserRole("NOBODY")
	users, _, err = svc.List(context.Background(), models.UserFilter{Role: &missing})
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserServicePromote(t *testing.T) {
	repo := newUserRepoMock(staffUser("staff-1", models.RoleStaff), staffUser("admin-1", models.RoleSuperuser))
	svc := NewUserService(repo, repo, nil, zap.NewNop())

	user, err := svc.SetRole(context.Background(), models.RoleChange{UserID: "staff-1", Role: models.RoleSuperuser, ActorID: "admin-1", IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperuser, user.Role)

	require.Len(t, repo.auditLogs, 1)
	entry := repo.auditLogs[0]
	assert.Equal(t, "staff", entry.Resource)
	assert.Equal(t, "admin-1", *entry.UserID)
	assert.Equal(t, "staff-1", *entry.ResourceID)
	assert.Equal(t, "127.0.0.1", entry.IPAddress)
	assert.JSONEq(t, `{"from":"STAFF","to":"SUPERUSER"}`, string(entry.NewValues))
}

func TestUserServiceSameRoleIsNoop(t *testing.T) {
	repo := newUserRepoMock(staffUser("staff-1", models.RoleStaff), staffUser("admin-1", models.RoleSuperuser))
	svc := NewUserService(repo, repo, nil, zap.NewNop())

	user, err := svc.SetRole(context.Background(), models.RoleChange{UserID: "staff-1", Role: models.RoleStaff, ActorID: "admin-1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, user.Role)
	assert.Zero(t, repo.setCalls)
	assert.Empty(t, repo.auditLogs)
}

func TestUserServiceKeepsLastSuperuser(t *testing.T) {
	inactive := staffUser("admin-2", models.RoleSuperuser)
	inactive.Active = false
	repo := newUserRepoMock(staffUser("admin-1", models.RoleSuperuser), inactive)
	svc := NewUserService(repo, repo, nil, zap.NewNop())

	_, err := svc.SetRole(context.Background(), models.RoleChange{UserID: "admin-1", Role: models.RoleStaff, ActorID: "admin-2"})
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.setCalls)

	repo.users["admin-3"] = staffUser("admin-3", models.RoleSuperuser)
	user, err := svc.SetRole(context.Background(), models.RoleChange{UserID: "admin-1", Role: models.RoleStaff, ActorID: "admin-3"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, user.Role)
}

func TestUserServiceSetRoleErrors(t *testing.T) {
	repo := newUserRepoMock(staffUser("admin-1", models.RoleSuperuser))
	svc := NewUserService(repo, repo, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.SetRole(ctx, models.RoleChange{UserID: "admin-1", Role: models.RoleStaff, ActorID: "admin-1"})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.SetRole(ctx, models.RoleChange{UserID: "ghost", Role: models.RoleStaff, ActorID: "admin-1"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.SetRole(ctx, models.RoleChange{UserID: "admin-1", Role: "ROOT", ActorID: "other"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.SetRole(ctx, models.RoleChange{UserID: "admin-1", Role: models.RoleStaff})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	assert.Empty(t, repo.auditLogs)
}
