package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-timetable-api/internal/models"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
)

type authUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuthConfig configures token issuing and first-login role assignment.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	// BootstrapSuperuser is granted SUPERUSER on first login.
	BootstrapSuperuser string
}

// AuthService signs staff in through the directory and issues access tokens.
// Every login attempt, accepted or not, lands in the audit trail.
type AuthService struct {
	repo      authUserRepository
	directory DirectoryAuthenticator
	audit     auditRecorder
	tokens    *accessTokens
	validator *validator.Validate
	logger    *zap.Logger
	bootstrap string
}

// NewAuthService constructs an AuthService. audit may be nil.
func NewAuthService(repo authUserRepository, directory DirectoryAuthenticator, audit auditRecorder, validate *validator.Validate, logger *zap.Logger, cfg AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.AccessTokenExpiry <= 0 {
		cfg.AccessTokenExpiry = 12 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		directory: directory,
		audit:     audit,
		tokens:    newAccessTokens(cfg.AccessTokenSecret, cfg.Issuer, cfg.AccessTokenExpiry),
		validator: validate,
		logger:    logger,
		bootstrap: strings.ToLower(strings.TrimSpace(cfg.BootstrapSuperuser)),
	}
}

// Login checks the credentials against the directory, records the staff
// account and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid login payload")
	}
	username := strings.ToLower(strings.TrimSpace(req.Username))

	identity, err := s.directory.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		var out *appErrors.Error
		switch {
		case errors.Is(err, ErrDirectoryRejected):
			out = appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		case errors.Is(err, ErrDirectoryNotStaff):
			out = appErrors.Clone(appErrors.ErrNotStaff, "")
		default:
			s.logger.Error("directory authentication failed", zap.String("username", username), zap.Error(err))
			out = appErrors.Wrap(err, appErrors.ErrDirectoryUnavailable.Code, appErrors.ErrDirectoryUnavailable.Status, appErrors.ErrDirectoryUnavailable.Message)
		}
		s.recordLogin(ctx, req, nil, username, out.Code)
		return nil, out
	}

	role := models.RoleStaff
	if s.bootstrap != "" && strings.EqualFold(identity.Username, s.bootstrap) {
		role = models.RoleSuperuser
	}
	now := time.Now().UTC()
	user := &models.User{
		Username:    strings.ToLower(identity.Username),
		DisplayName: identity.DisplayName,
		Role:        role,
		LastLogin:   &now,
	}
	if err := s.repo.Upsert(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record user")
	}
	if !user.Active {
		s.recordLogin(ctx, req, &user.ID, user.Username, appErrors.ErrInactiveAccount.Code)
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "")
	}

	token, expires, err := s.tokens.issue(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	s.recordLogin(ctx, req, &user.ID, user.Username, "")

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(expires.Sub(now).Seconds()),
		IssuedAt:    now,
		User:        userInfo(user),
	}, nil
}

// recordLogin audits one attempt. failure is the error code, empty on success.
func (s *AuthService) recordLogin(ctx context.Context, req models.LoginRequest, userID *string, username, failure string) {
	if s.audit == nil {
		return
	}
	action, outcome := models.AuditActionLogin, map[string]string{"status": "success"}
	if failure != "" {
		action, outcome = models.AuditActionLoginFailed, map[string]string{"status": "rejected", "reason": failure}
	}
	details, _ := json.Marshal(outcome)
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   "auth",
		ResourceID: &username,
		NewValues:  details,
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record login audit log", zap.String("username", username), zap.Error(err))
	}
}

// Me returns the profile for the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	user, err := s.repo.FindByID(ctx, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	info := userInfo(user)
	return &info, nil
}

// ValidateToken verifies signature, issuer and lifetime of an access token.
func (s *AuthService) ValidateToken(raw string) (*models.JWTClaims, error) {
	claims, err := s.tokens.parse(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	return claims, nil
}

func userInfo(user *models.User) models.UserInfo {
	return models.UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}
}
