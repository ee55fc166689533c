package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-roster/internal/database"
	"github.com/hugh/go-roster/internal/database/models"
	"github.com/hugh/go-roster/internal/session"
	"github.com/hugh/go-roster/internal/validation"
	"github.com/hugh/go-roster/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgEmailTaken         = "Email is already registered."
	msgInvalidCredentials = "Invalid email or password"
	msgLoginRequired      = "Please log in to continue."
)

var ErrUserNotFound = errors.New("user not found")

type Service struct {
	db         *gorm.DB
	tokens     TokenService
	sessions   session.Store
	validator  *validation.Validator
	logger     *slog.Logger
	sessionTTL time.Duration
}

func NewService(db *gorm.DB, tokens TokenService, sessions session.Store, v *validation.Validator, logger *slog.Logger, sessionTTL time.Duration) *Service {
	return &Service{
		db:         db,
		tokens:     tokens,
		sessions:   sessions,
		validator:  v,
		logger:     logger,
		sessionTTL: sessionTTL,
	}
}

type RegisterInput struct {
	FirstName string `form:"first_name" validate:"required,min=3,max=70"`
	LastName  string `form:"last_name" validate:"required,min=3,max=50"`
	Email     string `form:"email" validate:"required,min=10,max=50,email"`
	Password  string `form:"password" validate:"required,min=8,max=20"`
	OrgName   string `form:"organization" validate:"required,min=2,max=100"`
}

func (in *RegisterInput) normalize() {
	in.FirstName = validation.SanitizeString(in.FirstName)
	in.LastName = validation.SanitizeString(in.LastName)
	in.Email = validation.NormalizeEmail(in.Email)
	in.OrgName = validation.SanitizeString(in.OrgName)
}

type LoginInput struct {
	Email    string `form:"email" validate:"required,min=4,max=50"`
	Password string `form:"password" validate:"required,min=8,max=20"`
}

// LoginResult carries the signed cookie value for a new session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Register creates a user in the named organization, creating the
// organization if it does not exist yet. It does not start a session.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.normalize()
	if fields := s.validator.Struct(input); len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("checking email: %w", err)
		}
		if count > 0 {
			return apperr.Conflict(msgEmailTaken)
		}

		org, err := resolveOrganization(tx, input.OrgName)
		if err != nil {
			return err
		}

		user = models.User{
			FirstName:      input.FirstName,
			LastName:       input.LastName,
			Email:          input.Email,
			PasswordHash:   hash,
			OrganizationID: org.ID,
		}
		if err := tx.Create(&user).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Wrap(apperr.KindConflict, msgEmailTaken, err)
			}
			return fmt.Errorf("creating user: %w", err)
		}
		user.Organization = org
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			return nil, apperr.Internal(err)
		}
		return nil, err
	}

	s.logger.Info("registered user",
		"user_id", user.ID,
		"organization_id", user.OrganizationID,
	)

	return &user, nil
}

// resolveOrganization returns the organization called name, inserting it if
// needed. Concurrent callers racing on the same name converge on the row
// that won the unique index.
func resolveOrganization(tx *gorm.DB, name string) (*models.Organization, error) {
	var org models.Organization
	err := tx.Where("name = ?", name).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !database.IsNotFound(err) {
		return nil, fmt.Errorf("finding organization: %w", err)
	}

	candidate := models.Organization{Name: name}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&candidate).Error; err != nil && !database.IsUniqueViolation(err) {
		return nil, fmt.Errorf("creating organization: %w", err)
	}

	if err := tx.Where("name = ?", name).First(&org).Error; err != nil {
		return nil, fmt.Errorf("re-reading organization: %w", err)
	}
	return &org, nil
}

// Login checks credentials and opens a server-side session.
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	input.Email = validation.NormalizeEmail(input.Email)
	if fields := s.validator.Struct(input); len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Organization").
		Where("email = ?", input.Email).
		First(&user).Error
	if err != nil {
		if database.IsNotFound(err) {
			burnPasswordCheck(input.Password)
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return nil, apperr.Internal(fmt.Errorf("loading user: %w", err))
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		s.logger.Debug("login rejected", "user_id", user.ID)
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	sess, err := session.New(user.ID, s.sessionTTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, apperr.Internal(err)
	}

	token, err := s.tokens.GenerateToken(sess.ID, user.ID, sess.ExpiresAt)
	if err != nil {
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, apperr.Internal(fmt.Errorf("signing session token: %w", err))
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return &LoginResult{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		User:      &user,
	}, nil
}

// Authenticate resolves a session cookie value to an Identity. Every failure
// is reported as Unauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, apperr.Unauthorized(msgLoginRequired)
	}

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, msgLoginRequired, err)
	}

	sess, err := s.sessions.Get(ctx, claims.SessionID())
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			s.logger.Error("session lookup failed", "error", err)
		}
		return nil, apperr.Wrap(apperr.KindUnauthorized, msgLoginRequired, err)
	}

	subject, _ := claims.UserID()
	if sess.UserID != subject {
		return nil, apperr.Unauthorized(msgLoginRequired)
	}

	user, err := s.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, msgLoginRequired, err)
	}

	return identityFromUser(user, sess.ID), nil
}

// Logout removes the session named by token. Unknown or invalid tokens are
// ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.SessionID()); err != nil {
		return apperr.Internal(err)
	}
	s.logger.Info("user logged out", "subject", claims.Subject)
	return nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Organization").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
