package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/vibrantflight/internal/apperrors"
	"github.com/example/vibrantflight/internal/models"
	"github.com/example/vibrantflight/internal/store"
	"github.com/example/vibrantflight/internal/telemetry"
	"github.com/example/vibrantflight/internal/utils"
)

// IdentityConfig carries the token settings the identity service needs.
type IdentityConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
	PublicBaseURL string
}

// IdentityService owns users, admins, credentials and reset tokens.
type IdentityService struct {
	users  UserRepository
	admins AdminRepository
	mailer Mailer
	cfg    IdentityConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewIdentityService(users UserRepository, admins AdminRepository, mailer Mailer, cfg IdentityConfig, logger *zap.Logger) *IdentityService {
	return &IdentityService{
		users:  users,
		admins: admins,
		mailer: mailer,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Account is the identity shape returned with a token.
type Account struct {
	ID    uuid.UUID   `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// AuthResult pairs the authenticated account with its bearer token.
type AuthResult struct {
	Message string
	User    Account
	Token   string
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Mobile   string
	Password string
}

// Register creates a user account and signs a user token for it.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "identity.Register")
	defer span.End()

	name := strings.TrimSpace(in.Name)
	email := models.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperrors.Validation("Name, email and password required")
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.admins.FindAdminByEmail(ctx, email); err == nil {
		return nil, apperrors.Duplicate("User already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Dependency("Server error", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Dependency("Server error", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		Mobile:       strings.TrimSpace(in.Mobile),
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.Duplicate("User already exists")
		}
		return nil, apperrors.Dependency("Server error", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.issue("User registered successfully", models.Principal{ID: user.ID, Role: models.RoleUser}, user.Name, user.Email)
}

// Login checks admin credentials first, then user credentials.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "identity.Login")
	defer span.End()

	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.Validation("Email and password required")
	}

	admin, err := s.admins.FindAdminByEmail(ctx, email)
	switch {
	case err == nil:
		if !utils.CheckPassword(admin.PasswordHash, password) {
			telemetry.AuthLoginsTotal.WithLabelValues("invalid").Inc()
			return nil, apperrors.Unauthorized("Invalid admin credentials")
		}
		telemetry.AuthLoginsTotal.WithLabelValues("admin").Inc()
		return s.issue("Welcome Admin!", models.Principal{ID: admin.ID, Role: models.RoleAdmin}, admin.Name, admin.Email)
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperrors.Dependency("Server error", err)
	}

	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			telemetry.AuthLoginsTotal.WithLabelValues("unknown").Inc()
		}
		return nil, err
	}
	if !s.VerifyCredential(user, password) {
		telemetry.AuthLoginsTotal.WithLabelValues("invalid").Inc()
		return nil, apperrors.Unauthorized("Invalid user credentials")
	}

	telemetry.AuthLoginsTotal.WithLabelValues("user").Inc()
	return s.issue("Login successful", models.Principal{ID: user.ID, Role: models.RoleUser}, user.Name, user.Email)
}

func (s *IdentityService) issue(message string, principal models.Principal, name, email string) (*AuthResult, error) {
	token, err := utils.GenerateToken(s.cfg.JWTSecret, principal, s.cfg.TokenTTL)
	if err != nil {
		return nil, apperrors.Dependency("Failed to generate token", err)
	}
	return &AuthResult{
		Message: message,
		User:    Account{ID: principal.ID, Name: name, Email: email, Role: principal.Role},
		Token:   token,
	}, nil
}

// FindByEmail looks a user up by normalized email.
func (s *IdentityService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindUserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

// VerifyCredential reports whether password matches the stored hash.
func (s *IdentityService) VerifyCredential(user *models.User, password string) bool {
	return utils.CheckPassword(user.PasswordHash, password)
}

// IssueResetToken stores a fresh token on the user, replacing any earlier one.
func (s *IdentityService) IssueResetToken(ctx context.Context, user *models.User) (string, error) {
	token, err := utils.NewResetToken()
	if err != nil {
		return "", apperrors.Dependency("Failed to generate token", err)
	}

	expiry := s.now().Add(s.cfg.ResetTokenTTL)
	user.ResetToken = token
	user.ResetTokenExpiry = &expiry
	if err := s.users.SaveUser(ctx, user); err != nil {
		return "", apperrors.Dependency("Server error", err)
	}
	return token, nil
}

// ConsumeResetToken accepts token when it matches the stored one and has not
// expired, and clears it on user. The caller persists user afterwards.
func (s *IdentityService) ConsumeResetToken(user *models.User, token string) bool {
	if user.ResetTokenExpiry == nil || !s.now().Before(*user.ResetTokenExpiry) {
		return false
	}
	if !utils.TokensEqual(user.ResetToken, token) {
		return false
	}
	user.ResetToken = ""
	user.ResetTokenExpiry = nil
	return true
}

// ForgotPassword issues a reset token and mails the reset link.
func (s *IdentityService) ForgotPassword(ctx context.Context, email string) error {
	ctx, span := telemetry.StartSpan(ctx, "identity.ForgotPassword")
	defer span.End()

	if strings.TrimSpace(email) == "" {
		return apperrors.Validation("Email is required")
	}

	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.IssueResetToken(ctx, user)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/html/reset-password.html?token=%s&email=%s",
		s.cfg.PublicBaseURL, url.QueryEscape(token), url.QueryEscape(user.Email))
	err = s.mailer.Send(ctx, Mail{
		To:      user.Email,
		Subject: "Password Reset Request",
		HTML: fmt.Sprintf(`<p>You requested a password reset. Click <a href="%s">here</a> to reset your password. This link expires in %s.</p>`,
			html.EscapeString(link), humanDuration(s.cfg.ResetTokenTTL)),
	})
	if err != nil {
		s.logger.Error("reset mail failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return apperrors.Dependency("Failed to send reset email", err)
	}
	return nil
}

// ResetPassword replaces the password when the reset token is valid.
func (s *IdentityService) ResetPassword(ctx context.Context, email, token, password string) error {
	ctx, span := telemetry.StartSpan(ctx, "identity.ResetPassword")
	defer span.End()

	if strings.TrimSpace(email) == "" || token == "" || password == "" {
		return apperrors.Validation("Email, token and password required")
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !s.ConsumeResetToken(user, token) {
		return apperrors.Validation("Invalid or expired token")
	}

	return s.setPassword(ctx, user, password)
}

// Me returns the caller's stored profile.
func (s *IdentityService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

// UpdateAddress overwrites the caller's saved address.
func (s *IdentityService) UpdateAddress(ctx context.Context, userID uuid.UUID, address models.Address) (models.Address, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return models.Address{}, err
	}

	user.Address = address
	if err := s.users.SaveUser(ctx, user); err != nil {
		return models.Address{}, apperrors.Dependency("Server error", err)
	}
	return user.Address, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *IdentityService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if current == "" || next == "" {
		return apperrors.Validation("Current and new password required")
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !s.VerifyCredential(user, current) {
		return apperrors.Unauthorized("Current password is incorrect")
	}

	return s.setPassword(ctx, user, next)
}

// SeedAdmin replaces any admin with the same email by a freshly hashed one.
func (s *IdentityService) SeedAdmin(ctx context.Context, name, email, password string) (*models.Admin, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.Validation("Admin email and password required")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperrors.Dependency("Server error", err)
	}

	admin := &models.Admin{Name: name, Email: email, PasswordHash: hash}
	if err := s.admins.ReplaceAdmin(ctx, admin); err != nil {
		return nil, apperrors.Dependency("Failed to store admin", err)
	}
	return admin, nil
}

func (s *IdentityService) setPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return apperrors.Dependency("Server error", err)
	}

	user.PasswordHash = hash
	if err := s.users.SaveUser(ctx, user); err != nil {
		return apperrors.Dependency("Server error", err)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < utils.MinPasswordLength {
		return apperrors.Validation(fmt.Sprintf("Password must be at least %d characters", utils.MinPasswordLength))
	}
	if len(password) > utils.MaxPasswordBytes {
		return apperrors.Validation(fmt.Sprintf("Password must be at most %d bytes", utils.MaxPasswordBytes))
	}
	return nil
}

func userLookupError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound("User not found")
	}
	return apperrors.Dependency("Server error", err)
}

func humanDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}
