package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"projecthub/backend/auth"
	"projecthub/backend/logging"
	"projecthub/backend/users-service/models"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users  UserRepository
	tokens *auth.TokenManager
	common *CommonPasswords
	now    func() time.Time
}

// NewUserService builds the identity service. common may be nil.
func NewUserService(users UserRepository, tokens *auth.TokenManager, common *CommonPasswords) *UserService {
	return &UserService{users: users, tokens: tokens, common: common, now: time.Now}
}

// ValidatePassword enforces length, an uppercase letter, a digit, a special
// character, and absence from the common-password list.
func (s *UserService) ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: must be at least 8 characters long", ErrWeakPassword)
	}
	if !strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return fmt.Errorf("%w: must contain at least one uppercase letter", ErrWeakPassword)
	}
	if !strings.ContainsAny(password, "0123456789") {
		return fmt.Errorf("%w: must contain at least one number", ErrWeakPassword)
	}
	if !strings.ContainsAny(password, "!@#$%^&*.,") {
		return fmt.Errorf("%w: must contain at least one special character", ErrWeakPassword)
	}
	if s.common.Contains(password) {
		return fmt.Errorf("%w: password is too common", ErrWeakPassword)
	}
	return nil
}

func (s *UserService) RegisterUser(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := s.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	return s.create(ctx, req, models.RoleUser)
}

func (s *UserService) create(ctx context.Context, req models.RegisterRequest, role string) (*models.User, error) {
	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:  req.Username,
		Name:      html.EscapeString(req.Name),
		LastName:  html.EscapeString(req.LastName),
		Email:     html.EscapeString(req.Email),
		Password:  string(hashed),
		Role:      role,
		IsActive:  true,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User %s registered with id %d and role %s", user.Username, user.ID, role)
	return user, nil
}

func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logging.Logger.Warnf("Event ID: LOGIN_UNKNOWN_USER, Description: Login attempt for unknown user %s", req.Username)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || user.Deleted() {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logging.Logger.Warnf("Event ID: LOGIN_BAD_PASSWORD, Description: Wrong password for user %s", req.Username)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	logging.Logger.Infof("Event ID: LOGIN_SUCCESS, Description: User %s logged in", user.Username)
	return &models.LoginResponse{Token: token, User: *user}, nil
}

// GetUser returns an existing, non-deleted user.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Deleted() {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(all))
	for _, u := range all {
		if !u.Deleted() {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *UserService) ChangeRole(ctx context.Context, actor auth.Principal, id int64, role string) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}
	if user.Role == models.RoleSystemAdmin {
		admins, err := s.users.CountActiveByRole(ctx, models.RoleSystemAdmin)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, ErrLastAdminDemotion
		}
	}
	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	user.Role = role
	logging.Logger.Infof("Event ID: USER_ROLE_CHANGED, Description: User %d role set to %s by user %d", id, role, actor.UserID)
	return user, nil
}

// EnsureAdmin creates the bootstrap SystemAdmin when none is active.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password, email string) error {
	if username == "" || password == "" {
		logging.Logger.Warn("Event ID: ADMIN_BOOTSTRAP_SKIPPED, Description: ADMIN_USERNAME or ADMIN_PASSWORD not set")
		return nil
	}
	admins, err := s.users.CountActiveByRole(ctx, models.RoleSystemAdmin)
	if err != nil {
		return err
	}
	if admins > 0 {
		return nil
	}
	_, err = s.create(ctx, models.RegisterRequest{
		Username: username,
		Email:    email,
		Name:     "System",
		LastName: "Administrator",
		Password: password,
	}, models.RoleSystemAdmin)
	if errors.Is(err, ErrUsernameTaken) {
		user, ferr := s.users.FindByUsername(ctx, username)
		if ferr != nil {
			return ferr
		}
		if user.Deleted() {
			return fmt.Errorf("bootstrap admin %s was deleted: %w", username, err)
		}
		logging.Logger.Infof("Event ID: ADMIN_BOOTSTRAP_PROMOTE, Description: Promoting existing user %s to SystemAdmin", username)
		return s.users.UpdateRole(ctx, user.ID, models.RoleSystemAdmin)
	}
	return err
}
