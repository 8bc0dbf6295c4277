package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"go-inventory-pos/internal/events"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("no user with that email")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
)

// AuthService identifies the acting user. Login is an email lookup; there is
// no password.
type AuthService interface {
	Login(ctx context.Context, email string) (*LoginResponse, error)
	Authenticate(ctx context.Context, token string) (*model.User, error)
	ValidateToken(ctx context.Context, token string) (*TokenValidationResponse, error)
	Heartbeat(ctx context.Context, userID uuid.UUID) error
	RevokeSessions(ctx context.Context, email string) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo repository.UserRepository
	signer   *jwt.Signer
	bus      *events.Bus
	now      func() time.Time
	log      zerolog.Logger
}

func NewAuthService(userRepo repository.UserRepository, signer *jwt.Signer, bus *events.Bus, log zerolog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		signer:   signer,
		bus:      bus,
		now:      time.Now,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

// Login issues a token and rotates the user's token version, which ends any
// session opened elsewhere.
func (s *authService) Login(ctx context.Context, email string) (*LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, invalid("email is required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, unavailable("login", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	now := s.now()
	user.TokenVersion = uuid.NewString()
	user.LastSeenAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, unavailable("rotate session", err)
	}

	token, err := s.signer.GenerateToken(user.ID, user.Email, user.FullName, user.RoleCode(), user.GetPrivilegeCodes(), user.TokenVersion)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("role", user.RoleCode()).Msg("user logged in")
	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

// Authenticate verifies the token and re-reads the user so deactivation and
// newer logins take effect immediately.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.signer.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, unavailable("authenticate", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	return user, nil
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenValidationResponse, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	now := s.now()
	if err := s.userRepo.UpdateLastSeen(ctx, userID, now); err != nil {
		return unavailable("heartbeat", err)
	}

	s.bus.Publish(events.TopicUser, events.Event{
		Type:   "user_status_update",
		Action: "online",
		Data: map[string]interface{}{
			"user_id":      userID.String(),
			"status":       "online",
			"last_seen_at": now.UTC(),
		},
	})
	return nil
}

// RevokeSessions invalidates every token issued to the user with email.
func (s *authService) RevokeSessions(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return unavailable("load user", err)
	}
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, uuid.NewString()); err != nil {
		return unavailable("revoke sessions", err)
	}
	s.log.Info().Str("user_id", user.ID.String()).Msg("sessions revoked")
	return nil
}
