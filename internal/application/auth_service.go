package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/villagemarket/village-market/internal/domain/entity"
	repo "github.com/villagemarket/village-market/internal/domain/repository"
	"github.com/villagemarket/village-market/pkg/helpers"
	tpl "github.com/villagemarket/village-market/pkg/mailer/templates"
)

const (
	defaultSessionTTL = 24 * time.Hour
	defaultResetTTL   = 30 * time.Minute
)

type AuthService struct {
	Users      repo.UserRepository
	JWT        *helpers.JWTManager
	Redis      *redis.Client
	Mail       *Notifier
	Logger     *logrus.Logger
	SessionTTL time.Duration
	ResetTTL   time.Duration
	ResetURL   string
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, mail *Notifier, logger *logrus.Logger, sessionTTL time.Duration, resetURL string) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &AuthService{
		Users:      users,
		JWT:        jwt,
		Redis:      rdb,
		Mail:       mail,
		Logger:     logger,
		SessionTTL: sessionTTL,
		ResetTTL:   defaultResetTTL,
		ResetURL:   resetURL,
	}
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type SignupInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Signup creates an ACTIVE contributor account and signs it in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*entity.User, TokenPair, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, TokenPair{}, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, TokenPair{}, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, TokenPair{}, err
	}

	u := &entity.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Phone:    strings.TrimSpace(in.Phone),
		Password: hash,
		Role:     entity.RoleContributor,
		Status:   entity.UserActive,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, TokenPair{}, ErrEmailTaken
		}
		return nil, TokenPair{}, err
	}

	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}

	s.Mail.Send(ctx, u.Email, tpl.Welcome, tpl.NewWelcomeData(s.Mail.Config(), u.Name, u.Email))
	return u, pair, nil
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.CanSignIn() {
		return nil, ErrAccountDisabled
	}
	if helpers.NeedsRehash(u.Password) {
		s.rehash(ctx, u, password)
	}
	return u, nil
}

// rehash upgrades a stored hash to the current cost. Failures keep the old
// hash; the user is already authenticated.
func (s *AuthService) rehash(ctx context.Context, u *entity.User, password string) {
	hash, err := helpers.HashPassword(password)
	if err == nil {
		err = s.Users.UpdatePassword(ctx, u.ID, hash)
	}
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("password rehash failed")
		}
		return
	}
	u.Password = hash
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
// A new session replaces any previous one for the user.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.tokens(u, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate tokens failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := helpers.SessionKey(u.ID)
		pipe := s.Redis.TxPipeline()
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, s.sessionFields(u, sid))
		pipe.Expire(ctx, key, s.SessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			if s.Logger != nil {
				s.Logger.WithError(rErr).WithField("key", key).Error("redis session write failed")
			}
			return TokenPair{}, ErrSessionUnavailable
		}
	}
	return pair, nil
}

func (s *AuthService) sessionFields(u *entity.User, sid string) map[string]any {
	return map[string]any{
		"user_id":    u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"avatar_url": u.AvatarURL,
		"role":       string(u.Role),
		"status":     string(u.Status),
		"sid":        sid,
		"created_at": nowRFC3339(),
	}
}

func (s *AuthService) tokens(u *entity.User, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, string(u.Role), sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh validates the refresh token against the live session and rotates
// both tokens under a new session id.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*entity.User, TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidToken
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return nil, TokenPair{}, ErrInvalidToken
	}
	if !u.CanSignIn() {
		if err := s.Revoke(ctx, u.ID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("session revoke failed")
		}
		return nil, TokenPair{}, ErrAccountDisabled
	}
	if s.Redis != nil {
		sid, rErr := s.Redis.HGet(ctx, helpers.SessionKey(u.ID), "sid").Result()
		if rErr != nil || sid != claims.SessionID {
			return nil, TokenPair{}, ErrInvalidToken
		}
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Revoke ends the user's session; outstanding tokens stop working.
func (s *AuthService) Revoke(ctx context.Context, userID string) error {
	if s == nil || s.Redis == nil {
		return nil
	}
	return helpers.RedisDel(ctx, s.Redis, helpers.SessionKey(userID))
}

// TouchSession copies display fields into the live session hash, keeping its TTL.
func (s *AuthService) TouchSession(ctx context.Context, u *entity.User) {
	if s == nil || s.Redis == nil {
		return
	}
	key := helpers.SessionKey(u.ID)
	n, err := s.Redis.Exists(ctx, key).Result()
	if err != nil || n == 0 {
		return
	}
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"name":       u.Name,
		"email":      u.Email,
		"avatar_url": u.AvatarURL,
		"updated_at": nowRFC3339(),
	})
	if _, pErr := pipe.Exec(ctx); pErr != nil && s.Logger != nil {
		s.Logger.WithError(pErr).WithField("key", key).Warn("redis pipeline failed")
	}
}

type resetToken struct {
	UserID string `json:"user_id"`
}

func genToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ResetInit issues a reset link for a known email. Unknown emails return an
// empty link and no error so callers cannot enumerate accounts.
func (s *AuthService) ResetInit(ctx context.Context, email, ip string) (string, error) {
	if s.Redis == nil {
		return "", ErrSessionUnavailable
	}
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	tok, err := genToken(32)
	if err != nil {
		return "", err
	}
	if err := helpers.RedisSetJSON(ctx, s.Redis, helpers.ResetTokenKey(tok), resetToken{UserID: u.ID}, s.ResetTTL); err != nil {
		return "", err
	}

	link := s.ResetURL + "?token=" + tok
	s.Mail.Send(ctx, u.Email, tpl.ResetPassword, tpl.NewResetPasswordData(
		s.Mail.Config(), u.Name, u.Email, link,
		tpl.WithTime(time.Now()),
		tpl.WithExpiresIn(s.ResetTTL),
		tpl.WithIP(ip),
	))
	return link, nil
}

// ResetConfirm consumes a reset token, sets the password and signs the user
// out everywhere.
func (s *AuthService) ResetConfirm(ctx context.Context, token, newPassword string) error {
	if s.Redis == nil {
		return ErrSessionUnavailable
	}
	var rt resetToken
	ok, err := helpers.RedisGetJSON(ctx, s.Redis, helpers.ResetTokenKey(token), &rt)
	if err != nil {
		return err
	}
	if !ok || rt.UserID == "" {
		return ErrInvalidToken
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, rt.UserID, hash); err != nil {
		return notFound(err, ErrInvalidToken)
	}
	if err := helpers.RedisDel(ctx, s.Redis, helpers.ResetTokenKey(token)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", rt.UserID).Warn("reset token delete failed")
	}
	return s.Revoke(ctx, rt.UserID)
}
