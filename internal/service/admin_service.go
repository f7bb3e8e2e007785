package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"

	"github.com/example/smartblinds/internal/apperr"
	"github.com/example/smartblinds/internal/auth"
	"github.com/example/smartblinds/internal/config"
	"github.com/example/smartblinds/internal/datamodels/adminuser"
)

// AdminService authenticates back-office users. Admins are the only
// actors for status transitions and order deletes.
type AdminService struct {
	repo adminuser.Repository
	jwt  *config.JWTConfig
	log  *zap.Logger
}

func NewAdminService(repo adminuser.Repository, jwt *config.JWTConfig, log *zap.Logger) *AdminService {
	return &AdminService{repo: repo, jwt: jwt, log: log}
}

func hashPassword(raw, salt string) string {
	h := sha256.Sum256([]byte(raw + salt))
	return hex.EncodeToString(h[:])
}

func newSalt() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "smartblinds"
	}
	return hex.EncodeToString(b)
}

// LoginResult carries the token plus the flag forcing a password
// change before further admin actions.
type LoginResult struct {
	Token              string               `json:"token"`
	Admin              *adminuser.AdminUser `json:"admin"`
	MustChangePassword bool                 `json:"mustChangePassword"`
}

// Login verifies credentials and issues a JWT. Inactive accounts are
// rejected with the same message as bad credentials.
func (s *AdminService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Validation("invalid username or password")
	}
	if !u.Active || hashPassword(password, u.Salt) != u.Password {
		return nil, apperr.Validation("invalid username or password")
	}

	token, err := auth.GenerateToken(s.jwt, u.ID, u.Username, u.Role)
	if err != nil {
		return nil, apperr.Persistence("failed to issue token", err)
	}
	return &LoginResult{
		Token:              token,
		Admin:              u,
		MustChangePassword: u.MustChangePassword,
	}, nil
}

// ChangePassword rotates the password and clears the
// must-change-password flag.
func (s *AdminService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return apperr.Validation("new password must be at least 8 characters")
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return apperr.Validation("invalid username or password")
	}
	if hashPassword(oldPassword, u.Salt) != u.Password {
		return apperr.Validation("invalid username or password")
	}

	u.Salt = newSalt()
	u.Password = hashPassword(newPassword, u.Salt)
	u.MustChangePassword = false
	if err := s.repo.Update(ctx, u); err != nil {
		return apperr.Persistence("failed to update password", err)
	}
	s.log.Info("admin password changed", zap.String("username", username))
	return nil
}

// EnsureSeedAdmin creates the initial admin account on an empty
// table, with a forced password change on first login.
func (s *AdminService) EnsureSeedAdmin(ctx context.Context) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	salt := newSalt()
	u := &adminuser.AdminUser{
		Username:           "admin",
		Email:              "admin@smartblinds.local",
		Salt:               salt,
		Password:           hashPassword("changeme", salt),
		Role:               "owner",
		Active:             true,
		MustChangePassword: true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return err
	}
	s.log.Info("seed admin created, password change required on first login")
	return nil
}
