// Package services contains server-side business logic. This file implements
// UserService: signup, login, the security-question recovery flow, and
// profile management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chartkeeper/internal/common"
	"github.com/dmitrijs2005/chartkeeper/internal/dbx"
	"github.com/dmitrijs2005/chartkeeper/internal/server/auth"
	"github.com/dmitrijs2005/chartkeeper/internal/server/config"
	"github.com/dmitrijs2005/chartkeeper/internal/server/models"
	"github.com/dmitrijs2005/chartkeeper/internal/server/repositories/repomanager"
)

// SignupRequest carries everything a new account needs. All fields are
// required; the security answer is hashed exactly like the password.
type SignupRequest struct {
	Name             string
	Username         string
	Email            string
	Password         string
	SecurityQuestion string
	SecurityAnswer   string
}

// ProfileUpdate carries optional profile changes. Empty fields keep their
// current values.
type ProfileUpdate struct {
	Name     string
	Username string
	Email    string
}

type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

func (s *UserService) generateToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.tokenValidityDuration)
}

// Signup creates an account and returns the user together with a fresh
// bearer token.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*models.User, string, error) {

	if req.Name == "" || req.Username == "" || req.Email == "" || req.Password == "" ||
		req.SecurityQuestion == "" || req.SecurityAnswer == "" {
		return nil, "", fmt.Errorf("%w: all fields are required", common.ErrorValidation)
	}

	user := &models.User{
		Name:             req.Name,
		Username:         req.Username,
		Email:            req.Email,
		PasswordHash:     auth.HashSecret(req.Password),
		SecurityQuestion: req.SecurityQuestion,
		AnswerHash:       auth.HashSecret(req.SecurityAnswer),
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	return user, token, nil
}

// Login verifies credentials against the username or email. Any failure —
// unknown login or wrong password — comes back as the same ErrorUnauthorized
// so callers cannot enumerate accounts.
func (s *UserService) Login(ctx context.Context, login, password string) (*models.User, string, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", common.ErrorInternal
	}

	if !auth.VerifySecret(user.PasswordHash, password) {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	return user, token, nil
}

// RecoveryQuestion returns the user's security question for the
// forgot-password flow. A user without a question behaves like a missing
// user.
func (s *UserService) RecoveryQuestion(ctx context.Context, login string) (string, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByLogin(ctx, login)
	if err != nil {
		return "", err
	}

	if user.SecurityQuestion == "" {
		return "", common.ErrorNotFound
	}

	return user.SecurityQuestion, nil
}

// CheckUser is the legacy email-only lookup: it reports whether the account
// exists with a security question, and what the question is.
func (s *UserService) CheckUser(ctx context.Context, email string) (bool, string, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		return false, "", err
	}

	return user.SecurityQuestion != "", user.SecurityQuestion, nil
}

// VerifyAnswer checks the recovery answer without side effects.
func (s *UserService) VerifyAnswer(ctx context.Context, login, answer string) error {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByLogin(ctx, login)
	if err != nil {
		return err
	}

	if !auth.VerifySecret(user.AnswerHash, answer) {
		return common.ErrorUnauthorized
	}

	return nil
}

// ResetPassword overwrites the password after re-verifying the recovery
// answer. The confirmation mismatch is reported before the answer is even
// looked at.
func (s *UserService) ResetPassword(ctx context.Context, login, answer, newPassword, confirm string) error {

	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", common.ErrorValidation)
	}
	if newPassword != confirm {
		return fmt.Errorf("%w: passwords do not match", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByLogin(ctx, login)
	if err != nil {
		return err
	}

	if !auth.VerifySecret(user.AnswerHash, answer) {
		return common.ErrorUnauthorized
	}

	return repo.UpdatePasswordHash(ctx, user.ID, auth.HashSecret(newPassword))
}

// Profile returns the account owning the bearer token.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	return repo.GetByID(ctx, userID)
}

// UpdateProfile overlays the non-empty fields of upd onto the stored profile
// inside a transaction. Colliding with another account's username or email
// yields ErrorConflict.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {

	var user *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		current, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if upd.Name != "" {
			current.Name = upd.Name
		}
		if upd.Username != "" {
			current.Username = upd.Username
		}
		if upd.Email != "" {
			current.Email = upd.Email
		}

		user, err = repo.Update(ctx, current)
		return err
	})

	if err != nil {
		return nil, err
	}

	return user, nil
}
