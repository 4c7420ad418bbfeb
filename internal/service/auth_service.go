package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"anoa.com/communityforum/internal/dto"
	"anoa.com/communityforum/internal/model"
	"anoa.com/communityforum/internal/repository"
	"anoa.com/communityforum/pkg/apperror"
	"anoa.com/communityforum/pkg/mailer"
	"anoa.com/communityforum/pkg/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
}

type authService struct {
	repo     repository.UserRepository
	tokens   *token.Manager
	mail     mailer.Sender
	baseURL  string
	resetTTL time.Duration
}

func NewAuthService(repo repository.UserRepository, tokens *token.Manager, mail mailer.Sender, baseURL string, resetTTL time.Duration) AuthService {
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &authService{
		repo:     repo,
		tokens:   tokens,
		mail:     mail,
		baseURL:  baseURL,
		resetTTL: resetTTL,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := s.ensureUserUnique(ctx, input.Email, input.Username); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	hash := string(hashedPassword)
	role := model.RoleCommunityMember
	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: &hash,
		Role:         role,
		Grants:       model.DefaultGrants(role),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthenticated)
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthenticated)
	}

	user.LastActive = time.Now()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

// RequestPasswordReset stores only the one-way hash of a fresh random
// token; the cleartext value leaves the process exactly once, in the email.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no account for that email: %w", apperror.ErrNotFound)
		}
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	cleartext := hex.EncodeToString(raw)
	tokenHash := hashResetToken(cleartext)

	expiry := time.Now().Add(s.resetTTL)
	user.ResetTokenHash = &tokenHash
	user.ResetTokenExpiry = &expiry
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, cleartext)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Click the link below to reset your password. It expires in one hour.</p><p><a href=%q>%s</a></p>",
		user.Username, link, link,
	)

	if err := s.mail.Send(user.Email, "Reset your password", body); err != nil {
		log.Printf("reset mail to %s failed: %v", user.Email, err)
		return fmt.Errorf("could not send reset email: %w", apperror.ErrInternal)
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	user, err := s.repo.FindByResetToken(ctx, hashResetToken(rawToken), time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrInvalidResetToken
		}
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	hash := string(hashedPassword)
	user.PasswordHash = &hash
	user.ResetTokenHash = nil
	user.ResetTokenExpiry = nil

	return s.repo.Update(ctx, user)
}

func (s *authService) buildAuthResponse(user *model.User) (*dto.AuthResponse, error) {
	signed, expiresAt, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	user.PasswordHash = nil

	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt.Unix(),
		User:        user,
	}, nil
}

func (s *authService) ensureUserUnique(ctx context.Context, email, username string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return fmt.Errorf("email already registered: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return fmt.Errorf("username already taken: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return nil
}

func hashResetToken(cleartext string) string {
	sum := sha256.Sum256([]byte(cleartext))
	return hex.EncodeToString(sum[:])
}
