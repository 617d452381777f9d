package rbac

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// ResetTokenDelivery hands a freshly minted reset token to whatever
// channel gets it in front of the user. The default implementation just
// logs the link; a mailer slots in here.
type ResetTokenDelivery interface {
	DeliverResetToken(ctx context.Context, user *CleanUser, token string) error
}

type logDelivery struct {
	logger Logger
}

func (d logDelivery) DeliverResetToken(_ context.Context, user *CleanUser, token string) error {
	d.logger.Info("password reset requested for %s: /auth/reset-password?token=%s", user.Email, token)
	return nil
}

// PasswordResetService implements the forgot/reset flow. Reset tokens are
// single use and a user holds at most one at a time.
type PasswordResetService struct {
	repo     RepositoryManager
	delivery ResetTokenDelivery
	tokenTTL time.Duration
	logger   Logger
}

func NewPasswordResetService(repo RepositoryManager, delivery ResetTokenDelivery, tokenTTL time.Duration, logger Logger) *PasswordResetService {
	if logger == nil {
		logger = defLogger{}
	}
	if delivery == nil {
		delivery = logDelivery{logger: logger}
	}
	return &PasswordResetService{
		repo:     repo,
		delivery: delivery,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Forgot mints a reset token for the account behind email. An unknown
// email succeeds silently so the endpoint can't be used to enumerate
// accounts. Any prior tokens the user held are dropped first.
func (s *PasswordResetService) Forgot(ctx context.Context, email string) error {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil
		}
		return Internal(err, "failed to load user for password reset")
	}

	if err := s.repo.PasswordResets().DeleteAllForUser(ctx, user.ID); err != nil {
		return Internal(err, "failed to clear prior reset tokens")
	}

	token, err := s.repo.PasswordResets().Create(ctx, &PasswordResetToken{
		ID:        uuid.New(),
		Token:     GenerateRandomToken(ResetTokenByteLength),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.tokenTTL),
	})
	if err != nil {
		return Internal(err, "failed to create reset token")
	}

	if err := s.delivery.DeliverResetToken(ctx, user.Clean(), token.Token); err != nil {
		return Internal(err, "failed to deliver reset token")
	}

	return nil
}

// Reset consumes a token and sets the new password. An expired token is
// deleted on sight, so retrying it reports "Invalid Token" rather than
// "Token Expired".
func (s *PasswordResetService) Reset(ctx context.Context, token, newPassword string) error {
	record, err := s.repo.PasswordResets().GetByToken(ctx, token)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return BadRequest("Invalid Token")
		}
		return Internal(err, "failed to load reset token")
	}

	if record.Expired(time.Now()) {
		if err := s.repo.PasswordResets().DeleteByID(ctx, record.ID); err != nil {
			return Internal(err, "failed to delete expired reset token")
		}
		return BadRequest("Token Expired")
	}

	user, err := s.repo.Users().GetByID(ctx, record.UserID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return BadRequest("Invalid Token")
		}
		return Internal(err, "failed to load user for password reset")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return Internal(err, "failed to hash password")
	}

	user.Password = hash
	if _, err := s.repo.Users().Update(ctx, user); err != nil {
		return Internal(err, "failed to update password")
	}

	if err := s.repo.PasswordResets().DeleteAllForUser(ctx, user.ID); err != nil {
		return Internal(err, "failed to consume reset token")
	}

	return nil
}
