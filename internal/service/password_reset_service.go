package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/deephumans/deephumans/internal/model"
	appErr "github.com/deephumans/deephumans/internal/pkg/errors"
	"github.com/deephumans/deephumans/internal/pkg/password"
	"github.com/deephumans/deephumans/internal/pkg/timeutil"
	"github.com/deephumans/deephumans/internal/session"
)

const (
	challengeKey      = "password_reset_challenge"
	resetMailSubject  = "DeepHumans Password Reset Code"
	resetMailTemplate = `<h3>Your DeepHumans password reset code:</h3>
<div style="font-size:24px;font-weight:bold;">%s</div>
<p>This code will expire in %d minutes.</p>
<p>If you didn't request this, please ignore this email.</p>`
)

// VerifyStatus is the outcome of checking a submitted reset code.
type VerifyStatus int

const (
	StatusVerified VerifyStatus = iota
	StatusInvalid
	StatusExpired
)

// CredentialStore is the account backend the reset flow needs: lookup by
// email and an atomic password+stamp swap.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash, securityStamp string, mtime int64) error
}

// PasswordResetService drives the session-held reset challenge through
// NoChallenge -> Issued -> Verified -> Consumed, with lazy expiry at
// verification time.
type PasswordResetService struct {
	creds   CredentialStore
	sender  EmailSender
	codeTTL time.Duration
	now     func() time.Time
}

func NewPasswordResetService(creds CredentialStore, sender EmailSender, codeTTL time.Duration) *PasswordResetService {
	return &PasswordResetService{
		creds:   creds,
		sender:  sender,
		codeTTL: codeTTL,
		now:     time.Now,
	}
}

// WithClock overrides the service clock; tests use this to simulate expiry.
func (s *PasswordResetService) WithClock(now func() time.Time) *PasswordResetService {
	s.now = now
	return s
}

// IssueChallenge generates and emails a fresh code for email, overwriting
// any prior challenge in the session. Unknown accounts follow the same path
// to the same nil result: the caller cannot tell the difference, and email
// delivery failures are logged, never surfaced.
func (s *PasswordResetService) IssueChallenge(ctx context.Context, sess *session.Session, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.creds.GetByEmail(ctx, email)
	if err != nil {
		if !appErr.IsNotFound(err) {
			logutil.GetLogger(ctx).Error("reset challenge account lookup failed", zap.Error(err))
		}
		return nil
	}
	challenge := model.ResetChallenge{
		Email:    user.Email,
		Code:     newResetCode(),
		IssuedAt: s.now().Unix(),
	}
	s.storeChallenge(sess, &challenge)

	minutes := int(s.codeTTL / time.Minute)
	body := fmt.Sprintf(resetMailTemplate, challenge.Code, minutes)
	if err := s.sender.Send(user.Email, resetMailSubject, body); err != nil {
		logutil.GetLogger(ctx).Warn("reset code email delivery failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
	return nil
}

// VerifyChallenge checks submittedCode against the session's challenge.
// An expired or absent challenge reports StatusExpired (and is discarded);
// a mismatch reports StatusInvalid and keeps the challenge so the user may
// retry within the window.
func (s *PasswordResetService) VerifyChallenge(sess *session.Session, submittedCode string) VerifyStatus {
	challenge, ok := s.loadChallenge(sess)
	if !ok {
		return StatusExpired
	}
	if s.now().Sub(time.Unix(challenge.IssuedAt, 0)) > s.codeTTL {
		sess.Remove(challengeKey)
		return StatusExpired
	}
	if strings.TrimSpace(submittedCode) != challenge.Code {
		return StatusInvalid
	}
	challenge.Verified = true
	s.storeChallenge(sess, challenge)
	return StatusVerified
}

// CompletePasswordReset swaps the account password and security stamp, then
// consumes the challenge. Requires a prior successful VerifyChallenge; a
// rejected new password leaves the verified challenge in place for retry.
func (s *PasswordResetService) CompletePasswordReset(ctx context.Context, sess *session.Session, newPassword string) error {
	challenge, ok := s.loadChallenge(sess)
	if !ok || !challenge.Verified {
		return appErr.ErrSessionExpired
	}
	if err := checkPasswordPolicy(newPassword); err != nil {
		return err
	}
	user, err := s.creds.GetByEmail(ctx, challenge.Email)
	if err != nil {
		return appErr.ErrInvalid
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	// Rotating the stamp invalidates tokens and sessions minted under the
	// old password.
	if err := s.creds.UpdatePassword(ctx, user.ID, hash, newStamp(), timeutil.NowUnix()); err != nil {
		return err
	}
	sess.Remove(challengeKey)
	return nil
}

func (s *PasswordResetService) storeChallenge(sess *session.Session, challenge *model.ResetChallenge) {
	data, err := json.Marshal(challenge)
	if err != nil {
		return
	}
	sess.Set(challengeKey, string(data))
}

func (s *PasswordResetService) loadChallenge(sess *session.Session) (*model.ResetChallenge, bool) {
	raw, ok := sess.Get(challengeKey)
	if !ok {
		return nil, false
	}
	var challenge model.ResetChallenge
	if err := json.Unmarshal([]byte(raw), &challenge); err != nil {
		sess.Remove(challengeKey)
		return nil, false
	}
	return &challenge, true
}
