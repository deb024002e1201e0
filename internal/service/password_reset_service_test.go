package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deephumans/deephumans/internal/model"
	appErr "github.com/deephumans/deephumans/internal/pkg/errors"
	"github.com/deephumans/deephumans/internal/pkg/password"
	"github.com/deephumans/deephumans/internal/session"
)

type fakeCreds struct {
	users         map[string]*model.User
	updates       int
	lastHash      string
	lastStamp     string
	updateErr     error
	lookupCalls   int
	updatedUserID string
}

func (f *fakeCreds) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.lookupCalls++
	user, ok := f.users[email]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return user, nil
}

func (f *fakeCreds) UpdatePassword(ctx context.Context, userID, passwordHash, securityStamp string, mtime int64) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates++
	f.updatedUserID = userID
	f.lastHash = passwordHash
	f.lastStamp = securityStamp
	return nil
}

type recordingSender struct {
	sent    int
	lastTo  string
	sendErr error
}

func (r *recordingSender) Send(to, subject, htmlBody string) error {
	r.sent++
	r.lastTo = to
	return r.sendErr
}

func newTestUser(email string) *model.User {
	return &model.User{ID: "u1", Email: email, SecurityStamp: "stamp-0"}
}

func newResetFixture(t *testing.T) (*PasswordResetService, *fakeCreds, *recordingSender, *session.Session, *time.Time) {
	t.Helper()
	creds := &fakeCreds{users: map[string]*model.User{
		"user@example.com": newTestUser("user@example.com"),
	}}
	sender := &recordingSender{}
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	svc := NewPasswordResetService(creds, sender, 10*time.Minute).WithClock(func() time.Time {
		return now
	})
	sess := session.NewStore(4, time.Hour).Fetch("s1")
	return svc, creds, sender, sess, &now
}

func issuedCode(t *testing.T, svc *PasswordResetService, sess *session.Session) string {
	t.Helper()
	challenge, ok := svc.loadChallenge(sess)
	require.True(t, ok, "expected an active challenge")
	return challenge.Code
}

func TestIssueAndVerifyExactCode(t *testing.T) {
	svc, _, sender, sess, _ := newResetFixture(t)

	require.NoError(t, svc.IssueChallenge(context.Background(), sess, "User@Example.com"))
	require.Equal(t, 1, sender.sent)
	require.Equal(t, "user@example.com", sender.lastTo)

	code := issuedCode(t, svc, sess)
	require.Len(t, code, 6)

	require.Equal(t, StatusVerified, svc.VerifyChallenge(sess, code))
}

func TestVerifyWrongCodeKeepsChallenge(t *testing.T) {
	svc, _, _, sess, _ := newResetFixture(t)
	require.NoError(t, svc.IssueChallenge(context.Background(), sess, "user@example.com"))
	code := issuedCode(t, svc, sess)

	wrong := "000000"
	if wrong == code {
		wrong = "111111"
	}
	require.Equal(t, StatusInvalid, svc.VerifyChallenge(sess, wrong))
	// Mismatches retain the challenge; the correct code still works.
	require.Equal(t, StatusVerified, svc.VerifyChallenge(sess, " "+code+" "))
}

func TestVerifyAfterWindowExpires(t *testing.T) {
	svc, _, _, sess, now := newResetFixture(t)
	require.NoError(t, svc.IssueChallenge(context.Background(), sess, "user@example.com"))
	code := issuedCode(t, svc, sess)

	*now = now.Add(10*time.Minute + time.Second)
	require.Equal(t, StatusExpired, svc.VerifyChallenge(sess, code))
	// The challenge is discarded; a second attempt is still expired.
	require.Equal(t, StatusExpired, svc.VerifyChallenge(sess, code))
}

func TestReissueOverwritesPriorChallenge(t *testing.T) {
	svc, _, _, sess, _ := newResetFixture(t)
	require.NoError(t, svc.IssueChallenge(context.Background(), sess, "user@example.com"))
	first := issuedCode(t, svc, sess)

	require.NoError(t, svc.IssueChallenge(context.Background(), sess, "user@example.com"))
	second := issuedCode(t, svc, sess)

	if first == second {
		t.Skip("codes collided, cannot distinguish overwrite")
	}
	require.Equal(t, StatusInvalid, svc.VerifyChallenge(sess, first))
	require.Equal(t, StatusVerified, svc.VerifyChallenge(sess, second))
}

func TestIssueUnknownEmailIsSilent(t *testing.T) {
	svc, creds, sender, sess, _ := newResetFixture(t)

	require.NoError(t, svc.IssueChallenge(context.Background(), sess, "nobody@example.com"))
	require.Equal(t, 1, creds.lookupCalls)
	require.Equal(t, 0, sender.sent)
	_, ok := svc.loadChallenge(sess)
	require.False(t, ok)
}

func TestIssueSurvivesEmailDeliveryFailure(t *testing.T) {
	svc, _, sender, sess, _ := newResetFixture(t)
	sender.sendErr = errors.New("smtp down")

	require.NoError(t, svc.IssueChallenge(context.Background(), sess, "user@example.com"))
	require.Equal(t, 1, sender.sent)
	_, ok := svc.loadChallenge(sess)
	require.True(t, ok)
}

func TestCompleteWithoutVerifiedChallenge(t *testing.T) {
	svc, creds, _, sess, _ := newResetFixture(t)

	err := svc.CompletePasswordReset(context.Background(), sess, "new-password")
	require.ErrorIs(t, err, appErr.ErrSessionExpired)
	require.Equal(t, 0, creds.updates)

	// Issued but unverified is not enough either.
	require.NoError(t, svc.IssueChallenge(context.Background(), sess, "user@example.com"))
	err = svc.CompletePasswordReset(context.Background(), sess, "new-password")
	require.ErrorIs(t, err, appErr.ErrSessionExpired)
	require.Equal(t, 0, creds.updates)
}

func TestCompleteUpdatesPasswordAndStampThenConsumes(t *testing.T) {
	svc, creds, _, sess, _ := newResetFixture(t)
	require.NoError(t, svc.IssueChallenge(context.Background(), sess, "user@example.com"))
	code := issuedCode(t, svc, sess)
	require.Equal(t, StatusVerified, svc.VerifyChallenge(sess, code))

	require.NoError(t, svc.CompletePasswordReset(context.Background(), sess, "new-password"))
	require.Equal(t, 1, creds.updates)
	require.Equal(t, "u1", creds.updatedUserID)
	require.NoError(t, password.Compare(creds.lastHash, "new-password"))
	require.NotEqual(t, "stamp-0", creds.lastStamp)

	// Consumed: the challenge is gone.
	_, ok := svc.loadChallenge(sess)
	require.False(t, ok)
	err := svc.CompletePasswordReset(context.Background(), sess, "another-password")
	require.ErrorIs(t, err, appErr.ErrSessionExpired)
}

func TestCompleteRejectedPasswordKeepsChallenge(t *testing.T) {
	svc, creds, _, sess, _ := newResetFixture(t)
	require.NoError(t, svc.IssueChallenge(context.Background(), sess, "user@example.com"))
	code := issuedCode(t, svc, sess)
	require.Equal(t, StatusVerified, svc.VerifyChallenge(sess, code))

	err := svc.CompletePasswordReset(context.Background(), sess, "weak")
	require.ErrorIs(t, err, appErr.ErrWeakPassword)
	require.Equal(t, 0, creds.updates)

	// The verified challenge survives a rejected password.
	require.NoError(t, svc.CompletePasswordReset(context.Background(), sess, "strong-enough"))
	require.Equal(t, 1, creds.updates)
}
