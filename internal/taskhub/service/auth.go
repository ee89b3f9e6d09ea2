package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/mail"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/risk"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/store"
	"github.com/aussiebroadwan/taskhub/pkg/cryptox"
	"github.com/aussiebroadwan/taskhub/pkg/idx"
	"github.com/aussiebroadwan/taskhub/pkg/slogx"
)

// AuthService runs registration, email verification, login and password
// reset. Every collaborator is an exported field so the flows can be wired
// against any store, mailer or risk backend.
type AuthService struct {
	Store   store.Store
	Tokens  *TokenService
	Mailer  mail.Gateway
	Risk    risk.Checker       // nil allows everything
	Domains *risk.DomainPolicy // nil allows every domain
	MFA     *MFAService        // nil disables the two-factor step
	AppURL  string             // base of the links in emails
	Now     func() time.Time

	VerifyTTL  time.Duration
	ResetTTL   time.Duration
	SessionTTL time.Duration
	MFATTL     time.Duration
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	IP       string // client address for the risk check
}

type LoginOutcome int

const (
	LoginAuthenticated LoginOutcome = iota
	LoginVerificationResent
	LoginMFARequired
)

// LoginResult is what a successful Login or CompleteMFALogin produced.
// Token and User are set for LoginAuthenticated, MFAToken for
// LoginMFARequired, neither for LoginVerificationResent.
type LoginResult struct {
	Outcome   LoginOutcome
	Token     string
	ExpiresAt time.Time
	User      domain.User
	MFAToken  string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func ttlOr(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

// Register creates an unverified account and emails a verification link.
// When the email cannot be sent the account is kept and ErrEmailSendFailed
// is returned; the user can trigger a resend by logging in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	l := slogx.FromContext(ctx)
	email := domain.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if utf8.RuneCountInString(name) < 3 {
		return invalidInput("name must be at least 3 characters")
	}

	if s.Risk != nil {
		ok, err := s.Risk.Allow(ctx, risk.Request{Action: "register", IP: in.IP, Email: email})
		if err != nil {
			// Fail closed.
			l.Error("risk check failed", slog.Any("err", err))
			return ErrRiskCheckDenied
		}
		if !ok {
			l.Info("registration denied by risk check", slog.String("ip", in.IP))
			return ErrRiskCheckDenied
		}
	}

	if s.Domains != nil && s.Domains.IsDisposable(domain.EmailDomain(email)) {
		return ErrInvalidEmailDomain
	}

	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		return ErrDuplicateUser
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var token string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateUser
			}
			return err
		}
		token, err = s.persistToken(ctx, tx, user.ID, domain.PurposeEmailVerification, ttlOr(s.VerifyTTL, DefaultVerifyTTL))
		return err
	})
	if err != nil {
		return err
	}

	l.Info("user registered", slog.String("user_id", user.ID))
	return s.sendVerification(ctx, user, token)
}

// VerifyEmail consumes an email-verification token and marks its user
// verified. A consumed token no longer has a store row and is rejected.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	row, err := s.consumable(ctx, token, domain.PurposeEmailVerification)
	if err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsEmailVerified {
		return ErrAlreadyVerified
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().MarkEmailVerified(ctx, user.ID); err != nil {
			return err
		}
		return tx.VerificationTokens().DeleteVerificationToken(ctx, row.ID)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("email verified", slog.String("user_id", user.ID))
	return nil
}

// Login checks credentials. An unverified user never gets a session: if a
// verification link is still live ErrEmailNotVerified is returned, otherwise
// a fresh link is sent and the outcome is LoginVerificationResent. The
// password is not examined in either case.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrUserNotFound
		}
		return LoginResult{}, err
	}

	if !user.IsEmailVerified {
		return s.resendVerification(ctx, user)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			l.Info("login failed", slog.String("user_id", user.ID))
			return LoginResult{}, ErrIncorrectCredentials
		}
		return LoginResult{}, err
	}

	if s.MFA != nil && user.MFAEnabled() {
		return s.startMFAChallenge(ctx, user)
	}

	return s.startSession(ctx, user)
}

// CompleteMFALogin finishes a login that returned LoginMFARequired, using a
// TOTP code or an unused backup code. A challenge is spent by the first
// successful call and stops accepting codes after MaxMFAAttempts wrong ones.
func (s *AuthService) CompleteMFALogin(ctx context.Context, mfaToken, code string) (LoginResult, error) {
	if s.MFA == nil {
		return LoginResult{}, ErrMFANotEnabled
	}

	payload, err := s.Tokens.Validate(mfaToken)
	if err != nil {
		return LoginResult{}, err
	}
	challenge, ok := payload.(domain.MFAChallenge)
	if !ok {
		return LoginResult{}, ErrTokenInvalid
	}

	l := slogx.FromContext(ctx)
	sessions := s.Store.MFASessions()
	id := cryptox.FingerprintToken(mfaToken)

	sess, err := sessions.GetMFASession(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrTokenInvalid
		}
		return LoginResult{}, err
	}
	if sess.UserID != challenge.UserID {
		return LoginResult{}, ErrTokenInvalid
	}
	if sess.Attempts >= MaxMFAAttempts {
		_ = sessions.DeleteMFASession(ctx, id)
		l.Warn("mfa challenge exceeded max attempts", slog.String("user_id", sess.UserID))
		return LoginResult{}, ErrTooManyAttempts
	}

	user, err := s.Store.Users().GetUserByID(ctx, challenge.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrUserNotFound
		}
		return LoginResult{}, err
	}

	if err := s.MFA.VerifyCode(ctx, user, code); err != nil {
		if !errors.Is(err, ErrInvalidTOTPCode) {
			return LoginResult{}, err
		}
		n, ierr := sessions.IncrementMFASessionAttempts(ctx, id)
		if ierr != nil {
			if errors.Is(ierr, store.ErrNotFound) {
				return LoginResult{}, ErrTokenInvalid
			}
			return LoginResult{}, ierr
		}
		l.Info("mfa code rejected", slog.String("user_id", user.ID), slog.Int("attempts", n))
		return LoginResult{}, err
	}

	// Consume the challenge; a concurrent completion that already did so wins.
	if err := sessions.DeleteMFASession(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrTokenInvalid
		}
		return LoginResult{}, err
	}
	return s.startSession(ctx, user)
}

// RequestPasswordReset emails a reset link to a verified user. While an
// earlier link is still live the request fails with
// ErrResetAlreadyRequested.
//
// The live-link check and the insert are separate statements, so two
// concurrent requests can both succeed and leave two live links.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !user.IsEmailVerified {
		return ErrEmailNotVerified
	}

	now := s.now()
	active, err := s.hasActiveToken(ctx, user.ID, domain.PurposePasswordReset, now)
	if err != nil {
		return err
	}
	if active {
		return ErrResetAlreadyRequested
	}

	tokens := s.Store.VerificationTokens()
	if err := tokens.DeleteExpiredUserTokens(ctx, user.ID, domain.PurposePasswordReset, now); err != nil {
		return err
	}
	token, err := s.persistToken(ctx, s.Store, user.ID, domain.PurposePasswordReset, ttlOr(s.ResetTTL, DefaultResetTTL))
	if err != nil {
		return err
	}

	subject, body, err := mail.ResetPasswordEmail(s.AppURL, user.Name, token)
	if err != nil {
		return err
	}
	if err := s.Mailer.Send(ctx, user.Email, subject, body); err != nil {
		slogx.FromContext(ctx).Error("reset email failed", slog.String("user_id", user.ID), slog.Any("err", err))
		return fmt.Errorf("%w: %v", ErrEmailSendFailed, err)
	}

	slogx.FromContext(ctx).Info("password reset requested", slog.String("user_id", user.ID))
	return nil
}

// ResetPassword consumes a reset token and replaces the password. The
// passwords are compared only once the token has been accepted.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	row, err := s.consumable(ctx, token, domain.PurposePasswordReset)
	if err != nil {
		return err
	}

	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, row.UserID, hash); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return tx.VerificationTokens().DeleteVerificationToken(ctx, row.ID)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password reset", slog.String("user_id", row.UserID))
	return nil
}

// Authenticate resolves a session token to its user id. It satisfies
// httpx.Authenticator.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (string, error) {
	payload, err := s.Tokens.Validate(bearer)
	if err != nil {
		return "", err
	}
	session, ok := payload.(domain.Login)
	if !ok {
		return "", ErrTokenInvalid
	}

	if _, err := s.Store.Users().GetUserByID(ctx, session.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrTokenInvalid
		}
		return "", err
	}
	return session.UserID, nil
}

// Me returns the sanitized account of userID.
func (s *AuthService) Me(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user.Sanitized(), nil
}

// consumable validates token for purpose and returns its live store row.
// Expired tokens have their row removed and yield ErrTokenExpired.
func (s *AuthService) consumable(ctx context.Context, token string, purpose domain.TokenPurpose) (domain.VerificationToken, error) {
	payload, err := s.Tokens.Validate(token)
	if err != nil && !errors.Is(err, ErrTokenExpired) {
		return domain.VerificationToken{}, err
	}
	if payload == nil || payload.Purpose() != purpose {
		return domain.VerificationToken{}, ErrTokenInvalid
	}

	repo := s.Store.VerificationTokens()
	row, lookupErr := repo.GetVerificationToken(ctx, payload.Claims().UserID, purpose, cryptox.FingerprintToken(token))
	switch {
	case errors.Is(lookupErr, store.ErrNotFound):
		if err != nil {
			return domain.VerificationToken{}, err
		}
		return domain.VerificationToken{}, ErrTokenInvalid
	case lookupErr != nil:
		return domain.VerificationToken{}, lookupErr
	}

	if err != nil || !row.ActiveAt(s.now()) {
		if delErr := repo.DeleteVerificationToken(ctx, row.ID); delErr != nil && !errors.Is(delErr, store.ErrNotFound) {
			return domain.VerificationToken{}, delErr
		}
		return domain.VerificationToken{}, ErrTokenExpired
	}
	return row, nil
}

// persistToken issues a token and stores its fingerprint through st, which
// may be a transaction.
func (s *AuthService) persistToken(
	ctx context.Context,
	st store.Store,
	userID string,
	purpose domain.TokenPurpose,
	ttl time.Duration,
) (string, error) {
	now := s.now()
	token, _, err := s.Tokens.Issue(userID, purpose, ttl)
	if err != nil {
		return "", err
	}

	row := domain.VerificationToken{
		ID:        idx.NewAt(now).String(),
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := st.VerificationTokens().CreateVerificationToken(ctx, row); err != nil {
		return "", err
	}
	return token, nil
}

func (s *AuthService) hasActiveToken(ctx context.Context, userID string, purpose domain.TokenPurpose, now time.Time) (bool, error) {
	rows, err := s.Store.VerificationTokens().ListVerificationTokens(ctx, userID, purpose)
	if err != nil {
		return false, err
	}
	for _, r := range rows {
		if r.ActiveAt(now) {
			return true, nil
		}
	}
	return false, nil
}

func (s *AuthService) resendVerification(ctx context.Context, user domain.User) (LoginResult, error) {
	now := s.now()
	active, err := s.hasActiveToken(ctx, user.ID, domain.PurposeEmailVerification, now)
	if err != nil {
		return LoginResult{}, err
	}
	if active {
		return LoginResult{}, ErrEmailNotVerified
	}

	var token string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.VerificationTokens().DeleteExpiredUserTokens(ctx, user.ID, domain.PurposeEmailVerification, now); err != nil {
			return err
		}
		token, err = s.persistToken(ctx, tx, user.ID, domain.PurposeEmailVerification, ttlOr(s.VerifyTTL, DefaultVerifyTTL))
		return err
	})
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.sendVerification(ctx, user, token); err != nil {
		return LoginResult{}, err
	}
	slogx.FromContext(ctx).Info("verification email resent", slog.String("user_id", user.ID))
	return LoginResult{Outcome: LoginVerificationResent}, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user domain.User, token string) error {
	subject, body, err := mail.VerificationEmail(s.AppURL, user.Name, token)
	if err != nil {
		return err
	}
	if err := s.Mailer.Send(ctx, user.Email, subject, body); err != nil {
		slogx.FromContext(ctx).Error("verification email failed", slog.String("user_id", user.ID), slog.Any("err", err))
		return fmt.Errorf("%w: %v", ErrEmailSendFailed, err)
	}
	return nil
}

// startMFAChallenge issues the short-lived challenge token and records it so
// wrong codes can be counted and the challenge spent exactly once.
func (s *AuthService) startMFAChallenge(ctx context.Context, user domain.User) (LoginResult, error) {
	tok, exp, err := s.Tokens.Issue(user.ID, domain.PurposeMFAChallenge, ttlOr(s.MFATTL, DefaultMFATTL))
	if err != nil {
		return LoginResult{}, err
	}

	err = s.Store.MFASessions().CreateMFASession(ctx, domain.MFASession{
		ID:        cryptox.FingerprintToken(tok),
		UserID:    user.ID,
		ExpiresAt: exp,
		CreatedAt: s.now(),
	})
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Outcome: LoginMFARequired, MFAToken: tok}, nil
}

func (s *AuthService) startSession(ctx context.Context, user domain.User) (LoginResult, error) {
	now := s.now()
	if err := s.Store.Users().UpdateLastLogin(ctx, user.ID, now); err != nil {
		return LoginResult{}, err
	}
	user.LastLogin = &now

	tok, exp, err := s.Tokens.Issue(user.ID, domain.PurposeLogin, ttlOr(s.SessionTTL, DefaultSessionTTL))
	if err != nil {
		return LoginResult{}, err
	}

	slogx.FromContext(ctx).Info("user logged in", slog.String("user_id", user.ID))
	return LoginResult{
		Outcome:   LoginAuthenticated,
		Token:     tok,
		ExpiresAt: exp,
		User:      user.Sanitized(),
	}, nil
}
