package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/store"
	"github.com/aussiebroadwan/taskhub/pkg/cryptox"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const backupCodeCount = 10

var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// MFAService manages TOTP enrollment and backup codes.
type MFAService struct {
	Store  store.Store
	Issuer string // shown in authenticator apps, e.g. "TaskHub"
	Now    func() time.Time
}

func (s *MFAService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// EnrollTOTP generates and stores a TOTP secret. MFA is not enabled until
// the first code is confirmed with VerifyTOTP. Enrolling again before that
// replaces the pending secret.
func (s *MFAService) EnrollTOTP(ctx context.Context, userID string) (domain.TOTPEnrollment, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return domain.TOTPEnrollment{}, err
	}
	if user.MFAEnabled() {
		return domain.TOTPEnrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
		Period:      totpOpts.Period,
		Digits:      totpOpts.Digits,
		Algorithm:   totpOpts.Algorithm,
	})
	if err != nil {
		return domain.TOTPEnrollment{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	if err := s.Store.Users().UpdateMFASecret(ctx, userID, key.Secret()); err != nil {
		return domain.TOTPEnrollment{}, fmt.Errorf("failed to store MFA secret: %w", err)
	}

	return domain.TOTPEnrollment{
		Secret:  key.Secret(),
		QRCode:  key.URL(),
		Issuer:  s.Issuer,
		Account: user.Email,
	}, nil
}

// VerifyTOTP confirms a pending enrollment, enables MFA and returns a fresh
// set of backup codes. The codes are only ever returned here.
func (s *MFAService) VerifyTOTP(ctx context.Context, userID, code string) ([]string, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.MFAEnabled() {
		return nil, ErrMFAAlreadyEnabled
	}
	if user.MFASecret == nil || *user.MFASecret == "" {
		return nil, ErrMFANotEnrolled
	}
	if !s.validTOTP(code, *user.MFASecret) {
		return nil, ErrInvalidTOTPCode
	}

	codes, err := generateBackupCodes()
	if err != nil {
		return nil, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := storeBackupCodes(ctx, tx, userID, codes); err != nil {
			return err
		}
		if err := tx.Users().EnableMFA(ctx, userID, s.now()); err != nil {
			return fmt.Errorf("failed to enable MFA: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// RegenerateBackupCodes replaces every backup code after checking a TOTP code.
func (s *MFAService) RegenerateBackupCodes(ctx context.Context, userID, totpCode string) ([]string, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTOTP(user, totpCode); err != nil {
		return nil, err
	}

	codes, err := generateBackupCodes()
	if err != nil {
		return nil, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete old backup codes: %w", err)
		}
		return storeBackupCodes(ctx, tx, userID, codes)
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// RemoveMFA turns MFA off after checking a TOTP or backup code.
func (s *MFAService) RemoveMFA(ctx context.Context, userID, code string) error {
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.VerifyCode(ctx, user, code); err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete backup codes: %w", err)
		}
		if err := tx.Users().DisableMFA(ctx, userID); err != nil {
			return fmt.Errorf("failed to disable MFA: %w", err)
		}
		return nil
	})
}

// VerifyCode accepts a current TOTP code or an unused backup code. A backup
// code is spent by this call.
func (s *MFAService) VerifyCode(ctx context.Context, user domain.User, code string) error {
	err := s.checkTOTP(user, code)
	if !errors.Is(err, ErrInvalidTOTPCode) {
		return err
	}

	hash := cryptox.FingerprintToken(cryptox.NormalizeBackupCode(code))
	ok, err := s.Store.BackupCodes().VerifyBackupCode(ctx, user.ID, hash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTOTPCode
	}
	return s.Store.BackupCodes().DeleteBackupCode(ctx, user.ID, hash)
}

// RemainingBackupCodes counts the unused backup codes.
func (s *MFAService) RemainingBackupCodes(ctx context.Context, userID string) (int, error) {
	return s.Store.BackupCodes().CountUserBackupCodes(ctx, userID)
}

func (s *MFAService) checkTOTP(user domain.User, code string) error {
	if !user.MFAEnabled() || user.MFASecret == nil || *user.MFASecret == "" {
		return ErrMFANotEnabled
	}
	if !s.validTOTP(code, *user.MFASecret) {
		return ErrInvalidTOTPCode
	}
	return nil
}

func (s *MFAService) validTOTP(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, s.now(), totpOpts)
	return err == nil && ok
}

func (s *MFAService) user(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func generateBackupCodes() ([]string, error) {
	codes := make([]string, backupCodeCount)
	for i := range codes {
		c, err := cryptox.GenerateBackupCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		codes[i] = c
	}
	return codes, nil
}

func storeBackupCodes(ctx context.Context, tx store.Tx, userID string, codes []string) error {
	for _, c := range codes {
		if err := tx.BackupCodes().CreateBackupCode(ctx, userID, cryptox.FingerprintToken(c)); err != nil {
			return fmt.Errorf("failed to store backup code: %w", err)
		}
	}
	return nil
}
