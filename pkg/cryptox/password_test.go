package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "cryptox")
	if err != nil {
		panic(err)
	}
	SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestHashPassword_PHCFormat(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 6)
	require.Equal(t, "argon2id", parts[1])
	require.Equal(t, "v=19", parts[2])
	require.Equal(t, "m=19456,t=2,p=1", parts[3])
	require.NotEmpty(t, parts[4])
	require.NotEmpty(t, parts[5])
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	a, err := HashPassword("samepassword")
	require.NoError(t, err)
	b, err := HashPassword("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.NoError(t, VerifyPassword("samepassword", a))
	require.NoError(t, VerifyPassword("samepassword", b))
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	require.NoError(t, VerifyPassword("correct-password", hash))

	for _, wrong := range []string{"", "Correct-Password", "correct-password ", "correct-passwor", strings.Repeat("x", 4096)} {
		require.ErrorIs(t, VerifyPassword(wrong, hash), ErrMismatch, wrong)
	}
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"bcrypt":         "$2a$10$abcdefghijklmnopqrstuv",
		"missing parts":  "$argon2id$v=19$m=19456",
		"bad params":     "$argon2id$v=19$invalid$c2FsdA$aGFzaA",
		"bad salt":       "$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
		"bad digest":     "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!",
		"wrong version":  "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"no version":     "$argon2id$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"leading junk":   "x$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
	}

	for name, hash := range tests {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, VerifyPassword("pw", hash), ErrInvalidHash)
		})
	}
}

func TestPepperChangesDigest(t *testing.T) {
	hash, err := HashPassword("pw-with-pepper")
	require.NoError(t, err)

	orig, err := Pepper()
	require.NoError(t, err)
	t.Cleanup(func() { SetPepper(orig) })

	SetPepper("a-different-pepper")
	require.ErrorIs(t, VerifyPassword("pw-with-pepper", hash), ErrMismatch)
}

func TestPepperPersistsToFile(t *testing.T) {
	orig, err := Pepper()
	require.NoError(t, err)
	t.Cleanup(func() { SetPepper(orig) })

	path := filepath.Join(t.TempDir(), "nested", "pepper")
	SetPepperPath(path)

	first, err := Pepper()
	require.NoError(t, err)
	require.FileExists(t, path)

	// reload from disk
	SetPepperPath(path)
	second, err := Pepper()
	require.NoError(t, err)
	require.Equal(t, first, second)
}
