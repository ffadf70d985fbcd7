package auth

import (
	"strings"
	"testing"

	"chat-sync/errors"

	"github.com/stretchr/testify/require"
)

var fastParams = Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	hasher := NewPasswordHasher(fastParams)

	hash, err := hasher.Hash("s3cret-pass")
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := hasher.Compare("s3cret-pass", hash)
	req.NoError(err)
	req.True(match)

	match, err = hasher.Compare("wrong-pass", hash)
	req.NoError(err)
	req.False(match)
}

func TestCompare_UsesParametersFromHash(t *testing.T) {
	req := require.New(t)
	hash, err := NewPasswordHasher(fastParams).Hash("s3cret-pass")
	req.NoError(err)

	match, err := NewPasswordHasher(DefaultArgon2Params).Compare("s3cret-pass", hash)
	req.NoError(err)
	req.True(match)
}

func TestCompare_RejectsMalformedHash(t *testing.T) {
	req := require.New(t)
	hasher := NewPasswordHasher(fastParams)

	for _, hash := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", "$argon2id$v=x$m=1,t=1,p=1$c2FsdA$aGFzaA"} {
		_, err := hasher.Compare("pass", hash)
		req.Error(err, hash)
	}
}

func TestGenerateToken(t *testing.T) {
	req := require.New(t)

	first, err := GenerateToken()
	req.NoError(err)
	second, err := GenerateToken()
	req.NoError(err)

	req.Len(first, TokenBytes*2)
	req.NotEqual(first, second)
}

func TestHashToken_IsDeterministic(t *testing.T) {
	req := require.New(t)
	req.Equal(HashToken("abc"), HashToken("abc"))
	req.NotEqual(HashToken("abc"), HashToken("abd"))
	req.Len(HashToken("abc"), 64)
	req.NotContains(HashToken("abc"), "abc")
}

func TestParseBearer(t *testing.T) {
	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{"standard", "Bearer abc123", "abc123", true},
		{"lower case scheme", "bearer abc123", "abc123", true},
		{"surrounding spaces", "Bearer   abc123  ", "abc123", true},
		{"missing header", "", "", false},
		{"empty token", "Bearer    ", "", false},
		{"other scheme", "Basic dXNlcjpwYXNz", "", false},
		{"scheme only", "Bearer", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			token, ok := ParseBearer(tt.header)
			req.Equal(tt.ok, ok)
			req.Equal(tt.token, token)
		})
	}
}

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		name    string
		handle  string
		want    string
		wantErr bool
	}{
		{"valid", "alice", "alice", false},
		{"trimmed", "  bob.smith ", "bob.smith", false},
		{"allowed symbols", "a_b-c.d", "a_b-c.d", false},
		{"too short", "ab", "", true},
		{"too long", strings.Repeat("a", 33), "", true},
		{"forbidden character", "alice!", "", true},
		{"inner space", "al ice", "", true},
		{"empty", "   ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			handle, err := NormalizeHandle(tt.handle)
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrInvalidInput)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, handle)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name    string
		req     PasswordRequest
		wantErr bool
	}{
		{"valid", PasswordRequest{"alice", "secret"}, false},
		{"short password", PasswordRequest{"alice", "12345"}, true},
		{"long password", PasswordRequest{"alice", strings.Repeat("p", 201)}, true},
		{"bad handle", PasswordRequest{"a", "secret"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := ValidatePassword(tt.req)
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrInvalidInput)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestNormalizeContent(t *testing.T) {
	req := require.New(t)

	content, err := NormalizeContent("  hi  ")
	req.NoError(err)
	req.Equal("hi", content)

	_, err = NormalizeContent(" \n\t ")
	req.ErrorIs(err, errors.ErrInvalidInput)

	_, err = NormalizeContent(strings.Repeat("a", 2001))
	req.ErrorIs(err, errors.ErrInvalidInput)

	content, err = NormalizeContent(strings.Repeat("a", 2000))
	req.NoError(err)
	req.Len(content, 2000)

	// 2000 multi-byte characters are accepted even though they exceed 2000 bytes.
	content, err = NormalizeContent(strings.Repeat("é", 2000))
	req.NoError(err)
	req.Equal(2000, len([]rune(content)))

	_, err = NormalizeContent(strings.Repeat("é", 2001))
	req.ErrorIs(err, errors.ErrInvalidInput)
}

func BenchmarkHashPassword(b *testing.B) {
	hasher := NewPasswordHasher(DefaultArgon2Params)
	for i := 0; i < b.N; i++ {
		_, _ = hasher.Hash("A-very-long-and-complex-password-for-bench-123!")
	}
}
