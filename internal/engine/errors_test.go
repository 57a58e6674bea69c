package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"api key", errors.New("API key not valid"), KindAuth},
		{"unauthenticated", errors.New("rpc error: UNAUTHENTICATED"), KindAuth},
		{"quota", errors.New("Quota exceeded for requests"), KindQuota},
		{"rate limit", errors.New("rate limit reached"), KindQuota},
		{"resource exhausted", errors.New("RESOURCE EXHAUSTED"), KindQuota},
		{"permission", errors.New("PERMISSION denied on resource"), KindPermission},
		{"file", errors.New("file is not in ACTIVE state"), KindFile},
		{"not found", errors.New("resource not found"), KindFile},
		{"unknown", errors.New("something else broke"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestError_Message(t *testing.T) {
	authErr := &Error{Kind: KindAuth, Op: "generate", Err: errors.New("401")}
	assert.Contains(t, authErr.Message(), "GEMINI_API_KEY")

	quotaErr := &Error{Kind: KindQuota, Op: "generate", Err: errors.New("429")}
	assert.Contains(t, quotaErr.Message(), "quota")

	fileErr := &Error{Kind: KindFile, Op: "upload", Err: errors.New("bad state")}
	assert.Contains(t, fileErr.Message(), "ACTIVE")

	plain := &Error{Kind: KindUnknown, Op: "generate", Err: errors.New("boom")}
	assert.Equal(t, "boom", plain.Message())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	wrapped := wrapErr("upload", cause)
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "engine upload")
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", &Error{Kind: KindQuota, Op: "generate", Err: errors.New("429")})
	assert.Equal(t, KindQuota, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "auth", KindAuth.String())
	assert.Equal(t, "quota", KindQuota.String())
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "permission", KindPermission.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
