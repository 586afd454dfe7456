package errx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE(t *testing.T) {
	t.Run("returns nil when error is nil", func(t *testing.T) {
		assert.Nil(t, E("op", Quota, nil))
	})

	t.Run("constructs Error with all fields", func(t *testing.T) {
		root := errors.New("disk full")
		err := E("storage.SaveLink", Quota, root)

		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, "storage.SaveLink", e.Op)
		assert.Equal(t, Quota, e.Kind)
		assert.ErrorIs(t, err, root)
	})

	t.Run("preserves all error kinds", func(t *testing.T) {
		kinds := []Kind{Unknown, Invalid, Unavailable, Quota, Corrupt, Internal}
		for _, kind := range kinds {
			t.Run(kind.String(), func(t *testing.T) {
				assert.Equal(t, kind, KindOf(E("op", kind, errors.New("x"))))
			})
		}
	})
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"op and err", &Error{Op: "store.Set", Err: errors.New("boom")}, "store.Set: boom"},
		{"err only", &Error{Err: errors.New("boom")}, "boom"},
		{"op only", &Error{Op: "store.Set"}, "store.Set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := E("store.Set", Quota, errors.New("full"))
	wrapped := fmt.Errorf("save link: %w", inner)

	assert.Equal(t, Quota, KindOf(wrapped))
	assert.Equal(t, "store.Set", OpOf(wrapped))
	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
	assert.Equal(t, "", OpOf(errors.New("plain")))
}

func TestKind_StringUnknownValue(t *testing.T) {
	assert.Equal(t, "Kind(42)", Kind(42).String())
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Contains(t, UserMessage(E("op", Quota, errors.New("full"))), "Storage full")
	assert.Contains(t, UserMessage(E("op", Internal, errors.New("io"))), "Try again")
}
