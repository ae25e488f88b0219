// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package auth_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillnote/quillnote/internal/auth"
	"github.com/quillnote/quillnote/pkg/errutil"
)

func TestRememberToken_Encode(t *testing.T) {
	token := auth.RememberToken{UserID: 42, Email: "a@x.com"}

	raw, err := token.Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, float64(42), decoded["user_id"])
	assert.Equal(t, "a@x.com", decoded["email"])
}

func TestDecodeRememberToken(t *testing.T) {
	t.Run("round trips", func(t *testing.T) {
		raw, err := auth.RememberToken{UserID: 7, Email: "b@x.com"}.Encode()
		require.NoError(t, err)

		token, err := auth.DecodeRememberToken(raw)
		require.NoError(t, err)
		assert.Equal(t, int64(7), token.UserID)
		assert.Equal(t, "b@x.com", token.Email)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := auth.DecodeRememberToken("")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TOKEN_EMPTY")
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		_, err := auth.DecodeRememberToken("{not json")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TOKEN_MALFORMED")
	})

	t.Run("rejects missing user id", func(t *testing.T) {
		_, err := auth.DecodeRememberToken(`{"email":"a@x.com"}`)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TOKEN_MALFORMED")
	})

	t.Run("rejects missing email", func(t *testing.T) {
		_, err := auth.DecodeRememberToken(`{"user_id":3}`)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TOKEN_MALFORMED")
	})
}

func TestManager(t *testing.T) {
	m := auth.NewManager()
	require.Equal(t, 0, m.Len())

	s1 := m.Open()
	s2 := m.Open()
	assert.NotEqual(t, s1.ID, s2.ID)
	assert.Equal(t, 2, m.Len())

	t.Run("new sessions are anonymous", func(t *testing.T) {
		assert.False(t, s1.IsAuthenticated())
		assert.Nil(t, s1.User())
		assert.Empty(t, s1.RememberToken())
		assert.False(t, s1.DeleteArmed())
	})

	t.Run("get returns registered session", func(t *testing.T) {
		got, ok := m.Get(s1.ID)
		require.True(t, ok)
		assert.Same(t, s1, got)
	})

	t.Run("close removes session", func(t *testing.T) {
		m.Close(s1.ID)
		_, ok := m.Get(s1.ID)
		assert.False(t, ok)
		assert.Equal(t, 1, m.Len())
	})
}
