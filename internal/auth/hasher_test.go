// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillnote/quillnote/internal/auth"
)

func TestSHA256Hasher_Hash(t *testing.T) {
	hasher := auth.NewSHA256Hasher()

	t.Run("is deterministic", func(t *testing.T) {
		d1, err := hasher.Hash("secret1")
		require.NoError(t, err)
		d2, err := hasher.Hash("secret1")
		require.NoError(t, err)
		assert.Equal(t, d1, d2)
	})

	t.Run("distinct passwords produce distinct digests", func(t *testing.T) {
		d1, err := hasher.Hash("secret1")
		require.NoError(t, err)
		d2, err := hasher.Hash("secret2")
		require.NoError(t, err)
		assert.NotEqual(t, d1, d2)
	})

	t.Run("digest is hex encoded sha256", func(t *testing.T) {
		digest, err := hasher.Hash("secret1")
		require.NoError(t, err)
		assert.Len(t, digest, 64)
		assert.NotContains(t, digest, "secret1")
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		require.Error(t, err)
	})
}

func TestSHA256Hasher_Verify(t *testing.T) {
	hasher := auth.NewSHA256Hasher()

	digest, err := hasher.Hash("secret1")
	require.NoError(t, err)

	t.Run("matches correct password", func(t *testing.T) {
		ok, err := hasher.Verify("secret1", digest)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		ok, err := hasher.Verify("wrong", digest)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("errors on empty digest", func(t *testing.T) {
		_, err := hasher.Verify("secret1", "")
		require.Error(t, err)
	})
}
