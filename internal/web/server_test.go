// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package web_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillnote/quillnote/internal/auth"
	"github.com/quillnote/quillnote/internal/web"
)

func newServerOptions(t *testing.T) web.Options {
	t.Helper()

	userRepo := newMemUserRepo()
	hasher := auth.NewSHA256Hasher()
	authSvc, err := auth.NewService(userRepo, hasher, nil)
	require.NoError(t, err)
	accountSvc, err := auth.NewAccountService(userRepo, hasher, nil)
	require.NoError(t, err)
	resetSvc, err := auth.NewPasswordResetService(userRepo, hasher, nil, nil)
	require.NoError(t, err)

	return web.Options{
		Addr:     "127.0.0.1:0",
		Auth:     authSvc,
		Accounts: accountSvc,
		Resets:   resetSvc,
		Sessions: auth.NewManager(),
		Notes:    newMemNoteRepo(),
	}
}

func TestNewServer_Validation(t *testing.T) {
	t.Run("requires an address", func(t *testing.T) {
		opts := newServerOptions(t)
		opts.Addr = ""
		_, err := web.NewServer(opts)
		require.Error(t, err)
	})

	t.Run("requires the services", func(t *testing.T) {
		opts := newServerOptions(t)
		opts.Auth = nil
		_, err := web.NewServer(opts)
		require.Error(t, err)
	})

	t.Run("requires a session manager", func(t *testing.T) {
		opts := newServerOptions(t)
		opts.Sessions = nil
		_, err := web.NewServer(opts)
		require.Error(t, err)
	})

	t.Run("requires a notes repository", func(t *testing.T) {
		opts := newServerOptions(t)
		opts.Notes = nil
		_, err := web.NewServer(opts)
		require.Error(t, err)
	})
}

func TestServer_Lifecycle(t *testing.T) {
	srv, err := web.NewServer(newServerOptions(t))
	require.NoError(t, err)

	errCh, err := srv.Start()
	require.NoError(t, err)
	require.NotEqual(t, "127.0.0.1:0", srv.Addr(), "Addr reports the bound port")

	// The route table answers on the bound address.
	resp, err := http.Get("http://" + srv.Addr() + "/api/notes") //nolint:gosec // local test server
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, err = srv.Start()
	require.Error(t, err, "second start fails while running")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err, ok := <-errCh:
		assert.False(t, ok, "channel closes without an error, got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("error channel not closed after shutdown")
	}

	assert.NoError(t, srv.Shutdown(ctx), "second shutdown is a no-op")
}
