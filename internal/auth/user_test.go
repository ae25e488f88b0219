// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillnote/quillnote/internal/auth"
	"github.com/quillnote/quillnote/pkg/errutil"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{name: "valid", username: "alice"},
		{name: "valid with digits", username: "alice42"},
		{name: "empty", username: "", wantErr: true},
		{name: "interior space", username: "al ice", wantErr: true},
		{name: "tab", username: "al\tice", wantErr: true},
		{name: "leading space", username: " alice", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateUsername(tt.username)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "VALIDATION_USERNAME")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid", email: "a@x.com"},
		{name: "empty", email: "", wantErr: true},
		{name: "no at sign", email: "ax.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "VALIDATION_EMAIL")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid", password: "secret1"},
		{name: "exactly minimum length", password: "secret"},
		{name: "empty", password: "", wantErr: true},
		{name: "too short", password: "abc12", wantErr: true},
		{name: "interior space", password: "sec ret1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidatePassword(tt.password)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "VALIDATION_PASSWORD")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
