package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPinned(t *testing.T) {
	tests := []struct {
		ref     string
		wantErr error
	}{
		{ref: "python:3.12.4"},
		{ref: "python:3.12.4-slim"},
		{ref: "docker.io/library/python:3.12.4-slim-bookworm"},
		{ref: "ghcr.io/acme/runtime:v1.2.3"},
		{ref: "runtime:1.0.0"},
		{ref: "python@sha256:" + sha},
		{ref: "python:3.12@sha256:" + sha},
		{ref: "python", wantErr: ErrFloatingBase},
		{ref: "python:latest", wantErr: ErrFloatingBase},
		{ref: "python:3.12", wantErr: ErrFloatingBase},
		{ref: "python:3-slim", wantErr: ErrFloatingBase},
		{ref: "python:slim", wantErr: ErrFloatingBase},
		{ref: "", wantErr: ErrInvalidRecipe},
		{ref: "Not A Reference", wantErr: ErrInvalidRecipe},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			err := CheckPinned(tt.ref)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTagVersion(t *testing.T) {
	v, err := TagVersion("3.12.4-slim")
	require.NoError(t, err)
	assert.Equal(t, "3.12.4", v.String())

	v, err = TagVersion("v1.0.2")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v.Major())

	_, err = TagVersion("bookworm")
	assert.Error(t, err)
}

const sha = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
