package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveKey(t *testing.T) {
	assert.Equal(t, "brackets/42/final.html", ArchiveKey("42"))
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base, key, want string
	}{
		{"https://cdn.example.com", "brackets/1/final.html", "https://cdn.example.com/brackets/1/final.html"},
		{"https://cdn.example.com/", "/brackets/1/final.html", "https://cdn.example.com/brackets/1/final.html"},
		{"https://cdn.example.com/archive", "brackets/1/final.html", "https://cdn.example.com/archive/brackets/1/final.html"},
		{"", "brackets/1/final.html", ""},
		{"https://cdn.example.com", "", ""},
		{"://bad", "key", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, publicURL(tt.base, tt.key, nil), "%s + %s", tt.base, tt.key)
	}
}

func TestNewCloudflareR2Uploader_Config(t *testing.T) {
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{BucketName: "brackets"}, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}

func TestNewCloudflareR2Uploader_PublicURL(t *testing.T) {
	t.Setenv("AWS_PROFILE", "")

	u, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{
		AccountID:       "account",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "brackets",
		PublicBaseURL:   "https://cdn.example.com",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/brackets/7/final.html", u.GetPublicURL(ArchiveKey("7")))
}
