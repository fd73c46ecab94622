package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	return s
}

func TestStore_PutAndOpen(t *testing.T) {
	s := newTestStore(t)

	url, err := s.Put(BucketReceipts, "user-1/1700000000.jpg", strings.NewReader("jpeg bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/receipts/user-1/1700000000.jpg", url)

	rc, err := s.Open(BucketReceipts, "user-1/1700000000.jpg")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
}

func TestStore_PutUpserts(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Put(BucketAvatars, "user-1/avatar.png", strings.NewReader("v1"))
	require.NoError(t, err)
	_, err = s.Put(BucketAvatars, "user-1/avatar.png", strings.NewReader("v2"))
	require.NoError(t, err)

	rc, err := s.Open(BucketAvatars, "user-1/avatar.png")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestStore_RejectsUnknownBucket(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Put("secrets", "x", strings.NewReader("nope"))
	assert.ErrorIs(t, err, ErrUnknownBucket)
}

func TestStore_RejectsTraversal(t *testing.T) {
	s := newTestStore(t)

	for _, p := range []string{"", "/", "..", "../outside", "a/../../outside", "a/../b.jpg", `a\..\b`} {
		_, err := s.Put(BucketReceipts, p, strings.NewReader("nope"))
		assert.Error(t, err, "path %q must be rejected", p)
	}
}

func TestStore_OpenMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Open(BucketReceipts, "user-1/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}
