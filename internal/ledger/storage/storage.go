// Package storage is a local-disk object store with public URLs, bucketed
// the same way a hosted object store would be.
package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	BucketReceipts = "receipts"
	BucketAvatars  = "avatars"
)

var (
	ErrUnknownBucket = errors.New("storage: unknown bucket")
	ErrBadPath       = errors.New("storage: invalid object path")
	ErrNotFound      = errors.New("storage: object not found")
)

// Store keeps objects under root/<bucket>/<path> and serves them at
// baseURL/files/<bucket>/<path>. Objects are namespaced by user id in the
// path, enforced by callers.
type Store struct {
	root    string
	baseURL string
	buckets map[string]struct{}
}

func NewStore(root, baseURL string) (*Store, error) {
	s := &Store{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		buckets: map[string]struct{}{
			BucketReceipts: {},
			BucketAvatars:  {},
		},
	}
	for b := range s.buckets {
		if err := os.MkdirAll(filepath.Join(root, b), 0o755); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Put writes an object, replacing any existing one at the same path, and
// returns its public URL.
func (s *Store) Put(bucket, objectPath string, r io.Reader) (string, error) {
	full, err := s.resolve(bucket, objectPath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(full)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	return s.PublicURL(bucket, objectPath), nil
}

// Open returns a reader for an object, for the file-serving handler.
func (s *Store) Open(bucket, objectPath string) (io.ReadCloser, error) {
	full, err := s.resolve(bucket, objectPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// PublicURL returns the URL an object is served at. It does not check the
// object exists.
func (s *Store) PublicURL(bucket, objectPath string) string {
	return s.baseURL + "/files/" + bucket + "/" + strings.TrimLeft(objectPath, "/")
}

// resolve validates the bucket and object path and maps them to a location
// on disk, rejecting anything that would escape the bucket directory.
func (s *Store) resolve(bucket, objectPath string) (string, error) {
	if _, ok := s.buckets[bucket]; !ok {
		return "", ErrUnknownBucket
	}

	cleaned := path.Clean("/" + objectPath)
	if cleaned == "/" || strings.Contains(objectPath, "\\") {
		return "", ErrBadPath
	}
	for _, part := range strings.Split(objectPath, "/") {
		if part == ".." {
			return "", ErrBadPath
		}
	}

	return filepath.Join(s.root, bucket, filepath.FromSlash(cleaned)), nil
}
