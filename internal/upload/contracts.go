// Package upload stores contract documents posted with updateSettings.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// PublicPrefix is where stored contracts are served from.
const PublicPrefix = "/uploads/contracts/"

var allowedExt = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type ContractStore struct {
	fs       afero.Fs
	dir      string
	maxBytes int64
	now      func() time.Time

	mu   sync.Mutex
	last int64
}

// NewContractStore keeps files under dir on fs.
func NewContractStore(fs afero.Fs, dir string, maxBytes int64) *ContractStore {
	return &ContractStore{fs: fs, dir: dir, maxBytes: maxBytes, now: time.Now}
}

// ErrRejected wraps every reason a file is refused before it is written.
type ErrRejected struct {
	Reason string
}

func (e *ErrRejected) Error() string {
	return "contract rejected: " + e.Reason
}

// Save writes the upload as <unix-millis><ext> and returns its public path.
func (s *ContractStore) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return "", &ErrRejected{Reason: fmt.Sprintf("file type %q is not allowed", ext)}
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", &ErrRejected{Reason: fmt.Sprintf("file is larger than %d bytes", s.maxBytes)}
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create contracts dir: %w", err)
	}

	name := s.nextName() + ext
	dst, err := s.fs.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create contract file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = s.fs.Remove(filepath.Join(s.dir, name))
		return "", fmt.Errorf("write contract file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close contract file: %w", err)
	}

	return PublicPrefix + name, nil
}

// Remove deletes a file previously returned by Save. Paths outside the
// contracts prefix are ignored.
func (s *ContractStore) Remove(publicPath string) error {
	if !strings.HasPrefix(publicPath, PublicPrefix) {
		return nil
	}
	name := path.Base(publicPath)
	return s.fs.Remove(filepath.Join(s.dir, name))
}

// nextName returns the current unix millis, bumped so two uploads in the
// same millisecond never share a name.
func (s *ContractStore) nextName() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.now().UnixMilli()
	if ms <= s.last {
		ms = s.last + 1
	}
	s.last = ms
	return strconv.FormatInt(ms, 10)
}
