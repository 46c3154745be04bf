package upload

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("contract", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["contract"][0]
}

func newStore(fs afero.Fs, maxBytes int64, at time.Time) *ContractStore {
	s := NewContractStore(fs, "uploads/contracts", maxBytes)
	s.now = func() time.Time { return at }
	return s
}

func TestSave_WritesTimestampedFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	at := time.UnixMilli(1700000000123)
	s := newStore(fs, 0, at)

	p, err := s.Save(fileHeader(t, "Contract.PDF", []byte("%PDF-1.4")))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/contracts/1700000000123.pdf", p)

	data, err := afero.ReadFile(fs, "uploads/contracts/1700000000123.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestSave_SameMillisecondGetsDistinctNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(fs, 0, time.UnixMilli(1000))

	a, err := s.Save(fileHeader(t, "a.pdf", []byte("a")))
	require.NoError(t, err)
	b, err := s.Save(fileHeader(t, "b.pdf", []byte("b")))
	require.NoError(t, err)

	assert.Equal(t, "/uploads/contracts/1000.pdf", a)
	assert.Equal(t, "/uploads/contracts/1001.pdf", b)
}

func TestSave_Rejects(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(fs, 4, time.UnixMilli(1))

	_, err := s.Save(fileHeader(t, "run.exe", []byte("MZ")))
	var rejected *ErrRejected
	require.ErrorAs(t, err, &rejected)
	assert.Contains(t, rejected.Reason, ".exe")

	_, err = s.Save(fileHeader(t, "big.pdf", []byte("0123456789")))
	require.ErrorAs(t, err, &rejected)

	exists, _ := afero.DirExists(fs, "uploads/contracts")
	assert.False(t, exists, "nothing is written for rejected files")
}

func TestRemove(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(fs, 0, time.UnixMilli(5))

	p, err := s.Save(fileHeader(t, "x.docx", []byte("doc")))
	require.NoError(t, err)

	require.NoError(t, s.Remove(p))
	exists, _ := afero.Exists(fs, "uploads/contracts/5.docx")
	assert.False(t, exists)

	assert.NoError(t, s.Remove("/etc/passwd"))
}
