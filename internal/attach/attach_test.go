package attach

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEligible(t *testing.T) {
	tests := []struct {
		mediaType string
		want      bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"image/webp", true},
		{"application/pdf", true},
		{"application/msword", false},
		{"text/plain", false},
		{"video/mp4", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Eligible(tt.mediaType), tt.mediaType)
	}
}

func TestFilter(t *testing.T) {
	files := []File{
		{Name: "a.png", MediaType: "image/png"},
		{Name: "b.docx", MediaType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{Name: "c.pdf", MediaType: "application/pdf"},
	}
	got := Filter(files)
	require.Len(t, got, 2)
	assert.Equal(t, "a.png", got[0].Name)
	assert.Equal(t, "c.pdf", got[1].Name)
}

func TestEncode(t *testing.T) {
	att, err := Encode(strings.NewReader("hello"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("hello")), att.Payload)
	assert.Equal(t, "image/png", att.MediaType)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestEncodeReadFailure(t *testing.T) {
	_, err := Encode(failingReader{}, "image/png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEncoding)
	assert.Contains(t, err.Error(), "disk on fire")
}

func memFile(name, mediaType, content string) File {
	return File{
		Name:      name,
		MediaType: mediaType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func TestEncodeAllPreservesInputOrder(t *testing.T) {
	files := []File{
		memFile("one.png", "image/png", "first"),
		memFile("two.pdf", "application/pdf", "second"),
		memFile("three.jpg", "image/jpeg", "third"),
	}
	got, err := EncodeAll(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, content := range []string{"first", "second", "third"} {
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte(content)), got[i].Payload)
	}
	assert.Equal(t, "application/pdf", got[1].MediaType)
}

func TestEncodeAllFailFast(t *testing.T) {
	files := []File{
		memFile("ok.png", "image/png", "fine"),
		{
			Name:      "broken.pdf",
			MediaType: "application/pdf",
			Open: func() (io.ReadCloser, error) {
				return nil, errors.New("unreadable")
			},
		},
	}
	got, err := EncodeAll(context.Background(), files)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEncoding)
	assert.Contains(t, err.Error(), "broken.pdf")
	assert.Nil(t, got)
}

func TestEncodeAllEmpty(t *testing.T) {
	got, err := EncodeAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
