// Package attach converts user-selected files into inline base64 payloads for
// a generation request.
package attach

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/donhulam/trolyvanban/internal/models"
)

// ErrEncoding marks a file that could not be read or encoded.
var ErrEncoding = errors.New("attachment encoding failed")

// File is a raw user-selected file. Open is called once per encode; the
// returned reader is closed by the encoder.
type File struct {
	Name      string
	MediaType string
	Open      func() (io.ReadCloser, error)
}

// Eligible reports whether a declared media type may be sent to the
// generator. Only images and PDFs qualify; callers filter before encoding.
func Eligible(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/") || mediaType == "application/pdf"
}

// Filter returns the files whose media type is eligible, preserving order.
func Filter(files []File) []File {
	var out []File
	for _, f := range files {
		if Eligible(f.MediaType) {
			out = append(out, f)
		}
	}
	return out
}

// Encode reads r to the end and returns its base64 inline representation.
// Eligibility is the caller's precondition; Encode does not re-check it.
func Encode(r io.Reader, mediaType string) (models.EncodedAttachment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.EncodedAttachment{}, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return models.EncodedAttachment{
		Payload:   base64.StdEncoding.EncodeToString(data),
		MediaType: mediaType,
	}, nil
}

// EncodeAll encodes every file concurrently and returns the results in input
// order. A single failure fails the whole batch; no partial batch is ever
// returned.
func EncodeAll(ctx context.Context, files []File) ([]models.EncodedAttachment, error) {
	if len(files) == 0 {
		return nil, nil
	}

	encoded := make([]models.EncodedAttachment, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rc, err := f.Open()
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrEncoding, f.Name, err)
			}
			defer rc.Close()
			att, err := Encode(rc, f.MediaType)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			encoded[i] = att
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return encoded, nil
}
