package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	MaxImages     = 3
	MaxImageBytes = 10 << 20 // 10 MB raw upload limit
)

var (
	ErrImageSetFull  = errors.New("draft already has the maximum number of images")
	ErrImageTooLarge = errors.New("image exceeds the 10 MB size limit")
	ErrNotAnImage    = errors.New("file does not have an image content type")
)

// ImageRef is one element of an ImageSet: either an already uploaded image
// identified by its URL, or a pending one still carrying raw bytes.
type ImageRef struct {
	URL         string `json:"url,omitempty"`
	Raw         []byte `json:"-"`
	ContentType string `json:"-"`
}

// Uploaded reports whether the reference has been uploaded already.
func (r ImageRef) Uploaded() bool {
	return r.URL != ""
}

// ImageSet is the ordered collection of a draft's images, at most MaxImages
// long.
type ImageSet struct {
	Refs []ImageRef `json:"images"`
}

// Add appends a pending image. It rejects the file without mutating the set
// when the set is full, the file is too large, or its sniffed content type is
// not an image.
func (s *ImageSet) Add(raw []byte) error {
	if len(s.Refs) >= MaxImages {
		return ErrImageSetFull
	}

	if len(raw) > MaxImageBytes {
		return ErrImageTooLarge
	}

	ct := http.DetectContentType(raw)
	if !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("%w: detected %s", ErrNotAnImage, ct)
	}

	s.Refs = append(s.Refs, ImageRef{Raw: raw, ContentType: ct})
	return nil
}

// Remove drops the element at index i. Out-of-range indexes are ignored.
// An empty set is allowed; images are optional.
func (s *ImageSet) Remove(i int) {
	if i < 0 || i >= len(s.Refs) {
		return
	}
	s.Refs = append(s.Refs[:i], s.Refs[i+1:]...)
}

// URLs returns the URLs of all uploaded references, in order.
func (s *ImageSet) URLs() []string {
	urls := make([]string, 0, len(s.Refs))
	for _, r := range s.Refs {
		if r.Uploaded() {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

// Uploader stores a pending image and returns its public URL.
type Uploader func(ctx context.Context, ref ImageRef) (string, error)

// UploadError reports the first upload failure within an ImageSet. Index is
// the position of the failing element within the set.
type UploadError struct {
	Index int
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("can't upload image %d: %v", e.Index+1, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// UploadAll uploads every pending reference strictly in order, converting each
// to an uploaded one as it succeeds. On the first failure it stops without
// attempting the remainder and returns the uploaded subset together with an
// *UploadError naming the failing element. The caller decides whether to retry
// the remainder or accept the partial set; there is no automatic retry.
func (s *ImageSet) UploadAll(ctx context.Context, upload Uploader) ([]ImageRef, error) {
	done := make([]ImageRef, 0, len(s.Refs))

	for i := range s.Refs {
		if s.Refs[i].Uploaded() {
			done = append(done, s.Refs[i])
			continue
		}

		url, err := upload(ctx, s.Refs[i])
		if err != nil {
			return done, &UploadError{Index: i, Err: err}
		}

		s.Refs[i] = ImageRef{URL: url}
		done = append(done, s.Refs[i])
	}

	return done, nil
}
