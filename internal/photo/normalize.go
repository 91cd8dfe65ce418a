// Package photo turns submitted photo payloads into bounded JPEG rasters that
// can be embedded in a report.
package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // decoder registration
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"fieldreport/internal/domain"
)

const (
	DefaultMaxWidth  = 800
	DefaultMaxHeight = 600
	DefaultQuality   = 85
)

var (
	ErrAbsent    = errors.New("photo not supplied")
	ErrMalformed = errors.New("photo payload has an unexpected shape")
)

// Image is a normalized raster ready for embedding.
type Image struct {
	Data   []byte
	Width  int
	Height int
}

// Len returns the encoded size in bytes.
func (img *Image) Len() int {
	if img == nil {
		return 0
	}
	return len(img.Data)
}

// Result is the outcome of normalizing one slot. Image is nil when the photo
// is unavailable and Err holds the reason.
type Result struct {
	Slot  string
	Image *Image
	Err   error
}

// Available reports whether the slot produced an image.
func (r Result) Available() bool {
	return r.Image != nil
}

// Absent reports whether the slot was simply not supplied.
func (r Result) Absent() bool {
	return errors.Is(r.Err, ErrAbsent)
}

// Options tunes the normalizer bounds.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
	Logger    *zerolog.Logger
}

// Normalizer decodes, downsizes and re-encodes photos.
type Normalizer struct {
	maxWidth  int
	maxHeight int
	quality   int
	logger    zerolog.Logger
}

// NewNormalizer builds a normalizer; zero options fall back to 800x600 at q85.
func NewNormalizer(opts Options) *Normalizer {
	n := &Normalizer{
		maxWidth:  opts.MaxWidth,
		maxHeight: opts.MaxHeight,
		quality:   opts.Quality,
		logger:    zerolog.Nop(),
	}
	if n.maxWidth <= 0 {
		n.maxWidth = DefaultMaxWidth
	}
	if n.maxHeight <= 0 {
		n.maxHeight = DefaultMaxHeight
	}
	if n.quality <= 0 || n.quality > 100 {
		n.quality = DefaultQuality
	}
	if opts.Logger != nil {
		n.logger = *opts.Logger
	}
	return n
}

// Normalize never fails outward: every decode error is folded into the
// returned Result and logged with the slot key.
func (n *Normalizer) Normalize(slot string, p *domain.PhotoPayload) (res Result) {
	res.Slot = slot
	defer func() {
		if r := recover(); r != nil {
			res.Image = nil
			res.Err = fmt.Errorf("photo: decoder panic: %v", r)
			n.logger.Warn().Str("slot", slot).Err(res.Err).Msg("photo unavailable")
		}
	}()

	src, _, err := decodeImage(p)
	if err != nil {
		res.Err = err
		if !errors.Is(err, ErrAbsent) {
			n.logger.Warn().Str("slot", slot).Err(err).Msg("photo unavailable")
		}
		return res
	}

	fitted := imaging.Fit(src, n.maxWidth, n.maxHeight, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(n.quality)); err != nil {
		res.Err = fmt.Errorf("photo: encode jpeg: %w", err)
		n.logger.Warn().Str("slot", slot).Err(res.Err).Msg("photo unavailable")
		return res
	}
	b := fitted.Bounds()
	res.Image = &Image{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}
	n.logger.Debug().
		Str("slot", slot).
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Int("bytes", buf.Len()).
		Msg("photo normalized")
	return res
}

// Raw is a decoded-but-untouched photo as submitted.
type Raw struct {
	Data   []byte
	Format string
}

// Extension returns the file extension for the detected format.
func (r Raw) Extension() string {
	switch r.Format {
	case "jpeg":
		return "jpg"
	case "":
		return "bin"
	default:
		return r.Format
	}
}

// ContentType returns the MIME type for the detected format.
func (r Raw) ContentType() string {
	if r.Format == "" {
		return "application/octet-stream"
	}
	return "image/" + r.Format
}

// Decode fully decodes a payload without resizing it and returns the original
// bytes. It is used for email attachments, so a photo attaches exactly when
// the normalizer could also use it.
func Decode(p *domain.PhotoPayload) (Raw, error) {
	data, err := payloadBytes(p)
	if err != nil {
		return Raw{}, err
	}
	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Raw{}, fmt.Errorf("photo: decode image: %w", err)
	}
	return Raw{Data: data, Format: format}, nil
}

func decodeImage(p *domain.PhotoPayload) (image.Image, string, error) {
	data, err := payloadBytes(p)
	if err != nil {
		return nil, "", err
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("photo: decode image: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("photo: decode image: %w", err)
	}
	return img, format, nil
}

func payloadBytes(p *domain.PhotoPayload) ([]byte, error) {
	if p == nil {
		return nil, ErrAbsent
	}
	if p.Kind == domain.PayloadMalformed {
		return nil, ErrMalformed
	}
	encoded, ok := p.Encoded()
	if !ok {
		return nil, ErrAbsent
	}
	return DecodeBase64(encoded)
}

// DecodeBase64 strips an optional data-URI prefix and decodes the remainder.
// Whitespace and missing padding are tolerated.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, ErrAbsent
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("photo: decode base64: %w", err)
	}
	return data, nil
}
