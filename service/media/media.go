// Package media resizes product images from the storefront CDN for responsive pages.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"lunelle.GO/core/cache"
)

const (
	CacheTag = "media"

	FormatWebP = "webp"
	FormatJPEG = "jpeg"

	MinWidth = 16
	MaxWidth = 2048

	maxSourceBytes = 10 << 20
	// maxSourcePixels bounds the decoded size; a small compressed file can
	// expand to gigabytes of pixels.
	maxSourcePixels = 40_000_000
)

var (
	ErrHostNotAllowed = errors.New("media: image host not allowed")
	ErrInvalidRequest = errors.New("media: invalid resize request")
)

// Image is an encoded resized image.
type Image struct {
	Body        []byte
	ContentType string
	Width       int
	Height      int
}

type Resizer struct {
	hosts []string
	http  *http.Client
	cache *cache.Cache
	ttl   time.Duration
}

// NewResizer allows sources on hosts only. Results are kept in c for ttl.
func NewResizer(hosts []string, hc *http.Client, c *cache.Cache, ttl time.Duration) *Resizer {
	if hc == nil {
		hc = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport), Timeout: 15 * time.Second}
	}
	if c == nil {
		c = cache.GetInstance()
	}
	return &Resizer{hosts: hosts, http: hc, cache: c, ttl: ttl}
}

// Resize fetches src, scales it to width keeping the aspect ratio and encodes it
// as format. Images narrower than width are not upscaled.
func (r *Resizer) Resize(ctx context.Context, src string, width int, format string) (*Image, error) {
	if format == "" {
		format = FormatWebP
	}
	if format != FormatWebP && format != FormatJPEG {
		return nil, fmt.Errorf("%w: format %q", ErrInvalidRequest, format)
	}
	if width < MinWidth || width > MaxWidth {
		return nil, fmt.Errorf("%w: width %d", ErrInvalidRequest, width)
	}
	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return nil, fmt.Errorf("%w: src %q", ErrInvalidRequest, src)
	}
	if !r.allowed(u.Hostname()) {
		return nil, ErrHostNotAllowed
	}

	key := []interface{}{"media", src, width, format}
	if v, ok := r.cache.GetN(key...); ok {
		return v.(*Image), nil
	}

	raw, err := r.fetch(ctx, u.String())
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("media: decode %s: %w", src, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxSourcePixels {
		return nil, fmt.Errorf("%w: source %dx%d exceeds %d pixels", ErrInvalidRequest, cfg.Width, cfg.Height, maxSourcePixels)
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("media: decode %s: %w", src, err)
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	out := &Image{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	switch format {
	case FormatWebP:
		err = webp.Encode(&buf, img, &webp.Options{Quality: 80})
		out.ContentType = "image/webp"
	default:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(82))
		out.ContentType = "image/jpeg"
	}
	if err != nil {
		return nil, fmt.Errorf("media: encode %s: %w", format, err)
	}
	out.Body = buf.Bytes()

	r.cache.SetN(key, out, int64(r.ttl/time.Second), []string{CacheTag})
	return out, nil
}

func (r *Resizer) fetch(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media: fetch %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media: fetch %s: HTTP %d", src, resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("media: fetch %s: %w", src, err)
	}
	if len(raw) > maxSourceBytes {
		return nil, fmt.Errorf("media: fetch %s: image larger than %d bytes", src, maxSourceBytes)
	}
	return raw, nil
}

func (r *Resizer) allowed(host string) bool {
	for _, h := range r.hosts {
		if strings.EqualFold(h, host) || strings.HasSuffix(strings.ToLower(host), "."+strings.ToLower(h)) {
			return true
		}
	}
	return false
}

// Flush drops every cached resized image.
func (r *Resizer) Flush() int {
	return r.cache.DeleteByTag(CacheTag)
}
