package notification

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"bondhub/internal/observability"
)

const (
	avatarMaxBytes = 2 << 20
	avatarSize     = 128
)

// AvatarLoader fetches sender pictures and turns them into small PNG data
// URLs suitable as a notification's large icon.
type AvatarLoader struct {
	client  *http.Client
	cache   *lru.Cache[string, string]
	timeout time.Duration
}

func NewAvatarLoader(client *http.Client, size int, timeout time.Duration) (*AvatarLoader, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &AvatarLoader{client: client, cache: cache, timeout: timeout}, nil
}

// Load returns the icon for url, serving repeats from the cache.
func (l *AvatarLoader) Load(ctx context.Context, url string) (string, error) {
	if icon, ok := l.cache.Get(url); ok {
		observability.IncAvatarFetch("hit")
		return icon, nil
	}
	icon, err := l.fetch(ctx, url)
	if err != nil {
		observability.IncAvatarFetch("error")
		return "", err
	}
	observability.IncAvatarFetch("fetched")
	l.cache.Add(url, icon)
	return icon, nil
}

func (l *AvatarLoader) fetch(ctx context.Context, url string) (string, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch avatar: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, avatarMaxBytes))
	if err != nil {
		return "", fmt.Errorf("decode avatar: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, thumbnail(img, avatarSize)); err != nil {
		return "", fmt.Errorf("encode avatar: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// thumbnail scales img down (nearest neighbour) so its longer side is at
// most max. Smaller images are returned as is.
func thumbnail(img image.Image, max int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return img
	}
	tw, th := max, h*max/w
	if h > w {
		tw, th = w*max/h, max
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	out := image.NewRGBA(image.Rect(0, 0, tw, th))
	for y := 0; y < th; y++ {
		for x := 0; x < tw; x++ {
			out.Set(x, y, img.At(b.Min.X+x*w/tw, b.Min.Y+y*h/th))
		}
	}
	return out
}
