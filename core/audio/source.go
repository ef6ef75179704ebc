package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"Sonicbar/logger"
)

// maxMediaBytes caps how much of a single media file is buffered in memory.
const maxMediaBytes = 64 << 20

var (
	ErrEmptyLocator     = errors.New("empty media locator")
	ErrUnsupportedMedia = errors.New("unsupported media locator")
	ErrNoObjectStore    = errors.New("object store not configured")
	ErrMediaTooLarge    = errors.New("media file too large")
)

// LocatorKind tells the fetcher where media bytes come from.
type LocatorKind string

const (
	LocatorHTTP   LocatorKind = "http"
	LocatorFile   LocatorKind = "file"
	LocatorObject LocatorKind = "object"
)

// Locator is a parsed track URL.
type Locator struct {
	Kind   LocatorKind
	URL    string // http(s) URL or local path
	Bucket string // object locators only
	Key    string
}

// ParseLocator accepts http(s) URLs, file:// URLs, bare paths and
// minio://bucket/key object references.
func ParseLocator(raw string) (Locator, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Locator{}, ErrEmptyLocator
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 { // "C:\..." parses with a one-letter scheme
		return Locator{Kind: LocatorFile, URL: raw}, nil
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return Locator{Kind: LocatorHTTP, URL: raw}, nil
	case "file":
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		if path == "" {
			return Locator{}, fmt.Errorf("%w: %s", ErrEmptyLocator, raw)
		}
		return Locator{Kind: LocatorFile, URL: path}, nil
	case "minio", "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Locator{}, fmt.Errorf("%w: object locator needs bucket and key: %s", ErrUnsupportedMedia, raw)
		}
		return Locator{Kind: LocatorObject, Bucket: u.Host, Key: key}, nil
	default:
		return Locator{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, raw)
	}
}

// Presigner turns an object reference into a short-lived download URL.
type Presigner interface {
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (*url.URL, error)
}

// Fetcher loads media bytes for a locator.
type Fetcher struct {
	HTTPClient *http.Client
	Presigner  Presigner
}

// NewFetcher returns a Fetcher with a bounded HTTP client. presigner may be nil.
func NewFetcher(presigner Presigner) *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Presigner:  presigner,
	}
}

// Fetch reads the whole media file behind raw.
func (f *Fetcher) Fetch(ctx context.Context, raw string) ([]byte, error) {
	loc, err := ParseLocator(raw)
	if err != nil {
		return nil, err
	}

	switch loc.Kind {
	case LocatorFile:
		file, err := os.Open(loc.URL)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return readLimited(file)
	case LocatorObject:
		if f.Presigner == nil {
			return nil, ErrNoObjectStore
		}
		u, err := f.Presigner.PresignGet(ctx, loc.Bucket, loc.Key, 15*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("presign %s/%s: %w", loc.Bucket, loc.Key, err)
		}
		return f.fetchHTTP(ctx, u.String())
	default:
		return f.fetchHTTP(ctx, loc.URL)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	client := f.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch media: unexpected status %d", resp.StatusCode)
	}
	logger.Debug("[Audio] 下载媒体", logger.String("url", target), logger.Int64("contentLength", resp.ContentLength))
	return readLimited(resp.Body)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxMediaBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxMediaBytes {
		return nil, ErrMediaTooLarge
	}
	return data, nil
}
