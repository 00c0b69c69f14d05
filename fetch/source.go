package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eak1mov/go-tilestream/tile"
	"github.com/eak1mov/go-tilestream/xyz"
	"github.com/sethvargo/go-retry"
)

var (
	ErrUnknownKey = errors.New("tilestream: key does not match tile template")
	ErrStatus     = errors.New("tilestream: unexpected response status")
)

// ReaderSource serves requests from a tileset, such as an MBTiles file or an XYZ directory.
type ReaderSource struct {
	reader   tile.Reader
	template xyz.Template
}

var _ Source = (*ReaderSource)(nil)

// NewReaderSource returns a source that parses request keys with template
// and reads the addressed tiles from reader.
func NewReaderSource(reader tile.Reader, template xyz.Template) *ReaderSource {
	return &ReaderSource{reader: reader, template: template}
}

func (s *ReaderSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	tileID, ok := s.template.Parse(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return s.reader.ReadTile(ctx, tileID)
}

type HTTPParams struct {
	Client    *http.Client
	UserAgent string
	Retries   uint64
	Backoff   time.Duration
}

// HTTPSource downloads keys as URLs. Server errors and throttling are retried
// with exponential backoff; 404 and 204 responses mean the tile does not exist.
type HTTPSource struct {
	client    *http.Client
	userAgent string
	retries   uint64
	backoff   time.Duration
}

var _ Source = (*HTTPSource)(nil)

func NewHTTPSource() *HTTPSource {
	return NewHTTPSourceParams(HTTPParams{})
}

func NewHTTPSourceParams(params HTTPParams) *HTTPSource {
	client := params.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	userAgent := params.UserAgent
	if userAgent == "" {
		userAgent = "go-tilestream/1.0"
	}
	backoff := params.Backoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	return &HTTPSource{
		client:    client,
		userAgent: userAgent,
		retries:   params.Retries,
		backoff:   backoff,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	var tileData []byte
	b := retry.WithMaxRetries(s.retries, retry.NewExponential(s.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", s.userAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusNoContent:
			tileData = make([]byte, 0)
			return nil
		case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode))
		default:
			return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
		}

		tileData, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tileData, nil
}
