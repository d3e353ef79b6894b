package deps

import (
	"context"
	"crypto/sha1" //nolint:gosec // Maven repositories publish SHA-1 checksums.
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// MavenCentral is the default repository URL.
const MavenCentral = "https://repo1.maven.org/maven2"

const maxParallelDownloads = 4

// ErrChecksumMismatch is returned when a downloaded jar does not match its published SHA-1.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Resolver downloads coordinates into a local cache.
type Resolver struct {
	Repository string
	CacheDir   string
	Client     *http.Client
}

// NewResolver returns a resolver for repository caching into cacheDir.
func NewResolver(repository, cacheDir string) *Resolver {
	if repository == "" {
		repository = MavenCentral
	}
	return &Resolver{
		Repository: strings.TrimRight(repository, "/"),
		CacheDir:   cacheDir,
		Client:     http.DefaultClient,
	}
}

// Resolve returns local jar paths for every coordinate in set, in set order.
func (r *Resolver) Resolve(ctx context.Context, set *Set) ([]string, error) {
	coords := set.Coordinates()
	if len(coords) == 0 {
		return nil, fmt.Errorf("dependency set %q is empty", set.Name)
	}

	paths := make([]string, len(coords))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDownloads)
	for i, c := range coords {
		g.Go(func() error {
			p, err := r.fetch(gctx, c)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", c, err)
			}
			paths[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// LocalPath returns the cache location of c.
func (r *Resolver) LocalPath(c Coordinate) string {
	return filepath.Join(r.CacheDir, filepath.FromSlash(c.Path()))
}

func (r *Resolver) fetch(ctx context.Context, c Coordinate) (string, error) {
	local := r.LocalPath(c)
	if _, err := os.Stat(local); err == nil {
		log.Debug().Str("coordinate", c.String()).Str("path", local).Msg("dependency cached")
		return local, nil
	}

	url := r.Repository + "/" + c.Path()
	log.Info().Str("coordinate", c.String()).Str("url", url).Msg("downloading dependency")

	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(local), c.FileName()+".*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	hash := sha1.New() //nolint:gosec // see import
	body, err := r.get(ctx, url)
	if err != nil {
		_ = tmp.Close()
		return "", err
	}
	_, copyErr := io.Copy(io.MultiWriter(tmp, hash), body)
	_ = body.Close()
	if closeErr := tmp.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return "", fmt.Errorf("download %s: %w", url, copyErr)
	}

	want, err := r.checksum(ctx, url+".sha1")
	if err != nil {
		return "", err
	}
	got := hex.EncodeToString(hash.Sum(nil))
	if want != "" && !strings.EqualFold(want, got) {
		return "", fmt.Errorf("%w: %s: want %s, got %s", ErrChecksumMismatch, c, want, got)
	}
	if want == "" {
		log.Warn().Str("coordinate", c.String()).Msg("no published checksum, skipping verification")
	}

	if err := os.Rename(tmp.Name(), local); err != nil {
		return "", fmt.Errorf("store %s: %w", c, err)
	}
	return local, nil
}

// checksum returns the published SHA-1 or "" when the repository has none.
func (r *Resolver) checksum(ctx context.Context, url string) (string, error) {
	body, err := r.get(ctx, url)
	if errors.Is(err, errNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()
	data, err := io.ReadAll(io.LimitReader(body, 1024))
	if err != nil {
		return "", fmt.Errorf("read checksum %s: %w", url, err)
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], nil
}

var errNotFound = errors.New("not found")

func (r *Resolver) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("get %s: %w", url, errNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("get %s: unexpected status %s", url, resp.Status)
	}
	return resp.Body, nil
}
