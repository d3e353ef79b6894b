package deps

import (
	"context"
	"crypto/sha1" //nolint:gosec // Maven repositories publish SHA-1 checksums.
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	t.Parallel()

	c, err := ParseCoordinate("com.pinterest:ktlint:0.45.2:all")
	require.NoError(t, err)
	assert.Equal(t, Coordinate{Group: "com.pinterest", Artifact: "ktlint", Version: "0.45.2", Classifier: "all"}, c)
	assert.Equal(t, "com.pinterest:ktlint:0.45.2:all", c.String())
	assert.Equal(t, "com/pinterest/ktlint/0.45.2/ktlint-0.45.2-all.jar", c.Path())

	c, err = ParseCoordinate("com.doist:ktlint-idea-reporter:1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "com/doist/ktlint-idea-reporter/1.0.0/ktlint-idea-reporter-1.0.0.jar", c.Path())

	for _, bad := range []string{"", "a:b", "a::c", "a:b:c:d:e"} {
		_, err := ParseCoordinate(bad)
		assert.Error(t, err, bad)
	}
}

func TestSetDefaultsAreLazy(t *testing.T) {
	t.Parallel()

	calls := 0
	s := NewSet("ktlint")
	s.DefaultDependencies(func() []Coordinate {
		calls++
		return []Coordinate{{Group: "g", Artifact: "a", Version: "1"}}
	})
	assert.Equal(t, 0, calls)

	assert.Len(t, s.Coordinates(), 1)
	assert.Len(t, s.Coordinates(), 1)
	assert.Equal(t, 1, calls)
}

func TestSetExplicitEntriesWinOverDefaults(t *testing.T) {
	t.Parallel()

	s := NewSet("ktlint")
	s.DefaultDependencies(func() []Coordinate {
		return []Coordinate{{Group: "g", Artifact: "default", Version: "1"}}
	})
	s.Add(Coordinate{Group: "g", Artifact: "explicit", Version: "2"})

	got := s.Coordinates()
	require.Len(t, got, 1)
	assert.Equal(t, "explicit", got[0].Artifact)
}

type repo struct {
	files map[string][]byte
	hits  atomic.Int32
}

func (r *repo) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hits.Add(1)
	data, ok := r.files[req.URL.Path]
	if !ok {
		http.NotFound(w, req)
		return
	}
	_, _ = w.Write(data)
}

func sha1Hex(data []byte) string {
	sum := sha1.Sum(data) //nolint:gosec // test fixture
	return hex.EncodeToString(sum[:])
}

func TestResolveDownloadsAndCaches(t *testing.T) {
	t.Parallel()

	linter := []byte("linter jar")
	reporter := []byte("reporter jar")
	r := &repo{files: map[string][]byte{
		"/com/pinterest/ktlint/0.45.2/ktlint-0.45.2-all.jar":                   linter,
		"/com/pinterest/ktlint/0.45.2/ktlint-0.45.2-all.jar.sha1":              []byte(sha1Hex(linter) + "  ktlint-0.45.2-all.jar\n"),
		"/com/doist/ktlint-idea-reporter/1.0.0/ktlint-idea-reporter-1.0.0.jar": reporter,
	}}
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	set := NewSet("ktlint")
	set.DefaultDependencies(func() []Coordinate {
		return []Coordinate{
			{Group: "com.pinterest", Artifact: "ktlint", Version: "0.45.2", Classifier: "all"},
			{Group: "com.doist", Artifact: "ktlint-idea-reporter", Version: "1.0.0"},
		}
	})

	cache := t.TempDir()
	res := NewResolver(srv.URL+"/", cache)
	paths, err := res.Resolve(context.Background(), set)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(cache, "com", "pinterest", "ktlint", "0.45.2", "ktlint-0.45.2-all.jar"), paths[0])

	got, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, reporter, got)

	before := r.hits.Load()
	again, err := Resolved{Set: set, Resolver: res}.Classpath(context.Background())
	require.NoError(t, err)
	assert.Equal(t, paths, again)
	assert.Equal(t, before, r.hits.Load())
}

func TestResolveRejectsChecksumMismatch(t *testing.T) {
	t.Parallel()

	r := &repo{files: map[string][]byte{
		"/g/a/1/a-1.jar":      []byte("payload"),
		"/g/a/1/a-1.jar.sha1": []byte("0000000000000000000000000000000000000000"),
	}}
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	set := NewSet("ktlint")
	set.Add(Coordinate{Group: "g", Artifact: "a", Version: "1"})
	res := NewResolver(srv.URL, t.TempDir())

	_, err := res.Resolve(context.Background(), set)
	require.ErrorIs(t, err, ErrChecksumMismatch)
	_, statErr := os.Stat(res.LocalPath(Coordinate{Group: "g", Artifact: "a", Version: "1"}))
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolveMissingArtifact(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(&repo{files: map[string][]byte{}})
	t.Cleanup(srv.Close)

	set := NewSet("ktlint")
	set.Add(Coordinate{Group: "g", Artifact: "missing", Version: "1"})

	_, err := NewResolver(srv.URL, t.TempDir()).Resolve(context.Background(), set)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "g:missing:1")
}

func TestResolveEmptySet(t *testing.T) {
	t.Parallel()

	_, err := NewResolver("", t.TempDir()).Resolve(context.Background(), NewSet("ktlint"))
	require.Error(t, err)
}

func TestStaticClasspath(t *testing.T) {
	t.Parallel()

	cp, err := Static{"/a.jar", "/b.jar"}.Classpath(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/a.jar", "/b.jar"}, cp)
}
