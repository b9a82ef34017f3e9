// pkg/builder/fetch.go
package builder

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// Fetch obtains the package source named by opts.URL and returns the
// directory holding its build configuration. Local directories are used
// in place; archives are downloaded to the shared cache, verified and
// extracted under the work directory; git URLs are shallow-cloned.
func (c *CMake) Fetch(ctx context.Context, opts FetchOptions) (string, error) {
	url := opts.URL
	c.logger.Debug("fetch", "url", url)

	switch {
	case strings.HasPrefix(url, "file://"):
		local := strings.TrimPrefix(url, "file://")
		info, err := os.Stat(local)
		if err != nil {
			return "", &Error{Op: "fetch", Msg: url, Err: err}
		}
		if info.IsDir() {
			return findSrcDir(local, opts.CustomConfig)
		}
		if err := c.verify(local, opts.Hash); err != nil {
			return "", err
		}
		if err := ExtractArchive(local, c.srcRoot()); err != nil {
			return "", &Error{Op: "fetch", Msg: url, Err: err}
		}

	case isGitURL(url):
		cloneURL := strings.TrimPrefix(url, "git+")
		_, err := git.PlainCloneContext(ctx, c.srcRoot(), false, &git.CloneOptions{
			URL:   cloneURL,
			Depth: 1,
		})
		if err != nil {
			return "", &Error{Op: "fetch", Msg: url, Err: err}
		}

	case strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://"):
		archive, err := c.download(ctx, url, opts.Insecure)
		if err != nil {
			return "", err
		}
		if err := c.verify(archive, opts.Hash); err != nil {
			return "", err
		}
		if err := ExtractArchive(archive, c.srcRoot()); err != nil {
			return "", &Error{Op: "fetch", Msg: url, Err: err}
		}

	default:
		return "", &Error{Op: "fetch", Msg: url, Err: fmt.Errorf("unsupported source URL")}
	}

	return findSrcDir(c.srcRoot(), opts.CustomConfig)
}

// download fetches url into the shared archive cache, keyed by the URL
// digest so distinct sources with the same file name never clash.
func (c *CMake) download(ctx context.Context, url string, insecure bool) (string, error) {
	cache, err := CachePath()
	if err != nil {
		return "", &Error{Op: "fetch", Msg: url, Err: err}
	}
	key := sha256.Sum256([]byte(url))
	dest := filepath.Join(cache, hex.EncodeToString(key[:8])+"-"+path.Base(url))
	if _, err := os.Stat(dest); err == nil {
		c.logger.Debug("fetch cache hit", "archive", dest)
		return dest, nil
	}

	client := http.DefaultClient
	if insecure {
		client = &http.Client{Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &Error{Op: "fetch", Msg: url, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{Op: "fetch", Msg: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &Error{Op: "fetch", Msg: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if err := os.MkdirAll(cache, 0755); err != nil {
		return "", &Error{Op: "fetch", Msg: url, Err: err}
	}
	tmp, err := os.CreateTemp(cache, "download-*")
	if err != nil {
		return "", &Error{Op: "fetch", Msg: url, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", &Error{Op: "fetch", Msg: url, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &Error{Op: "fetch", Msg: url, Err: err}
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", &Error{Op: "fetch", Msg: url, Err: err}
	}
	return dest, nil
}

// verify checks an archive against an expected hash of the form
// sha256:<hex> (a bare hex digest is accepted too).
func (c *CMake) verify(archive, want string) error {
	if want == "" {
		return nil
	}
	want = strings.TrimPrefix(strings.ToLower(want), "sha256:")

	f, err := os.Open(archive)
	if err != nil {
		return &Error{Op: "fetch", Msg: archive, Err: err}
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return &Error{Op: "fetch", Msg: archive, Err: err}
	}
	got := hex.EncodeToString(h.Sum(nil))
	if got != want {
		return &Error{
			Op:  "fetch",
			Msg: fmt.Sprintf("%s: got sha256:%s, want sha256:%s", archive, got, want),
			Err: ErrHashMismatch,
		}
	}
	return nil
}

func isGitURL(url string) bool {
	return strings.HasPrefix(url, "git+") ||
		strings.HasPrefix(url, "git://") ||
		strings.HasSuffix(url, ".git")
}

// findSrcDir locates the directory to configure from. Archives usually
// unpack to a single top-level directory, so the search descends one
// level when the root has no CMakeLists.txt.
func findSrcDir(dir string, customConfig bool) (string, error) {
	if _, err := os.Stat(filepath.Join(dir, "CMakeLists.txt")); err == nil {
		return dir, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &Error{Op: "fetch", Msg: dir, Err: err}
	}
	var subdirs []string
	for _, e := range entries {
		if e.IsDir() {
			subdirs = append(subdirs, filepath.Join(dir, e.Name()))
		}
	}
	for _, sub := range subdirs {
		if _, err := os.Stat(filepath.Join(sub, "CMakeLists.txt")); err == nil {
			return sub, nil
		}
	}

	// A custom CMakeLists.txt will be dropped in later, so a bare tree
	// is acceptable.
	if customConfig {
		if len(subdirs) == 1 {
			return subdirs[0], nil
		}
		return dir, nil
	}
	return "", &Error{Op: "fetch", Msg: dir, Err: ErrNoSource}
}

// CachePath returns the shared archive cache directory.
func CachePath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "cget"), nil
}

// CleanCache deletes every cached download.
func CleanCache() error {
	cache, err := CachePath()
	if err != nil {
		return err
	}
	return os.RemoveAll(cache)
}
