package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Source is a playable local file.
type Source struct {
	Path string
	// Cleanup removes any temporary download. It is never nil.
	Cleanup func()
}

// Resolve turns a media reference into a local file. Local paths are checked
// in place; http(s) URLs are downloaded to a temporary file that keeps the
// URL's extension so the decoder can be picked from it.
func Resolve(ctx context.Context, ref string) (Source, error) {
	if IsURL(ref) {
		return fetch(ctx, http.DefaultClient, ref)
	}

	info, err := os.Stat(ref)
	if err != nil {
		return Source{}, err
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("%s is a directory", ref)
	}
	ext := strings.ToLower(filepath.Ext(ref))
	if !IsSupportedExt(ext) {
		return Source{}, fmt.Errorf("unsupported format %s (supported: %s)", ext, SupportedExtsList())
	}
	return Source{Path: ref, Cleanup: func() {}}, nil
}

func fetch(ctx context.Context, client *http.Client, rawURL string) (Source, error) {
	ext := URLExt(rawURL)
	if !IsSupportedExt(ext) {
		return Source{}, fmt.Errorf("unsupported format %q in URL (supported: %s)", ext, SupportedExtsList())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Source{}, fmt.Errorf("building request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Source{}, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Source{}, fmt.Errorf("fetching %s: %s", rawURL, resp.Status)
	}

	f, err := os.CreateTemp("", "zalgoplayer-*"+ext)
	if err != nil {
		return Source{}, fmt.Errorf("creating temp file: %w", err)
	}
	cleanup := func() { os.Remove(f.Name()) }

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		cleanup()
		return Source{}, fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return Source{}, fmt.Errorf("writing temp file: %w", err)
	}
	return Source{Path: f.Name(), Cleanup: cleanup}, nil
}
