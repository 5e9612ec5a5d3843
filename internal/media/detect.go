package media

import (
	"net/url"
	"path"
	"sort"
	"strings"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
}

// IsSupportedExt returns true if the extension is a supported playable media format.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// SupportedExtsList returns a human-readable list of supported playable media formats.
func SupportedExtsList() string {
	exts := make([]string, 0, len(audioExts))
	for ext := range audioExts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// IsURL reports whether ref names remote media rather than a local file.
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// URLExt returns the lowercased extension of a URL's path, ignoring any
// query string or fragment.
func URLExt(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(path.Ext(u.Path))
}
