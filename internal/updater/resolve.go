package updater

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"toolupdater/internal/catalog"
)

const (
	// DefaultReleaseAPI is the base URL of the GitHub release API.
	DefaultReleaseAPI = "https://api.github.com"

	patternTimeout = 5 * time.Second
)

// Fetcher is the HTTP boundary the pipeline depends on. *Client implements it.
type Fetcher interface {
	GetText(ctx context.Context, rawURL string) (string, error)
	GetJSON(ctx context.Context, rawURL string, v any) error
	Download(ctx context.Context, rawURL, dest string) (int64, error)
}

// Release is the outcome of resolution: the published version and the URL of
// its artifact.
type Release struct {
	Version string
	URL     string
}

type releaseAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type releaseDoc struct {
	TagName string         `json:"tag_name"`
	Assets  []releaseAsset `json:"assets"`
}

// strategy resolves one SourceMode.
type strategy interface {
	resolve(ctx context.Context, spec catalog.ToolSpec, force bool) (Release, error)
}

// Resolver finds the latest published version of a tool and its download URL.
type Resolver struct {
	strategies map[catalog.SourceMode]strategy
}

// NewResolver builds a resolver that fetches through f. releaseAPI is the base
// URL of the release API; empty selects DefaultReleaseAPI.
func NewResolver(f Fetcher, releaseAPI string) *Resolver {
	if releaseAPI == "" {
		releaseAPI = DefaultReleaseAPI
	}
	return &Resolver{strategies: map[catalog.SourceMode]strategy{
		catalog.SourceWeb:        webStrategy{fetch: f},
		catalog.SourceReleaseAPI: releaseStrategy{fetch: f, base: strings.TrimRight(releaseAPI, "/")},
	}}
}

// Resolve returns the latest release of spec. Unless force is set, a version
// equal to spec.LocalVersion yields ErrNoUpdateAvailable.
func (r *Resolver) Resolve(ctx context.Context, spec catalog.ToolSpec, force bool) (Release, error) {
	s, ok := r.strategies[spec.Source]
	if !ok {
		return Release{}, fmt.Errorf("%w: %s: no resolver for source %s", ErrConfig, spec.Name, spec.Source)
	}
	return s.resolve(ctx, spec, force)
}

type webStrategy struct {
	fetch Fetcher
}

func (w webStrategy) resolve(ctx context.Context, spec catalog.ToolSpec, force bool) (Release, error) {
	page, err := w.fetch.GetText(ctx, spec.Location)
	if err != nil {
		return Release{}, err
	}

	version, ok, err := firstMatch(spec.VersionPattern, page)
	if err != nil {
		return Release{}, err
	}
	if !ok {
		return Release{}, fmt.Errorf("%w: version pattern did not match", ErrResolution)
	}
	if err := checkLatest(spec, version, force); err != nil {
		return Release{}, err
	}

	var downloadURL string
	if spec.DownloadPattern != "" {
		match, ok, err := firstMatch(spec.DownloadPattern, page)
		if err != nil {
			return Release{}, err
		}
		if !ok {
			return Release{}, fmt.Errorf("%w: download pattern did not match", ErrResolution)
		}
		downloadURL = spec.DownloadURLPrefix + match
	} else {
		downloadURL = spec.DownloadURLOverride
	}
	if strings.TrimSpace(downloadURL) == "" {
		return Release{}, fmt.Errorf("%w: no download url resolved", ErrResolution)
	}
	return Release{Version: version, URL: downloadURL}, nil
}

type releaseStrategy struct {
	fetch Fetcher
	base  string
}

func (r releaseStrategy) resolve(ctx context.Context, spec catalog.ToolSpec, force bool) (Release, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/releases/latest", r.base, strings.Trim(spec.Location, "/"))

	var doc releaseDoc
	if err := r.fetch.GetJSON(ctx, endpoint, &doc); err != nil {
		return Release{}, err
	}
	if doc.TagName == "" {
		return Release{}, fmt.Errorf("%w: release has no tag", ErrResolution)
	}
	if err := checkLatest(spec, doc.TagName, force); err != nil {
		return Release{}, err
	}
	if spec.DownloadPattern == "" {
		return Release{}, fmt.Errorf("%w: release source needs a download pattern", ErrResolution)
	}

	re, err := compilePattern(spec.DownloadPattern)
	if err != nil {
		return Release{}, err
	}
	for _, asset := range doc.Assets {
		ok, err := re.MatchString(asset.BrowserDownloadURL)
		if err != nil {
			return Release{}, fmt.Errorf("%w: match asset %s: %w", ErrResolution, asset.Name, err)
		}
		if ok {
			return Release{Version: doc.TagName, URL: asset.BrowserDownloadURL}, nil
		}
	}
	return Release{}, fmt.Errorf("%w: no asset of %s matches the download pattern", ErrResolution, doc.TagName)
}

func checkLatest(spec catalog.ToolSpec, version string, force bool) error {
	if !force && version == spec.LocalVersion {
		return fmt.Errorf("%w: %s is the latest version", ErrNoUpdateAvailable, version)
	}
	return nil
}

func compilePattern(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pattern %q: %w", ErrConfig, pattern, err)
	}
	re.MatchTimeout = patternTimeout
	return re, nil
}

// firstMatch returns the first occurrence of pattern in text. When the pattern
// has capture groups the first group is returned instead of the whole match.
func firstMatch(pattern, text string) (string, bool, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return "", false, err
	}
	m, err := re.FindStringMatch(text)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrResolution, err)
	}
	if m == nil {
		return "", false, nil
	}
	if m.GroupCount() > 1 {
		return m.GroupByNumber(1).String(), true, nil
	}
	return m.String(), true, nil
}
