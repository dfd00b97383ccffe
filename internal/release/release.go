// Package release finds the latest prettysmi release on GitHub and installs
// its binary for the running platform.
//
// The install directory is always passed in by the caller. Installation
// writes a temporary file next to the target, verifies it against the
// release's checksums.txt when one is published, and renames it into place.
package release

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/blang/semver/v4"
	"github.com/spf13/afero"

	"github.com/rileyhilliard/prettysmi/internal/errors"
	"github.com/rileyhilliard/prettysmi/internal/logger"
)

const (
	DefaultAPIBase    = "https://api.github.com"
	DefaultOwner      = "rileyhilliard"
	DefaultRepo       = "prettysmi"
	DefaultBinaryName = "prettysmi"
	DefaultInstallDir = "/usr/local/bin"

	checksumFile = "checksums.txt"
	userAgent    = "prettysmi-updater"
)

// Config describes where releases come from and where binaries go.
type Config struct {
	Owner      string
	Repo       string
	BinaryName string
	InstallDir string
	APIBase    string

	HTTPClient *http.Client
	Fs         afero.Fs

	// GOOS and GOARCH select the asset; they default to the running platform.
	GOOS   string
	GOARCH string

	Logger logger.Logger
}

// Asset is one downloadable file of a release.
type Asset struct {
	Name string
	URL  string
}

// Release is the latest published version with the asset for this platform.
type Release struct {
	Tag       string
	Version   semver.Version
	PageURL   string
	Binary    Asset
	Checksums *Asset // nil when the release publishes none
}

// Fetcher talks to the GitHub releases API.
type Fetcher struct {
	cfg Config
}

// New returns a Fetcher with defaults filled in.
func New(cfg Config) *Fetcher {
	if cfg.Owner == "" {
		cfg.Owner = DefaultOwner
	}
	if cfg.Repo == "" {
		cfg.Repo = DefaultRepo
	}
	if cfg.BinaryName == "" {
		cfg.BinaryName = DefaultBinaryName
	}
	if cfg.InstallDir == "" {
		cfg.InstallDir = DefaultInstallDir
	}
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.GOOS == "" {
		cfg.GOOS = runtime.GOOS
	}
	if cfg.GOARCH == "" {
		cfg.GOARCH = runtime.GOARCH
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Noop()
	}
	return &Fetcher{cfg: cfg}
}

// Target returns the path Install writes to.
func (f *Fetcher) Target() string {
	return filepath.Join(f.cfg.InstallDir, f.cfg.BinaryName)
}

// AssetName is the release asset holding the binary for goos/goarch.
func AssetName(binary, goos, goarch string) string {
	name := fmt.Sprintf("%s_%s_%s", binary, goos, goarch)
	if goos == "windows" {
		name += ".exe"
	}
	return name
}

type githubRelease struct {
	TagName string        `json:"tag_name"`
	HTMLURL string        `json:"html_url"`
	Assets  []githubAsset `json:"assets"`
}

type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Latest fetches the latest release and picks this platform's asset.
func (f *Fetcher) Latest(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", strings.TrimRight(f.cfg.APIBase, "/"), f.cfg.Owner, f.cfg.Repo)
	f.cfg.Logger.Debug("fetching %s", url)

	body, err := f.get(ctx, url, "application/vnd.github.v3+json")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrRelease,
			"Couldn't check for the latest release",
			"Check your network connection and try again.")
	}
	defer body.Close()

	var gh githubRelease
	if err := json.NewDecoder(body).Decode(&gh); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrRelease,
			"Couldn't read the release information", "")
	}

	v, err := semver.ParseTolerant(gh.TagName)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrRelease,
			fmt.Sprintf("Latest release has an unexpected tag %q", gh.TagName), "")
	}

	rel := &Release{Tag: gh.TagName, Version: v, PageURL: gh.HTMLURL}
	want := AssetName(f.cfg.BinaryName, f.cfg.GOOS, f.cfg.GOARCH)
	for _, a := range gh.Assets {
		switch a.Name {
		case want:
			rel.Binary = Asset{Name: a.Name, URL: a.BrowserDownloadURL}
		case checksumFile:
			rel.Checksums = &Asset{Name: a.Name, URL: a.BrowserDownloadURL}
		}
	}

	if rel.Binary.URL == "" {
		return nil, errors.New(errors.ErrRelease,
			fmt.Sprintf("Release %s has no build for %s/%s", gh.TagName, f.cfg.GOOS, f.cfg.GOARCH),
			"Build from source or download a binary manually from "+gh.HTMLURL)
	}

	return rel, nil
}

// IsNewer reports whether latest is newer than the running version.
// Versions that don't parse (such as "dev") are never considered older.
func IsNewer(current string, latest semver.Version) bool {
	cur, err := semver.ParseTolerant(current)
	if err != nil {
		return false
	}
	return latest.GT(cur)
}

// Install downloads rel's binary into the install directory and returns
// the installed path.
func (f *Fetcher) Install(ctx context.Context, rel *Release) (string, error) {
	log := f.cfg.Logger

	var expected string
	if rel.Checksums != nil {
		sum, err := f.checksum(ctx, rel.Checksums.URL, rel.Binary.Name)
		if err != nil {
			return "", errors.WrapWithCode(err, errors.ErrRelease,
				"Couldn't read the release checksums", "Try again later.")
		}
		expected = sum
	} else {
		log.Warn("release %s publishes no %s; skipping verification", rel.Tag, checksumFile)
	}

	fs := f.cfg.Fs
	tmp, err := afero.TempFile(fs, f.cfg.InstallDir, "."+f.cfg.BinaryName+"-update-*")
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrRelease,
			"Couldn't write to "+f.cfg.InstallDir,
			"Re-run with sudo or pick another directory with --dir.")
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
	}

	body, err := f.get(ctx, rel.Binary.URL, "application/octet-stream")
	if err != nil {
		cleanup()
		return "", errors.WrapWithCode(err, errors.ErrRelease,
			"Couldn't download "+rel.Binary.Name, "Try again later.")
	}
	defer body.Close()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), body)
	if err != nil {
		cleanup()
		return "", errors.WrapWithCode(err, errors.ErrRelease,
			"Couldn't download "+rel.Binary.Name, "Try again later.")
	}
	log.Debug("downloaded %d bytes to %s", n, tmpName)

	if actual := hex.EncodeToString(h.Sum(nil)); expected != "" && !strings.EqualFold(actual, expected) {
		cleanup()
		return "", errors.New(errors.ErrRelease,
			fmt.Sprintf("Checksum mismatch for %s: expected %s, got %s", rel.Binary.Name, expected, actual),
			"The download may be corrupted. Try again.")
	}

	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return "", errors.WrapWithCode(err, errors.ErrRelease, "Couldn't save the download", "")
	}
	if err := fs.Chmod(tmpName, 0o755); err != nil {
		_ = fs.Remove(tmpName)
		return "", errors.WrapWithCode(err, errors.ErrRelease, "Couldn't make the binary executable", "")
	}

	target := f.Target()
	if err := fs.Rename(tmpName, target); err != nil {
		_ = fs.Remove(tmpName)
		return "", errors.WrapWithCode(err, errors.ErrRelease,
			"Couldn't replace "+target,
			"Re-run with sudo or pick another directory with --dir.")
	}

	log.Info("installed %s to %s", rel.Tag, target)
	return target, nil
}

// checksum finds name in a sha256sum-style checksums file.
func (f *Fetcher) checksum(ctx context.Context, url, name string) (string, error) {
	body, err := f.get(ctx, url, "text/plain")
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(string(data), "\n") {
		parts := strings.Fields(line)
		if len(parts) == 2 && strings.TrimPrefix(parts[1], "*") == name {
			return parts[0], nil
		}
	}
	return "", fmt.Errorf("no checksum listed for %s", name)
}

func (f *Fetcher) get(ctx context.Context, url, accept string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)

	resp, err := f.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}
