package release

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blang/semver/v4"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/prettysmi/internal/errors"
)

var binary = []byte("#!/bin/sh\necho prettysmi v1.3.0\n")

type fakeGitHub struct {
	tag       string
	checksums string // empty: not published
	assets    []string
}

func (g fakeGitHub) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/repos/rileyhilliard/prettysmi/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		assets := ""
		for i, name := range g.assets {
			if i > 0 {
				assets += ","
			}
			assets += fmt.Sprintf(`{"name":%q,"browser_download_url":"%s/download/%s"}`, name, srv.URL, name)
		}
		if g.checksums != "" {
			if assets != "" {
				assets += ","
			}
			assets += fmt.Sprintf(`{"name":"checksums.txt","browser_download_url":"%s/download/checksums.txt"}`, srv.URL)
		}
		fmt.Fprintf(w, `{"tag_name":%q,"html_url":"https://github.com/rileyhilliard/prettysmi/releases/tag/%s","assets":[%s]}`, g.tag, g.tag, assets)
	})
	mux.HandleFunc("/download/checksums.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, g.checksums)
	})
	mux.HandleFunc("/download/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(binary)
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func sum(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func newFetcher(t *testing.T, srv *httptest.Server) (*Fetcher, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/opt/bin", 0o755))
	return New(Config{
		APIBase:    srv.URL,
		InstallDir: "/opt/bin",
		Fs:         fs,
		GOOS:       "linux",
		GOARCH:     "amd64",
		HTTPClient: srv.Client(),
	}), fs
}

func TestLatest(t *testing.T) {
	srv := fakeGitHub{
		tag:       "v1.3.0",
		checksums: sum(binary) + "  prettysmi_linux_amd64\n",
		assets:    []string{"prettysmi_darwin_arm64", "prettysmi_linux_amd64"},
	}.server(t)
	f, _ := newFetcher(t, srv)

	rel, err := f.Latest(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "v1.3.0", rel.Tag)
	assert.Equal(t, semver.MustParse("1.3.0"), rel.Version)
	assert.Equal(t, "prettysmi_linux_amd64", rel.Binary.Name)
	require.NotNil(t, rel.Checksums)
}

func TestLatest_NoAssetForPlatform(t *testing.T) {
	srv := fakeGitHub{tag: "v1.3.0", assets: []string{"prettysmi_darwin_arm64"}}.server(t)
	f, _ := newFetcher(t, srv)

	_, err := f.Latest(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRelease))
	assert.Contains(t, err.Error(), "linux/amd64")
}

func TestLatest_APIError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	f, _ := newFetcher(t, srv)

	_, err := f.Latest(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRelease))
	assert.Equal(t, errors.ExitToolFailed, errors.ExitCode(err))
}

func TestInstall_VerifiesAndRenames(t *testing.T) {
	srv := fakeGitHub{
		tag:       "v1.3.0",
		checksums: "deadbeef  prettysmi_darwin_arm64\n" + sum(binary) + "  prettysmi_linux_amd64\n",
		assets:    []string{"prettysmi_linux_amd64"},
	}.server(t)
	f, fs := newFetcher(t, srv)

	rel, err := f.Latest(context.Background())
	require.NoError(t, err)

	path, err := f.Install(context.Background(), rel)

	require.NoError(t, err)
	assert.Equal(t, "/opt/bin/prettysmi", path)

	got, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, binary, got)

	info, err := fs.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, "-rwxr-xr-x", info.Mode().Perm().String())

	entries, err := afero.ReadDir(fs, "/opt/bin")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is renamed, not left behind")
}

func TestInstall_ChecksumMismatch(t *testing.T) {
	srv := fakeGitHub{
		tag:       "v1.3.0",
		checksums: sum([]byte("something else")) + "  prettysmi_linux_amd64\n",
		assets:    []string{"prettysmi_linux_amd64"},
	}.server(t)
	f, fs := newFetcher(t, srv)
	require.NoError(t, afero.WriteFile(fs, "/opt/bin/prettysmi", []byte("old"), 0o755))

	rel, err := f.Latest(context.Background())
	require.NoError(t, err)

	_, err = f.Install(context.Background(), rel)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRelease))
	assert.Contains(t, err.Error(), "Checksum mismatch")

	got, _ := afero.ReadFile(fs, "/opt/bin/prettysmi")
	assert.Equal(t, "old", string(got), "existing binary untouched")
	entries, _ := afero.ReadDir(fs, "/opt/bin")
	assert.Len(t, entries, 1, "temp file removed")
}

func TestInstall_WithoutChecksums(t *testing.T) {
	srv := fakeGitHub{tag: "v1.3.0", assets: []string{"prettysmi_linux_amd64"}}.server(t)
	f, fs := newFetcher(t, srv)

	rel, err := f.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rel.Checksums)

	_, err = f.Install(context.Background(), rel)
	require.NoError(t, err)

	ok, _ := afero.Exists(fs, "/opt/bin/prettysmi")
	assert.True(t, ok)
}

func TestInstall_ChecksumNotListed(t *testing.T) {
	srv := fakeGitHub{
		tag:       "v1.3.0",
		checksums: "abc  prettysmi_darwin_arm64\n",
		assets:    []string{"prettysmi_linux_amd64"},
	}.server(t)
	f, _ := newFetcher(t, srv)

	rel, err := f.Latest(context.Background())
	require.NoError(t, err)

	_, err = f.Install(context.Background(), rel)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRelease))
}

func TestIsNewer(t *testing.T) {
	latest := semver.MustParse("1.3.0")

	tests := []struct {
		current string
		want    bool
	}{
		{"v1.2.9", true},
		{"1.2.0", true},
		{"v1.3.0", false},
		{"v1.10.0", false},
		{"dev", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNewer(tt.current, latest))
		})
	}
}

func TestAssetName(t *testing.T) {
	assert.Equal(t, "prettysmi_linux_amd64", AssetName("prettysmi", "linux", "amd64"))
	assert.Equal(t, "prettysmi_windows_amd64.exe", AssetName("prettysmi", "windows", "amd64"))
}
