package embedding

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const hubBaseURL = "https://huggingface.co"

// modelArtifacts maps hub-relative file paths to local file names.
var modelArtifacts = map[string]string{
	"onnx/model.onnx": "model.onnx",
	"vocab.txt":       "vocab.txt",
}

// ModelFiles holds resolved local paths for a model's artifacts.
type ModelFiles struct {
	ModelPath string
	VocabPath string
}

// Fetcher resolves model artifacts, preferring the local cache and falling
// back to a hub download with an optional Bearer credential. Resolution is a
// startup-time concern only; request handling never triggers it.
type Fetcher struct {
	BaseURL    string
	Token      string
	httpClient *http.Client
}

// NewFetcher creates a fetcher for the Hugging Face hub. Token may be empty
// for anonymous access to public models.
func NewFetcher(token string) *Fetcher {
	return &Fetcher{
		BaseURL:    hubBaseURL,
		Token:      token,
		httpClient: &http.Client{},
	}
}

// Resolve returns local paths for modelID's artifacts under cacheDir. When
// every artifact is already cached no network request is made; otherwise each
// missing file is downloaded. Any failure leaves the cache without partial
// files and returns an error.
func (f *Fetcher) Resolve(cacheDir, modelID string) (*ModelFiles, error) {
	dir := filepath.Join(cacheDir, strings.ReplaceAll(modelID, "/", "--"))
	files := &ModelFiles{
		ModelPath: filepath.Join(dir, "model.onnx"),
		VocabPath: filepath.Join(dir, "vocab.txt"),
	}
	if fileExists(files.ModelPath) && fileExists(files.VocabPath) {
		return files, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	for remote, local := range modelArtifacts {
		dest := filepath.Join(dir, local)
		if fileExists(dest) {
			continue
		}
		url := fmt.Sprintf("%s/%s/resolve/main/%s", f.BaseURL, modelID, remote)
		if err := f.download(url, dest); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", remote, err)
		}
	}
	return files, nil
}

// download fetches url into dest via a temporary file, so an interrupted
// transfer never leaves a truncated artifact behind.
func (f *Fetcher) download(url, dest string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("hub error %d: %s", resp.StatusCode, string(body))
	}

	tmp := dest + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("download failed: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
