package out

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	hclog "github.com/hashicorp/go-hclog"

	mediaout "feedvault/internal/modules/media/port/out"
	apperrors "feedvault/internal/platform/errors"
)

type HTTPDownloader struct {
	client *http.Client
	log    hclog.Logger
}

func NewHTTPDownloader(client *http.Client, log hclog.Logger) mediaout.Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &HTTPDownloader{client: client, log: log}
}

func (d *HTTPDownloader) Download(ctx context.Context, url, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build media request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &apperrors.HTTPError{Method: http.MethodGet, URL: url, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	written, err := writeFile(path, resp.Body)
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	final, err := repairExtension(path, resp.Header.Get("Content-Type"))
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	d.log.Info("downloaded media", "path", final, "size", humanize.Bytes(uint64(written)))
	return final, nil
}

func writeFile(path string, body io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create media file: %w", err)
	}
	written, err := io.Copy(f, body)
	if err != nil {
		_ = f.Close()
		return written, fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		return written, fmt.Errorf("close media file: %w", err)
	}
	return written, nil
}

// repairExtension names an extensionless download after its declared content
// type, falling back to sniffing the bytes when the header is unusable.
func repairExtension(path, contentType string) (string, error) {
	if filepath.Ext(path) != "" {
		return path, nil
	}
	ext := subtype(contentType)
	if ext == "" {
		detected, err := mimetype.DetectFile(path)
		if err != nil {
			return "", fmt.Errorf("detect media type: %w", err)
		}
		ext = strings.TrimPrefix(detected.Extension(), ".")
	}
	if ext == "" {
		return "", fmt.Errorf("cannot infer extension for %s (content type %q)", path, contentType)
	}
	if ext == "jpeg" {
		ext = "jpg"
	}
	renamed := path + "." + ext
	if err := os.Rename(path, renamed); err != nil {
		return "", fmt.Errorf("rename media file: %w", err)
	}
	return renamed, nil
}

func subtype(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	_, sub, ok := strings.Cut(mediaType, "/")
	if !ok {
		return ""
	}
	return sub
}
