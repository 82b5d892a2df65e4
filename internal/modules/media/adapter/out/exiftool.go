package out

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	hclog "github.com/hashicorp/go-hclog"

	"feedvault/internal/modules/media/domain"
	mediaout "feedvault/internal/modules/media/port/out"
)

// ExiftoolWriter shells out to exiftool once per file and edits it in place.
type ExiftoolWriter struct {
	binary string
	log    hclog.Logger
}

func NewExiftoolWriter(binary string, log hclog.Logger) mediaout.TagWriter {
	if binary == "" {
		binary = "exiftool"
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &ExiftoolWriter{binary: binary, log: log}
}

func (w *ExiftoolWriter) WriteTags(ctx context.Context, path string, tags []domain.Tag) error {
	args := make([]string, 0, len(tags)+2)
	for _, tag := range tags {
		args = append(args, fmt.Sprintf("-%s=%s", tag.Name, tag.Value))
	}
	args = append(args, "-overwrite_original", path)

	cmd := exec.CommandContext(ctx, w.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("run %s: %w: %s", w.binary, err, msg)
		}
		return fmt.Errorf("run %s: %w", w.binary, err)
	}
	w.log.Debug("wrote tags", "path", path, "count", len(tags), "output", strings.TrimSpace(stdout.String()))
	return nil
}
