// Package audio renders broadcast scripts to MP3 files, trying a primary
// text-to-speech provider and then a free fallback.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MediaType is the content type of every rendered artifact.
const MediaType = "audio/mpeg"

const maxNameCollisions = 100

// ErrAudioGenerationFailed is returned when every provider failed.
var ErrAudioGenerationFailed = errors.New("audio generation failed")

// Provider converts text to MP3 audio written to w.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text string, w io.Writer) error
}

// Artifact is a rendered audio file.
type Artifact struct {
	Path      string
	Label     string
	MediaType string
	Provider  string
	Size      int64
	CreatedAt time.Time
}

// Renderer writes audio files into one output directory.
type Renderer struct {
	dir      string
	primary  Provider
	fallback Provider
	now      func() time.Time
	logger   *slog.Logger
}

// NewRenderer creates a renderer. primary may be nil, in which case only the
// fallback provider is used.
func NewRenderer(dir string, primary, fallback Provider, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{dir: dir, primary: primary, fallback: fallback, now: time.Now, logger: logger}
}

// Dir returns the output directory.
func (r *Renderer) Dir() string { return r.dir }

// Render converts text to an MP3 file named after label. The returned
// artifact always points at an existing, non-empty file.
func (r *Renderer) Render(ctx context.Context, text, label string) (Artifact, error) {
	var errs []error
	for _, p := range []Provider{r.primary, r.fallback} {
		if p == nil {
			continue
		}
		art, err := r.renderWith(ctx, p, text, label)
		if err == nil {
			r.logger.Info("audio rendered", "provider", p.Name(), "path", art.Path, "bytes", art.Size)
			return art, nil
		}
		r.logger.Warn("audio provider failed", "provider", p.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no audio provider configured"))
	}
	return Artifact{}, fmt.Errorf("%w: %w", ErrAudioGenerationFailed, errors.Join(errs...))
}

func (r *Renderer) renderWith(ctx context.Context, p Provider, text, label string) (Artifact, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("create output dir: %w", err)
	}

	created := r.now()
	f, err := os.CreateTemp(r.dir, ".render-*")
	if err != nil {
		return Artifact{}, fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := p.Synthesize(ctx, text, f); err != nil {
		f.Close()
		return Artifact{}, err
	}
	if err := f.Close(); err != nil {
		return Artifact{}, fmt.Errorf("close %s: %w", tmp, err)
	}

	info, err := os.Stat(tmp)
	if err != nil {
		return Artifact{}, err
	}
	if info.Size() == 0 {
		return Artifact{}, errors.New("provider produced no audio")
	}

	path, err := r.claim(tmp, label, created)
	if err != nil {
		return Artifact{}, err
	}

	return Artifact{
		Path:      path,
		Label:     label,
		MediaType: MediaType,
		Provider:  p.Name(),
		Size:      info.Size(),
		CreatedAt: created,
	}, nil
}

// claim hard-links the finished temp file to its artifact name. An artifact
// already holding that name is never replaced; a numeric suffix is added.
func (r *Renderer) claim(tmp, label string, created time.Time) (string, error) {
	base := strings.TrimSuffix(Filename(label, created), ".mp3")
	for i := 1; i <= maxNameCollisions; i++ {
		name := base + ".mp3"
		if i > 1 {
			name = fmt.Sprintf("%s-%d.mp3", base, i)
		}
		path := filepath.Join(r.dir, name)
		err := os.Link(tmp, path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("publish %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("publish %s: %d files with this name already exist", base, maxNameCollisions)
}
