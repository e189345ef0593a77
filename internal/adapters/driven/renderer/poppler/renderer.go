// Package poppler renders PDF pages to bitmaps by shelling out to the
// poppler-utils tools (pdftoppm, pdfinfo). Rendered pages feed the OCR
// engine when a document has no usable text layer.
package poppler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.PageRenderer = (*Renderer)(nil)

// ErrPopplerNotFound is returned when pdftoppm is not installed.
var ErrPopplerNotFound = errors.New("pdftoppm not found in PATH")

// baseDPI is the rendering resolution at scale 1.0.
const baseDPI = 72

// CommandRunner executes external commands. Extracted for testability.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Renderer rasterises PDF pages via pdftoppm.
type Renderer struct {
	runner CommandRunner
}

// New creates a new poppler renderer.
func New() *Renderer {
	return &Renderer{runner: execRunner{}}
}

// NewWithRunner creates a renderer with a custom command runner.
func NewWithRunner(runner CommandRunner) *Renderer {
	return &Renderer{runner: runner}
}

// CheckAvailable verifies the poppler tools are installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return ErrPopplerNotFound
	}
	return nil
}

// InstallInstructions returns platform-specific install guidance.
func InstallInstructions() string {
	return `pdftoppm (poppler) is required for OCR rendering:
  macOS:  brew install poppler
  Debian: apt install poppler-utils
  Fedora: dnf install poppler-utils`
}

// PageCount reports the number of pages via pdfinfo.
func (r *Renderer) PageCount(ctx context.Context, data []byte) (int, error) {
	path, cleanup, err := writeTemp(data)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	out, err := r.runner.Run(ctx, "pdfinfo", path)
	if err != nil {
		return 0, fmt.Errorf("pdfinfo failed: %w", err)
	}

	for _, line := range strings.Split(string(out), "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("parse page count: %w", err)
		}
		return count, nil
	}

	return 0, fmt.Errorf("pdfinfo output missing page count")
}

// Render rasterises one zero-based page at the given scale.
func (r *Renderer) Render(ctx context.Context, data []byte, page int, scale float64) (*driven.PageImage, error) {
	if page < 0 {
		return nil, fmt.Errorf("invalid page %d", page)
	}
	if scale <= 0 {
		scale = 1.0
	}

	path, cleanup, err := writeTemp(data)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	// pdftoppm pages are one-based; omitting the output root writes the
	// PPM to stdout.
	pageArg := strconv.Itoa(page + 1)
	out, err := r.runner.Run(ctx, "pdftoppm",
		"-f", pageArg,
		"-l", pageArg,
		"-r", strconv.Itoa(int(scale*baseDPI)),
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w", err)
	}

	return parsePPM(out)
}

// writeTemp persists document bytes to a temp file for the poppler tools,
// which do not read PDFs from stdin on all platforms.
func writeTemp(data []byte) (string, func(), error) {
	if len(data) == 0 {
		return "", nil, fmt.Errorf("empty document")
	}

	file, err := os.CreateTemp("", "docsight-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}

	return file.Name(), func() { os.Remove(file.Name()) }, nil
}

// parsePPM decodes a binary P6 PPM image into a raw RGB bitmap.
func parsePPM(data []byte) (*driven.PageImage, error) {
	magic, rest, err := ppmToken(data)
	if err != nil || magic != "P6" {
		return nil, fmt.Errorf("not a P6 ppm image")
	}

	var dims [3]int
	for i := range dims {
		token, remaining, err := ppmToken(rest)
		if err != nil {
			return nil, fmt.Errorf("truncated ppm header")
		}
		dims[i], err = strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("invalid ppm header value %q", token)
		}
		rest = remaining
	}

	width, height, maxval := dims[0], dims[1], dims[2]
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid ppm dimensions %dx%d", width, height)
	}
	if maxval != 255 {
		return nil, fmt.Errorf("unsupported ppm maxval %d", maxval)
	}

	size := width * height * 3
	if len(rest) < size {
		return nil, fmt.Errorf("truncated ppm pixel data: %d of %d bytes", len(rest), size)
	}

	return &driven.PageImage{
		Width:  width,
		Height: height,
		Pixels: rest[:size],
	}, nil
}

// ppmToken reads the next whitespace-delimited header token, skipping
// comment lines. Exactly one whitespace byte follows the final header
// token before the pixel data begins.
func ppmToken(data []byte) (string, []byte, error) {
	i := 0
	for i < len(data) {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
			i++
		case '#':
			for i < len(data) && data[i] != '\n' {
				i++
			}
		default:
			start := i
			for i < len(data) && !isPPMSpace(data[i]) {
				i++
			}
			token := string(data[start:i])
			if i < len(data) {
				i++
			}
			return token, data[i:], nil
		}
	}
	return "", nil, fmt.Errorf("unexpected end of data")
}

func isPPMSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
