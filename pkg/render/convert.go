package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrConverterMissing is returned when rsvg-convert is not on PATH.
var ErrConverterMissing = errors.New("PDF and PNG export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")

// Format is an output format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
	FormatDOT Format = "dot"
)

// ParseFormat accepts "svg", "pdf", "png" or "dot", in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSVG, FormatPDF, FormatPNG, FormatDOT:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	case FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "image/svg+xml"
	}
}

// Convert turns SVG into f. SVG passes through; DOT is not a conversion
// target.
func Convert(ctx context.Context, svg []byte, f Format, scale float64) ([]byte, error) {
	switch f {
	case FormatSVG:
		return svg, nil
	case FormatPDF:
		return ToPDF(ctx, svg)
	case FormatPNG:
		return ToPNG(ctx, svg, scale)
	}
	return nil, fmt.Errorf("cannot convert svg to %s", f)
}

// ToPDF converts SVG bytes to PDF using rsvg-convert.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return rsvgConvert(ctx, svg, "pdf")
}

// ToPNG converts SVG bytes to PNG using rsvg-convert with the given scale factor.
// Scale of 2.0 produces a 2x resolution image.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return rsvgConvert(ctx, svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

func rsvgConvert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, ErrConverterMissing
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, "rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
