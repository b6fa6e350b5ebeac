package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ════════════════════════════════════════════════════════════════════
// PDF Export: HTML to PDF via wkhtmltopdf or headless chromium
// ════════════════════════════════════════════════════════════════════

// PDFEngine specifies which engine to use for HTML→PDF conversion.
type PDFEngine string

const (
	EngineAuto     PDFEngine = ""
	EngineWKHTML   PDFEngine = "wkhtmltopdf"
	EngineChromium PDFEngine = "chromium"
	EngineNone     PDFEngine = "none" // skip PDF, write HTML
)

var chromiumBinaries = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}

// PDFConfig holds configuration for PDF export.
type PDFConfig struct {
	Engine       PDFEngine // default: auto-detect
	PageSize     string    // default: "A4"
	Orientation  string    // "portrait" (default) or "landscape"
	MarginTop    string
	MarginBottom string
	MarginLeft   string
	MarginRight  string
	OutputPath   string // required
}

// DefaultPDFConfig returns sensible defaults for PDF export.
func DefaultPDFConfig() PDFConfig {
	return PDFConfig{
		Engine:       EngineAuto,
		PageSize:     "A4",
		Orientation:  "portrait",
		MarginTop:    "15mm",
		MarginBottom: "15mm",
		MarginLeft:   "10mm",
		MarginRight:  "10mm",
	}
}

// DetectPDFEngine checks which PDF engine is available on the system.
func DetectPDFEngine() PDFEngine {
	if _, err := exec.LookPath("wkhtmltopdf"); err == nil {
		return EngineWKHTML
	}
	if chromiumPath() != "" {
		return EngineChromium
	}
	return EngineNone
}

// GeneratePDF converts an HTML report to a PDF file at cfg.OutputPath. When
// no engine is available (or EngineNone is requested) the HTML is written
// next to it with an .html extension instead. It returns the path written.
func GeneratePDF(ctx context.Context, html string, cfg PDFConfig) (string, error) {
	if cfg.OutputPath == "" {
		return "", errors.New("output path is required")
	}

	engine := cfg.Engine
	if engine == EngineAuto {
		engine = DetectPDFEngine()
	}

	if engine == EngineNone {
		return writeHTMLFallback(html, cfg.OutputPath)
	}

	var bin string
	var args func(src string) ([]string, error)
	switch engine {
	case EngineWKHTML:
		bin, args = "wkhtmltopdf", cfg.wkhtmlArgs
	case EngineChromium:
		if bin = chromiumPath(); bin == "" {
			return "", errors.New("chromium not found in PATH")
		}
		args = cfg.chromiumArgs
	default:
		return "", fmt.Errorf("unsupported PDF engine: %s", engine)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	src, err := writeTempHTML(html)
	if err != nil {
		return "", err
	}
	defer os.Remove(src)

	argv, err := args(src)
	if err != nil {
		return "", err
	}
	if out, err := exec.CommandContext(ctx, bin, argv...).CombinedOutput(); err != nil {
		return "", fmt.Errorf("%s PDF export failed: %w\nOutput: %s", engine, err, out)
	}
	return cfg.OutputPath, nil
}

func (c PDFConfig) wkhtmlArgs(src string) ([]string, error) {
	return []string{
		"--page-size", c.PageSize,
		"--orientation", c.Orientation,
		"--margin-top", c.MarginTop,
		"--margin-bottom", c.MarginBottom,
		"--margin-left", c.MarginLeft,
		"--margin-right", c.MarginRight,
		"--encoding", "UTF-8",
		"--enable-local-file-access",
		"--quiet",
		src,
		c.OutputPath,
	}, nil
}

// chromiumArgs prints with headless chromium. Page size and margins come
// from the report's print stylesheet.
func (c PDFConfig) chromiumArgs(src string) ([]string, error) {
	out, err := filepath.Abs(c.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("resolving output path: %w", err)
	}
	args := []string{
		"--headless",
		"--disable-gpu",
		"--no-sandbox",
		"--print-to-pdf=" + out,
		"--print-to-pdf-no-header",
	}
	if strings.EqualFold(c.Orientation, "landscape") {
		args = append(args, "--landscape")
	}
	return append(args, "file://"+src), nil
}

func chromiumPath() string {
	for _, name := range chromiumBinaries {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func writeTempHTML(html string) (string, error) {
	f, err := os.CreateTemp("", "dashcore-report-*.html")
	if err != nil {
		return "", fmt.Errorf("creating temp HTML: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(html); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing temp HTML: %w", err)
	}
	return f.Name(), nil
}

func writeHTMLFallback(html string, outputPath string) (string, error) {
	if strings.HasSuffix(strings.ToLower(outputPath), ".pdf") {
		outputPath = outputPath[:len(outputPath)-4] + ".html"
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("writing HTML fallback: %w", err)
	}
	return outputPath, nil
}

// IsPDFSupported returns true if a PDF engine is available.
func IsPDFSupported() bool {
	return DetectPDFEngine() != EngineNone
}
