// Package latex renders cover sheets from structured data into LaTeX and
// compiles them into PDF with an external engine.
//
//	r, _ := latex.NewRenderer(latex.NewPDFLaTeX("pdflatex"), latex.WithTimeout(15*time.Second))
//	pdf, err := r.Render(ctx, latex.CoverSheet, data)
//	var ce *latex.CompileError
//	if errors.As(err, &ce) {
//	    log.Println(string(ce.Output))
//	}
package latex

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"
)

// ErrRenderFailure is matched by every template or compiler failure.
var ErrRenderFailure = errors.New("latex: render failure")

// CompileError carries the compiler's captured output for diagnostics.
type CompileError struct {
	Output []byte
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("latex: compile: %v", e.Err)
}

func (e *CompileError) Unwrap() []error { return []error{ErrRenderFailure, e.Err} }

// TemplateID names a bundled template.
type TemplateID string

// CoverSheet is the shipment cover page.
const CoverSheet TemplateID = "cover"

// Paper sizes accepted by the templates.
const (
	A4Paper     = "a4paper"
	LetterPaper = "letterpaper"
)

// DefaultTimeout bounds one compiler run.
const DefaultTimeout = 15 * time.Second

//go:embed templates/*.tex.tmpl
var bundled embed.FS

// Data is the flat record substituted into a template. Every string is
// escaped on the way in; fields a template does not use are ignored.
type Data struct {
	Paper                   string
	CoverTitle              string
	Sensitivity             string
	ProductName             string
	DestinationCountry      string
	CertificationDate       string
	ColumnsSpec             string
	Headers                 []string
	Rows                    [][]string
	SignalWord              string
	Pictograms              []string
	HazardStatementOverview []string
}

var columnsSpecRE = regexp.MustCompile(`^[lcrLX| ]+$`)

func (d Data) normalised() (Data, error) {
	if d.Paper == "" {
		d.Paper = A4Paper
	}
	if d.Paper != A4Paper && d.Paper != LetterPaper {
		return d, fmt.Errorf("unsupported paper %q", d.Paper)
	}

	if d.ColumnsSpec == "" {
		width := len(d.Headers)
		for _, row := range d.Rows {
			width = max(width, len(row))
		}
		if width == 0 {
			width = 1
		}
		d.ColumnsSpec = "L" + strings.Repeat("|l", width-1)
	}
	if !columnsSpecRE.MatchString(d.ColumnsSpec) {
		return d, fmt.Errorf("invalid column spec %q", d.ColumnsSpec)
	}
	return d, nil
}

// Renderer turns Data into compiled documents.
type Renderer struct {
	templates *template.Template
	compiler  Compiler
	timeout   time.Duration
	tempRoot  string
	err       error
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTimeout bounds each compiler run; non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithTempRoot sets the parent directory for per-render scratch dirs.
func WithTempRoot(dir string) Option {
	return func(r *Renderer) { r.tempRoot = dir }
}

// WithTemplates replaces the bundled templates with the *.tex.tmpl files
// found in fsys. A parse failure is returned by NewRenderer.
func WithTemplates(fsys fs.FS) Option {
	return func(r *Renderer) {
		t, err := parseTemplates(fsys, "*.tex.tmpl")
		if err != nil {
			r.err = err
			return
		}
		r.templates = t
	}
}

// NewRenderer builds a Renderer around compiler using the bundled templates.
func NewRenderer(compiler Compiler, opts ...Option) (*Renderer, error) {
	if compiler == nil {
		return nil, errors.New("latex: nil compiler")
	}
	t, err := parseTemplates(bundled, "templates/*.tex.tmpl")
	if err != nil {
		return nil, err
	}

	r := &Renderer{templates: t, compiler: compiler, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	if r.err != nil {
		return nil, r.err
	}
	return r, nil
}

func parseTemplates(fsys fs.FS, pattern string) (*template.Template, error) {
	t, err := template.New("").
		Delims("<<", ">>").
		Funcs(template.FuncMap{"tex": Escape}).
		Option("missingkey=error").
		ParseFS(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("latex: parse templates: %w", err)
	}
	return t, nil
}

// Timeout reports the per-run compiler timeout.
func (r *Renderer) Timeout() time.Duration { return r.timeout }

// Source renders the LaTeX source for id without compiling it.
func (r *Renderer) Source(id TemplateID, data Data) ([]byte, error) {
	data, err := data.normalised()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}

	t := r.templates.Lookup(string(id) + ".tex.tmpl")
	if t == nil {
		return nil, fmt.Errorf("%w: unknown template %q", ErrRenderFailure, id)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: execute %s: %v", ErrRenderFailure, id, err)
	}
	return buf.Bytes(), nil
}

// Render produces the compiled PDF for id. The scratch directory is removed
// on every return path, including timeouts.
func (r *Renderer) Render(ctx context.Context, id TemplateID, data Data) ([]byte, error) {
	src, err := r.Source(id, data)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(r.tempRoot, "sds-render-*")
	if err != nil {
		return nil, fmt.Errorf("%w: scratch dir: %v", ErrRenderFailure, err)
	}
	defer os.RemoveAll(dir)

	const texName = "document.tex"
	if err := os.WriteFile(filepath.Join(dir, texName), src, 0o600); err != nil {
		return nil, fmt.Errorf("%w: write source: %v", ErrRenderFailure, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	pdfPath, output, err := r.compiler.Compile(runCtx, dir, texName)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", r.timeout, err)
		}
		return nil, &CompileError{Output: output, Err: err}
	}

	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, &CompileError{Output: output, Err: fmt.Errorf("read output: %w", err)}
	}
	return pdf, nil
}
