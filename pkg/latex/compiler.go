package latex

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Compiler turns texFile inside workDir into a PDF and returns its path
// together with the engine's combined output.
type Compiler interface {
	Compile(ctx context.Context, workDir, texFile string) (pdfPath string, output []byte, err error)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(ctx context.Context, workDir, texFile string) (string, []byte, error)

func (f CompilerFunc) Compile(ctx context.Context, workDir, texFile string) (string, []byte, error) {
	return f(ctx, workDir, texFile)
}

// PDFLaTeX runs a pdflatex-compatible engine as a subprocess.
type PDFLaTeX struct {
	Bin string
	// Passes is how many times the engine runs; page references need two.
	Passes int
}

// NewPDFLaTeX returns a single-pass engine invoking bin.
func NewPDFLaTeX(bin string) *PDFLaTeX {
	if bin == "" {
		bin = "pdflatex"
	}
	return &PDFLaTeX{Bin: bin, Passes: 1}
}

func (p *PDFLaTeX) Compile(ctx context.Context, workDir, texFile string) (string, []byte, error) {
	var output bytes.Buffer
	passes := max(p.Passes, 1)

	for i := 0; i < passes; i++ {
		cmd := exec.CommandContext(ctx, p.Bin,
			"-interaction=nonstopmode",
			"-halt-on-error",
			"-no-shell-escape",
			"-output-directory", workDir,
			texFile,
		)
		cmd.Dir = workDir
		cmd.Stdout = &output
		cmd.Stderr = &output
		// Killed engines may leave pipes open; stop waiting on them shortly after.
		cmd.WaitDelay = time.Second

		if err := cmd.Run(); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			return "", output.Bytes(), fmt.Errorf("%s pass %d: %w", p.Bin, i+1, err)
		}
	}

	pdf := filepath.Join(workDir, strings.TrimSuffix(texFile, filepath.Ext(texFile))+".pdf")
	return pdf, output.Bytes(), nil
}
