package render

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/lvillar/layoutpdf"
	"github.com/lvillar/layoutpdf/design"
)

// deliver performs the side effect of t.Action. The bytes in res are the
// same for every action.
func (r *Renderer) deliver(res *Result, doc *design.Document, t Target) error {
	switch t.Action {
	case "", ActionBytes:
		return nil
	case ActionSave:
		name := t.Filename
		if name == "" {
			name = Filename(doc.Name)
		}
		if err := os.WriteFile(name, res.Bytes, 0o644); err != nil {
			return fmt.Errorf("render: saving %s: %w", name, err)
		}
		res.Path = name
		r.logger.Info("saved", "path", name)
		return nil
	case ActionPreview:
		f, err := os.CreateTemp(r.tempDir, "layoutpdf-*.pdf")
		if err != nil {
			return fmt.Errorf("render: creating preview file: %w", err)
		}
		if _, err := f.Write(res.Bytes); err != nil {
			f.Close()
			return fmt.Errorf("render: writing preview file: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("render: writing preview file: %w", err)
		}
		res.Path = f.Name()
		if r.opener == nil {
			return nil
		}
		if err := r.opener(res.Path); err != nil {
			return fmt.Errorf("render: opening preview: %w", err)
		}
		return nil
	}
	return layoutpdf.Errorf("render", layoutpdf.ErrInvalidParam, "unknown action %q", t.Action)
}

// Filename turns a document name into a safe PDF file name.
func Filename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			return '_'
		case r < 0x20:
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "document"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

// openFile hands path to the desktop's default PDF viewer.
func openFile(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
