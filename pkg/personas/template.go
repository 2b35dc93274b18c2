package personas

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"text/template"
)

const maxSpokenOutput = 4 * 1024

// templateCache caches parsed templates to avoid re-parsing on every call.
var templateCache sync.Map

// Render produces the spoken text for a persona. An empty template returns
// the message unchanged.
func (p *Persona) Render(ctx SpeechContext) (string, error) {
	if p.Template == "" {
		return ctx.Message, nil
	}

	var tmpl *template.Template
	if cached, ok := templateCache.Load(p.Template); ok {
		tmpl = cached.(*template.Template)
	} else {
		var err error
		tmpl, err = template.New("").Parse(p.Template)
		if err != nil {
			return "", err
		}
		templateCache.Store(p.Template, tmpl)
	}

	var buf bytes.Buffer
	lw := &limitWriter{w: &buf, n: maxSpokenOutput}
	if err := tmpl.Execute(lw, ctx); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// limitWriter caps output from template.Execute.
type limitWriter struct {
	w       io.Writer
	n       int64
	written int64
}

func (lw *limitWriter) Write(p []byte) (int, error) {
	if lw.written+int64(len(p)) > lw.n {
		allowed := lw.n - lw.written
		if allowed > 0 {
			n, err := lw.w.Write(p[:allowed])
			lw.written += int64(n)
			if err != nil {
				return n, err
			}
		}
		return 0, fmt.Errorf("template output exceeds %d bytes", lw.n)
	}
	n, err := lw.w.Write(p)
	lw.written += int64(n)
	return n, err
}
