package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// ErrSealed is returned when filters are registered after the template set
// has been parsed. Registration has to happen before the first render.
var ErrSealed = errors.New("render: templates already initialized")

// New returns a TemplateRenderer backed by html/template. It parses every
// .html and .tmpl file under baseDir on first use and addresses templates by
// their base file name, e.g. "post.html".
func New(baseDir string) (interfaces.TemplateRenderer, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("render: inspect template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("render: template path %q is not a directory", baseDir)
	}
	return &goTemplateRenderer{
		baseDir: baseDir,
		filters: map[string]func(any, any) (any, error){},
	}, nil
}

type goTemplateRenderer struct {
	baseDir string

	mu      sync.RWMutex
	sealed  bool
	filters map[string]func(any, any) (any, error)
	globals map[string]any

	once sync.Once
	tpl  *template.Template
	err  error
}

func (r *goTemplateRenderer) ensureTemplates() (*template.Template, error) {
	r.once.Do(func() {
		r.mu.Lock()
		r.sealed = true
		r.mu.Unlock()

		var files []string
		err := filepath.WalkDir(r.baseDir, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".html" && ext != ".tmpl" {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			r.err = err
			return
		}
		if len(files) == 0 {
			r.err = fmt.Errorf("render: no templates found in %s", r.baseDir)
			return
		}

		r.tpl, r.err = template.New("site-theme").Funcs(r.funcMap()).ParseFiles(files...)
	})
	return r.tpl, r.err
}

func (r *goTemplateRenderer) funcMap() template.FuncMap {
	funcs := template.FuncMap{
		"safeHTML":   func(value any) template.HTML { return toHTML(value) },
		"formatDate": formatDate,
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, fn := range r.filters {
		filter := fn
		funcs[name] = func(input any, param ...any) (any, error) {
			var p any
			if len(param) > 0 {
				p = param[0]
			}
			return filter(input, p)
		}
	}
	return funcs
}

func (r *goTemplateRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderTemplate(name, data, out...)
}

func (r *goTemplateRenderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.ensureTemplates()
	if err != nil {
		return "", err
	}
	if tpl.Lookup(name) == nil {
		return "", fmt.Errorf("render: template %q not found", name)
	}

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.ExecuteTemplate(writer, name, r.withGlobals(data)); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

func (r *goTemplateRenderer) RenderString(content string, data any, out ...io.Writer) (string, error) {
	tpl, err := template.New("inline").Funcs(r.funcMap()).Parse(content)
	if err != nil {
		return "", err
	}

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.Execute(writer, r.withGlobals(data)); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

// RegisterFilter exposes fn to templates under name. Filters must be
// registered before the first render.
func (r *goTemplateRenderer) RegisterFilter(name string, fn func(any, any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return fmt.Errorf("render: filter requires name and function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrSealed
	}
	r.filters[name] = fn
	return nil
}

// GlobalContext merges data into every subsequent render whose context is a
// map. Explicit context keys win over globals.
func (r *goTemplateRenderer) GlobalContext(data any) error {
	values, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("render: global context expects map[string]any, got %T", data)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.globals == nil {
		r.globals = map[string]any{}
	}
	for key, value := range values {
		r.globals[key] = value
	}
	return nil
}

func (r *goTemplateRenderer) withGlobals(data any) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.globals) == 0 {
		return data
	}
	values, ok := data.(map[string]any)
	if !ok {
		return data
	}
	merged := make(map[string]any, len(r.globals)+len(values))
	for key, value := range r.globals {
		merged[key] = value
	}
	for key, value := range values {
		merged[key] = value
	}
	return merged
}

func toHTML(value any) template.HTML {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case template.HTML:
		return v
	case string:
		return template.HTML(v)
	default:
		return template.HTML(fmt.Sprint(v))
	}
}

// formatDate renders a time value using a Go reference layout. Nil pointers
// and zero times produce an empty string so drafts render cleanly.
func formatDate(value any, layout string) string {
	var ts time.Time
	switch v := value.(type) {
	case time.Time:
		ts = v
	case *time.Time:
		if v == nil {
			return ""
		}
		ts = *v
	default:
		return ""
	}
	if ts.IsZero() {
		return ""
	}
	if layout == "" {
		layout = "January 2, 2006"
	}
	return ts.UTC().Format(layout)
}
