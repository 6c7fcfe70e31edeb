package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-til/pkg/interfaces"
)

// NewTemplateRenderer returns an interfaces.TemplateRenderer backed by
// html/template, loading every .html and .tmpl file under baseDir. Templates
// are addressed by base filename, which is what the theme manifest maps
// logical names to.
func NewTemplateRenderer(baseDir string) (interfaces.TemplateRenderer, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("site: inspect template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("site: template path %q is not a directory", baseDir)
	}
	return &goTemplateRenderer{baseDir: baseDir}, nil
}

type goTemplateRenderer struct {
	baseDir string
	once    sync.Once
	tpl     *template.Template
	err     error
}

func (r *goTemplateRenderer) ensureTemplates() (*template.Template, error) {
	r.once.Do(func() {
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
			r.err = fmt.Errorf("site: no templates found in %s", r.baseDir)
			return
		}
		r.tpl, r.err = template.New("site-theme").Funcs(templateFuncs()).ParseFiles(files...)
	})
	return r.tpl, r.err
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"safeHTML": func(value any) template.HTML { return toHTML(value) },
		"formatDate": func(value any, layout string) string {
			ts := toTime(value)
			if ts.IsZero() {
				return ""
			}
			if strings.TrimSpace(layout) == "" {
				layout = "Jan 2, 2006"
			}
			return ts.UTC().Format(layout)
		},
	}
}

func (r *goTemplateRenderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.ensureTemplates()
	if err != nil {
		return "", err
	}
	if tpl.Lookup(name) == nil {
		return "", fmt.Errorf("site: template %q not found", name)
	}

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.ExecuteTemplate(writer, name, data); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

func (r *goTemplateRenderer) RenderString(content string, data any, out ...io.Writer) (string, error) {
	tpl, err := template.New("inline").Funcs(templateFuncs()).Parse(content)
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

	if err := tpl.Execute(writer, data); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
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

func toTime(value any) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v == nil {
			return time.Time{}
		}
		return *v
	default:
		return time.Time{}
	}
}
