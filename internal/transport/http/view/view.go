// Package view parses the embedded page templates and plugs them into gin.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin/render"

	"library-catalog/internal/domain"
)

//go:embed templates/*.html static/*
var files embed.FS

// 每个页面与公共布局、片段一起解析
var pages = []string{
	"index", "about", "404", "error",
	"login", "register", "profile",
	"books", "book-form",
	"users", "user-form", "user-details",
}

type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, p := range pages {
		t, err := template.New(p).Funcs(Funcs()).ParseFS(files,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+p+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", p, err)
		}
		r.pages[p] = t
	}
	return r, nil
}

func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		return missing{name: name}
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}

type missing struct{ name string }

func (m missing) Render(http.ResponseWriter) error {
	return fmt.Errorf("view: unknown template %q", m.name)
}

func (m missing) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

// Static 内嵌的样式文件
func Static() http.FileSystem {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02.01.2006")
		},
		"datePtr": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format("02.01.2006")
		},
		"dateTime": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return "never"
			}
			return t.Format("02.01.2006 15:04")
		},
		"fieldErr": func(errs any, key string) string {
			if m, ok := errs.(map[string]string); ok {
				return m[key]
			}
			return ""
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
		// pageLink 在原筛选条件上替换 page
		"pageLink": func(base string, q url.Values, page int) template.URL {
			v := url.Values{}
			for k, vs := range q {
				v[k] = vs
			}
			v.Set("page", strconv.Itoa(page))
			return template.URL(base + "?" + v.Encode())
		},
		"str":      func(v any) string { return fmt.Sprint(v) },
		"language": domain.LanguageLabel,
		"overdue":  func(l domain.Loan) bool { return l.Overdue(time.Now()) },
		"intStr": func(n int) string {
			if n == 0 {
				return ""
			}
			return strconv.Itoa(n)
		},
	}
}
