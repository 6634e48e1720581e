// Package web は検索結果を表示する単一ページの UI と、その裏の JSON API です。
package web

import (
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/phyten/usagex/internal/model"
	"github.com/phyten/usagex/internal/termcolor"
)

const (
	stylesPath = "/assets/styles.css"
	scriptPath = "/assets/ui.js"
)

var (
	//go:embed templates/index.html
	indexHTML string
	indexOnce sync.Once
	indexTmpl *template.Template

	//go:embed assets/styles.css
	stylesCSS string
	cssOnce   sync.Once
	fullCSS   string

	//go:embed assets/ui.js
	scriptJS string
)

type categoryOption struct {
	ID    string
	Label string
}

type indexData struct {
	StylesPath string
	ScriptPath string
	Root       string
	MaxResults int
	Categories []categoryOption
}

// registerUI は画面と静的ファイルのハンドラを mux に登録します。
func (s *Server) registerUI(mux *http.ServeMux) {
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc(stylesPath, stylesHandler)
	mux.HandleFunc(scriptPath, scriptHandler)
}

func setSecurityHeaders(h http.Header) {
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Content-Security-Policy", "default-src 'none'; style-src 'self'; script-src 'self'; img-src 'self'; connect-src 'self'; form-action 'self'; base-uri 'none'")
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := indexData{
		StylesPath: stylesPath,
		ScriptPath: scriptPath,
		Root:       s.root,
		MaxResults: s.defaults.MaxResults,
	}
	for _, c := range model.Categories() {
		data.Categories = append(data.Categories, categoryOption{ID: string(c), Label: c.Label()})
	}
	tmpl := loadTemplate()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	setSecurityHeaders(w.Header())
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
	}
}

func stylesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(styles()))
}

func scriptHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(scriptJS))
}

func loadTemplate() *template.Template {
	indexOnce.Do(func() {
		indexTmpl = template.Must(template.New("index").Parse(indexHTML))
	})
	return indexTmpl
}

// styles は埋め込みの CSS に、端末表示と同じカテゴリ色のルールを足したものです。
// 明るい背景なので EnsureContrast で読める濃さに寄せます。
func styles() string {
	cssOnce.Do(func() {
		var b strings.Builder
		b.WriteString(stylesCSS)
		bg := termcolor.SchemeLight.Background()
		for _, c := range model.Categories() {
			rgb, ok := termcolor.CategoryRGB(c)
			if !ok {
				continue
			}
			rgb = termcolor.EnsureContrast(rgb, bg, 4.5)
			fmt.Fprintf(&b, ".cat-%s{color:#%02x%02x%02x}\n", c, rgb.R, rgb.G, rgb.B)
		}
		fullCSS = b.String()
	})
	return fullCSS
}
