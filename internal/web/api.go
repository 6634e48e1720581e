package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/phyten/usagex/internal/engine"
	"github.com/phyten/usagex/internal/engine/opts"
	"github.com/phyten/usagex/internal/model"
	"github.com/phyten/usagex/internal/progress"
)

// Server は serve サブコマンドの HTTP ハンドラ一式です。
// 検索は Runner を共有するので、同じルートへの再検索は変更のないファイルを解析し直しません。
type Server struct {
	root     string
	defaults engine.Options
	runner   *engine.Runner
}

// NewServer は defaults を基準にクエリを適用して検索するサーバーを作ります。
// Root はクエリから変更できません。
func NewServer(defaults engine.Options, runner *engine.Runner) *Server {
	if runner == nil {
		runner = engine.NewRunner()
	}
	defaults.Progress = false
	defaults.ProgressObserver = nil
	return &Server{root: defaults.Root, defaults: defaults, runner: runner}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerUI(mux)
	mux.HandleFunc("/api/search", s.searchHandler)
	mux.HandleFunc("/api/search/stream", s.streamHandler)
	mux.HandleFunc("/api/categories", categoriesHandler)
	return mux
}

type apiError struct {
	Error string `json:"error"`
}

type categoryInfo struct {
	ID    model.Category `json:"id"`
	Label string         `json:"label"`
	Rank  int            `json:"rank"`
}

func (s *Server) options(r *http.Request) (engine.Options, error) {
	o, err := opts.ApplyWebQueryToOptions(s.defaults, r.URL.Query())
	if err != nil {
		return o, err
	}
	o.Root = s.root
	if err := opts.NormalizeAndValidate(&o); err != nil {
		return o, err
	}
	return o, nil
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}
	o, err := s.options(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	res, err := s.runner.Run(r.Context(), o)
	if err != nil {
		writeJSON(w, statusFor(err), apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// streamHandler は Server-Sent Events で進捗 (progress) と結果 (result) を送ります。
// 失敗時は error イベントを 1 回送って終わります。
func (s *Server) streamHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "streaming unsupported"})
		return
	}
	o, err := s.options(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	var mu sync.Mutex
	send := func(event string, payload any) {
		mu.Lock()
		defer mu.Unlock()
		b, err := json.Marshal(payload)
		if err != nil {
			b, _ = json.Marshal(apiError{Error: err.Error()})
			event = "error"
		}
		_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b)
		flusher.Flush()
	}
	o.ProgressObserver = progress.ObserverFunc(func(snap progress.Snapshot) {
		send("progress", snap)
	})

	res, err := s.runner.Run(r.Context(), o)
	if err != nil {
		if r.Context().Err() == nil {
			send("error", apiError{Error: err.Error()})
		}
		return
	}
	send("result", res)
}

func categoriesHandler(w http.ResponseWriter, r *http.Request) {
	cats := model.Categories()
	out := make([]categoryInfo, len(cats))
	for i, c := range cats {
		out[i] = categoryInfo{ID: c, Label: c.Label(), Rank: c.Rank()}
	}
	writeJSON(w, http.StatusOK, out)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrEmptyTerm), errors.Is(err, engine.ErrInvalidPattern):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON は HTML をエスケープせずに JSON を返します。表示側でエスケープします。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Printf("web: encode response: %v", err)
	}
}
