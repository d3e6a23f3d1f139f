package live

import (
	"errors"
	"html/template"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/vango-dev/zvue/pkg/reactive"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBodySize bounds PUT bodies.
const maxBodySize = 1 << 20

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
{{.Script}}
</body>
</html>
`))

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	body, err := s.render()
	if err != nil {
		s.logger.Error("render page", "error", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = pageTemplate.Execute(w, struct {
		Title  string
		Body   template.HTML
		Script template.HTML
	}{
		Title:  s.title,
		Body:   template.HTML(body),
		Script: template.HTML(ClientScript),
	})
	if err != nil {
		s.logger.Error("write page", "error", err)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snapshot := s.vm.Snapshot()
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	s.mu.Lock()
	value, ok := s.vm.Lookup(key)
	s.mu.Unlock()

	if !ok {
		s.writeError(w, http.StatusNotFound, errors.New("unknown key "+key))
		return
	}
	s.writeJSON(w, http.StatusOK, value)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	err = s.Set(key, value)
	var notifyErr *reactive.NotifyError
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, reactive.ErrUnknownProperty):
		s.writeError(w, http.StatusNotFound, err)
	case errors.As(err, &notifyErr):
		s.logger.Warn("write notified with failures", "key", key, "failures", len(notifyErr.Errs))
		s.writeError(w, http.StatusInternalServerError, err)
	default:
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	s.write(w, data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	s.write(w, data)
}

// write sends a response body. The status is already out, so a failure is
// only logged.
func (s *Server) write(w http.ResponseWriter, data []byte) {
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("write response", "error", err)
	}
}
