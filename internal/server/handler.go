package server

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/quantmind-br/folio/internal/utils"
)

// NotFoundPage is served with status 404 for missing paths when present
const NotFoundPage = "404.html"

// NewHandler serves dir with gzip compression, an access log and a 404
// page fallback
func NewHandler(dir string, logger *utils.Logger) http.Handler {
	root := http.Dir(dir)
	files := &fallbackHandler{root: root, files: http.FileServer(root)}
	return accessLog(logger, gzhttp.GzipHandler(files))
}

type fallbackHandler struct {
	root  http.FileSystem
	files http.Handler
}

func (f *fallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)
	file, err := f.root.Open(name)
	if err == nil {
		_ = file.Close()
		f.files.ServeHTTP(w, r)
		return
	}
	if !errors.Is(err, fs.ErrNotExist) {
		f.files.ServeHTTP(w, r)
		return
	}

	page, err := f.root.Open("/" + NotFoundPage)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer page.Close()

	info, err := page.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if r.Method != http.MethodHead {
		_, _ = io.Copy(w, page)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func accessLog(logger *utils.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Int("bytes", rec.bytes).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}
