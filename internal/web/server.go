package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strconv"

	"dotflip/internal/index"
	"dotflip/internal/model"
	"dotflip/internal/toggle"
)

//go:embed static/*
var staticFS embed.FS

// Server exposes the index and toggle engine over HTTP for the browser
// UI and for scripting.
type Server struct {
	ix     *index.Index
	engine *toggle.Engine
}

// StartServer starts the web server on the given port (or default 8080).
// Blocks until the listener fails.
func StartServer(ix *index.Index, engine *toggle.Engine, port string) {
	if port == "" {
		port = "8080"
	}
	s := &Server{ix: ix, engine: engine}

	mux := http.NewServeMux()

	// Serve static files
	subFS, _ := fs.Sub(staticFS, "static")
	mux.Handle("/", http.FileServer(http.FS(subFS)))

	// API Endpoints
	mux.HandleFunc("/api/files", s.handleFiles)
	mux.HandleFunc("/api/file", s.handleFile)
	mux.HandleFunc("/api/line-context", s.handleLineContext)
	mux.HandleFunc("/api/toggle", s.handleToggle)

	fmt.Printf("Starting dotflip web server at http://localhost:%s\n", port)
	fmt.Printf("Go to http://localhost:%s in your browser.\n", port)

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}

// handleFiles returns the whole parsed index.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Files   []*model.ParsedFile `json:"files"`
		Version string              `json:"version"`
	}{
		Files:   s.ix.All(),
		Version: model.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleFile returns the most recent parse of one file.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path is required", 400)
		return
	}

	pf, ok := s.ix.Get(path)
	if !ok {
		http.Error(w, "file not indexed", 404)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pf)
}

func (s *Server) handleLineContext(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	lineStr := r.URL.Query().Get("line")
	if path == "" || lineStr == "" {
		http.Error(w, "path and line are required", 400)
		return
	}

	line, err := strconv.Atoi(lineStr)
	if err != nil {
		http.Error(w, "invalid line number", 400)
		return
	}

	context := model.GetLineContext(path, line)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(context)
}

// handleToggle runs a silent toggle. The browser is its own "view", so
// no reveal side effect applies. Outcome errors are reported in the JSON
// body, not as HTTP failures — a rejected toggle is an expected result.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Path string `json:"path"`
		Line int    `json:"line"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", 400)
		return
	}
	if req.Path == "" {
		http.Error(w, "path is required", 400)
		return
	}

	outcome := s.engine.ToggleSilently(req.Path, req.Line)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(outcome)
}
