package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ExportedFile is one entry of the /exports/ listing.
type ExportedFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

var exportExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".tif": true, ".tiff": true}

// resolveExportPath joins name onto root and enforces that the result stays
// inside root.
func resolveExportPath(root, name string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid export root: %w", err)
	}
	absRoot = filepath.Clean(absRoot)

	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	absPath := filepath.Clean(filepath.Join(absRoot, name))
	if !strings.HasPrefix(absPath, absRoot+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal detected")
	}
	return absPath, nil
}

// handleExports serves the export folder.
// Path format:
//  1. list:  /exports/?page=1&per_page=24
//  2. file:  /exports/{filename}
func (s *Server) handleExports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	root := s.getExportDir()
	if root == "" {
		http.Error(w, "No export folder", http.StatusNotFound)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/exports/")
	if name == "" {
		s.handleExportListing(w, r, root)
		return
	}

	path, err := resolveExportPath(root, name)
	if err != nil {
		http.Error(w, "Invalid file name", http.StatusBadRequest)
		return
	}
	if !exportExts[strings.ToLower(filepath.Ext(path))] {
		http.Error(w, "Not an export", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleExportListing(w http.ResponseWriter, r *http.Request, root string) {
	page, perPage := 1, 24
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if pp, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && pp > 0 {
		perPage = pp
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			writeJSON(w, http.StatusOK, []ExportedFile{})
			return
		}
		http.Error(w, "Failed to read directory", http.StatusInternalServerError)
		return
	}

	var files []ExportedFile
	for _, e := range entries {
		if e.IsDir() || !exportExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, ExportedFile{
			Name: e.Name(),
			URL:  fmt.Sprintf("http://%s/exports/%s", r.Host, e.Name()),
			Size: info.Size(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	start := min((page-1)*perPage, len(files))
	end := min(start+perPage, len(files))
	result := files[start:end]
	if result == nil {
		result = []ExportedFile{}
	}
	writeJSON(w, http.StatusOK, result)
}
