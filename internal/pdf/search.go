package pdf

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ContractFile is one candidate document found in the document directory.
type ContractFile struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// ListContractsResult is the reply of the contract_list tool.
type ListContractsResult struct {
	Files      []ContractFile `json:"files"`
	TotalCount int            `json:"total_count"`
	Directory  string         `json:"directory"`
	Query      string         `json:"query,omitempty"`
}

// isContractFile accepts the extensions the reader understands.
func isContractFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".txt":
		return true
	}
	return false
}

// ListContracts walks the document directory for PDF and text files whose
// name matches query. Hidden directories, oversized and empty files are
// skipped. Paths in the result are relative to the directory.
func (s *Service) ListContracts(query string) (*ListContractsResult, error) {
	root := s.pathValidator.Root()
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("directory does not exist: %s", root)
	}

	validator := NewValidator(s.reader.maxFileSize)
	needle := strings.ToLower(strings.TrimSpace(query))
	files := []ContractFile{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isContractFile(d.Name()) || !matchesQuery(d.Name(), needle) {
			return nil
		}

		// Symlinks pointing outside the directory are dropped here.
		if _, err := s.pathValidator.Resolve(path); err != nil {
			return nil //nolint:nilerr
		}
		info, err := d.Info()
		if err != nil || validator.ValidateFileInfo(path, info) != nil {
			return nil //nolint:nilerr
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		files = append(files, ContractFile{
			Path:         filepath.ToSlash(rel),
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	return &ListContractsResult{
		Files:      files,
		TotalCount: len(files),
		Directory:  root,
		Query:      query,
	}, nil
}

// matchesQuery matches query against a filename: as a substring, or word by
// word when the query has several words. The query must be lower case.
func matchesQuery(filename, query string) bool {
	if query == "" {
		return true
	}

	name := strings.ToLower(filename)
	if strings.Contains(name, query) {
		return true
	}

	words := splitIntoWords(strings.TrimSuffix(name, filepath.Ext(name)))
	for _, q := range splitIntoWords(query) {
		found := false
		for _, w := range words {
			if strings.Contains(w, q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func splitIntoWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(" _-.()[]", r)
	})
}
