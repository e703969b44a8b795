package pdf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestService_ListContracts(t *testing.T) {
	tempDir := t.TempDir()

	testFiles := map[string][]byte{
		"partner_2024.pdf":         make([]byte, 1024),
		"partner_2025.pdf":         make([]byte, 2048),
		"drafts/partner-draft.txt": []byte("Registration: Required"),
		"notes.md":                 []byte("not a contract"),
		"empty.pdf":                {},
		"large.pdf":                make([]byte, 2*1024*1024),
		".archive/old.pdf":         make([]byte, 512),
	}
	for name, content := range testFiles {
		path := filepath.Join(tempDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, content, 0o600); err != nil {
			t.Fatalf("failed to create test file %s: %v", name, err)
		}
	}

	svc := newTestService(t, tempDir)

	tests := []struct {
		name      string
		query     string
		wantPaths []string
	}{
		{
			name:      "all contracts",
			wantPaths: []string{"drafts/partner-draft.txt", "partner_2024.pdf", "partner_2025.pdf"},
		},
		{
			name:      "substring match",
			query:     "2025",
			wantPaths: []string{"partner_2025.pdf"},
		},
		{
			name:      "word match",
			query:     "Draft Partner",
			wantPaths: []string{"drafts/partner-draft.txt"},
		},
		{
			name:  "no match",
			query: "invoice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.ListContracts(tt.query)
			if err != nil {
				t.Fatalf("ListContracts() error = %v", err)
			}
			if result.TotalCount != len(tt.wantPaths) {
				t.Fatalf("TotalCount = %d, want %d (%+v)", result.TotalCount, len(tt.wantPaths), result.Files)
			}
			for i, want := range tt.wantPaths {
				if result.Files[i].Path != want {
					t.Errorf("Files[%d].Path = %q, want %q", i, result.Files[i].Path, want)
				}
			}
			if result.Query != tt.query {
				t.Errorf("Query = %q, want %q", result.Query, tt.query)
			}
		})
	}
}

func TestMatchesQuery(t *testing.T) {
	tests := []struct {
		filename string
		query    string
		want     bool
	}{
		{"Partner_Contract_2025.pdf", "", true},
		{"Partner_Contract_2025.pdf", "contract_2025", true},
		{"Partner_Contract_2025.pdf", "2025 partner", true},
		{"Partner_Contract_2025.pdf", "2024", false},
		{"terms (final).txt", "final terms", true},
	}

	for _, tt := range tests {
		if got := matchesQuery(tt.filename, tt.query); got != tt.want {
			t.Errorf("matchesQuery(%q, %q) = %v, want %v", tt.filename, tt.query, got, tt.want)
		}
	}
}
