package pdf

// PDFReadFileRequest represents a request to read a document
type PDFReadFileRequest struct {
	Path string `json:"path"`
}

// PDFReadFileResult represents the result of a read operation
type PDFReadFileResult struct {
	Path      string  `json:"path"`
	Format    Format  `json:"format"`
	Backend   Backend `json:"backend"`
	Pages     int     `json:"pages"`
	Size      int64   `json:"size"`
	Version   string  `json:"version,omitempty"`
	Truncated bool    `json:"truncated,omitempty"`
	Content   string  `json:"content"`
}
