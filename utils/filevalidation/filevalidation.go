package filevalidation

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

// ErrMsgFileType is shown for any extension or content outside the allow-list
const ErrMsgFileType = "Only PDF, DOC, DOCX, ZIP, and RAR files are allowed"

// Limits defines the validation limits for uploads
type Limits struct {
	MaxFileSize int64 // bytes
}

// AssignmentLimits applies to assignment submissions
var AssignmentLimits = Limits{
	MaxFileSize: 10 * 1024 * 1024,
}

// allowedTypes maps an extension to the content types accepted for it.
// Sniffed content matches when the detected type or one of its parents is listed.
var allowedTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	".zip":  {"application/zip"},
	".rar":  {"application/x-rar-compressed"},
}

// declaredTypes are the client supplied Content-Type values we accept
var declaredTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/zip":              true,
	"application/x-zip-compressed": true,
	"application/x-rar-compressed": true,
	"application/vnd.rar":          true,
	"application/octet-stream":     true,
}

// Result contains the outcome of validating one upload
type Result struct {
	Valid       bool
	Ext         string
	ContentType string // sniffed
	PageCount   int    // PDFs only
	FileSize    int64
	Content     []byte
	Error       string
}

// ValidateFileHeader reads a multipart file and validates it
func ValidateFileHeader(file *multipart.FileHeader, limits Limits) (*Result, error) {
	if file.Size > limits.MaxFileSize {
		return &Result{
			FileSize: file.Size,
			Error:    fmt.Sprintf("File size exceeds maximum allowed size of %dMB", limits.MaxFileSize/(1024*1024)),
		}, nil
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	// Read one byte past the limit to catch a lying Size
	content, err := io.ReadAll(io.LimitReader(f, limits.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return Validate(file.Filename, file.Header.Get("Content-Type"), content, limits), nil
}

// Validate checks the name, declared type and content of an upload
func Validate(filename, declaredType string, content []byte, limits Limits) *Result {
	result := &Result{FileSize: int64(len(content))}

	if result.FileSize > limits.MaxFileSize {
		result.Error = fmt.Sprintf("File size exceeds maximum allowed size of %dMB", limits.MaxFileSize/(1024*1024))
		return result
	}
	if result.FileSize == 0 {
		result.Error = "File is empty"
		return result
	}

	ext := strings.ToLower(filepath.Ext(filename))
	accepted, ok := allowedTypes[ext]
	if !ok {
		result.Error = ErrMsgFileType
		return result
	}
	result.Ext = ext

	declared := strings.ToLower(strings.TrimSpace(strings.SplitN(declaredType, ";", 2)[0]))
	if declared != "" && !declaredTypes[declared] {
		result.Error = ErrMsgFileType
		return result
	}

	detected := mimetype.Detect(content)
	result.ContentType = detected.String()
	if !matchesAny(detected, accepted) {
		result.Error = ErrMsgFileType
		return result
	}

	if ext == ".pdf" {
		pages, err := pdfPageCount(content)
		if err != nil {
			result.Error = fmt.Sprintf("Failed to read PDF: %v", err)
			return result
		}
		result.PageCount = pages

		if pages == 0 {
			result.Error = "PDF has no pages"
			return result
		}
	}

	result.Content = content
	result.Valid = true
	return result
}

func matchesAny(detected *mimetype.MIME, accepted []string) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, a := range accepted {
			if m.Is(a) {
				return true
			}
		}
	}
	return false
}

// trimPDF removes trailing garbage after the last %%EOF marker
func trimPDF(content []byte) []byte {
	eofMarker := []byte("%%EOF")
	lastEOF := bytes.LastIndex(content, eofMarker)
	if lastEOF == -1 {
		return content
	}

	end := lastEOF + len(eofMarker)
	for end < len(content) && (content[end] == '\n' || content[end] == '\r') {
		end++
	}
	return content[:end]
}

func pdfPageCount(content []byte) (pages int, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("malformed PDF")
		}
	}()

	content = trimPDF(content)
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse PDF: %w", err)
	}
	return reader.NumPage(), nil
}

// GenerateFilename returns assignment-<unix ms>-<9 random digits><ext>
func GenerateFilename(original string, now time.Time) string {
	suffix := uuid.New().ID() % 1_000_000_000
	return fmt.Sprintf("assignment-%d-%09d%s", now.UnixMilli(), suffix, strings.ToLower(filepath.Ext(original)))
}
