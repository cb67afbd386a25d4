package filevalidation

import (
	"archive/zip"
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal PDF with the given number of blank pages
func buildPDF(t *testing.T, pages int) []byte {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	writeObj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	for i := 0; i < pages; i++ {
		writeObj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func buildZip(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("report.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("my assignment"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestValidateAcceptsPDF(t *testing.T) {
	result := Validate("report.PDF", "application/pdf", buildPDF(t, 2), AssignmentLimits)

	require.True(t, result.Valid, result.Error)
	assert.Equal(t, ".pdf", result.Ext)
	assert.Equal(t, 2, result.PageCount)
	assert.NotEmpty(t, result.Content)
}

func TestValidateAcceptsLongPDF(t *testing.T) {
	result := Validate("thesis.pdf", "application/pdf", buildPDF(t, 600), AssignmentLimits)

	require.True(t, result.Valid, result.Error)
	assert.Equal(t, 600, result.PageCount)
}

func TestValidateAcceptsZipAndRar(t *testing.T) {
	result := Validate("work.zip", "application/zip", buildZip(t), AssignmentLimits)
	assert.True(t, result.Valid, result.Error)

	rar := append([]byte("Rar!\x1a\x07\x00"), bytes.Repeat([]byte{0}, 32)...)
	result = Validate("work.rar", "application/octet-stream", rar, AssignmentLimits)
	assert.True(t, result.Valid, result.Error)
}

func TestValidateRejectsDisallowedExtension(t *testing.T) {
	result := Validate("virus.exe", "application/octet-stream", []byte("MZ\x90\x00"), AssignmentLimits)

	assert.False(t, result.Valid)
	assert.Equal(t, ErrMsgFileType, result.Error)
}

func TestValidateRejectsMismatchedContent(t *testing.T) {
	result := Validate("report.pdf", "application/pdf", []byte("just some text pretending"), AssignmentLimits)
	assert.False(t, result.Valid)
	assert.Equal(t, ErrMsgFileType, result.Error)

	result = Validate("report.zip", "text/html", buildZip(t), AssignmentLimits)
	assert.False(t, result.Valid)
	assert.Equal(t, ErrMsgFileType, result.Error)
}

func TestValidateRejectsBrokenPDF(t *testing.T) {
	result := Validate("report.pdf", "application/pdf", []byte("%PDF-1.4\nnot really a pdf"), AssignmentLimits)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Error)
}

func TestValidateSizeLimit(t *testing.T) {
	limits := Limits{MaxFileSize: 16}

	result := Validate("work.zip", "application/zip", buildZip(t), limits)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "File size exceeds")

	result = Validate("work.zip", "application/zip", nil, AssignmentLimits)
	assert.False(t, result.Valid)
}

func TestValidateFileHeader(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="assignment"; filename="work.zip"`)
	h.Set("Content-Type", "application/zip")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(buildZip(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	defer form.RemoveAll()

	result, err := ValidateFileHeader(form.File["assignment"][0], AssignmentLimits)
	require.NoError(t, err)
	assert.True(t, result.Valid, result.Error)
}

func TestGenerateFilename(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	name := GenerateFilename("My Work.DOCX", now)

	assert.Regexp(t, regexp.MustCompile(`^assignment-1700000000123-\d{9}\.docx$`), name)
	assert.NotEqual(t, name, GenerateFilename("My Work.DOCX", now))
}
