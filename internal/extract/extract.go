// Package extract converts uploaded resume binaries (PDF or DOCX) into plain
// text. PDF parsing uses github.com/ledongthuc/pdf; DOCX is read as an Office
// Open XML archive and the document part is stripped of markup.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"placement-backend/internal/shared/storage/object"
)

const (
	// TypePDF and TypeDOCX are the supported declared media types.
	TypePDF  = "pdf"
	TypeDOCX = "docx"

	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	// ErrUnsupportedFileType is returned when the declared media type does not
	// map to PDF or DOCX. Non-retryable.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrExtractionFailed is returned when a supported binary cannot be
	// parsed (corrupt, encrypted, truncated). The underlying cause is carried
	// in the error text.
	ErrExtractionFailed = errors.New("extraction failed")
)

// Text reads a stored object and extracts its plain-text content. Extraction
// failures never fall back to empty text; the caller must treat any error as
// a failed analysis.
func Text(ctx context.Context, store object.ObjectStore, storageKey, mimeType, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := store.Open(ctx, storageKey)
	if err != nil {
		return "", fmt.Errorf("extract key=%s: %w", storageKey, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("extract key=%s: read: %w", storageKey, err)
	}

	return TextFromBytes(ctx, raw, mimeType, fileName)
}

// TextFromBytes extracts text from an in-memory payload. The declared media
// type may be a short form ("pdf", "docx") or a MIME string; anything else
// yields ErrUnsupportedFileType. Parsing runs in its own goroutine so a
// context deadline bounds time spent on malformed binaries.
func TextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var parse func([]byte) (string, error)
	switch NormalizeType(mimeType, fileName) {
	case TypePDF:
		parse = extractPDF
	case TypeDOCX:
		parse = extractDOCX
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, mimeType)
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		// The PDF parser panics on some malformed inputs; a panic here would
		// escape the request goroutine and kill the process.
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("parser panic: %v", r)}
			}
		}()
		text, err := parse(data)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("%w: %v", ErrExtractionFailed, res.err)
		}
		return res.text, nil
	}
}

// NormalizeType maps a declared media type (short form or MIME, with an
// extension fallback) to TypePDF, TypeDOCX, or empty for unsupported input.
func NormalizeType(mimeType string, fileName string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case TypePDF, mimePDF:
		return TypePDF
	case TypeDOCX, mimeDOCX:
		return TypeDOCX
	case "application/zip", "application/octet-stream", "":
		switch strings.ToLower(filepath.Ext(fileName)) {
		case ".pdf":
			return TypePDF
		case ".docx":
			return TypeDOCX
		}
	}
	return ""
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return stripDocxXML(string(raw))
}

func stripDocxXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
