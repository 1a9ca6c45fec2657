package extract

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/amishk599/coverletter/internal/model"
)

// Errors carry the message shown to the user.
var (
	ErrNoFile          = errors.New("No file provided")
	ErrUnsupportedType = errors.New("Please upload a PDF, DOCX or TXT file")
	ErrNoText          = errors.New("Could not extract text from PDF. The file might be image-based or empty.")
	ErrNoTextDocx      = errors.New("Could not extract text from the DOCX file. The document might be empty.")
	ErrEmptyText       = errors.New("The uploaded text file is empty.")
	ErrUnreadable      = errors.New("Failed to parse PDF file. Please ensure it's a valid PDF document.")
	ErrUnreadableDocx  = errors.New("Failed to parse DOCX file. Please ensure it's a valid Word document.")
)

var _ model.TextExtractor = (*Extractor)(nil)

type kind int

const (
	kindUnknown kind = iota
	kindPDF
	kindDocx
	kindText
)

var (
	xmlTagRegex   = regexp.MustCompile(`<[^>]*>`)
	paragraphEnd  = regexp.MustCompile(`</w:p>|<w:br/>|<w:cr/>`)
	tabRegex      = regexp.MustCompile(`<w:tab/>`)
	blankRunRegex = regexp.MustCompile(`\n{3,}`)
)

// Extractor turns uploaded CV files into plain text.
type Extractor struct {
	logger *slog.Logger
}

// New creates an Extractor.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract detects the file kind from its name and content and returns the trimmed text.
func (e *Extractor) Extract(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNoFile
	}

	var (
		text string
		err  error
	)
	k := detect(filename, data)
	switch k {
	case kindPDF:
		text, err = extractPDF(data)
	case kindDocx:
		text, err = extractDocx(data)
	case kindText:
		text, err = extractPlain(data)
	default:
		return "", ErrUnsupportedType
	}
	if err != nil {
		e.logger.Warn("cv extraction failed", "file", filename, "bytes", len(data), "error", err)
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", noTextError(k)
	}
	e.logger.Debug("cv extracted", "file", filename, "chars", len(text))
	return text, nil
}

// noTextError names the file kind that turned out to hold no text.
func noTextError(k kind) error {
	switch k {
	case kindDocx:
		return ErrNoTextDocx
	case kindText:
		return ErrEmptyText
	default:
		return ErrNoText
	}
}

func detect(filename string, data []byte) kind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return kindPDF
	case ".docx":
		return kindDocx
	case ".txt", ".text", ".md":
		return kindText
	}

	sniffed := http.DetectContentType(data)
	switch {
	case sniffed == "application/pdf":
		return kindPDF
	case sniffed == "application/zip":
		return kindDocx
	case strings.HasPrefix(sniffed, "text/plain"):
		return kindText
	}
	return kindUnknown
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w (%v)", ErrUnreadable, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", ErrUnreadable, i, err)
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, "\n"), nil
}

func extractDocx(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadableDocx, err)
	}
	defer doc.Close()

	return docxXMLToText(doc.Editable().GetContent()), nil
}

// docxXMLToText converts WordprocessingML to plain text, keeping paragraph breaks.
func docxXMLToText(content string) string {
	content = paragraphEnd.ReplaceAllString(content, "\n")
	content = tabRegex.ReplaceAllString(content, "\t")
	content = xmlTagRegex.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return blankRunRegex.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
}

func extractPlain(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", ErrUnsupportedType
	}
	return string(data), nil
}
