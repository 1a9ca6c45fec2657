package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
	`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>Senior Go Engineer</w:t></w:r><w:r><w:tab/><w:t>Berlin</w:t></w:r></w:p>` +
	`<w:p></w:p><w:p></w:p><w:p></w:p>` +
	`<w:p><w:r><w:t>Skills: Go &amp; Kubernetes</w:t></w:r></w:p>` +
	`</w:body></w:document>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

// buildDocx assembles the minimal zip layout the docx reader needs.
func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"word/document.xml":            body,
		"word/_rels/document.xml.rels": relsXML,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtract_EmptyUpload(t *testing.T) {
	e := New(discardLogger())
	if _, err := e.Extract("cv.pdf", nil); !errors.Is(err, ErrNoFile) {
		t.Errorf("expected ErrNoFile, got %v", err)
	}
}

func TestExtract_PlainText(t *testing.T) {
	e := New(discardLogger())
	got, err := e.Extract("cv.txt", []byte("\xef\xbb\xbf  Jane Doe\nGo Engineer  \n"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "Jane Doe\nGo Engineer" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_SniffsTextWithoutExtension(t *testing.T) {
	e := New(discardLogger())
	got, err := e.Extract("resume", []byte("Jane Doe, Go Engineer"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "Jane Doe, Go Engineer" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_WhitespaceOnlyText(t *testing.T) {
	e := New(discardLogger())
	if _, err := e.Extract("cv.txt", []byte(" \n\t ")); !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestExtract_UnsupportedType(t *testing.T) {
	e := New(discardLogger())
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if _, err := e.Extract("photo.png", png); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
	if _, err := e.Extract("cv.txt", []byte{0xff, 0xfe, 0xfd}); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("invalid UTF-8: expected ErrUnsupportedType, got %v", err)
	}
}

func TestExtract_InvalidPDF(t *testing.T) {
	e := New(discardLogger())
	for _, data := range [][]byte{
		[]byte("this is not a pdf"),
		[]byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n"),
	} {
		_, err := e.Extract("cv.pdf", data)
		if !errors.Is(err, ErrUnreadable) {
			t.Errorf("expected ErrUnreadable for %q, got %v", data, err)
		}
	}
}

func TestExtract_Docx(t *testing.T) {
	e := New(discardLogger())
	got, err := e.Extract("cv.docx", buildDocx(t, documentXML))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "Jane Doe\nSenior Go Engineer\tBerlin\n\nSkills: Go & Kubernetes"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtract_EmptyDocx(t *testing.T) {
	e := New(discardLogger())
	empty := `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p></w:p></w:body></w:document>`
	_, err := e.Extract("cv.docx", buildDocx(t, empty))
	if !errors.Is(err, ErrNoTextDocx) {
		t.Fatalf("expected ErrNoTextDocx, got %v", err)
	}
	if strings.Contains(err.Error(), "PDF") {
		t.Errorf("DOCX error mentions PDF: %v", err)
	}
}

func TestExtract_InvalidDocx(t *testing.T) {
	e := New(discardLogger())
	if _, err := e.Extract("cv.docx", []byte("PK not really a zip")); !errors.Is(err, ErrUnreadableDocx) {
		t.Errorf("expected ErrUnreadableDocx, got %v", err)
	}
}

func TestDocxXMLToText(t *testing.T) {
	got := docxXMLToText(`<w:p><w:r><w:t>A</w:t><w:br/><w:t>B &lt;x&gt;</w:t></w:r></w:p>`)
	if got != "A\nB <x>\n" {
		t.Errorf("got %q", got)
	}
}
