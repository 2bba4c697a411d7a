package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
)

type fakeParser struct {
	text string
	err  error
}

func (f *fakeParser) Parse(ctx context.Context, data []byte, filename string) (string, error) {
	return f.text, f.err
}

func (f *fakeParser) SupportedFormats() []string { return []string{"pdf", "docx"} }

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoader_LoadTxtFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "test.txt", []byte("  Hello World\n\n"))

	doc, err := New(nil).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if doc.Content != "Hello World" {
		t.Errorf("unexpected content: %q", doc.Content)
	}
	if doc.Name != "test.txt" {
		t.Errorf("unexpected name: %s", doc.Name)
	}
	if doc.FileType != entities.FileTypeText {
		t.Errorf("unexpected file type: %s", doc.FileType)
	}
	if doc.ID != entities.DocumentID(path) || len(doc.ID) != 16 {
		t.Errorf("unexpected document id: %s", doc.ID)
	}
}

func TestLoader_Latin1Fallback(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "legacy.md", []byte{'c', 'a', 'f', 0xe9})

	doc, err := New(nil).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if doc.Content != "café" {
		t.Errorf("expected latin-1 decoding, got %q", doc.Content)
	}
}

func TestLoader_JSONObject(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.json", []byte(`{"zeta":1,"alpha":{"x":[1,2]},"b":true,"c":null,"d":"s","e":2}`))

	doc, err := New(nil).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want := "JSON Data Structure:\nObject with 6 keys: zeta, alpha, b, c, d\n\n{\n  \"zeta\": 1,\n  \"alpha\": {\n    \"x\": [\n      1,\n      2\n    ]\n  },"
	if !strings.HasPrefix(doc.Content, want) {
		t.Errorf("unexpected rendering:\n%s", doc.Content)
	}
	if doc.FileType != entities.FileTypeJSON {
		t.Errorf("unexpected file type: %s", doc.FileType)
	}
}

func TestLoader_JSONArray(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "list.json", []byte(`[1, 2, 3]`))

	doc, err := New(nil).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	want := "JSON Data Structure:\nArray with 3 items\n\n[\n  1,\n  2,\n  3\n]"
	if doc.Content != want {
		t.Errorf("unexpected rendering:\n%s", doc.Content)
	}
}

func TestLoader_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.json", []byte(`{"a":`))

	if _, err := New(nil).Load(context.Background(), path); err == nil {
		t.Error("should fail on invalid json")
	}
}

func TestLoader_CSV(t *testing.T) {
	dir := t.TempDir()
	var sb strings.Builder
	sb.WriteString("name,role\n")
	for i := 1; i <= 13; i++ {
		fmt.Fprintf(&sb, "user%d,admin\n", i)
	}
	path := writeFile(t, dir, "users.csv", []byte(sb.String()))

	doc, err := New(nil).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if !strings.HasPrefix(doc.Content, "CSV Data with columns: name, role\n\nname,role\nuser1,admin\n") {
		t.Errorf("unexpected rendering:\n%s", doc.Content)
	}
	if !strings.Contains(doc.Content, "user10,admin\n... (3 more rows)") {
		t.Errorf("expected a 10 row sample:\n%s", doc.Content)
	}
	if strings.Contains(doc.Content, "user11") {
		t.Error("rows past the sample should be left out")
	}
}

func TestLoader_PDFUsesParser(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "guide.pdf", []byte("%PDF-1.4"))

	doc, err := New(&fakeParser{text: "Page one\x00\x07 text\n"}).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if doc.Content != "Page one text" {
		t.Errorf("unexpected content: %q", doc.Content)
	}
	if doc.FileType != entities.FileTypePDF {
		t.Errorf("unexpected file type: %s", doc.FileType)
	}
}

func TestLoader_ParserFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.docx", []byte("PK"))

	_, err := New(&fakeParser{err: errors.New("corrupt")}).Load(context.Background(), path)
	if err == nil {
		t.Fatal("should propagate parser failure")
	}

	_, err = New(nil).Load(context.Background(), path)
	if !errors.Is(err, domain.ErrUnsupportedFile) {
		t.Errorf("expected ErrUnsupportedFile without a parser, got %v", err)
	}
}

func TestLoader_UnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.rst", []byte("Title\n=====\n"))

	doc, err := New(nil).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if doc.FileType != entities.FileTypeUnknown {
		t.Errorf("unexpected file type: %s", doc.FileType)
	}

	bin := writeFile(t, dir, "blob.bin", []byte{0xff, 0xfe, 0x00})
	if _, err := New(nil).Load(context.Background(), bin); !errors.Is(err, domain.ErrUnsupportedFile) {
		t.Errorf("expected ErrUnsupportedFile for binary, got %v", err)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	if _, err := New(nil).Load(context.Background(), "/nonexistent/file.txt"); err == nil {
		t.Error("should fail for missing file")
	}
}

func TestFileTypeFor(t *testing.T) {
	tests := map[string]entities.FileType{
		"a.TXT":        entities.FileTypeText,
		"b.yaml":       entities.FileTypeText,
		"c.pdf":        entities.FileTypePDF,
		"d.json":       entities.FileTypeJSON,
		"e.csv":        entities.FileTypeCSV,
		"f.docx":       entities.FileTypeWord,
		"g.conf":       entities.FileTypeData,
		"h.go":         entities.FileTypeUnknown,
		"no-extension": entities.FileTypeUnknown,
	}
	for path, want := range tests {
		if got := FileTypeFor(path); got != want {
			t.Errorf("FileTypeFor(%s) = %s, want %s", path, got, want)
		}
	}
}

func TestLoader_SupportedExtensions(t *testing.T) {
	exts := New(nil).SupportedExtensions()
	if len(exts) != 20 {
		t.Errorf("expected 20 extensions, got %d", len(exts))
	}
	for i := 1; i < len(exts); i++ {
		if exts[i-1] > exts[i] {
			t.Fatal("extensions should be sorted")
		}
	}
}
