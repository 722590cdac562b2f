package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDefaultMaxPrefixLen(t *testing.T) {
	// "!<arch>\ndebian-binary" is the longest built-in signature.
	assert.Equal(t, 21, Default().MaxPrefixLen())
}

func TestDetect(t *testing.T) {
	c := Default()

	tests := []struct {
		name   string
		header []byte
		want   string
		found  bool
	}{
		{"pdf", []byte("%PDF-1.7\n"), ".pdf", true},
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00"), ".png", true},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, ".jpg", true},
		{"mz resolves to exe", []byte("MZ\x90\x00"), ".exe", true},
		{"zip containers resolve to zip", []byte("PK\x03\x04\x14\x00"), ".zip", true},
		{"plain text", []byte("hello world"), "", false},
		{"empty header", nil, "", false},
		{"truncated signature", []byte("%PD"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Detect(tt.header)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	c := Default()

	tests := []struct {
		name     string
		declared string
		header   []byte
		want     string
	}{
		{"agreeing types", ".pdf", []byte("%PDF-1.4"), ".pdf"},
		{"unknown detection", ".txt", []byte("just text"), ".txt [no file sig confirmed]"},
		{"unknown detection for uncatalogued type", ".foo", []byte("xyz"), ".foo [no file sig confirmed]"},
		{"pdf disguised as txt", ".txt", []byte("%PDF-1.4"), ".pdf [signature mismatch]"},
		{"dll shadowed by exe", ".dll", []byte("MZ\x90\x00"), ".exe [signature mismatch]"},
		{"docx shadowed by zip", ".docx", []byte("PK\x03\x04"), ".zip [signature mismatch]"},
		{"no extension", NoExtension, []byte("\x1F\x8B\x08"), ".gz [signature mismatch]"},
		{"empty header", ".png", nil, ".png [no file sig confirmed]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.declared, tt.header).String())
		})
	}
}

func TestClassifyMismatchNamesDetectedType(t *testing.T) {
	key := Default().Classify(".txt", []byte("%PDF-1.5\n%\xe2\xe3"))
	assert.Equal(t, GroupKey{Type: ".pdf", Annotation: Mismatch}, key)
	assert.NotEqual(t, ".txt", key.Type)
}

func TestDeclaredType(t *testing.T) {
	assert.Equal(t, ".txt", DeclaredType("/tmp/notes.TXT"))
	assert.Equal(t, ".gz", DeclaredType("archive.tar.gz"))
	assert.Equal(t, NoExtension, DeclaredType("/usr/bin/ls"))
	assert.Equal(t, NoExtension, DeclaredType(".bashrc"))
	assert.Equal(t, NoExtension, DeclaredType("/repo/.gitignore"))
	assert.Equal(t, NoExtension, DeclaredType("/x/..hidden"))
	assert.Equal(t, ".local", DeclaredType("/x/.env.local"))
}

func TestNewIgnoresDuplicatesAndEmptyPrefixes(t *testing.T) {
	c := New([]Entry{
		{".a", [][]byte{[]byte("AA"), {}}},
		{".a", [][]byte{[]byte("ZZZZZZ")}},
		{".b", nil},
	})

	require.Len(t, c.Entries(), 2)
	prefixes, ok := c.Prefixes(".a")
	require.True(t, ok)
	assert.Equal(t, [][]byte{[]byte("AA")}, prefixes)
	assert.Equal(t, 2, c.MaxPrefixLen())

	_, ok = c.Prefixes(".c")
	assert.False(t, ok)
}

func TestReadHeader(t *testing.T) {
	path := writeFile(t, "short.bin", []byte("abc"))

	header, err := ReadHeader(path, 21)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), header)

	header, err = ReadHeader(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), header)

	empty := writeFile(t, "empty.bin", nil)
	header, err = ReadHeader(empty, 21)
	require.NoError(t, err)
	assert.Empty(t, header)

	_, err = ReadHeader(filepath.Join(t.TempDir(), "missing"), 4)
	assert.Error(t, err)
}

func TestRecheck(t *testing.T) {
	c := Default()
	pdf := writeFile(t, "doc.txt", []byte("%PDF-1.4 body"))
	text := writeFile(t, "plain.txt", []byte("plain text"))

	ok, err := c.Recheck(pdf, ".pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Recheck(text, ".pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	// .txt has no signature, uncatalogued types have none either.
	ok, err = c.Recheck(text, ".txt")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.Recheck(text, ".unknown")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Recheck(filepath.Join(t.TempDir(), "gone.pdf"), ".pdf")
	assert.Error(t, err)
	assert.False(t, ok)
}
