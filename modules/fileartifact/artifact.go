// Package fileartifact represents a file on disk as an in-memory slice
// of lines, the unit that both diff parsing and patch application
// operate on.
package fileartifact

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/VariantSync/mpatch/modules/errs"
)

// FileArtifact tracks the path to a file on disk and its content split
// into lines. Lines never carry their trailing newline character; a
// missing final newline in the source content is simply not
// represented as a line of its own (see String).
type FileArtifact struct {
	path  string
	lines []string
	// trailingNewline records whether the content this artifact was
	// parsed from ended in "\n". It has no bearing on Len/Lines/String,
	// which never represent the trailing newline as a line of its own,
	// but the LCS matcher treats it as an invisible final empty line
	// when deciding whether source and target end the same way.
	trailingNewline bool
}

// New creates an empty FileArtifact for path, with no lines.
func New(path string) *FileArtifact {
	return &FileArtifact{path: path, trailingNewline: true}
}

// FromLines creates a FileArtifact with the given path and lines,
// assuming a trailing newline (the common case for files built in
// memory by the patch applier).
func FromLines(path string, lines []string) *FileArtifact {
	return &FileArtifact{path: path, lines: lines, trailingNewline: true}
}

// HasTrailingNewline reports whether the content this artifact was
// parsed from ended with a newline character.
func (a *FileArtifact) HasTrailingNewline() bool {
	return a.trailingNewline
}

var bomDecoder = unicode.BOMOverride(unicode.UTF8.NewDecoder())

func stripBOM(content []byte) ([]byte, error) {
	if !bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}) &&
		!bytes.HasPrefix(content, []byte{0xFF, 0xFE}) &&
		!bytes.HasPrefix(content, []byte{0xFE, 0xFF}) {
		return content, nil
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(content), bomDecoder))
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

func readAll(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		r = gr
	}
	return io.ReadAll(r)
}

// Read loads the file at path into a FileArtifact, stripping a UTF BOM
// if present and transparently decompressing a .gz-suffixed path.
func Read(path string) (*FileArtifact, error) {
	content, err := readAll(path)
	if err != nil {
		return nil, errs.FromIOError(err)
	}
	content, err = stripBOM(content)
	if err != nil {
		return nil, errs.FromIOError(err)
	}
	return parseContent(path, string(content)), nil
}

// ReadOrCreateEmpty reads path as in Read, but returns an empty
// in-memory FileArtifact instead of an error when path does not exist
// on disk. It never creates the file itself.
func ReadOrCreateEmpty(path string) (*FileArtifact, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return New(path), nil
		}
		return nil, errs.FromIOError(err)
	}
	return Read(path)
}

func parseContent(path, content string) *FileArtifact {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		lines = append(lines, line)
	}
	trailingNewline := strings.HasSuffix(content, "\n")
	// strings.Split on a trailing "\n" yields a final empty string that
	// does not correspond to a line of content; Rust's str::lines()
	// does not emit it either.
	if len(lines) > 0 && lines[len(lines)-1] == "" && trailingNewline {
		lines = lines[:len(lines)-1]
	}
	if content == "" {
		lines = nil
	}
	return &FileArtifact{path: path, lines: lines, trailingNewline: trailingNewline}
}

// Write persists the artifact's content back to its path, gzip
// compressing it transparently if the path ends in .gz. The lines are
// followed by a final newline when the artifact has one. An existing
// file at the path is overwritten in place.
func (a *FileArtifact) Write() error {
	return a.write(os.O_WRONLY | os.O_CREATE | os.O_TRUNC)
}

// WriteNew persists the artifact's content to its path under
// create-new semantics: it fails if a file already exists there
// instead of clobbering it. Used by Create-mode patch application,
// which must never silently overwrite a file the precondition check
// raced past.
func (a *FileArtifact) WriteNew() error {
	return a.write(os.O_WRONLY | os.O_CREATE | os.O_EXCL)
}

func (a *FileArtifact) write(flag int) error {
	var buf bytes.Buffer
	buf.WriteString(a.String())
	if a.trailingNewline && len(a.lines) > 0 {
		buf.WriteByte('\n')
	}
	var out io.Writer
	f, err := os.OpenFile(a.path, flag, 0o644)
	if err != nil {
		return errs.FromIOError(err)
	}
	defer f.Close()
	out = f
	if strings.HasSuffix(a.path, ".gz") {
		gw := gzip.NewWriter(f)
		defer gw.Close()
		out = gw
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return errs.FromIOError(err)
	}
	return nil
}

// Len returns the number of lines in the artifact.
func (a *FileArtifact) Len() int {
	return len(a.lines)
}

// IsEmpty reports whether the artifact has no lines.
func (a *FileArtifact) IsEmpty() bool {
	return len(a.lines) == 0
}

// Lines returns the artifact's lines.
func (a *FileArtifact) Lines() []string {
	return a.lines
}

// Path returns the artifact's path.
func (a *FileArtifact) Path() string {
	return a.path
}

// String renders the artifact's lines joined by "\n", with no leading
// or trailing newline, matching the convention used throughout the
// diff/patch model for comparing and hashing file content.
func (a *FileArtifact) String() string {
	return strings.Join(a.lines, "\n")
}

// StripPath removes the first n path components of path, exactly the
// semantics of the --strip CLI flag: "mpatch/src/io.rs" stripped by 2
// becomes "io.rs". Path separators are normalized to "/" first so the
// behavior is identical regardless of host OS, and empty components
// (as in "a//b") are not counted.
func StripPath(path string, n int) string {
	var parts []string
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if n >= len(parts) {
		return ""
	}
	return filepath.Join(parts[n:]...)
}

// Exists reports whether a is backed by a file already on disk.
func (a *FileArtifact) Exists() bool {
	_, err := os.Stat(a.path)
	return err == nil
}

var _ fmt.Stringer = (*FileArtifact)(nil)
