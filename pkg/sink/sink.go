package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const DefaultName = "output"

// Sink writes artifacts into a directory. A file only appears under its
// final name once it was written completely.
type Sink struct {
	dir string
}

func New(dir string) (*Sink, error) {
	if dir == "" {
		dir = "."
	}

	return &Sink{
		dir: dir,
	}, nil
}

func (s *Sink) Dir() string {
	return s.dir
}

// Write calls fn with a temporary file and moves it to name when fn succeeds.
// The temporary file is removed on any failure.
func (s *Sink) Write(ctx context.Context, name string, fn func(w io.WriteSeeker) error) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid file name: %q", name)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", err
	}

	f, err := os.CreateTemp(s.dir, "."+name+".*.tmp")

	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name)

	if err := write(ctx, f, fn); err != nil {
		os.Remove(f.Name())
		return "", err
	}

	if err := os.Rename(f.Name(), path); err != nil {
		os.Remove(f.Name())
		return "", err
	}

	return path, nil
}

func write(ctx context.Context, f *os.File, fn func(w io.WriteSeeker) error) error {
	if err := fn(f); err != nil {
		f.Close()
		return err
	}

	if err := ctx.Err(); err != nil {
		f.Close()
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}

	if err := f.Chmod(0644); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\-.]+`)

// FileName derives a file name from a document title: lower case, whitespace
// runs replaced by underscores, anything else unsafe dropped.
func FileName(title, ext string) string {
	name := strings.ToLower(strings.Join(strings.Fields(title), "_"))
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._-")

	if runes := []rune(name); len(runes) > 200 {
		name = string(runes[:200])
	}

	if name == "" {
		name = DefaultName
	}

	return name + ext
}
