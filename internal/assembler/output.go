package assembler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Output receives the finished document under its final filename.
type Output interface {
	// Create opens a destination for filename and returns where the
	// document ends up (a path, or empty for streams).
	Create(filename string) (io.WriteCloser, string, error)
}

// DirOutput writes documents into a directory. The file appears atomically
// when the writer is closed.
type DirOutput struct {
	Dir string
}

func (o DirOutput) Create(filename string) (io.WriteCloser, string, error) {
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return nil, "", fmt.Errorf("create output dir: %w", err)
	}
	final := filepath.Join(o.Dir, filename)
	tmp, err := os.CreateTemp(o.Dir, ".export_tmp_")
	if err != nil {
		return nil, "", err
	}
	return &renameOnClose{File: tmp, final: final}, final, nil
}

type renameOnClose struct {
	*os.File
	final string
}

func (r *renameOnClose) Close() error {
	tmpPath := r.File.Name()
	if err := r.File.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, r.final); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// StreamOutput writes the document to W, calling Started with the filename
// before the first byte so HTTP handlers can set headers.
type StreamOutput struct {
	W       io.Writer
	Started func(filename string)
}

func (o StreamOutput) Create(filename string) (io.WriteCloser, string, error) {
	if o.Started != nil {
		o.Started(filename)
	}
	return nopCloser{o.W}, "", nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
