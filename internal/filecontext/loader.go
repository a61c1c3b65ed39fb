// Package filecontext turns local paths into text snapshots that can be
// attached to a conversation.
package filecontext

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/quocvuong92/fastgpt-cli/internal/constants"
	"github.com/quocvuong92/fastgpt-cli/internal/conversation"
)

var (
	ErrPathNotFound        = errors.New("path not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrDecode              = errors.New("file is binary or not valid text")
	ErrFileTooLarge        = errors.New("file too large")
)

// FileError is a failure to load one file
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Result is the outcome of loading a path
type Result struct {
	Files []conversation.FileContext
	// Failures holds per-file errors from a directory walk
	Failures []*FileError
	// Unsupported holds directory entries rejected by the extension allow-list
	Unsupported []*FileError
	// Dir reports whether the path was a directory
	Dir bool
}

// Empty reports whether a directory load matched no supported files
func (r Result) Empty() bool {
	return r.Dir && len(r.Files) == 0 && len(r.Failures) == 0
}

// Loader reads files under an extension allow-list and size limit
type Loader struct {
	extensions map[string]struct{}
	maxSize    int64
}

// NewLoader returns a Loader with the default allow-list and size limit
func NewLoader() *Loader {
	return NewLoaderWith(constants.SupportedExtensions, constants.MaxContextFileSize)
}

// NewLoaderWith returns a Loader for the given extensions (without dots)
func NewLoaderWith(extensions []string, maxSize int64) *Loader {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &Loader{extensions: set, maxSize: maxSize}
}

// Supported reports whether path has an allowed extension
func (l *Loader) Supported(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	_, ok := l.extensions[ext]
	return ext != "" && ok
}

// Load reads path. A regular file yields one entry or an error. A directory
// is walked recursively, skipping hidden sub-directories and symlinks; files
// that fail to load are collected in Result.Failures and the walk continues.
func (l *Loader) Load(path string) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}

	if !info.IsDir() {
		fc, err := l.loadFile(path)
		if err != nil {
			return Result{}, err
		}
		return Result{Files: []conversation.FileContext{fc}}, nil
	}

	return l.loadDir(path)
}

func (l *Loader) loadDir(root string) (Result, error) {
	res := Result{Dir: true}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			res.Failures = append(res.Failures, &FileError{Path: p, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 || !d.Type().IsRegular() {
			return nil
		}
		if !l.Supported(p) {
			res.Unsupported = append(res.Unsupported, &FileError{Path: p, Err: ErrUnsupportedFileType})
			return nil
		}

		fc, err := l.loadFile(p)
		if err != nil {
			var fe *FileError
			if !errors.As(err, &fe) {
				fe = &FileError{Path: p, Err: err}
			}
			res.Failures = append(res.Failures, fe)
			return nil
		}
		res.Files = append(res.Files, fc)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", root, err)
	}

	return res, nil
}

// loadFile reads one regular file. Errors are *FileError values.
func (l *Loader) loadFile(path string) (conversation.FileContext, error) {
	if !l.Supported(path) {
		return conversation.FileContext{}, &FileError{Path: path, Err: ErrUnsupportedFileType}
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return conversation.FileContext{}, &FileError{Path: path, Err: ErrPathNotFound}
		}
		return conversation.FileContext{}, &FileError{Path: path, Err: err}
	}
	if l.maxSize > 0 && info.Size() > l.maxSize {
		return conversation.FileContext{}, &FileError{
			Path: path,
			Err:  fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, info.Size(), l.maxSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return conversation.FileContext{}, &FileError{Path: path, Err: err}
	}

	text, err := decodeText(data)
	if err != nil {
		return conversation.FileContext{}, &FileError{Path: path, Err: err}
	}

	return conversation.FileContext{
		Path:    path,
		Content: text,
		Size:    info.Size(),
	}, nil
}

// decodeText converts file bytes to UTF-8. A UTF-8 or UTF-16 byte order mark
// selects the encoding; without one the data must already be UTF-8.
func decodeText(data []byte) (string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if bytes.IndexByte(decoded, 0) >= 0 || !utf8.Valid(decoded) {
		return "", ErrDecode
	}
	return string(decoded), nil
}
