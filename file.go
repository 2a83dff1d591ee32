package foamdict

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// WriteOptions control WriteFile.
type WriteOptions struct {
	// Backup copies an existing file to "<path>.bak" before replacing it.
	Backup bool

	// Force writes even when the content is unchanged.
	Force bool

	// Generator overrides the text layout. The zero value selects the
	// default layout.
	Generator GeneratorOptions
}

// Digest returns the hex blake3 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// exists reports whether path, or its compressed sibling, exists.
func exists(path string) bool {
	_, err := resolvePath(path)
	return err == nil
}

// resolvePath returns path itself, or "<path>.gz" when only the compressed
// file is present. OpenFOAM writes compressed time directories that way.
func resolvePath(path string) (string, error) {
	_, err := os.Stat(path)
	if err == nil {
		return path, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !strings.HasSuffix(path, ".gz") {
		if _, gzErr := os.Stat(path + ".gz"); gzErr == nil {
			return path + ".gz", nil
		}
	}
	return "", err
}

// readFile returns the text of path, or of its compressed sibling,
// decompressing .gz and .xz files.
func readFile(path string) (string, error) {
	actual, err := resolvePath(path)
	if err != nil {
		return "", &IoError{Op: "open", Path: path, Err: err}
	}
	return readExact(actual)
}

// readExact returns the text of the file at actual without looking for a
// compressed sibling.
func readExact(actual string) (string, error) {
	f, err := os.Open(actual)
	if err != nil {
		return "", &IoError{Op: "open", Path: actual, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	switch filepath.Ext(actual) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", &IoError{Op: "gunzip", Path: actual, Err: err}
		}
		defer gz.Close()
		r = gz
	case ".xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			return "", &IoError{Op: "unxz", Path: actual, Err: err}
		}
		r = xr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", &IoError{Op: "read", Path: actual, Err: err}
	}
	return string(data), nil
}

// encode compresses data according to the extension of path.
func encode(path string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	switch filepath.Ext(path) {
	case ".gz":
		w = gzip.NewWriter(&buf)
	case ".xz":
		xw, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		w = xw
	default:
		return data, nil
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders doc and writes it to path. It reports whether the file
// was written: unless Force is set, a file whose content already matches is
// left untouched. The write goes through a temporary file and a rename.
func WriteFile(path string, doc *Document, opts WriteOptions) (bool, error) {
	gen := opts.Generator
	if gen == (GeneratorOptions{}) {
		gen = DefaultGeneratorOptions()
	}
	text := []byte(RenderWithOptions(doc, gen))

	// only path itself counts: a compressed sibling is a different file
	current, readErr := readExact(path)
	if readErr == nil && !opts.Force && Digest([]byte(current)) == Digest(text) {
		return false, nil
	}

	if readErr == nil && opts.Backup {
		if err := backup(path); err != nil {
			return false, err
		}
	}

	data, err := encode(path, text)
	if err != nil {
		return false, &IoError{Op: "compress", Path: path, Err: err}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return false, &IoError{Op: "write", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return false, &IoError{Op: "rename", Path: path, Err: err}
	}
	return true, nil
}

func backup(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &IoError{Op: "backup", Path: path, Err: err}
	}
	if err := os.WriteFile(path+".bak", data, 0o644); err != nil {
		return &IoError{Op: "backup", Path: path + ".bak", Err: err}
	}
	return nil
}
