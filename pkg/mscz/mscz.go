package mscz

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zip"
)

var ErrNotFound = errors.New("not found")

// ScorePattern matches the score entry of a compressed MuseScore file.
const ScorePattern = "*.mscx"

// Archive is a compressed MuseScore file opened for reading. Entries written
// with Create are kept in memory until Commit rewrites the file.
type Archive struct {
	path    string
	rc      *zip.ReadCloser
	pending map[string]*bytes.Buffer
	added   []string
}

// Open opens the archive at path.
func Open(path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("mscz: couldn't open %q: %w", path, err)
	}
	return &Archive{
		path:    path,
		rc:      rc,
		pending: map[string]*bytes.Buffer{},
	}, nil
}

// Path returns the archive location.
func (a *Archive) Path() string {
	return a.path
}

// Glob returns the names of the entries matching pattern, in archive order.
func (a *Archive) Glob(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("mscz: invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	var names []string
	for _, f := range a.rc.File {
		ok, err := doublestar.Match(pattern, f.Name)
		if err != nil {
			return nil, fmt.Errorf("mscz: couldn't match %q: %w", pattern, err)
		}
		if ok {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

// Score returns the name of the first score entry.
func (a *Archive) Score() (string, error) {
	names, err := a.Glob(ScorePattern)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("mscz: %s entry in %q: %w", ScorePattern, a.path, ErrNotFound)
	}
	return names[0], nil
}

// Open returns a reader for the named entry. Uncommitted writes are visible.
func (a *Archive) Open(name string) (io.ReadCloser, error) {
	if buf, ok := a.pending[name]; ok {
		return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
	}
	for _, f := range a.rc.File {
		if f.Name != name {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("mscz: couldn't open entry %q: %w", name, err)
		}
		return r, nil
	}
	return nil, fmt.Errorf("mscz: entry %q: %w", name, ErrNotFound)
}

// Create returns a writer that replaces the named entry on Commit.
func (a *Archive) Create(name string) io.Writer {
	buf := &bytes.Buffer{}
	if _, ok := a.pending[name]; !ok && !a.has(name) {
		a.added = append(a.added, name)
	}
	a.pending[name] = buf
	return buf
}

func (a *Archive) has(name string) bool {
	for _, f := range a.rc.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Commit rewrites the archive with the pending entries. Other entries are
// copied unchanged.
func (a *Archive) Commit() error {
	if len(a.pending) == 0 {
		return nil
	}

	// Write to a temporary file and move it over the original
	tmp := a.path + ".tmp"
	if err := a.write(tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	err := a.rc.Close()
	a.rc = nil
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("mscz: couldn't close %q: %w", a.path, err)
	}
	if err := os.Rename(tmp, a.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("mscz: couldn't rename temporary file: %w", err)
	}
	rc, err := zip.OpenReader(a.path)
	if err != nil {
		return fmt.Errorf("mscz: couldn't reopen %q: %w", a.path, err)
	}
	a.rc = rc
	a.pending = map[string]*bytes.Buffer{}
	a.added = nil
	return nil
}

func (a *Archive) write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mscz: couldn't create %q: %w", path, err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	now := time.Now()
	for _, entry := range a.rc.File {
		hdr := &zip.FileHeader{
			Name:     entry.Name,
			Comment:  entry.Comment,
			Method:   entry.Method,
			Modified: entry.Modified,
		}
		buf, replaced := a.pending[entry.Name]
		if replaced {
			hdr.Method = zip.Deflate
			hdr.Modified = now
		}
		dst, err := w.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("mscz: couldn't create entry %q: %w", entry.Name, err)
		}
		if replaced {
			if _, err := dst.Write(buf.Bytes()); err != nil {
				return fmt.Errorf("mscz: couldn't write entry %q: %w", entry.Name, err)
			}
			continue
		}
		if err := copyEntry(dst, entry); err != nil {
			return err
		}
	}
	for _, name := range a.added {
		dst, err := w.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: now})
		if err != nil {
			return fmt.Errorf("mscz: couldn't create entry %q: %w", name, err)
		}
		if _, err := dst.Write(a.pending[name].Bytes()); err != nil {
			return fmt.Errorf("mscz: couldn't write entry %q: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mscz: couldn't finish %q: %w", path, err)
	}
	return f.Close()
}

func copyEntry(dst io.Writer, entry *zip.File) error {
	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("mscz: couldn't open entry %q: %w", entry.Name, err)
	}
	defer src.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("mscz: couldn't copy entry %q: %w", entry.Name, err)
	}
	return nil
}

// Close releases the archive. Pending entries that weren't committed are lost.
// Closing a closed archive is a no-op.
func (a *Archive) Close() error {
	if a.rc == nil {
		return nil
	}
	err := a.rc.Close()
	a.rc = nil
	return err
}

// Copy copies the archive at src to dst, truncating dst if it exists.
func Copy(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("mscz: couldn't open %q: %w", src, err)
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("mscz: couldn't create %q: %w", dst, err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("mscz: couldn't copy %q to %q: %w", src, dst, err)
	}
	return dstFile.Close()
}
