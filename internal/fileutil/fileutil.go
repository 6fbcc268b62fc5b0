package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrTooLarge reports that a stream exceeded the permitted size.
var ErrTooLarge = errors.New("content exceeds size limit")

// WriteLimited streams r into a new file at dst with mode 0o600. When limit is
// positive and r yields more than limit bytes, dst is removed and ErrTooLarge
// is returned. dst must not already exist.
func WriteLimited(dst string, r io.Reader, limit int64) (int64, error) {
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, err
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	written, err := io.Copy(out, src)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil && limit > 0 && written > limit {
		err = fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	if err != nil {
		_ = os.Remove(dst)
		return written, err
	}
	return written, nil
}

// Readable reports an error unless path is a regular file the process can open.
func Readable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
