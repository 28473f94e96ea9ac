package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/scrub/internal/errors"
)

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CopyFile copies src to dst, preserving the permission bits of src.
// dst is written to a temporary file first and renamed into place.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, dst)
}

// ResolvePath makes p absolute. Relative paths are taken relative to root.
func ResolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// RelativeToRepo returns p relative to root in slash form. p may be absolute
// or relative to root and does not need to exist. Paths that escape root,
// or name root itself, return ErrPathOutsideRepo.
func RelativeToRepo(root, p string) (string, error) {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("resolving repository root: %w", err)
	}

	abs := evalParent(ResolvePath(realRoot, p))

	rel, err := filepath.Rel(realRoot, abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", kerrors.ErrPathOutsideRepo, p)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", kerrors.ErrPathOutsideRepo, p)
	}

	return filepath.ToSlash(rel), nil
}

// evalParent resolves symlinks in the directory part of p, leaving the last
// element alone so p itself need not exist.
func evalParent(p string) string {
	dir, base := filepath.Split(p)
	if realDir, err := filepath.EvalSymlinks(dir); err == nil {
		return filepath.Join(realDir, base)
	}
	return filepath.Clean(p)
}
