// Package workspace materializes a session's working directory from a
// source path: a plain directory tree, a .zip archive, or a .tar.gz/.tgz
// archive.
package workspace

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JhihJian/SUMM-Daemon/internal/protocol"
)

// Materialize populates dstDir (the session's workspace/ directory)
// from source. source may be a directory, a .zip file, or a
// .tar.gz/.tgz file; anything else fails with E001. Callers are
// responsible for removing dstDir on error — a failed extraction can
// leave a partial tree behind.
func Materialize(source, dstDir string) error {
	info, err := os.Stat(source)
	if err != nil {
		return protocol.NewError(protocol.ErrInitSource, fmt.Sprintf("initialization source %q: %v", source, err))
	}

	switch {
	case info.IsDir():
		return copyDir(source, dstDir)
	case strings.HasSuffix(source, ".zip"):
		return extractZip(source, dstDir)
	case strings.HasSuffix(source, ".tar.gz") || strings.HasSuffix(source, ".tgz"):
		return extractTarGz(source, dstDir)
	default:
		return protocol.NewError(protocol.ErrInitSource, fmt.Sprintf("unsupported initialization source %q", source))
	}
}

// copyDir recursively copies regular files and directories from src
// into dst, skipping symlinks and other non-regular entries.
func copyDir(src, dst string) error {
	return copyDirRecursive(src, dst, "")
}

func copyDirRecursive(srcBase, dstBase, rel string) error {
	srcPath := srcBase
	if rel != "" {
		srcPath = filepath.Join(srcBase, rel)
	}

	entries, err := os.ReadDir(srcPath)
	if err != nil {
		return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("reading %q: %v", srcPath, err))
	}

	for _, entry := range entries {
		entryRel := entry.Name()
		if rel != "" {
			entryRel = filepath.Join(rel, entry.Name())
		}

		entryInfo, err := entry.Info()
		if err != nil {
			return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("stat %q: %v", entryRel, err))
		}
		if entryInfo.Mode()&os.ModeSymlink != 0 || !(entryInfo.Mode().IsRegular() || entry.IsDir()) {
			continue
		}

		if entry.IsDir() {
			dstSubDir := filepath.Join(dstBase, entryRel)
			if err := os.MkdirAll(dstSubDir, 0o755); err != nil {
				return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("creating %q: %v", dstSubDir, err))
			}
			if err := copyDirRecursive(srcBase, dstBase, entryRel); err != nil {
				return err
			}
			continue
		}

		if err := copyFile(filepath.Join(srcBase, entryRel), filepath.Join(dstBase, entryRel), entryInfo.Mode()); err != nil {
			return protocol.NewError(protocol.ErrArchiveExtraction, err.Error())
		}
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating parent for %q: %w", dst, err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %q: %w", src, err)
	}
	defer srcFile.Close() //nolint:errcheck // read-only file

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating %q: %w", dst, err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close() //nolint:errcheck
		return fmt.Errorf("copying %q to %q: %w", src, dst, err)
	}
	return dstFile.Close()
}

// extractZip unpacks a .zip archive into dst.
func extractZip(archivePath, dst string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("opening %q: %v", archivePath, err))
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		target, err := safeJoin(dst, f.Name)
		if err != nil {
			return protocol.NewError(protocol.ErrArchiveExtraction, err.Error())
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("creating %q: %v", target, err))
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("creating parent for %q: %v", target, err))
		}

		rc, err := f.Open()
		if err != nil {
			return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("opening %q in archive: %v", f.Name, err))
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
		if err != nil {
			rc.Close() //nolint:errcheck
			return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("creating %q: %v", target, err))
		}
		_, copyErr := io.Copy(out, rc)
		rc.Close() //nolint:errcheck
		closeErr := out.Close()
		if copyErr != nil {
			return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("extracting %q: %v", f.Name, copyErr))
		}
		if closeErr != nil {
			return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("closing %q: %v", target, closeErr))
		}
	}
	return nil
}

// extractTarGz unpacks a .tar.gz/.tgz archive into dst.
func extractTarGz(archivePath, dst string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("opening %q: %v", archivePath, err))
	}
	defer f.Close() //nolint:errcheck

	gz, err := gzip.NewReader(f)
	if err != nil {
		return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("reading gzip stream of %q: %v", archivePath, err))
	}
	defer gz.Close() //nolint:errcheck

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("reading tar stream: %v", err))
		}

		target, err := safeJoin(dst, hdr.Name)
		if err != nil {
			return protocol.NewError(protocol.ErrArchiveExtraction, err.Error())
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("creating %q: %v", target, err))
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("creating parent for %q: %v", target, err))
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("creating %q: %v", target, err))
			}
			_, copyErr := io.Copy(out, tr) //nolint:gosec // size bounded by archive reader, not attacker-controlled in this deployment model
			closeErr := out.Close()
			if copyErr != nil {
				return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("extracting %q: %v", hdr.Name, copyErr))
			}
			if closeErr != nil {
				return protocol.NewError(protocol.ErrArchiveExtraction, fmt.Sprintf("closing %q: %v", target, closeErr))
			}
		default:
			// Skip symlinks, devices, and other non-regular entries.
		}
	}
}

// safeJoin joins an archive-relative name onto base, rejecting any
// entry that would escape base via ".." path segments.
func safeJoin(base, name string) (string, error) {
	target := filepath.Join(base, name)
	if !strings.HasPrefix(target, filepath.Clean(base)+string(os.PathSeparator)) && target != filepath.Clean(base) {
		return "", fmt.Errorf("archive entry %q escapes destination directory", name)
	}
	return target, nil
}
