package pipeline

import (
	"archive/tar"
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/cruciblehq/provision/internal/target"
)

// Copies a host directory tree into the target at dest.
//
// The tree is streamed as a tar archive rooted at the base name of dest and
// extracted into the parent of dest, which must already exist. Entries are
// written in lexical order with root ownership, so the same tree always
// produces the same archive.
func copyTree(ctx context.Context, t target.Target, hostDir, dest string) error {
	info, err := os.Stat(hostDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "copy", Path: hostDir, Err: os.ErrInvalid}
	}

	slog.Debug("copy", "src", hostDir, "dest", dest)

	pr, pw := io.Pipe()

	go func() {
		tw := tar.NewWriter(pw)
		writeErr := writeDirToTar(tw, hostDir, path.Base(dest))
		if closeErr := tw.Close(); writeErr == nil {
			writeErr = closeErr
		}
		pw.CloseWithError(writeErr)
	}()

	err = t.CopyTo(ctx, pr, path.Dir(dest))

	// Unblock the writer if the target stopped reading early.
	pr.CloseWithError(io.ErrClosedPipe)

	return err
}

// Writes a directory tree to a tar writer rooted at the given archive prefix.
func writeDirToTar(tw *tar.Writer, hostDir, prefix string) error {
	return filepath.WalkDir(hostDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(hostDir, p)
		if err != nil {
			return err
		}

		archivePath := filepath.ToSlash(filepath.Join(prefix, relPath))
		return writeTarEntry(tw, p, archivePath, d)
	})
}

// Writes a single file, directory or symlink entry to a tar writer.
func writeTarEntry(tw *tar.Writer, hostPath, archivePath string, d os.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	var link string
	if info.Mode()&os.ModeSymlink != 0 {
		if link, err = os.Readlink(hostPath); err != nil {
			return err
		}
	}

	header, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}
	header.Name = archivePath
	if info.IsDir() {
		header.Name += "/"
	}
	header.Uid, header.Gid = 0, 0
	header.Uname, header.Gname = "", ""

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	if info.Mode().IsRegular() {
		f, err := os.Open(hostPath)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	}

	return nil
}
