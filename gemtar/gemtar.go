// Package gemtar reads and writes the gem archive format used by the
// gem-install CLI: a gzip-compressed tar whose first entry is the TOML
// specification, followed by the package files under data/.
package gemtar

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"

	geminstall "github.com/contriboss/gem-install-go"
)

const (
	metadataName = "metadata.toml"
	dataPrefix   = "data/"
)

// Reader implements geminstall.ArchiveReader for gemtar archives.
type Reader struct{}

var _ geminstall.ArchiveReader = Reader{}

// ReadArchive implements geminstall.ArchiveReader.
func (Reader) ReadArchive(p string) (*geminstall.PackageArchive, error) {
	return Read(p)
}

// Read decodes the archive at path. The returned archive's Source is set to
// path so installers can cache the original file.
func Read(p string) (*geminstall.PackageArchive, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("malformed gem archive %s: %w", p, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	archive := &geminstall.PackageArchive{Source: p}

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed gem archive %s: %w", p, err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("malformed gem archive %s: %w", p, err)
		}

		name := path.Clean(header.Name)
		switch {
		case name == metadataName:
			var spec geminstall.Specification
			if err := toml.Unmarshal(data, &spec); err != nil {
				return nil, fmt.Errorf("malformed gem metadata in %s: %w", p, err)
			}
			archive.Spec = &spec
		case strings.HasPrefix(name, dataPrefix):
			archive.Files = append(archive.Files, geminstall.FileEntry{
				Path: strings.TrimPrefix(name, dataPrefix),
				Mode: fs.FileMode(header.Mode).Perm(),
				Data: data,
			})
		}
	}

	if archive.Spec == nil {
		return nil, fmt.Errorf("gem archive %s carries no %s entry", p, metadataName)
	}

	return archive, nil
}

// Write encodes archive into a gemtar file at path.
func Write(p string, archive *geminstall.PackageArchive) error {
	if archive.Spec == nil {
		return fmt.Errorf("cannot write gem archive without a specification")
	}

	meta, err := toml.Marshal(archive.Spec)
	if err != nil {
		return fmt.Errorf("failed to encode gem metadata: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	if err := writeEntry(tw, metadataName, 0o644, meta); err != nil {
		return err
	}

	for _, entry := range archive.Files {
		mode := entry.Mode.Perm()
		if mode == 0 {
			mode = 0o644
		}
		name := dataPrefix + path.Clean(strings.ReplaceAll(entry.Path, "\\", "/"))
		if err := writeEntry(tw, name, mode, entry.Data); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return f.Close()
}

func writeEntry(tw *tar.Writer, name string, mode fs.FileMode, data []byte) error {
	header := &tar.Header{
		Name:     name,
		Mode:     int64(mode),
		Size:     int64(len(data)),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err := tw.Write(data)
	return err
}
