package geminstall

import "io/fs"

// FileEntry is one file carried by a package archive: a relative path, the
// permission mode to restore, and the file content.
type FileEntry struct {
	Path string
	Mode fs.FileMode
	Data []byte
}

// PackageArchive is a gem as read from disk: its specification plus the files
// to extract. Treated as read-only once obtained from an ArchiveReader.
//
// Source is the path of the archive file the package was read from; it is
// what the installer copies into the cache directory. It is empty for
// archives assembled in memory, in which case nothing is cached.
type PackageArchive struct {
	Spec   *Specification
	Files  []FileEntry
	Source string
}

// ArchiveReader decodes a package archive file. The archive format itself is
// outside this package; gemtar provides the standard implementation.
type ArchiveReader interface {
	ReadArchive(path string) (*PackageArchive, error)
}
