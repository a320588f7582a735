package entity

// GalleryCandidate is a directory the classifier accepted as a gallery. It
// lives only for the duration of one scan.
type GalleryCandidate struct {
	// Path is the absolute filesystem path of the gallery directory.
	Path string
	// RelDir is Path relative to the source's data_root-joined base.
	RelDir string
	// Images are absolute paths to the gallery's image files, in the order
	// the walker yielded them (used verbatim as zip entry order).
	Images []string
	// Sidecars are absolute paths to sidecar files (.txt/.json/.xml/.nfo)
	// gathered alongside Images when Settings.CopySidecars is set.
	Sidecars []string
	Signature GallerySignature
	IsLeaf    bool
}

// ArchiveFile is an existing archive discovered directly under a source.
type ArchiveFile struct {
	Path   string // absolute path
	RelPath string // relative to data_root
}
