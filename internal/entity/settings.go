package entity

// OutputMode enumerates the output materialization strategies a scan may
// apply to a gallery. More than one may be active at once.
type OutputMode string

const (
	OutputModeZip        OutputMode = "zip"
	OutputModeFolderCopy OutputMode = "foldercopy"
)

// ArchiveExtension is the file extension used when writing gallery zips.
type ArchiveExtension string

const (
	ArchiveExtensionZip ArchiveExtension = "zip"
	ArchiveExtensionCbz ArchiveExtension = "cbz"
)

// Settings is the read-only configuration snapshot passed by reference into
// every Scan Engine component for the duration of one scan.
type Settings struct {
	ZipGalleries                bool
	UpdateGalleryZips           bool
	ReplicateNesting            bool
	LeafOnly                    bool
	ConsiderImagesInSubfolders  bool
	OutputModes                 map[OutputMode]bool
	CopySidecars                bool
	LanraragiFlatten            bool
	ArchiveExtensionForGalleries ArchiveExtension
	DuplicatesEnabled           bool
	MinImagesToBeGallery        int
	ArchiveExtensions           map[string]bool
	ImageExtensions             map[string]bool
	SidecarExtensions           map[string]bool
	AutoScanEnabled             bool
	AutoScanIntervalMinutes     int
	UseHardlinks                bool
}

// HasOutputMode reports whether mode is one of the active output modes.
func (s Settings) HasOutputMode(mode OutputMode) bool {
	return s.OutputModes[mode]
}

// ProcessGalleries reports whether galleries should be discovered/planned
// at all: true when ZipGalleries is set or foldercopy is an active output
// mode.
func (s Settings) ProcessGalleries() bool {
	return s.ZipGalleries || s.HasOutputMode(OutputModeFolderCopy)
}

// NewDefaultSettings returns the built-in defaults as a Settings value.
// Callers override fields from a loaded config file or CLI flags
// (internal/config).
func NewDefaultSettings() Settings {
	return Settings{
		ZipGalleries:                true,
		UpdateGalleryZips:           false,
		ReplicateNesting:            true,
		LeafOnly:                    true,
		ConsiderImagesInSubfolders:  false,
		OutputModes:                 map[OutputMode]bool{OutputModeZip: true},
		CopySidecars:                false,
		LanraragiFlatten:            false,
		ArchiveExtensionForGalleries: ArchiveExtensionZip,
		DuplicatesEnabled:           true,
		MinImagesToBeGallery:        3,
		ArchiveExtensions:           toSet("zip", "cbz"),
		ImageExtensions:             toSet("jpg", "jpeg", "png", "webp", "gif", "bmp", "jfif"),
		SidecarExtensions:           toSet("txt", "json", "xml", "nfo"),
		AutoScanEnabled:             true,
		AutoScanIntervalMinutes:     30,
		UseHardlinks:                false,
	}
}

func toSet(values ...string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// ScanMode restricts a Source to archives, folders, or both.
type ScanMode string

const (
	ScanModeBoth          ScanMode = "both"
	ScanModeArchivesOnly  ScanMode = "archives_only"
	ScanModeFoldersOnly   ScanMode = "folders_only"
)

// Source is one read-only root under data_root that the scan walks.
type Source struct {
	ID       string
	Name     string
	Path     string // relative to data_root, never containing ".."
	Enabled  bool
	ScanMode ScanMode
}

// Exclusion is a source-root-relative path; any descendant of it is skipped
// during planning.
type Exclusion struct {
	Path string
}

// Roots is the set of configured data/output locations a scan needs.
type Roots struct {
	DataRoot           string
	OutputRoot         string
	ConfigRoot         string
	DuplicatesRoot     string
	TmpRoot            string
	TempDir            string // optional fallback override of TmpRoot
	AllowedBrowseRoots []string
}
