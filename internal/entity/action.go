package entity

// ActionKind is the operation a PlanAction instructs the Executor to run.
type ActionKind string

const (
	ActionCopyArchive    ActionKind = "copy_archive"
	ActionZipGallery     ActionKind = "zip_gallery"
	ActionOverwriteZip   ActionKind = "overwrite_zip"
	ActionFolderCopy     ActionKind = "foldercopy_gallery"
	ActionEnsureOutputDir ActionKind = "ensure_output_dir"
	ActionScanGallery    ActionKind = "scan_gallery"
)

// ItemType is the kind of source item a PlanAction was derived from.
type ItemType string

const (
	ItemTypeArchive   ItemType = "archive"
	ItemTypeGallery   ItemType = "gallery"
	ItemTypeContainer ItemType = "container"
)

// Decision is the Planner's verdict for one candidate item.
type Decision string

const (
	DecisionCopy           Decision = "COPY"
	DecisionZip            Decision = "ZIP"
	DecisionUpdate         Decision = "UPDATE"
	DecisionFolderCopy     Decision = "FOLDERCOPY"
	DecisionCopyDuplicate  Decision = "COPY_DUPLICATE"
	DecisionRename         Decision = "RENAME"
	DecisionEnsureDir      Decision = "ENSURE_DIR"
	DecisionSkip           Decision = "SKIP"
)

// ReasonCode is the enumerated explanation attached to a Decision.
type ReasonCode string

const (
	ReasonSkipExistingUnchanged      ReasonCode = "SKIP_EXISTING_UNCHANGED"
	ReasonSkipDuplicateSameSize      ReasonCode = "SKIP_DUPLICATE_SAME_SIZE"
	ReasonSkipDuplicateSameSignature ReasonCode = "SKIP_DUPLICATE_SAME_SIGNATURE"
	ReasonSkipOutputConflict         ReasonCode = "SKIP_OUTPUT_CONFLICT"
	ReasonSkipNoImages               ReasonCode = "SKIP_NO_IMAGES"
	ReasonSkipBelowMinImages         ReasonCode = "SKIP_BELOW_MIN_IMAGES"
)

// skipExistingReasons is the subset of reason codes that count toward
// ScanSummary.SkippedExisting.
var skipExistingReasons = map[ReasonCode]bool{
	ReasonSkipExistingUnchanged:      true,
	ReasonSkipDuplicateSameSignature: true,
	ReasonSkipDuplicateSameSize:      true,
}

// PlanAction is one emitted decision from the Planner.
type PlanAction struct {
	Action         ActionKind
	Type           ItemType
	Decision       Decision
	ReasonCode     ReasonCode
	SourcePath     string
	TargetPath     string
	VirtualTarget  string
	RelativeSource string
	Signature      *Signature
	Similarity     *float64
	Bytes          *int64
	// Images is the exact, filtered image file list the Planner computed
	// the gallery's signature from. The Executor materializes zips and
	// folder copies from this list rather than re-deriving it, so the
	// output always matches the decision it was planned against.
	Images   []string
	Sidecars []string
}

// ScanSummary aggregates counters over one scan.
type ScanSummary struct {
	Planned          int
	Skipped          int
	ArchivesToCopy   int
	GalleriesToZip   int
	Duplicates       int
	Overwrites       int
	SkippedExisting  int
	ReasonCounts     map[ReasonCode]int
}

func NewScanSummary() *ScanSummary {
	return &ScanSummary{ReasonCounts: make(map[ReasonCode]int)}
}

// Register folds action into the summary's counters.
func (s *ScanSummary) Register(a PlanAction) {
	if a.ReasonCode != "" {
		s.ReasonCounts[a.ReasonCode]++
		if skipExistingReasons[a.ReasonCode] {
			s.SkippedExisting++
		}
	}

	if a.Decision == DecisionSkip {
		s.Skipped++
	} else {
		s.Planned++
	}

	if a.Type == ItemTypeArchive && a.Decision != DecisionSkip && a.Decision != DecisionEnsureDir {
		s.ArchivesToCopy++
	}
	if a.Type == ItemTypeGallery &&
		(a.Action == ActionZipGallery || a.Action == ActionOverwriteZip) &&
		(a.Decision == DecisionZip || a.Decision == DecisionUpdate) {
		s.GalleriesToZip++
	}
	if a.Decision == DecisionRename || a.Decision == DecisionCopyDuplicate {
		s.Duplicates++
	}
	if a.Decision == DecisionUpdate {
		s.Overwrites++
	}
}

// ScanResult bundles a scan's summary counters with the full action list.
type ScanResult struct {
	Summary *ScanSummary
	Actions []PlanAction
}
