package entity

// GallerySignature is the content-identity fingerprint of a gallery
// directory. Equality is exact on all three fields; mtime precision is
// whatever the filesystem reports and is never rounded.
type GallerySignature struct {
	ImageCount      int     `json:"image_count"`
	TotalImageBytes int64   `json:"total_image_bytes"`
	NewestMtime     float64 `json:"newest_mtime"`
}

// Equal compares two gallery signatures field by field.
func (s GallerySignature) Equal(other GallerySignature) bool {
	return s == other
}

// ArchiveSignature is the content-identity fingerprint of an archive file.
type ArchiveSignature struct {
	Size  int64   `json:"size"`
	Mtime float64 `json:"mtime"`
}

// Equal compares two archive signatures field by field.
func (s ArchiveSignature) Equal(other ArchiveSignature) bool {
	return s == other
}

// Signature is the sum type recorded in an ArchiveRecord: exactly one of
// Gallery or Archive is set, matching the record's Type.
type Signature struct {
	Gallery *GallerySignature `json:"gallery,omitempty"`
	Archive *ArchiveSignature `json:"archive,omitempty"`
}

// Equal reports whether two signatures carry the same populated variant
// with equal field values.
func (s Signature) Equal(other Signature) bool {
	switch {
	case s.Gallery != nil && other.Gallery != nil:
		return s.Gallery.Equal(*other.Gallery)
	case s.Archive != nil && other.Archive != nil:
		return s.Archive.Equal(*other.Archive)
	default:
		return false
	}
}

func NewGallerySignatureValue(sig GallerySignature) Signature {
	return Signature{Gallery: &sig}
}

func NewArchiveSignatureValue(sig ArchiveSignature) Signature {
	return Signature{Archive: &sig}
}
