// Package signature computes the content-identity fingerprints used to
// decide whether a gallery or archive has changed since it was last
// recorded.
package signature

import (
	"os"

	"github.com/galleryloom/gallerysync/internal/entity"
)

// Gallery computes a GallerySignature from the stat info of images. An
// empty slice yields the zero signature.
func Gallery(images []string) (entity.GallerySignature, error) {
	if len(images) == 0 {
		return entity.GallerySignature{}, nil
	}

	var totalBytes int64
	var newestMtime float64
	for _, path := range images {
		info, err := os.Stat(path)
		if err != nil {
			return entity.GallerySignature{}, err
		}
		totalBytes += info.Size()
		mtime := float64(info.ModTime().UnixNano()) / 1e9
		if mtime > newestMtime {
			newestMtime = mtime
		}
	}

	return entity.GallerySignature{
		ImageCount:      len(images),
		TotalImageBytes: totalBytes,
		NewestMtime:     newestMtime,
	}, nil
}

// Archive computes an ArchiveSignature from the stat info of path.
func Archive(path string) (entity.ArchiveSignature, error) {
	info, err := os.Stat(path)
	if err != nil {
		return entity.ArchiveSignature{}, err
	}
	return entity.ArchiveSignature{
		Size:  info.Size(),
		Mtime: float64(info.ModTime().UnixNano()) / 1e9,
	}, nil
}
