// Package avatar normalizes uploaded profile pictures.
package avatar

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// MaxDimension is the pixel bound for stored avatars. Images already within
// the bound are left untouched.
const MaxDimension = 100

// Normalize shrinks the image at path in place so that its longest side is at
// most MaxDimension, preserving aspect ratio. It operates on the already
// persisted file and is idempotent: a second call is a no-op.
func Normalize(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("open avatar: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= MaxDimension && bounds.Dy() <= MaxDimension {
		return nil
	}

	thumb := imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	if err := imaging.Save(thumb, path); err != nil {
		return fmt.Errorf("save avatar: %w", err)
	}
	return nil
}
