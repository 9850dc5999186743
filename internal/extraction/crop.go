package extraction

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/sunshineplan/imgconv"
)

// CropFile is the file name written inside each label directory.
const CropFile = "im.jpg"

// CropPath returns the crop location for label under dir.
func CropPath(dir string, label Label) string {
	return filepath.Join(dir, string(label), CropFile)
}

// Cropper writes one JPEG crop per detected label.
type Cropper struct {
	Quality int
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Crop writes the highest-confidence region of each known label to
// CropPath(outputDir, label), replacing any file already there. Labels with
// no region, and regions that fall outside the image, are absent from the
// returned map. Unknown labels are ignored.
func (c *Cropper) Crop(img image.Image, regions []Region, outputDir string) (map[Label]string, error) {
	best := make(map[Label]Region, len(Labels()))
	for _, r := range regions {
		if !r.Label.Valid() {
			continue
		}
		if cur, ok := best[r.Label]; !ok || r.Confidence > cur.Confidence {
			best[r.Label] = r
		}
	}

	paths := make(map[Label]string, len(best))
	for _, label := range Labels() {
		r, ok := best[label]
		if !ok {
			continue
		}

		box := r.Box.Canon().Intersect(img.Bounds())
		if box.Empty() {
			continue
		}

		path := CropPath(outputDir, label)
		if err := c.write(crop(img, box), path); err != nil {
			return nil, fmt.Errorf("crop %s: %w", label, err)
		}
		paths[label] = path
	}

	return paths, nil
}

func (c *Cropper) write(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	opt := &imgconv.FormatOption{
		Format:       imgconv.JPEG,
		EncodeOption: []imgconv.EncodeOption{imgconv.Quality(c.quality())},
	}
	if err := imgconv.Write(f, img, opt); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *Cropper) quality() int {
	if c.Quality <= 0 || c.Quality > 100 {
		return 95
	}
	return c.Quality
}

func crop(img image.Image, box image.Rectangle) image.Image {
	if s, ok := img.(subImager); ok {
		return s.SubImage(box)
	}

	out := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			out.Set(x-box.Min.X, y-box.Min.Y, img.At(x, y))
		}
	}
	return out
}
