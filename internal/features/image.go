package features

import (
	"math"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

// ImageConfig sets the target resolution. ColumnMajor emits pixels column by
// column so each column of Height values is one frame for a sequence model.
type ImageConfig struct {
	Width       int  `yaml:"width"`
	Height      int  `yaml:"height"`
	Invert      bool `yaml:"invert"`
	ColumnMajor bool `yaml:"column_major"`
}

// ImageExtractor resamples grayscale grids with an area-averaging box filter.
type ImageExtractor struct {
	cfg ImageConfig
}

func NewImageExtractor(cfg ImageConfig) (*ImageExtractor, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.Errorf("image: target resolution %dx%d must be positive", cfg.Width, cfg.Height)
	}
	return &ImageExtractor{cfg: cfg}, nil
}

func (ie *ImageExtractor) Name() string { return "image" }

func (ie *ImageExtractor) Dim() int { return ie.cfg.Width * ie.cfg.Height }

// FrameDim is the length of one frame: a column when ColumnMajor, else a row.
func (ie *ImageExtractor) FrameDim() int {
	if ie.cfg.ColumnMajor {
		return ie.cfg.Height
	}
	return ie.cfg.Width
}

func (ie *ImageExtractor) Extract(s data.Sample) (Vector, error) {
	img, ok := s.Raw.(data.Image)
	if !ok {
		return nil, mlerr.InvalidSample(s.ID, "expected image, got %T", s.Raw)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return nil, mlerr.InvalidSample(s.ID, "empty image %dx%d", img.Width, img.Height)
	}
	if len(img.Pixels) != img.Width*img.Height {
		return nil, mlerr.InvalidSample(s.ID, "%d pixels for a %dx%d image", len(img.Pixels), img.Width, img.Height)
	}
	for _, p := range img.Pixels {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, mlerr.InvalidSample(s.ID, "pixel value %v outside [0, 1]", p)
		}
	}

	wx := boxWeights(img.Width, ie.cfg.Width)
	wy := boxWeights(img.Height, ie.cfg.Height)

	out := make(Vector, ie.Dim())
	for ty := 0; ty < ie.cfg.Height; ty++ {
		for tx := 0; tx < ie.cfg.Width; tx++ {
			sum, area := 0.0, 0.0
			for _, y := range wy[ty] {
				for _, x := range wx[tx] {
					w := y.weight * x.weight
					sum += w * img.At(x.index, y.index)
					area += w
				}
			}
			v := sum / area
			if ie.cfg.Invert {
				v = 1 - v
			}
			if ie.cfg.ColumnMajor {
				out[tx*ie.cfg.Height+ty] = v
			} else {
				out[ty*ie.cfg.Width+tx] = v
			}
		}
	}
	return out, nil
}

type tap struct {
	index  int
	weight float64
}

// boxWeights returns, for every target cell, the source cells it overlaps and
// the overlap length.
func boxWeights(src, dst int) [][]tap {
	scale := float64(src) / float64(dst)
	out := make([][]tap, dst)
	for t := 0; t < dst; t++ {
		lo := float64(t) * scale
		hi := float64(t+1) * scale
		for i := int(math.Floor(lo)); i < src && float64(i) < hi; i++ {
			w := math.Min(hi, float64(i+1)) - math.Max(lo, float64(i))
			if w > 0 {
				out[t] = append(out[t], tap{index: i, weight: w})
			}
		}
	}
	return out
}
