package project

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io/ioutil"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/tiff"
	"golang.org/x/sync/errgroup"

	"github.com/abworrall/panostitch/pkg/compose"
	"github.com/abworrall/panostitch/pkg/pano"
	"github.com/abworrall/panostitch/pkg/ptransform"
)

// LoadFilesAndDirs walks the args: a .yaml file becomes the config, image
// files not already in the config get appended to it, and directories are
// walked.
func (c *Config) LoadFilesAndDirs(args ...string) error {
	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {
		case err != nil:
			return fmt.Errorf("load %s: %v", arg, err)

		case item.IsDir():
			contents, err := ioutil.ReadDir(arg)
			if err != nil {
				return fmt.Errorf("readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				if err := c.LoadFilesAndDirs(filepath.Join(arg, content.Name())); err != nil {
					return err
				}
			}

		case strings.ToLower(filepath.Ext(arg)) == ".yaml":
			loaded, err := LoadConfig(arg)
			if err != nil {
				return err
			}
			for _, ic := range c.Images {
				if !loaded.hasImage(ic.Filename) {
					loaded.Images = append(loaded.Images, ic)
				}
			}
			*c = loaded
			log.Printf("Loaded base configuration from %s\n", arg)

		case isImageFile(arg):
			abs, err := filepath.Abs(arg)
			if err != nil {
				return fmt.Errorf("load %s: %v", arg, err)
			}
			if !c.hasImage(abs) {
				c.Images = append(c.Images, ImageConfig{Filename: abs})
			}
		}
	}
	return nil
}

func isImageFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff", ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

func (c *Config) hasImage(filename string) bool {
	for _, ic := range c.Images {
		if sameFile(c.path(ic.Filename), filename) {
			return true
		}
	}
	return false
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func (c *Config) path(filename string) string {
	if filepath.IsAbs(filename) || c.BaseDir == "" {
		return filename
	}
	return filepath.Join(c.BaseDir, filename)
}

// LoadInputs decodes every image in the config, concurrently, and builds
// the engine inputs. The first failure cancels the rest.
func (c *Config) LoadInputs(ctx context.Context) ([]compose.Input, error) {
	inputs := make([]compose.Input, len(c.Images))
	group, ctx := errgroup.WithContext(ctx)

	for i, ic := range c.Images {
		i, ic := i, ic
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			in, err := c.loadInput(ic)
			if err != nil {
				return err
			}
			inputs[i] = in
			if c.Verbosity > 0 {
				log.Printf("loaded %s\n", in.Desc)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}

func (c *Config) loadInput(ic ImageConfig) (compose.Input, error) {
	filename := c.path(ic.Filename)
	img, err := loadImage(filename)
	if err != nil {
		return compose.Input{}, err
	}
	src, err := pano.NewSource(img)
	if err != nil {
		return compose.Input{}, fmt.Errorf("image %s: %w", filename, err)
	}

	in := compose.Input{Source: src}
	if len(ic.Offset) == 2 {
		in.Mapper = ptransform.Placement(ic.Offset[0], ic.Offset[1])
	} else if len(ic.Offset) != 0 {
		return in, fmt.Errorf("image %s offset %v wants x,y: %w", filename, ic.Offset, pano.ErrUnsupported)
	} else if ic.HFOV == 0 {
		if ic.HFOV, err = hfovFromExif(filename); err != nil {
			return in, err
		}
	}

	if in.Desc, err = ic.Descriptor(src.Width(), src.Height()); err != nil {
		return in, err
	}
	return in, nil
}

func loadImage(filename string) (image.Image, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open+r img '%s': %v", filename, err)
	}
	defer reader.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff":
		img, err = tiff.Decode(reader)
	case ".png":
		img, err = png.Decode(reader)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(reader)
	default:
		return nil, fmt.Errorf("image '%s': unknown format: %w", filename, pano.ErrUnsupported)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding '%s': %v", filename, err)
	}
	return img, nil
}

// hfovFromExif works out the horizontal field of view from the 35mm
// equivalent focal length, assuming a landscape frame.
func hfovFromExif(filename string) (float64, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("open+r exif '%s': %v", filename, err)
	}
	defer reader.Close()

	ex, err := exif.Decode(reader)
	if err != nil {
		return 0, fmt.Errorf("exif parsing '%s' (set hfov in the config instead): %v", filename, err)
	}
	tag, err := ex.Get(exif.FocalLengthIn35mmFilm)
	if err != nil {
		return 0, fmt.Errorf("exif FocalLengthIn35mmFilm '%s': %v", filename, err)
	}
	f, err := tag.Int(0)
	if err != nil {
		return 0, fmt.Errorf("exif FocalLengthIn35mmFilm '%s': %v", filename, err)
	}
	return hfovFor35mm(float64(f))
}

func hfovFor35mm(focalLength float64) (float64, error) {
	if focalLength <= 0 {
		return 0, fmt.Errorf("focal length %.1fmm: %w", focalLength, pano.ErrUnsupported)
	}
	return 2 * math.Atan(36/(2*focalLength)) * 180 / math.Pi, nil
}
