package project

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/abworrall/panostitch/pkg/compose"
	"github.com/abworrall/panostitch/pkg/pano"
	"github.com/abworrall/panostitch/pkg/remap"
	"github.com/abworrall/panostitch/pkg/roi"
)

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}

func WriteTIFF(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate})
	}
}

// WriteHDR writes a Radiance RGBE file, keeping the full dynamic range.
func WriteHDR(img hdr.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return rgbe.Encode(writer, img)
	}
}

// WritePreview writes a PNG scaled down to the given width.
func WritePreview(img image.Image, filename string, width int) error {
	b := img.Bounds()
	if width <= 0 || b.Dx() == 0 {
		return fmt.Errorf("preview of %v at width %d: %w", b, width, pano.ErrUnsupported)
	}
	height := (b.Dy()*width + b.Dx()/2) / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewNRGBA64(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return WritePNG(dst, filename)
}

// WriteImage picks the format from the file extension. PNG and TIFF get
// 16 bits per channel with the mask as alpha; HDR has no alpha, so
// uncovered pixels keep whatever colour they had.
func WriteImage(img *pano.Image, alpha *pano.Mask, filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return WritePNG(img.ToNRGBA64(alpha), filename)
	case ".tif", ".tiff":
		return WriteTIFF(img.ToNRGBA64(alpha), filename)
	case ".hdr":
		return WriteHDR(img.ZeroOrigin(), filename)
	}
	return fmt.Errorf("output '%s': unknown format: %w", filename, pano.ErrUnsupported)
}

// WriteCanvas writes the stitched panorama, and the preview if asked for.
func (o OutputConfig) WriteCanvas(acc *compose.Accumulator) error {
	img, alpha := acc.Image, acc.Alpha
	if o.CropToROI {
		if acc.Empty() {
			return fmt.Errorf("nothing was stitched, so there is nothing to crop to")
		}
		img, alpha = img.Crop(acc.ROI), alpha.Crop(acc.ROI)
	}

	if err := WriteImage(img, alpha, o.Filename); err != nil {
		return err
	}
	log.Printf("wrote %s (%s)\n", o.Filename, img.Rect)

	if o.PreviewWidth > 0 {
		preview := previewName(o.Filename)
		toned, err := Tonemap(o.Tonemapper, img, alpha)
		if err != nil {
			return err
		}
		if err := WritePreview(toned, preview, o.PreviewWidth); err != nil {
			return err
		}
		log.Printf("wrote %s\n", preview)
	}
	return nil
}

func previewName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + "-preview.png"
}

// indexedName turns pano.tif into pano-0003.tif.
func indexedName(filename string, i int) string {
	ext := filepath.Ext(filename)
	return fmt.Sprintf("%s-%04d%s", strings.TrimSuffix(filename, ext), i, ext)
}

// PerImageWriter returns an Emit func for compose.PerImage, writing each
// remapped image cropped to its own footprint.
func (o OutputConfig) PerImageWriter() func(int, *remap.Remapped) error {
	return func(i int, r *remap.Remapped) error {
		filename := indexedName(o.Filename, i)
		if err := WriteImage(r.Image, r.Alpha, filename); err != nil {
			return err
		}
		log.Printf("wrote %s (%s at %s)\n", filename, r.Name, r.ROI)
		return nil
	}
}

// WriteLayers writes each layer at the full size of the canvas, so they
// line up when stacked in an image editor.
func (o OutputConfig) WriteLayers(layers []*remap.Remapped, canvas roi.Rect) error {
	for i, r := range layers {
		img, err := pano.NewImage(canvas)
		if err != nil {
			return err
		}
		alpha, err := pano.NewMask(canvas)
		if err != nil {
			return err
		}
		if area := r.ROI.Intersect(canvas); !area.Empty() {
			for y := area.Top; y < area.Bottom; y++ {
				for x := area.Left; x < area.Right; x++ {
					if r.Alpha.Valid(x, y) {
						img.SetRGB(x, y, r.Image.RGBAt(x, y))
						alpha.Set(x, y, true)
					}
				}
			}
		}

		filename := indexedName(o.Filename, i)
		if err := WriteImage(img, alpha, filename); err != nil {
			return err
		}
		log.Printf("wrote layer %s (%s)\n", filename, r.Name)
	}
	return nil
}
