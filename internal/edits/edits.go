// Package edits holds the pixel transformations behind the editing menu.
// Every function takes an image and returns a new one, leaving the input
// untouched. Callers record the result in the session history themselves.
package edits

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/histogram"
	"github.com/disintegration/imaging"
)

// History descriptions shown for each confirmed edit.
const (
	DescriptionCrop     = "Crop and rotate."
	DescriptionLighting = "Adjust Lighting"
	DescriptionColors   = "Adjust Colors"
	DescriptionLevels   = "Adjust Levels"
	DescriptionSharpen  = "Sharpness"
	DescriptionDenoise  = "De-Noise"
)

// sharpenRadius is the unsharp mask blur radius. The menu exposes a single
// strength slider, so the radius stays fixed.
const sharpenRadius = 1.0

// Crop cuts the image down to rect, clamped to the image bounds.
func Crop(img image.Image, rect image.Rectangle) image.Image {
	return imaging.Crop(img, rect)
}

// Rotate turns the image counter-clockwise by the given angle in degrees.
// Corners exposed by non-right angles are filled with transparency.
func Rotate(img image.Image, degrees float64) image.Image {
	return imaging.Rotate(img, degrees, color.Transparent)
}

// AdjustLighting changes brightness and contrast, both in percent from
// -100 to 100 where 0 leaves the channel untouched.
func AdjustLighting(img image.Image, brightness, contrast float64) image.Image {
	out := imaging.AdjustBrightness(img, brightness)
	return imaging.AdjustContrast(out, contrast)
}

// AdjustColors changes saturation (-1 fully desaturates, 1 doubles) and
// shifts the hue by the given angle in degrees.
func AdjustColors(img image.Image, saturation float64, hue int) image.Image {
	out := adjust.Saturation(img, saturation)
	return adjust.Hue(out, hue)
}

// AdjustLevels remaps the channel range [black, white] to [0, 255] and then
// applies gamma correction. A degenerate range or non-positive gamma leaves
// that step out.
func AdjustLevels(img image.Image, black, white uint8, gamma float64) image.Image {
	span := float64(white) - float64(black)
	var out image.Image
	if span <= 0 {
		out = imaging.Clone(img)
	} else {
		out = imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			c.R = remapLevel(c.R, black, span)
			c.G = remapLevel(c.G, black, span)
			c.B = remapLevel(c.B, black, span)
			return c
		})
	}
	if gamma <= 0 || gamma == 1 {
		return out
	}
	return imaging.AdjustGamma(out, gamma)
}

func remapLevel(v, black uint8, span float64) uint8 {
	scaled := (float64(v) - float64(black)) * 255 / span
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled + 0.5)
}

// Sharpen applies an unsharp mask with the given strength.
func Sharpen(img image.Image, amount float64) image.Image {
	return effect.UnsharpMask(img, sharpenRadius, amount)
}

// Denoise runs a median filter over the given neighborhood size.
func Denoise(img image.Image, size float64) image.Image {
	return effect.Median(img, size)
}

// Histogram holds per-channel intensity counts with one bin per 8-bit level.
type Histogram struct {
	R, G, B []int
}

// HistogramOf counts the channel intensities of img.
func HistogramOf(img image.Image) Histogram {
	h := histogram.NewRGBAHistogram(img)
	return Histogram{
		R: append([]int(nil), h.R.Bins...),
		G: append([]int(nil), h.G.Bins...),
		B: append([]int(nil), h.B.Bins...),
	}
}
