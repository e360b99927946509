package cmd

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/mj1618/rotator/internal/platform"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabeledRegion is a screen rectangle drawn with its label.
type LabeledRegion struct {
	Label  string
	Bounds platform.Bounds
}

// AnnotateRegions outlines each region that overlaps the capture and labels
// it. origin is the screen rectangle the image was captured from; region
// bounds are screen-absolute and are mapped with the ratio of image size
// to origin size, which absorbs display scaling.
func AnnotateRegions(img image.Image, origin platform.Bounds, regions []LabeledRegion) image.Image {
	rgba := ImageToRGBA(img)

	imgBounds := rgba.Bounds()
	scaleX, scaleY := 1.0, 1.0
	if origin.Width > 0 {
		scaleX = float64(imgBounds.Dx()) / float64(origin.Width)
	}
	if origin.Height > 0 {
		scaleY = float64(imgBounds.Dy()) / float64(origin.Height)
	}

	boxColor := color.RGBA{R: 255, G: 0, B: 0, A: 255}
	textColor := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor := color.RGBA{R: 0, G: 0, B: 0, A: 200}

	for _, r := range regions {
		x := imgBounds.Min.X + int(float64(r.Bounds.X-origin.X)*scaleX)
		y := imgBounds.Min.Y + int(float64(r.Bounds.Y-origin.Y)*scaleY)
		w := int(float64(r.Bounds.Width) * scaleX)
		h := int(float64(r.Bounds.Height) * scaleY)
		if !image.Rect(x, y, x+w, y+h).Overlaps(imgBounds) {
			continue
		}
		drawRectangle(rgba, x, y, x+w, y+h, boxColor)
		// Label sits just inside the top-left corner.
		drawTextWithOutline(rgba, r.Label, x+3+len(r.Label)*7/2, y+13, textColor, outlineColor)
	}
	return rgba
}

// ImageToRGBA converts any image to RGBA
func ImageToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

// isWithinBounds checks if a point is within the image bounds
func isWithinBounds(bounds image.Rectangle, x, y int) bool {
	return x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y
}

// drawRectangle draws a rectangle outline on the image
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	bounds := img.Bounds()

	// Clamp to image bounds
	if x1 < bounds.Min.X {
		x1 = bounds.Min.X
	}
	if y1 < bounds.Min.Y {
		y1 = bounds.Min.Y
	}
	if x2 > bounds.Max.X {
		x2 = bounds.Max.X
	}
	if y2 > bounds.Max.Y {
		y2 = bounds.Max.Y
	}

	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x < x2; x++ {
		if isWithinBounds(bounds, x, y1) {
			img.Set(x, y1, c)
		}
		if isWithinBounds(bounds, x, y2-1) {
			img.Set(x, y2-1, c)
		}
	}
	for y := y1; y < y2; y++ {
		if isWithinBounds(bounds, x1, y) {
			img.Set(x1, y, c)
		}
		if isWithinBounds(bounds, x2-1, y) {
			img.Set(x2-1, y, c)
		}
	}
}

// drawTextWithOutline draws text centered at (x, y) with a one-pixel outline.
// basicfont.Face7x13 glyphs are 7 pixels wide and 13 high.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, textColor, outlineColor color.Color) {
	offsetX := x - len(text)*7/2
	offsetY := y - 13/2

	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			d := &font.Drawer{
				Dst:  img,
				Src:  image.NewUniform(outlineColor),
				Face: basicfont.Face7x13,
				Dot:  fixed.P(offsetX+dx, offsetY+dy),
			}
			d.DrawString(text)
		}
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(offsetX, offsetY),
	}
	d.DrawString(text)
}
