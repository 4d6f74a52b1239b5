package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts the image operations used for debug previews.
type Renderer interface {
	// CreateCanvas returns a width x height canvas filled with bg.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// EncodeImage encodes img. quality only applies to JPEG; 0 selects
	// the encoder default.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// ResizeImage resizes an image to the specified dimensions with
	// nearest-neighbour sampling, so pixels stay visible in previews.
	ResizeImage(img image.Image, width, height int) image.Image
}

// Canvas is a drawing surface for one preview image.
type Canvas interface {
	// DrawImage draws an image at the specified position.
	DrawImage(img image.Image, x, y int)

	// DrawRect fills a w x h rectangle with its top-left corner at x, y.
	DrawRect(x, y, w, h int, c color.Color)

	// DrawText draws text anchored at x, vertically centred on y.
	DrawText(text string, x, y int, style TextStyle)

	// ToImage returns the canvas as an image.Image.
	ToImage() image.Image
}

// TextStyle defines text rendering properties.
type TextStyle struct {
	FontSize float64 // 0 keeps the built-in face
	Color    color.Color
	Align    TextAlign
}

// TextAlign specifies text alignment.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)
