package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrNotImage - данные не декодируются ни одним из зарегистрированных форматов
var ErrNotImage = errors.New("not a supported image")

// Result - закодированное изображение и его итоговые размеры
type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Processor handles image processing operations
type Processor struct {
	quality int // JPEG quality (1-100)
	maxSide int
}

// NewProcessor creates a new image processor
func NewProcessor(quality, maxSide int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	if maxSide <= 0 {
		maxSide = 1600
	}
	return &Processor{quality: quality, maxSide: maxSide}
}

// IsImageType - типы, которые процессор умеет декодировать
func IsImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

// Normalize уменьшает изображение до maxSide по большей стороне.
// Изображения меньше лимита возвращаются без перекодирования.
func (p *Processor) Normalize(data []byte) (*Result, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= p.maxSide && bounds.Dy() <= p.maxSide {
		return &Result{Data: data, ContentType: "image/" + format, Width: bounds.Dx(), Height: bounds.Dy()}, nil
	}

	return p.encode(p.resize(img, p.maxSide, p.maxSide), format)
}

// Thumbnail вписывает изображение в квадрат width x width
func (p *Processor) Thumbnail(data []byte, width int) (*Result, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if width <= 0 || width >= img.Bounds().Dx() {
		return p.encode(img, format)
	}
	return p.encode(p.resize(img, width, width), format)
}

// encode сохраняет исходный формат; webp кодируется в png, т.к. энкодера webp нет
func (p *Processor) encode(img image.Image, format string) (*Result, error) {
	var buf bytes.Buffer
	contentType := "image/png"

	switch format {
	case "jpeg":
		contentType = "image/jpeg"
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	case "gif":
		contentType = "image/gif"
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, fmt.Errorf("failed to encode GIF: %w", err)
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
	}

	b := img.Bounds()
	return &Result{Data: buf.Bytes(), ContentType: contentType, Width: b.Dx(), Height: b.Dy()}, nil
}

// resize resizes an image maintaining aspect ratio
func (p *Processor) resize(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	ratio := float64(bounds.Dx()) / float64(bounds.Dy())

	newWidth, newHeight := maxWidth, maxHeight
	if float64(maxWidth)/float64(maxHeight) > ratio {
		newWidth = int(float64(maxHeight) * ratio)
	} else {
		newHeight = int(float64(maxWidth) / ratio)
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
