package cover

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedImage = errors.New("unsupported image format")

var supportedMIMEs = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// ToJPEG re-encodes b as JPEG when it is in another format or larger than maxDim on its longest side.
// JPEG input within bounds is returned as is. A maxDim of zero disables downscaling.
func ToJPEG(b []byte, maxDim int) ([]byte, error) {
	mt := mimetype.Detect(b)
	if !mimetype.EqualsAny(mt.String(), supportedMIMEs...) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if nil != err {
		return nil, fmt.Errorf("failed to decode image config: %v", err)
	}

	tooLarge := maxDim > 0 && max(cfg.Width, cfg.Height) > maxDim
	if mt.Is("image/jpeg") && !tooLarge {
		return b, nil
	}

	img, _, err := image.Decode(bytes.NewReader(b))
	if nil != err {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}

	if tooLarge {
		img = downscale(img, maxDim)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); nil != err {
		return nil, fmt.Errorf("failed to encode jpeg: %v", err)
	}

	return buf.Bytes(), nil
}

func downscale(src image.Image, maxDim int) image.Image {
	var (
		b    = src.Bounds()
		w, h = b.Dx(), b.Dy()
	)
	if w >= h {
		h = max(1, h*maxDim/w)
		w = maxDim
	} else {
		w = max(1, w*maxDim/h)
		h = maxDim
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	return dst
}
