package infra

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Catalog thumbnails never need more pixels than this per side.
const miniaturaMaxPx = 600

// imagenPNG is a decoded image re-encoded as PNG, ready to hand to fpdf.
type imagenPNG struct {
	datos []byte
	ancho int
	alto  int
}

// cargarMiniatura opens path (any format imaging can decode), scales it down
// to fit maxPx keeping the aspect ratio and re-encodes it as PNG. EXIF
// orientation is honored so phone photos are not rendered sideways.
func cargarMiniatura(path string, maxPx int) (*imagenPNG, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imagen: abrir %s: %w", path, err)
	}
	return codificarPNG(imaging.Fit(img, maxPx, maxPx, imaging.Lanczos))
}

func codificarPNG(img image.Image) (*imagenPNG, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("imagen: codificar png: %w", err)
	}
	b := img.Bounds()
	return &imagenPNG{datos: buf.Bytes(), ancho: b.Dx(), alto: b.Dy()}, nil
}

// encajar returns the largest w×h that fits in maxW×maxH with the image's
// aspect ratio.
func (i *imagenPNG) encajar(maxW, maxH float64) (float64, float64) {
	if i.ancho == 0 || i.alto == 0 {
		return 0, 0
	}
	ratio := float64(i.ancho) / float64(i.alto)
	w, h := maxW, maxW/ratio
	if h > maxH {
		h = maxH
		w = maxH * ratio
	}
	return w, h
}
