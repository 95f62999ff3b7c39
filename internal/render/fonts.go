package render

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Fonts hands out faces by weight and size, cached per size. Faces are not
// safe for concurrent drawing.
type Fonts struct {
	regular faceFunc
	bold    faceFunc

	mu    sync.Mutex
	cache map[faceKey]font.Face
}

type faceFunc func(size float64) (font.Face, error)

type faceKey struct {
	bold bool
	size float64
}

// LoadFonts reads .ttf or .ttc files. An empty path falls back to the bundled
// Go fonts, which have no Hangul glyphs, so a warning is logged.
func LoadFonts(regularPath, boldPath string, log *zap.Logger) (*Fonts, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f := &Fonts{cache: map[faceKey]font.Face{}}

	var err error
	if f.regular, err = fontFile(regularPath, goregular.TTF); err != nil {
		return nil, err
	}
	if boldPath == "" {
		boldPath = regularPath
	}
	if f.bold, err = fontFile(boldPath, gobold.TTF); err != nil {
		return nil, err
	}
	if regularPath == "" {
		log.Warn("no card news font configured, Korean text will not render", zap.String("hint", "set PROMO_FONT_REGULAR to a Hangul .ttf or .ttc"))
	}
	return f, nil
}

// DefaultFonts uses the bundled Go fonts only.
func DefaultFonts() *Fonts {
	f, _ := LoadFonts("", "", nil)
	return f
}

func fontFile(path string, fallback []byte) (faceFunc, error) {
	if path == "" {
		return truetypeFaces(fallback)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read font %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		return collectionFaces(data, path)
	}
	return truetypeFaces(data)
}

func truetypeFaces(data []byte) (faceFunc, error) {
	parsed, err := truetype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "parse truetype font")
	}
	return func(size float64) (font.Face, error) {
		return truetype.NewFace(parsed, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingNone,
		}), nil
	}, nil
}

// collectionFaces uses the first font of a .ttc, the regular weight in the
// common system collections.
func collectionFaces(data []byte, path string) (faceFunc, error) {
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse font collection %s", path)
	}
	if coll.NumFonts() == 0 {
		return nil, errors.Newf("font collection %s is empty", path)
	}
	parsed, err := coll.Font(0)
	if err != nil {
		return nil, errors.Wrapf(err, "open font 0 of %s", path)
	}
	return func(size float64) (font.Face, error) {
		return opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingNone,
		})
	}, nil
}

func (f *Fonts) face(bold bool, size float64) (font.Face, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := faceKey{bold: bold, size: size}
	if face, ok := f.cache[k]; ok {
		return face, nil
	}
	newFace := f.regular
	if bold {
		newFace = f.bold
	}
	face, err := newFace(size)
	if err != nil {
		return nil, errors.Wrapf(err, "create face size=%v", size)
	}
	f.cache[k] = face
	return face, nil
}
