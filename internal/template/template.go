// Package template loads the reference images the detector compares
// screen regions against.
package template

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/mj1618/rotator/internal/config"
	rerrors "github.com/mj1618/rotator/internal/errors"
	"github.com/mj1618/rotator/internal/platform"
)

// DefaultThreshold is used when a status does not set one.
const DefaultThreshold = 0.1

// Template is an immutable reference image bound to a screen region.
type Template struct {
	Name      string
	Message   string
	Region    platform.Bounds
	Threshold float64
	Image     *image.Gray
}

// Store holds the loaded templates in classification order.
type Store struct {
	order  []string
	byName map[string]*Template
}

// Load reads every status template named in cfg. Any missing or
// unreadable image is a CONFIG error.
func Load(cfg *config.Config) (*Store, error) {
	s := &Store{byName: make(map[string]*Template, len(cfg.Statuses))}
	for _, st := range cfg.Statuses {
		path := cfg.TemplatePath(st)
		img, err := decodeFile(path)
		if err != nil {
			return nil, rerrors.NewConfig(fmt.Sprintf("template %s", st.Name), err)
		}
		s.Add(newTemplate(st, ToGray(img)))
	}
	return s, nil
}

// NewStore builds a store from already-constructed templates.
func NewStore(ts ...*Template) *Store {
	s := &Store{byName: make(map[string]*Template, len(ts))}
	for _, t := range ts {
		s.Add(t)
	}
	return s
}

// Add appends t, replacing any template with the same name in place.
func (s *Store) Add(t *Template) {
	if _, ok := s.byName[t.Name]; !ok {
		s.order = append(s.order, t.Name)
	}
	s.byName[t.Name] = t
}

// Get returns the template for a status name.
func (s *Store) Get(name string) (*Template, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// Names returns the status names in classification order.
func (s *Store) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of templates.
func (s *Store) Len() int { return len(s.order) }

func newTemplate(st config.Status, gray *image.Gray) *Template {
	th := st.Threshold
	if th == 0 {
		th = DefaultThreshold
	}
	msg := st.Message
	if msg == "" {
		msg = st.Name
	}
	return &Template{
		Name:      st.Name,
		Message:   msg,
		Region:    st.Bounds(),
		Threshold: th,
		Image:     gray,
	}
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// ToGray converts img to 8-bit luma with its origin at (0,0).
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
