package editor

import (
	"fmt"
	"math"

	"github.com/lvillar/layoutpdf/asset"
	"github.com/lvillar/layoutpdf/design"
	"github.com/lvillar/layoutpdf/geometry"
	"github.com/lvillar/layoutpdf/render"
	"github.com/lvillar/layoutpdf/vars"
)

// assetKey identifies what an element's bitmap is built from. A completion
// is attached only while the element still has the same key.
func (s *Session) assetKey(e *design.Element) string {
	switch c := e.Config.(type) {
	case *design.ImageConfig:
		if src := vars.EffectiveImageSource(c, s.values); src != "" {
			return "img:" + src
		}
	case *design.QRConfig:
		if content := vars.EffectiveQR(c, s.values); content != "" {
			return fmt.Sprintf("qr:%s|%d|%s|%s|%s|%s|%g", content, c.Size, c.ErrorCorrection, c.Symbology, c.Foreground, c.Background, qrSize(e))
		}
	}
	return ""
}

func qrSize(e *design.Element) float64 {
	if c := e.QR(); c != nil && c.Size > 0 {
		return float64(c.Size)
	}
	return math.Round(math.Min(e.Transform.Width, e.Transform.Height))
}

// materializeAll (re)starts background work for every element whose asset
// is missing or stale and forgets assets of elements that are gone.
// Callers hold s.mu.
func (s *Session) materializeAll() {
	live := make(map[string]bool, len(s.doc.Elements))
	for _, e := range s.doc.Elements {
		live[e.ID] = true
		s.materialize(e)
	}
	for id := range s.assets {
		if !live[id] {
			delete(s.assets, id)
		}
	}
}

// materialize starts loading e's bitmap unless an asset for its current key
// already exists. Callers hold s.mu.
func (s *Session) materialize(e *design.Element) {
	key := s.assetKey(e)
	if key == "" {
		delete(s.assets, e.ID)
		return
	}
	if a, ok := s.assets[e.ID]; ok && a.Source == key {
		// A restored snapshot may predate the adopted size.
		if a.State == asset.Ready {
			adoptSize(s.engine, e, a)
		}
		return
	}
	s.assets[e.ID] = &asset.Asset{State: asset.Pending, Source: key}

	id := e.ID
	var work func() *asset.Asset
	switch c := e.Config.(type) {
	case *design.ImageConfig:
		src := vars.EffectiveImageSource(c, s.values)
		work = func() *asset.Asset {
			if s.loader == nil {
				return asset.Fail(key, fmt.Errorf("editor: no loader"))
			}
			a, err := s.loader.Load(s.ctx, src)
			if err != nil {
				return asset.Fail(key, err)
			}
			return a
		}
	case *design.QRConfig:
		if s.encoder == nil {
			s.assets[id] = asset.Fail(key, fmt.Errorf("editor: no QR encoder"))
			return
		}
		cfg := *c
		content := vars.EffectiveQR(c, s.values)
		size := int(qrSize(e))
		work = func() *asset.Asset {
			img, err := render.EncodeSymbol(s.ctx, s.encoder, &cfg, content, size)
			if err != nil {
				return asset.Fail(key, err)
			}
			a, err := asset.FromImage(img)
			if err != nil {
				return asset.Fail(key, err)
			}
			return a
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		a := work()
		if s.attach(id, key, a) && s.onChange != nil {
			s.onChange()
		}
	}()
}

// attach stores a settled asset if its element still exists with the same
// key. An image without a size adopts the bitmap's natural size.
func (s *Session) attach(id, key string, a *asset.Asset) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.doc.Find(id)
	if e == nil || s.assetKey(e) != key {
		s.logger.Debug("discarding stale asset", "element", id)
		return false
	}
	if a == nil {
		a = asset.Fail(key, fmt.Errorf("editor: loader returned nothing"))
	}
	a.Source = key
	s.assets[id] = a
	if a.State != asset.Ready {
		s.logger.Warn("asset failed", "element", id, "err", a.Err)
		return true
	}
	if adoptSize(s.engine, e, a) {
		err := s.hist.Rewrite(func(d *design.Document) bool {
			old := d.Find(id)
			if old == nil || s.assetKey(old) != key {
				return false
			}
			engine := s.engine
			engine.Printable = geometry.PrintableRect(d.Page, s.dpi)
			return adoptSize(engine, old, a)
		})
		if err != nil {
			s.logger.Warn("history rewrite failed", "err", err)
		}
	}
	return true
}

// adoptSize gives a zero-sized image element the natural size of its
// bitmap, constrained by engine. It reports whether e changed.
func adoptSize(engine geometry.Engine, e *design.Element, a *asset.Asset) bool {
	if e.Type != design.TypeImage || (e.Transform.Width != 0 && e.Transform.Height != 0) {
		return false
	}
	w, h := a.Size()
	if w <= 0 || h <= 0 {
		return false
	}
	t := e.Transform
	t.Width, t.Height = float64(w), float64(h)
	e.Transform = engine.Enforce(t)
	return true
}
