package scenery

import (
	"context"
	"errors"
	"fmt"

	"github.com/gekko3d/scenery/engine"
)

type OverrideOutcome string

const (
	OverrideApplied OverrideOutcome = "applied"
	// OverrideSkipped means the slot already holds the same image.
	OverrideSkipped OverrideOutcome = "skipped"
	// OverrideDeferred means the value was set and will be set again once
	// the material finishes compiling.
	OverrideDeferred OverrideOutcome = "deferred"
	OverrideFailed   OverrideOutcome = "failed"
)

type OverrideEntry struct {
	Material string
	Property string
	Outcome  OverrideOutcome
	Err      error
}

// OverrideReport lists the outcome of every property in document order.
type OverrideReport struct {
	Entries []OverrideEntry
}

func (r *OverrideReport) add(material, property string, outcome OverrideOutcome, err error) {
	if err != nil {
		err = &OverrideApplicationError{Material: material, Property: property, Err: err}
	}
	r.Entries = append(r.Entries, OverrideEntry{Material: material, Property: property, Outcome: outcome, Err: err})
}

// Count returns how many entries ended with outcome.
func (r *OverrideReport) Count(outcome OverrideOutcome) int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == outcome {
			n++
		}
	}
	return n
}

// Errors returns the failed entries' errors.
func (r *OverrideReport) Errors() []error {
	var errs []error
	for _, e := range r.Entries {
		if e.Err != nil {
			errs = append(errs, e.Err)
		}
	}
	return errs
}

// ApplyOverrides applies saved material edits on top of the loaded scene.
// Materials are looked up by exact name; a missing material or a failing
// property is reported and the rest continue.
func (l *Loader) ApplyOverrides(ctx context.Context, overrides MaterialOverrides) *OverrideReport {
	report := &OverrideReport{}
	scene := l.Scene()
	log := l.Logger()

	for _, mo := range overrides {
		if mo.Err != nil {
			report.add(mo.Material, "", OverrideFailed, mo.Err)
			log.Warnf("override %q ignored: %v", mo.Material, mo.Err)
			continue
		}
		mat := scene.MaterialByName(mo.Material)
		if mat == nil {
			report.add(mo.Material, "", OverrideFailed, ErrMaterialNotFound)
			log.Warnf("override %q ignored: %v", mo.Material, ErrMaterialNotFound)
			continue
		}

		for _, p := range mo.Properties {
			outcome, err := l.applyPropertyIsolated(ctx, mat, p)
			if err != nil {
				log.Warnf("override %q.%s failed: %v", mo.Material, p.Name, err)
				outcome = OverrideFailed
			} else {
				log.Debugf("override %q.%s %s", mo.Material, p.Name, outcome)
			}
			report.add(mo.Material, p.Name, outcome, err)
		}
	}
	return report
}

func (l *Loader) applyPropertyIsolated(ctx context.Context, mat *engine.Material, p PropertyOverride) (outcome OverrideOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome, err = OverrideFailed, fmt.Errorf("panic: %v", r)
		}
	}()
	return l.applyProperty(ctx, mat, p)
}

func (l *Loader) applyProperty(ctx context.Context, mat *engine.Material, p PropertyOverride) (OverrideOutcome, error) {
	if p.Err != nil {
		return OverrideFailed, p.Err
	}

	switch v := p.Value.(type) {
	case TextureValue:
		return l.applyTexture(ctx, mat, p.Name, v)
	case ScalarValue:
		mat.SetScalar(p.Name, float64(v))
	case ColorValue:
		mat.SetColor(p.Name, engine.Color4(v))
	case BoolValue:
		// A material that has not compiled yet may still be finalized by its
		// loader, which can reset feature toggles. Set the value again once
		// it is compiled.
		compiled := mat.IsCompiled()
		mat.SetFlag(p.Name, bool(v))
		if !compiled {
			name, value := p.Name, bool(v)
			mat.Compiled().Then(func() {
				mat.SetFlag(name, value)
			})
			return OverrideDeferred, nil
		}
	case RawValue:
		mat.SetExtra(p.Name, v.Value)
	case nil:
		return OverrideFailed, errors.New("missing value")
	default:
		return OverrideFailed, fmt.Errorf("unsupported value %T", v)
	}
	return OverrideApplied, nil
}

// applyTexture replaces the texture in slot name unless it already shows the
// same image. The replacement inherits the previous texture's UV setup.
func (l *Loader) applyTexture(ctx context.Context, mat *engine.Material, name string, v TextureValue) (OverrideOutcome, error) {
	slot := engine.TextureSlot(name)
	existing := mat.Texture(slot)
	if !shouldReplaceTexture(existing, v.Path) {
		return OverrideSkipped, nil
	}

	assets := l.Assets()
	if assets == nil {
		return OverrideFailed, errors.New("no asset loader installed")
	}
	url := AssetURL(v.Path)
	tex, err := assets.LoadTexture(ctx, url)
	if err != nil {
		return OverrideFailed, &AssetLoadError{URL: url, Err: err}
	}

	if existing != nil {
		copyUVState(tex, existing)
	} else {
		tex.CoordinatesIndex = knownProperties[name].DefaultUV
	}
	mat.SetTexture(slot, tex)
	l.Scene().AddTexture(tex)
	return OverrideApplied, nil
}

// shouldReplaceTexture decides whether an override path differs from the
// texture a slot already holds. Embedded textures are always replaced since
// their names cannot be compared with a storage path. A path with no file
// name never replaces a loaded texture.
func shouldReplaceTexture(existing *engine.Texture, overridePath string) bool {
	if existing == nil || isEmbeddedTexture(existing.Name) {
		return true
	}
	want := TextureBaseName(NormalizePath(overridePath))
	if want == "" {
		return false
	}
	return TextureBaseName(existing.Name) != want
}

func copyUVState(dst, src *engine.Texture) {
	dst.CoordinatesIndex = src.CoordinatesIndex
	dst.UOffset, dst.VOffset = src.UOffset, src.VOffset
	dst.UScale, dst.VScale = src.UScale, src.VScale
	dst.UAng, dst.VAng, dst.WAng = src.UAng, src.VAng, src.WAng
	dst.WrapU, dst.WrapV = src.WrapU, src.WrapV
}
