package scenery

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gekko3d/scenery/engine"
)

type PropertyKind int

const (
	PropertyUnknown PropertyKind = iota
	PropertyTexture
	PropertyScalar
	PropertyColor
	PropertyBool
)

func (k PropertyKind) String() string {
	switch k {
	case PropertyTexture:
		return "texture"
	case PropertyScalar:
		return "scalar"
	case PropertyColor:
		return "color"
	case PropertyBool:
		return "bool"
	}
	return "unknown"
}

type propertySpec struct {
	Kind PropertyKind
	// DefaultUV is the coordinate set a texture binds to when the slot had no
	// previous texture to inherit from.
	DefaultUV int
}

// knownProperties is the closed set of material properties overrides can
// address with a typed value. Names outside it fall back to RawValue.
var knownProperties = map[string]propertySpec{
	"albedoTexture":             {Kind: PropertyTexture},
	"baseTexture":               {Kind: PropertyTexture},
	"diffuseTexture":            {Kind: PropertyTexture},
	"metallicTexture":           {Kind: PropertyTexture},
	"roughnessTexture":          {Kind: PropertyTexture},
	"metallicRoughnessTexture":  {Kind: PropertyTexture},
	"reflectionTexture":         {Kind: PropertyTexture},
	"refractionTexture":         {Kind: PropertyTexture},
	"normalTexture":             {Kind: PropertyTexture},
	"bumpTexture":               {Kind: PropertyTexture},
	"emissiveTexture":           {Kind: PropertyTexture},
	"opacityTexture":            {Kind: PropertyTexture},
	"ambientTexture":            {Kind: PropertyTexture, DefaultUV: 1},
	"lightmapTexture":           {Kind: PropertyTexture, DefaultUV: 1},
	"clearCoatTexture":          {Kind: PropertyTexture},
	"clearCoatRoughnessTexture": {Kind: PropertyTexture},
	"clearCoatBumpTexture":      {Kind: PropertyTexture},
	"clearCoatTintTexture":      {Kind: PropertyTexture},
	"sheenTexture":              {Kind: PropertyTexture},
	"sheenRoughnessTexture":     {Kind: PropertyTexture},

	"metallic":             {Kind: PropertyScalar},
	"roughness":            {Kind: PropertyScalar},
	"alpha":                {Kind: PropertyScalar},
	"alphaCutOff":          {Kind: PropertyScalar},
	"transparencyMode":     {Kind: PropertyScalar},
	"indexOfRefraction":    {Kind: PropertyScalar},
	"directIntensity":      {Kind: PropertyScalar},
	"environmentIntensity": {Kind: PropertyScalar},
	"specularIntensity":    {Kind: PropertyScalar},
	"emissiveIntensity":    {Kind: PropertyScalar},
	"microSurface":         {Kind: PropertyScalar},
	"clearCoatIntensity":   {Kind: PropertyScalar},
	"clearCoatRoughness":   {Kind: PropertyScalar},
	"sheenIntensity":       {Kind: PropertyScalar},
	"sheenRoughness":       {Kind: PropertyScalar},
	"zOffset":              {Kind: PropertyScalar},

	"albedoColor":        {Kind: PropertyColor},
	"baseColor":          {Kind: PropertyColor},
	"diffuseColor":       {Kind: PropertyColor},
	"emissiveColor":      {Kind: PropertyColor},
	"ambientColor":       {Kind: PropertyColor},
	"reflectivityColor":  {Kind: PropertyColor},
	"sheenColor":         {Kind: PropertyColor},
	"clearCoatTintColor": {Kind: PropertyColor},

	"unlit":                                     {Kind: PropertyBool},
	"disableLighting":                           {Kind: PropertyBool},
	"backFaceCulling":                           {Kind: PropertyBool},
	"twoSidedLighting":                          {Kind: PropertyBool},
	"useAlphaFromAlbedoTexture":                 {Kind: PropertyBool},
	"useRoughnessFromMetallicTextureAlpha":      {Kind: PropertyBool},
	"useRoughnessFromMetallicTextureGreen":      {Kind: PropertyBool},
	"useMetallnessFromMetallicTextureBlue":      {Kind: PropertyBool},
	"useAmbientOcclusionFromMetallicTextureRed": {Kind: PropertyBool},
	"useRadianceOverAlpha":                      {Kind: PropertyBool},
	"useSpecularOverAlpha":                      {Kind: PropertyBool},
	"enableSpecularAntiAliasing":                {Kind: PropertyBool},
	"clearCoatEnabled":                          {Kind: PropertyBool},
	"sheenEnabled":                              {Kind: PropertyBool},
}

// PropertyValue is the typed value of one override: TextureValue,
// ScalarValue, ColorValue, BoolValue or, for unknown names, RawValue.
type PropertyValue interface {
	Kind() PropertyKind
}

// TextureValue is an opaque storage path to a texture.
type TextureValue struct {
	Path string
}

type ScalarValue float64

type ColorValue engine.Color4

type BoolValue bool

// RawValue carries a property the closed set does not know yet.
type RawValue struct {
	Value any
}

func (TextureValue) Kind() PropertyKind { return PropertyTexture }
func (ScalarValue) Kind() PropertyKind  { return PropertyScalar }
func (ColorValue) Kind() PropertyKind   { return PropertyColor }
func (BoolValue) Kind() PropertyKind    { return PropertyBool }
func (RawValue) Kind() PropertyKind     { return PropertyUnknown }

// PropertyOverride is one (property, value) pair. Err is set when the raw
// value did not decode for the property's kind; the pair is then reported and
// skipped at apply time.
type PropertyOverride struct {
	Name  string
	Value PropertyValue
	Err   error
}

type MaterialOverride struct {
	Material   string
	Properties []PropertyOverride
	Err        error
}

// MaterialOverrides keeps document order so application is deterministic.
type MaterialOverrides []MaterialOverride

func (o *MaterialOverrides) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = nil
		return nil
	}
	materials, err := orderedEntries(data)
	if err != nil {
		return fmt.Errorf("material overrides: %w", err)
	}

	out := make(MaterialOverrides, 0, len(materials))
	for _, m := range materials {
		mo := MaterialOverride{Material: m.Key}
		props, err := orderedEntries(m.Value)
		if err != nil {
			mo.Err = err
			out = append(out, mo)
			continue
		}
		for _, p := range props {
			value, err := DecodePropertyValue(p.Key, p.Value)
			mo.Properties = append(mo.Properties, PropertyOverride{Name: p.Key, Value: value, Err: err})
		}
		out = append(out, mo)
	}
	*o = out
	return nil
}

// DecodePropertyValue decodes raw according to the kind registered for name.
func DecodePropertyValue(name string, raw json.RawMessage) (PropertyValue, error) {
	spec, known := knownProperties[name]
	if !known {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return RawValue{Value: v}, nil
	}

	switch spec.Kind {
	case PropertyTexture:
		var path string
		if err := json.Unmarshal(raw, &path); err != nil {
			return nil, fmt.Errorf("texture path: %w", err)
		}
		return TextureValue{Path: path}, nil
	case PropertyScalar:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("scalar: %w", err)
		}
		return ScalarValue(f), nil
	case PropertyColor:
		var c Color
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("color: %w", err)
		}
		return ColorValue(c), nil
	case PropertyBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("bool: %w", err)
		}
		return BoolValue(b), nil
	}
	return nil, fmt.Errorf("unsupported property kind %s", spec.Kind)
}

type jsonEntry struct {
	Key   string
	Value json.RawMessage
}

// orderedEntries splits a JSON object into its members in document order.
func orderedEntries(data []byte) ([]jsonEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var entries []jsonEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		entries = append(entries, jsonEntry{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}
