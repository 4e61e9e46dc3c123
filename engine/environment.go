package engine

type FogMode uint32

const (
	FogModeNone   FogMode = 0
	FogModeExp    FogMode = 1
	FogModeExp2   FogMode = 2
	FogModeLinear FogMode = 3
)

type ToneMappingType uint32

const (
	ToneMappingStandard ToneMappingType = 0
	ToneMappingACES     ToneMappingType = 1
	ToneMappingNeutral  ToneMappingType = 2
)

type Fog struct {
	Mode    FogMode
	Density float32
	Start   float32
	End     float32
	Color   Color4
}

// ImageProcessing is the scene-wide post-process configuration.
type ImageProcessing struct {
	Contrast           float32
	Exposure           float32
	ToneMappingEnabled bool
	ToneMappingType    ToneMappingType

	VignetteEnabled   bool
	VignetteWeight    float32
	VignetteStretch   float32
	VignetteCameraFov float32
	VignetteCenterX   float32
	VignetteCenterY   float32
	VignetteColor     Color4

	DitheringEnabled   bool
	DitheringIntensity float32
}

func DefaultImageProcessing() ImageProcessing {
	return ImageProcessing{
		Contrast:           1,
		Exposure:           1,
		VignetteWeight:     1.5,
		VignetteCameraFov:  0.5,
		VignetteColor:      Color4{A: 0},
		DitheringIntensity: 1.0 / 255.0,
	}
}

// Skybox is a purely visual backdrop: an inside-out box whose material has
// lighting disabled and samples ReflectionTexture in skybox coordinates.
type Skybox struct {
	Mesh *Mesh
	Size float32
}

const SkyboxReflectionSlot TextureSlot = "reflectionTexture"

func NewSkybox(size float32) *Skybox {
	mesh := NewMesh("skybox", "skyBox")
	mesh.Primitive = "box"
	mat := NewMaterial("skyBox")
	mat.Flags["disableLighting"] = true
	mat.Flags["backFaceCulling"] = false
	mesh.Material = mat
	return &Skybox{Mesh: mesh, Size: size}
}

func (s *Skybox) Texture() *Texture {
	return s.Mesh.Material.Texture(SkyboxReflectionSlot)
}

// SetTexture binds tex as the backdrop. Equirectangular panoramas keep
// equirect sampling, everything else is switched to skybox coordinates.
func (s *Skybox) SetTexture(tex *Texture) {
	if tex != nil {
		if tex.Kind == TextureEquirectangular {
			tex.CoordinatesMode = EquirectMode
		} else {
			tex.CoordinatesMode = SkyboxMode
		}
	}
	s.Mesh.Material.SetTexture(SkyboxReflectionSlot, tex)
}

func (s *Skybox) Visible() bool {
	return s.Mesh.Visibility > 0 && s.Mesh.Enabled
}

func (s *Skybox) SetVisible(v bool) {
	s.Mesh.Enabled = v
	if v {
		s.Mesh.Visibility = 1
	} else {
		s.Mesh.Visibility = 0
	}
}
