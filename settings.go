package scenery

// SceneSettings is read once at scene construction.
type SceneSettings struct {
	Environment     EnvironmentSettings      `json:"environment"`
	ImageProcessing *ImageProcessingSettings `json:"imageProcessing"`
}

type EnvironmentSettings struct {
	ClearColor   *Color `json:"clearColor"`
	AmbientColor *Color `json:"ambientColor"`

	UseIBL       bool     `json:"useIBL"`
	IBLPath      string   `json:"iblPath"`
	IBLIntensity *float32 `json:"iblIntensity"`

	FogMode    string   `json:"fogMode"`
	FogDensity *float32 `json:"fogDensity"`
	FogStart   *float32 `json:"fogStart"`
	FogEnd     *float32 `json:"fogEnd"`
	FogColor   *Color   `json:"fogColor"`

	UseSkybox          *bool             `json:"useSkybox"`
	SkyboxType         string            `json:"skyboxType"`
	SkyboxPanoramaPath string            `json:"skyboxPanoramaPath"`
	SkyboxTextures     map[string]string `json:"skyboxTextures"`
	SkyboxSize         *float32          `json:"skyboxSize"`
}

type ImageProcessingSettings struct {
	Contrast           *float32 `json:"contrast"`
	Exposure           *float32 `json:"exposure"`
	ToneMappingEnabled *bool    `json:"toneMappingEnabled"`
	ToneMappingType    string   `json:"toneMappingType"`

	VignetteEnabled   *bool    `json:"vignetteEnabled"`
	VignetteWeight    *float32 `json:"vignetteWeight"`
	VignetteStretch   *float32 `json:"vignetteStretch"`
	VignetteCameraFov *float32 `json:"vignetteCameraFov"`
	VignetteCenterX   *float32 `json:"vignetteCenterX"`
	VignetteCenterY   *float32 `json:"vignetteCenterY"`
	VignetteColor     *Color   `json:"vignetteColor"`

	DitheringEnabled   *bool    `json:"ditheringEnabled"`
	DitheringIntensity *float32 `json:"ditheringIntensity"`
}

// cubeFaces is the face order cube map loaders expect.
var cubeFaces = [6]string{"px", "py", "pz", "nx", "ny", "nz"}
