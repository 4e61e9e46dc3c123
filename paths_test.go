package scenery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://cdn.example.com/bucket/assets/models/car.glb", "models/car.glb"},
		{"a/assets/b/assets/c.png", "c.png"},
		{"users/u1/projects/p42/models/car.glb", "models/car.glb"},
		{"projects/p42/tex.png", "tex.png"},
		{"projects/p42", "p42"},
		{"uploads/2024/car.glb", "car.glb"},
		{"car.glb", "car.glb"},
		{"models/", "models_"},
		{"a\\b/", "a_b_"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePath(tt.in), "NormalizePath(%q)", tt.in)
	}
}

func TestNormalizePath_IdempotentOnFileNames(t *testing.T) {
	for _, in := range []string{"car.glb", "uploads/tex.png", "x/assets/sky.env"} {
		once := NormalizePath(in)
		assert.Equal(t, once, NormalizePath(once), in)
	}
}

func TestAssetURL(t *testing.T) {
	assert.Equal(t, "assets/models/car.glb", AssetURL("s3://b/assets/models/car.glb"))
}

func TestSplitModelURL(t *testing.T) {
	root, file := SplitModelURL("assets/models/car.glb")
	assert.Equal(t, "assets/models/", root)
	assert.Equal(t, "car.glb", file)

	root, file = SplitModelURL("assets/car.glb")
	assert.Equal(t, "assets/", root)
	assert.Equal(t, "car.glb", file)
}

func TestTextureBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"assets/textures/red.png", "red.png"},
		{"assets/textures/red.png?v=3", "red.png"},
		{"C:\\tex\\red.png", "red.png"},
		{"assets/3f2504e0-4f89-11d3-9a0c-0305e82c3301_red.png", "red.png"},
		{"assets/3f2504e0-4f89-11d3-9a0c-0305e82c3301-red.png", "red.png"},
		{"assets/3f2504e0-4f89-11d3-9a0c-0305e82c3301.png", ".png"},
		{"assets/not-a-uuid-at-all-but-long-enough_red.png", "not-a-uuid-at-all-but-long-enough_red.png"},
		{"car.glb#image0", "car.glb"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TextureBaseName(tt.in), "TextureBaseName(%q)", tt.in)
	}
}
