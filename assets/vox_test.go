package assets

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeVox_SingleModel(t *testing.T) {
	var w voxWriter
	w.model([3]uint32{2, 2, 2}, Voxel{X: 0, Y: 0, Z: 0, ColorIndex: 1}, Voxel{X: 1, Y: 1, Z: 1, ColorIndex: 1})

	vf, err := DecodeVox(bytes.NewReader(w.bytes()))
	require.NoError(t, err)
	require.Len(t, vf.Models, 1)
	assert.Equal(t, uint32(2), vf.Models[0].SizeX)
	assert.Len(t, vf.Models[0].Voxels, 2)
	assert.Equal(t, [4]byte{255, 255, 255, 255}, vf.Palette[1], "default palette")
}

func TestDecodeVox_BadMagic(t *testing.T) {
	_, err := DecodeVox(bytes.NewReader([]byte("NOPE\x96\x00\x00\x00")))
	assert.Error(t, err)
}

func TestDecodeVox_SceneGraphNames(t *testing.T) {
	var w voxWriter
	w.model([3]uint32{1, 1, 1}, Voxel{ColorIndex: 3})
	w.model([3]uint32{1, 1, 1}, Voxel{ColorIndex: 3})
	w.transform(0, "", 1, "")
	w.transform(2, "Wheel", 3, "10 20 30")
	w.shape(3, 0)
	w.transform(4, "Door", 5, "")
	w.shape(5, 1)

	vf, err := DecodeVox(bytes.NewReader(w.bytes()))
	require.NoError(t, err)
	require.Len(t, vf.Models, 2)
	require.Len(t, vf.Transforms, 3)
	assert.Equal(t, "Wheel", vf.Transforms[1].Name)
	assert.Equal(t, [3]int32{10, 20, 30}, vf.Transforms[1].Translation)

	res := voxModelResult("car", vf)
	require.Len(t, res.Meshes, 3)
	assert.True(t, res.Meshes[0].Synthetic)
	assert.Equal(t, "Wheel", res.Meshes[1].Name)
	assert.Equal(t, "Door", res.Meshes[2].Name)
	pos := res.Meshes[1].Transform.Position
	want := mgl32.Vec3{1, 3, 2}
	assert.True(t, pos.ApproxEqual(want), "z-up to y-up in voxel units, got %v", pos)
	assert.Same(t, res.Meshes[1].Material, res.Meshes[2].Material)
	assert.Equal(t, "car", res.Meshes[1].Material.Name)
}

func TestVoxModelResult_NoSceneGraph(t *testing.T) {
	vf := &VoxFile{Models: []VoxModel{{}, {}}, Palette: defaultPalette()}
	res := voxModelResult("crate", vf)
	require.Len(t, res.Meshes, 3)
	assert.Equal(t, "crate_0", res.Meshes[1].Name)
	assert.Equal(t, "crate_1", res.Meshes[2].Name)
}
