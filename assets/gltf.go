package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"

	"github.com/gekko3d/scenery/engine"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

const (
	extUnlit            = "KHR_materials_unlit"
	extTextureTransform = "KHR_texture_transform"
)

// decodeGLTF decodes a .gltf or .glb document. External buffers resolve
// relative to the model's directory.
func decodeGLTF(fsys fs.FS, file string, data []byte) (*gltf.Document, error) {
	dir, err := fs.Sub(fsys, path.Dir(file))
	if err != nil {
		return nil, err
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(bytes.NewReader(data), dir).Decode(doc); err != nil {
		return nil, fmt.Errorf("gltf: %w", err)
	}
	return doc, nil
}

// gltfBuilder turns a glTF document into engine objects the way a runtime
// importer does: a synthetic root first, then one mesh per primitive in
// depth-first node order.
type gltfBuilder struct {
	doc       *gltf.Document
	rootURL   string
	filename  string
	dims      func(url string) (int, int, bool)
	materials map[int]*engine.Material
	res       *engine.ModelResult
}

func buildGLTF(doc *gltf.Document, rootURL, filename string, dims func(string) (int, int, bool)) (*engine.ModelResult, error) {
	b := &gltfBuilder{
		doc:       doc,
		rootURL:   rootURL,
		filename:  filename,
		dims:      dims,
		materials: make(map[int]*engine.Material),
	}

	root := engine.NewMesh("__root__", "__root__")
	root.Synthetic = true
	b.res = &engine.ModelResult{Meshes: []*engine.Mesh{root}}
	for _, a := range doc.Animations {
		b.res.AnimationGroups = append(b.res.AnimationGroups, a.Name)
	}

	roots, err := b.sceneRoots()
	if err != nil {
		return nil, err
	}
	visited := make(map[int]bool)
	for _, n := range roots {
		if err := b.visit(n, &root.Node, visited); err != nil {
			return nil, err
		}
	}
	return b.res, nil
}

func (b *gltfBuilder) sceneRoots() ([]int, error) {
	if len(b.doc.Scenes) == 0 {
		// No scene: every node that is nobody's child is a root.
		isChild := make(map[int]bool)
		for _, n := range b.doc.Nodes {
			for _, c := range n.Children {
				isChild[c] = true
			}
		}
		var roots []int
		for i := range b.doc.Nodes {
			if !isChild[i] {
				roots = append(roots, i)
			}
		}
		return roots, nil
	}
	scene := 0
	if b.doc.Scene != nil {
		scene = *b.doc.Scene
	}
	if scene < 0 || scene >= len(b.doc.Scenes) {
		return nil, fmt.Errorf("gltf: scene %d out of range", scene)
	}
	return b.doc.Scenes[scene].Nodes, nil
}

func (b *gltfBuilder) visit(index int, parent *engine.Node, visited map[int]bool) error {
	if index < 0 || index >= len(b.doc.Nodes) {
		return fmt.Errorf("gltf: node %d out of range", index)
	}
	if visited[index] {
		return fmt.Errorf("gltf: node %d visited twice", index)
	}
	visited[index] = true
	gn := b.doc.Nodes[index]

	name := gn.Name
	if name == "" {
		name = fmt.Sprintf("node%d", index)
	}

	// Mesh-less nodes still carry transforms for their children.
	var self *engine.Node
	if gn.Mesh == nil {
		self = engine.NewNode(name, name)
		applyGLTFTransform(self.Transform, gn)
		self.SetParent(parent)
	} else {
		if *gn.Mesh < 0 || *gn.Mesh >= len(b.doc.Meshes) {
			return fmt.Errorf("gltf: mesh %d out of range", *gn.Mesh)
		}
		gm := b.doc.Meshes[*gn.Mesh]
		if gn.Name == "" && gm.Name != "" {
			name = gm.Name
		}
		prims := gm.Primitives
		if len(prims) == 0 {
			return fmt.Errorf("gltf: mesh %d has no primitives", *gn.Mesh)
		}

		first := b.newMesh(name, prims[0].Material)
		applyGLTFTransform(first.Transform, gn)
		first.SetParent(parent)
		self = &first.Node
		for k := 1; k < len(prims); k++ {
			m := b.newMesh(fmt.Sprintf("%s_primitive%d", name, k), prims[k].Material)
			m.SetParent(self)
		}
	}

	for _, c := range gn.Children {
		if err := b.visit(c, self, visited); err != nil {
			return err
		}
	}
	return nil
}

func (b *gltfBuilder) newMesh(name string, material *int) *engine.Mesh {
	m := engine.NewMesh(name, name)
	q := mgl32.QuatIdent()
	m.Transform.RotationQuaternion = &q
	if material != nil {
		m.Material = b.material(*material)
	}
	b.res.Meshes = append(b.res.Meshes, m)
	return m
}

// applyGLTFTransform copies a node's TRS. The decoder fills in the identity
// rotation and unit scale for omitted fields.
func applyGLTFTransform(t *engine.Transform, gn *gltf.Node) {
	tr, r, s := gn.Translation, gn.Rotation, gn.Scale
	t.Position = mgl32.Vec3{float32(tr[0]), float32(tr[1]), float32(tr[2])}
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	if q.Len() == 0 {
		q = mgl32.QuatIdent()
	}
	t.RotationQuaternion = &q
	t.Scaling = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
}

func (b *gltfBuilder) material(index int) *engine.Material {
	if m, ok := b.materials[index]; ok {
		return m
	}
	if index < 0 || index >= len(b.doc.Materials) {
		m := engine.NewMaterial(fmt.Sprintf("material%d", index))
		b.materials[index] = m
		return m
	}

	gm := b.doc.Materials[index]
	name := gm.Name
	if name == "" {
		name = fmt.Sprintf("material%d", index)
	}
	m := engine.NewMaterial(name)
	b.materials[index] = m

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if c := pbr.BaseColorFactor; c != nil {
			m.SetColor("albedoColor", engine.Color4{R: float32(c[0]), G: float32(c[1]), B: float32(c[2]), A: float32(c[3])})
		}
		if pbr.MetallicFactor != nil {
			m.SetScalar("metallic", float64(*pbr.MetallicFactor))
		}
		if pbr.RoughnessFactor != nil {
			m.SetScalar("roughness", float64(*pbr.RoughnessFactor))
		}
		if ti := pbr.BaseColorTexture; ti != nil {
			b.bindTexture(m, "albedoTexture", ti.Index, ti.TexCoord, ti.Extensions)
		}
		if ti := pbr.MetallicRoughnessTexture; ti != nil {
			b.bindTexture(m, "metallicTexture", ti.Index, ti.TexCoord, ti.Extensions)
			m.Finalize(func(m *engine.Material) {
				m.SetFlag("useRoughnessFromMetallicTextureAlpha", false)
				m.SetFlag("useRoughnessFromMetallicTextureGreen", true)
				m.SetFlag("useMetallnessFromMetallicTextureBlue", true)
			})
		}
	}
	if nt := gm.NormalTexture; nt != nil && nt.Index != nil {
		b.bindTexture(m, "bumpTexture", *nt.Index, nt.TexCoord, nt.Extensions)
	}
	if ot := gm.OcclusionTexture; ot != nil && ot.Index != nil {
		b.bindTexture(m, "ambientTexture", *ot.Index, ot.TexCoord, ot.Extensions)
	}
	if ti := gm.EmissiveTexture; ti != nil {
		b.bindTexture(m, "emissiveTexture", ti.Index, ti.TexCoord, ti.Extensions)
	}
	if c := gm.EmissiveFactor; c[0] != 0 || c[1] != 0 || c[2] != 0 {
		m.SetColor("emissiveColor", engine.RGB(float32(c[0]), float32(c[1]), float32(c[2])))
	}
	switch gm.AlphaMode {
	case gltf.AlphaMask:
		m.SetScalar("transparencyMode", 1)
		cutoff := 0.5
		if gm.AlphaCutoff != nil {
			cutoff = float64(*gm.AlphaCutoff)
		}
		m.SetScalar("alphaCutOff", cutoff)
	case gltf.AlphaBlend:
		m.SetScalar("transparencyMode", 2)
	}

	doubleSided := gm.DoubleSided
	_, unlit := gm.Extensions[extUnlit]
	m.Finalize(func(m *engine.Material) {
		m.SetFlag("backFaceCulling", !doubleSided)
		m.SetFlag("twoSidedLighting", doubleSided)
		m.SetFlag("unlit", unlit)
	})
	return m
}

// textureTransform is the KHR_texture_transform payload.
type textureTransform struct {
	Offset   []float32 `json:"offset"`
	Scale    []float32 `json:"scale"`
	Rotation float32   `json:"rotation"`
	TexCoord *int      `json:"texCoord"`
}

// transformOf reads KHR_texture_transform from a texture info's extensions.
// The value is a raw payload unless a codec was registered for it, so it is
// re-read through JSON either way.
func transformOf(exts gltf.Extensions) (*textureTransform, bool) {
	v, ok := exts[extTextureTransform]
	if !ok {
		return nil, false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var tt textureTransform
	if err := json.Unmarshal(raw, &tt); err != nil {
		return nil, false
	}
	return &tt, true
}

func (b *gltfBuilder) bindTexture(m *engine.Material, slot engine.TextureSlot, index, texCoord int, exts gltf.Extensions) {
	if index < 0 || index >= len(b.doc.Textures) {
		return
	}
	gt := b.doc.Textures[index]
	if gt.Source == nil || *gt.Source < 0 || *gt.Source >= len(b.doc.Images) {
		return
	}
	img := b.doc.Images[*gt.Source]

	var source string
	if img.URI != "" && !img.IsEmbeddedResource() {
		source = b.rootURL + img.URI
	} else {
		source = fmt.Sprintf("%s%s#image%d", b.rootURL, b.filename, *gt.Source)
	}

	tex := engine.NewTexture(source, engine.Texture2D)
	if w, h, ok := b.dims(source); ok {
		tex.Width, tex.Height = w, h
	}
	tex.CoordinatesIndex = texCoord
	if gt.Sampler != nil && *gt.Sampler >= 0 && *gt.Sampler < len(b.doc.Samplers) {
		s := b.doc.Samplers[*gt.Sampler]
		tex.WrapU = wrapMode(s.WrapS)
		tex.WrapV = wrapMode(s.WrapT)
	}
	if tt, ok := transformOf(exts); ok {
		if len(tt.Offset) == 2 {
			tex.UOffset, tex.VOffset = tt.Offset[0], tt.Offset[1]
		}
		if len(tt.Scale) == 2 {
			tex.UScale, tex.VScale = tt.Scale[0], tt.Scale[1]
		}
		tex.WAng = -tt.Rotation
		if tt.TexCoord != nil {
			tex.CoordinatesIndex = *tt.TexCoord
		}
	}
	tex.MarkReady()
	m.SetTexture(slot, tex)
}

func wrapMode(w gltf.WrappingMode) engine.WrapMode {
	switch w {
	case gltf.WrapClampToEdge:
		return engine.WrapClamp
	case gltf.WrapMirroredRepeat:
		return engine.WrapMirror
	}
	return engine.WrapRepeat
}
