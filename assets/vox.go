package assets

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gekko3d/scenery/engine"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	VOXMagicNumber = "VOX "

	// VoxelUnitSize is the world size of one voxel.
	VoxelUnitSize = 0.1
)

type Voxel struct {
	X, Y, Z, ColorIndex byte
}

type VoxModel struct {
	SizeX, SizeY, SizeZ uint32
	Voxels              []Voxel
}

type VoxPalette [256][4]byte // RGBA colors

type VoxMaterial struct {
	ID       int
	Type     int
	Weight   float32
	Property map[string]string
}

// VoxTransform is an nTRN scene node. Name comes from the "_name" attribute
// MagicaVoxel stores for named objects.
type VoxTransform struct {
	ID          int
	Name        string
	ChildID     int
	Translation [3]int32
}

// VoxShape is an nSHP scene node referencing models by index.
type VoxShape struct {
	ID     int
	Models []int
}

type VoxFile struct {
	Version      int
	Models       []VoxModel
	Palette      VoxPalette
	VoxMaterials []VoxMaterial
	Transforms   []VoxTransform
	Shapes       map[int]VoxShape
}

func DecodeVox(r io.Reader) (*VoxFile, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if string(magic[:]) != VOXMagicNumber {
		return nil, errors.New("not a valid VOX file")
	}

	var version int32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}

	voxFile := &VoxFile{
		Version: int(version),
		Palette: defaultPalette(),
		Shapes:  make(map[int]VoxShape),
	}

	for {
		var chunkID [4]byte
		if _, err := io.ReadFull(r, chunkID[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		var chunkSize, childrenSize int32
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &childrenSize); err != nil {
			return nil, err
		}
		if chunkSize < 0 {
			return nil, fmt.Errorf("%s chunk has negative size", chunkID[:])
		}

		chunkData := make([]byte, chunkSize)
		if _, err := io.ReadFull(r, chunkData); err != nil {
			return nil, err
		}

		switch string(chunkID[:]) {
		case "MAIN":
			// children follow inline
			continue
		case "SIZE":
			if len(chunkData) < 12 {
				return nil, errors.New("SIZE chunk too small")
			}
			voxFile.Models = append(voxFile.Models, VoxModel{
				SizeX: binary.LittleEndian.Uint32(chunkData[0:4]),
				SizeY: binary.LittleEndian.Uint32(chunkData[4:8]),
				SizeZ: binary.LittleEndian.Uint32(chunkData[8:12]),
			})
		case "XYZI":
			if len(voxFile.Models) == 0 {
				return nil, errors.New("XYZI chunk before SIZE")
			}
			if len(chunkData) < 4 {
				return nil, errors.New("XYZI chunk too small")
			}
			model := &voxFile.Models[len(voxFile.Models)-1]
			numVoxels := binary.LittleEndian.Uint32(chunkData[:4])
			if int(numVoxels) > (len(chunkData)-4)/4 {
				return nil, errors.New("XYZI chunk data overflow")
			}
			model.Voxels = make([]Voxel, numVoxels)
			for i := 0; i < int(numVoxels); i++ {
				offset := 4 + i*4
				model.Voxels[i] = Voxel{
					X:          chunkData[offset],
					Y:          chunkData[offset+1],
					Z:          chunkData[offset+2],
					ColorIndex: chunkData[offset+3],
				}
			}
		case "RGBA":
			for i := 0; i < 255; i++ {
				offset := i * 4
				if offset+3 >= len(chunkData) {
					break
				}
				copy(voxFile.Palette[i+1][:], chunkData[offset:offset+4])
			}
		case "MATL":
			mat, err := parseMaterial(chunkData)
			if err != nil {
				return nil, err
			}
			voxFile.VoxMaterials = append(voxFile.VoxMaterials, mat)
		case "nTRN":
			trn, err := parseTransform(chunkData)
			if err != nil {
				return nil, err
			}
			voxFile.Transforms = append(voxFile.Transforms, trn)
		case "nSHP":
			shp, err := parseShape(chunkData)
			if err != nil {
				return nil, err
			}
			voxFile.Shapes[shp.ID] = shp
		}
	}

	return voxFile, nil
}

// chunkReader walks the little-endian primitives of a scene graph chunk.
type chunkReader struct {
	data []byte
	err  error
}

func (c *chunkReader) int32() int32 {
	if c.err != nil {
		return 0
	}
	if len(c.data) < 4 {
		c.err = io.ErrUnexpectedEOF
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(c.data[:4]))
	c.data = c.data[4:]
	return v
}

func (c *chunkReader) string() string {
	n := int(c.int32())
	if c.err != nil {
		return ""
	}
	if n < 0 || n > len(c.data) {
		c.err = io.ErrUnexpectedEOF
		return ""
	}
	s := string(c.data[:n])
	c.data = c.data[n:]
	return s
}

func (c *chunkReader) dict() map[string]string {
	n := int(c.int32())
	d := make(map[string]string)
	for i := 0; i < n && c.err == nil; i++ {
		k := c.string()
		d[k] = c.string()
	}
	return d
}

func parseTransform(data []byte) (VoxTransform, error) {
	c := &chunkReader{data: data}
	trn := VoxTransform{ID: int(c.int32())}
	attrs := c.dict()
	trn.Name = attrs["_name"]
	trn.ChildID = int(c.int32())
	c.int32() // reserved
	c.int32() // layer
	frames := int(c.int32())
	for i := 0; i < frames && c.err == nil; i++ {
		frame := c.dict()
		if i == 0 {
			trn.Translation = parseTranslation(frame["_t"])
		}
	}
	if c.err != nil {
		return trn, fmt.Errorf("nTRN chunk: %w", c.err)
	}
	return trn, nil
}

func parseTranslation(s string) [3]int32 {
	var t [3]int32
	for i, f := range strings.Fields(s) {
		if i >= 3 {
			break
		}
		v, err := strconv.ParseInt(f, 10, 32)
		if err == nil {
			t[i] = int32(v)
		}
	}
	return t
}

func parseShape(data []byte) (VoxShape, error) {
	c := &chunkReader{data: data}
	shp := VoxShape{ID: int(c.int32())}
	c.dict()
	n := int(c.int32())
	for i := 0; i < n && c.err == nil; i++ {
		shp.Models = append(shp.Models, int(c.int32()))
		c.dict()
	}
	if c.err != nil {
		return shp, fmt.Errorf("nSHP chunk: %w", c.err)
	}
	return shp, nil
}

func parseMaterial(data []byte) (VoxMaterial, error) {
	c := &chunkReader{data: data}
	mat := VoxMaterial{ID: int(c.int32())}
	mat.Property = c.dict()
	if c.err != nil {
		return mat, fmt.Errorf("MATL chunk: %w", c.err)
	}
	if w, ok := mat.Property["_weight"]; ok {
		if _, err := fmt.Sscanf(w, "%f", &mat.Weight); err != nil {
			return mat, err
		}
	}
	return mat, nil
}

func defaultPalette() VoxPalette {
	var palette VoxPalette
	for i := range palette {
		palette[i] = [4]uint8{255, 255, 255, 255} // white as fallback
	}
	return palette
}

// voxModelResult turns a decoded file into meshes. Named scene nodes give
// the mesh names; files without a scene graph get one mesh per model.
func voxModelResult(stem string, vf *VoxFile) *engine.ModelResult {
	root := engine.NewMesh("__root__", "__root__")
	root.Synthetic = true
	res := &engine.ModelResult{Meshes: []*engine.Mesh{root}}

	mat := engine.NewMaterial(stem)
	mat.SetColor("albedoColor", dominantColor(vf))

	add := func(name string, model int, t [3]int32) {
		m := engine.NewMesh(name, name)
		m.Primitive = "voxel"
		m.Material = mat
		m.SetParent(&root.Node)
		// MagicaVoxel is Z-up.
		m.Transform.Position = mgl32.Vec3{float32(t[0]), float32(t[2]), float32(t[1])}.Mul(VoxelUnitSize)
		m.SetMetadata("voxModel", model)
		if model >= 0 && model < len(vf.Models) {
			m.SetMetadata("voxels", len(vf.Models[model].Voxels))
		}
		res.Meshes = append(res.Meshes, m)
	}

	if len(vf.Transforms) == 0 {
		for i := range vf.Models {
			add(fmt.Sprintf("%s_%d", stem, i), i, [3]int32{})
		}
		return res
	}
	for _, trn := range vf.Transforms {
		shp, ok := vf.Shapes[trn.ChildID]
		if !ok {
			continue
		}
		for _, model := range shp.Models {
			name := trn.Name
			if name == "" {
				name = fmt.Sprintf("%s_%d", stem, model)
			}
			add(name, model, trn.Translation)
		}
	}
	return res
}

// dominantColor is the most used palette entry across all models.
func dominantColor(vf *VoxFile) engine.Color4 {
	var counts [256]int
	best := -1
	for _, m := range vf.Models {
		for _, v := range m.Voxels {
			counts[v.ColorIndex]++
			if best < 0 || counts[v.ColorIndex] > counts[best] {
				best = int(v.ColorIndex)
			}
		}
	}
	if best < 0 {
		return engine.RGB(1, 1, 1)
	}
	c := vf.Palette[best]
	return engine.Color4{R: float32(c[0]) / 255, G: float32(c[1]) / 255, B: float32(c[2]) / 255, A: float32(c[3]) / 255}
}
