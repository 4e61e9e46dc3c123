package assets

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// voxWriter assembles MagicaVoxel chunks for tests.
type voxWriter struct {
	chunks bytes.Buffer
}

func (w *voxWriter) chunk(id string, content []byte) {
	w.chunks.WriteString(id)
	binary.Write(&w.chunks, binary.LittleEndian, int32(len(content)))
	binary.Write(&w.chunks, binary.LittleEndian, int32(0))
	w.chunks.Write(content)
}

func (w *voxWriter) bytes() []byte {
	var out bytes.Buffer
	out.WriteString(VOXMagicNumber)
	binary.Write(&out, binary.LittleEndian, int32(150))
	out.WriteString("MAIN")
	binary.Write(&out, binary.LittleEndian, int32(0))
	binary.Write(&out, binary.LittleEndian, int32(w.chunks.Len()))
	out.Write(w.chunks.Bytes())
	return out.Bytes()
}

type payload struct {
	bytes.Buffer
}

func (p *payload) i32(v int32) *payload {
	binary.Write(&p.Buffer, binary.LittleEndian, v)
	return p
}

func (p *payload) str(s string) *payload {
	p.i32(int32(len(s)))
	p.WriteString(s)
	return p
}

func (p *payload) dict(kv ...string) *payload {
	p.i32(int32(len(kv) / 2))
	for _, s := range kv {
		p.str(s)
	}
	return p
}

func (w *voxWriter) model(size [3]uint32, voxels ...Voxel) {
	var sz payload
	for _, s := range size {
		sz.i32(int32(s))
	}
	w.chunk("SIZE", sz.Bytes())

	var xyzi payload
	xyzi.i32(int32(len(voxels)))
	for _, v := range voxels {
		xyzi.Write([]byte{v.X, v.Y, v.Z, v.ColorIndex})
	}
	w.chunk("XYZI", xyzi.Bytes())
}

func (w *voxWriter) transform(id int32, name string, child int32, t string) {
	var p payload
	p.i32(id)
	if name != "" {
		p.dict("_name", name)
	} else {
		p.dict()
	}
	p.i32(child).i32(-1).i32(0).i32(1)
	if t != "" {
		p.dict("_t", t)
	} else {
		p.dict()
	}
	w.chunk("nTRN", p.Bytes())
}

func (w *voxWriter) shape(id int32, models ...int32) {
	var p payload
	p.i32(id).dict().i32(int32(len(models)))
	for _, m := range models {
		p.i32(m).dict()
	}
	w.chunk("nSHP", p.Bytes())
}
