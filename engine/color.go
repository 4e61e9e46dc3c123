package engine

type Color4 struct {
	R, G, B, A float32
}

func RGB(r, g, b float32) Color4 {
	return Color4{R: r, G: g, B: b, A: 1}
}
