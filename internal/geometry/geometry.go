package geometry

// MinVertices is the smallest vertex count that closes a polygon.
const MinVertices = 3

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func HasMinimumVertices(points []Point) bool {
	return len(points) >= MinVertices
}

// ContainsPoint reports whether p lies inside the polygon described by
// vertices using the even-odd ray casting rule. A horizontal ray is cast from
// p towards +X; every edge that straddles the ray and crosses it strictly to
// the right of p toggles the result. Points exactly on an edge or vertex get
// whatever the inequalities below produce.
func ContainsPoint(p Point, vertices []Point) bool {
	inside := false
	for i, j := 0, len(vertices)-1; i < len(vertices); j, i = i, i+1 {
		xi, yi := vertices[i].X, vertices[i].Y
		xj, yj := vertices[j].X, vertices[j].Y

		if (yi > p.Y) != (yj > p.Y) && p.X < (xj-xi)*(p.Y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Hit returns the index of the first polygon containing p, or -1.
func Hit(p Point, polygons [][]Point) int {
	for i, vertices := range polygons {
		if ContainsPoint(p, vertices) {
			return i
		}
	}
	return -1
}
