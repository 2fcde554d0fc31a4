package mesh

// ElementType represents different element types
type ElementType int

const (
	Vertex ElementType = iota
	Line
	Line3
	Triangle
	Triangle6
	Quad
	Quad8
	Quad9
	Tet
	Tet10
	Hex
	Hex20
	Hex27
	Wedge
	Wedge15
	Pyramid
)

func (e ElementType) String() string {
	return [...]string{
		"Vertex", "Line", "Line3", "Triangle", "Triangle6",
		"Quad", "Quad8", "Quad9", "Tet", "Tet10",
		"Hex", "Hex20", "Hex27", "Wedge", "Wedge15", "Pyramid",
	}[e]
}

// NumNodes returns the node count for one element of this type
func (e ElementType) NumNodes() int {
	return [...]int{1, 2, 3, 3, 6, 4, 8, 9, 4, 10, 8, 20, 27, 6, 15, 5}[e]
}

// ExodusTypeMap maps the elem_type attribute strings found in Exodus II
// element blocks to element types. A block whose elem_type is not listed
// here is unsupported.
var ExodusTypeMap = map[string]ElementType{
	"SPHERE": Vertex,
	// curves
	"BEAM":  Line,
	"BEAM2": Line,
	"BAR2":  Line,
	"BEAM3": Line3,
	// surfaces
	"SHELL":    Quad,
	"SHELL4":   Quad,
	"QUAD":     Quad,
	"QUAD4":    Quad,
	"QUAD8":    Quad8,
	"SHELL8":   Quad8,
	"QUAD9":    Quad9,
	"SHELL9":   Quad9,
	"TRI":      Triangle,
	"TRIANGLE": Triangle,
	"TRI3":     Triangle,
	"TRI6":     Triangle6,
	// volumes
	"TET4":       Tet,
	"TETRA":      Tet,
	"TETRA4":     Tet,
	"TET10":      Tet10,
	"TETRA10":    Tet10,
	"HEX":        Hex,
	"HEX8":       Hex,
	"HEXAHEDRON": Hex,
	"HEX20":      Hex20,
	"HEX27":      Hex27,
	"WEDGE":      Wedge,
	"WEDGE6":     Wedge,
	"WEDGE15":    Wedge15,
	"PYRAMID":    Pyramid,
	"PYRAMID5":   Pyramid,
}

// VTK unstructured grid cell type codes, indexed by ElementType
var vtkCellCodes = [...]uint8{
	1,  // Vertex
	3,  // Line
	21, // Line3 (quadratic edge)
	5,  // Triangle
	22, // Triangle6
	9,  // Quad
	23, // Quad8
	28, // Quad9 (biquadratic quad)
	10, // Tet
	24, // Tet10
	12, // Hex
	25, // Hex20
	29, // Hex27 (triquadratic hexahedron)
	13, // Wedge
	26, // Wedge15
	14, // Pyramid
}

// VTKCode returns the VTK cell type code for this element type
func (e ElementType) VTKCode() uint8 {
	return vtkCellCodes[e]
}

// ElementTypeFromVTK maps a VTK cell type code back to an element type
func ElementTypeFromVTK(code uint8) (ElementType, bool) {
	for e, c := range vtkCellCodes {
		if c == code {
			return ElementType(e), true
		}
	}
	return 0, false
}
