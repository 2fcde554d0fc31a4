package readfiles

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/gomesh/mesh"
)

// Names used to round-trip set membership through VTU data arrays,
// which have no native notion of point or cell sets
const (
	PointSetPrefix  = "nodeset_"
	CellSetArrayKey = "block_id"
)

type vtkFile struct {
	XMLName    xml.Name `xml:"VTKFile"`
	Type       string   `xml:"type,attr"`
	ByteOrder  string   `xml:"byte_order,attr"`
	HeaderType string   `xml:"header_type,attr"`
	Grid       vtkGrid  `xml:"UnstructuredGrid"`
}

type vtkGrid struct {
	Pieces []vtkPiece `xml:"Piece"`
}

type vtkPiece struct {
	NumberOfPoints int          `xml:"NumberOfPoints,attr"`
	NumberOfCells  int          `xml:"NumberOfCells,attr"`
	Points         vtkArrayList `xml:"Points"`
	Cells          vtkArrayList `xml:"Cells"`
	PointData      vtkArrayList `xml:"PointData"`
	CellData       vtkArrayList `xml:"CellData"`
}

type vtkArrayList struct {
	Arrays []vtkDataArray `xml:"DataArray"`
}

func (l vtkArrayList) find(name string) (vtkDataArray, bool) {
	for _, a := range l.Arrays {
		if a.Name == name {
			return a, true
		}
	}
	return vtkDataArray{}, false
}

type vtkDataArray struct {
	Type       string `xml:"type,attr"`
	Name       string `xml:"Name,attr"`
	Components int    `xml:"NumberOfComponents,attr"`
	Format     string `xml:"format,attr"`
	Content    string `xml:",chardata"`
}

// ReadVTU reads a VTK XML unstructured grid file into a generic mesh.
// Point sets are recovered from "nodeset_*" point arrays and cell sets
// from the "block_id" cell array; both are consumed in the process.
// Malformed input panics with a ReadError.
func ReadVTU(filename string, verbose bool) *mesh.Mesh {
	if verbose {
		fmt.Printf("Reading VTU mesh file [%s]\n", filename)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		readErrorf("unable to read file %s: %v", filename, err)
	}
	return readVTUData(data, verbose)
}

func readVTUData(data []byte, verbose bool) *mesh.Mesh {
	var vf vtkFile
	if err := xml.Unmarshal(data, &vf); err != nil {
		readErrorf("vtu: malformed XML: %v", err)
	}
	if vf.Type != "" && vf.Type != "UnstructuredGrid" {
		readErrorf("vtu: unsupported VTKFile type %q", vf.Type)
	}
	if len(vf.Grid.Pieces) != 1 {
		readErrorf("vtu: expected one piece, found %d", len(vf.Grid.Pieces))
	}
	var (
		piece = vf.Grid.Pieces[0]
		m     = mesh.NewMesh()
		dec   = arrayDecoder{byteOrder: vf.ByteOrder, headerType: vf.HeaderType}
	)

	if len(piece.Points.Arrays) != 1 {
		readErrorf("vtu: expected one point coordinate array, found %d", len(piece.Points.Arrays))
	}
	coords := dec.floats(piece.Points.Arrays[0])
	if len(coords) != 3*piece.NumberOfPoints {
		readErrorf("vtu: coordinate array has %d values, expected %d", len(coords), 3*piece.NumberOfPoints)
	}
	m.Points = make([][3]float64, piece.NumberOfPoints)
	for i := range m.Points {
		m.Points[i] = [3]float64{coords[3*i], coords[3*i+1], coords[3*i+2]}
	}

	readVTUCells(m, piece, dec)

	for _, a := range piece.PointData.Arrays {
		if strings.HasPrefix(a.Name, PointSetPrefix) {
			setName := a.Name[len(PointSetPrefix):]
			var ids []int
			for i, x := range dec.floats(a) {
				if x != 0 {
					ids = append(ids, i)
				}
			}
			m.PointSets[setName] = ids
			continue
		}
		comps := a.Components
		if comps == 0 {
			comps = 1
		}
		m.PointData[a.Name] = mesh.PointField{Components: comps, Data: dec.floats(a)}
	}

	for _, a := range piece.CellData.Arrays {
		if a.Name == CellSetArrayKey {
			for i, x := range dec.floats(a) {
				key := strconv.Itoa(int(x))
				m.CellSets[key] = append(m.CellSets[key], i)
			}
			continue
		}
		m.CellData[a.Name] = dec.floats(a)
	}

	if verbose {
		fmt.Printf("%s", m)
	}
	return m
}

// readVTUCells unpacks the connectivity/offsets/types arrays, grouping
// consecutive cells of the same type into blocks
func readVTUCells(m *mesh.Mesh, piece vtkPiece, dec arrayDecoder) {
	var conn, offsets, types []int
	for _, name := range []string{"connectivity", "offsets", "types"} {
		a, ok := piece.Cells.find(name)
		if !ok {
			readErrorf("vtu: cell array %s not present", name)
		}
		switch name {
		case "connectivity":
			conn = dec.ints(a)
		case "offsets":
			offsets = dec.ints(a)
		case "types":
			types = dec.ints(a)
		}
	}
	if len(offsets) != piece.NumberOfCells || len(types) != piece.NumberOfCells {
		readErrorf("vtu: cell arrays sized for %d/%d cells, piece declares %d",
			len(offsets), len(types), piece.NumberOfCells)
	}
	start := 0
	for i := 0; i < len(types); i++ {
		et, ok := mesh.ElementTypeFromVTK(uint8(types[i]))
		if !ok {
			panic(UnsupportedElementTypeError{TypeName: fmt.Sprintf("VTK cell type %d", types[i])})
		}
		end := offsets[i]
		if end-start != et.NumNodes() {
			readErrorf("vtu: cell %d has %d nodes, %s needs %d", i, end-start, et, et.NumNodes())
		}
		nodes := make([]int, et.NumNodes())
		copy(nodes, conn[start:end])
		nb := len(m.CellBlocks)
		if nb == 0 || m.CellBlocks[nb-1].Type != et {
			m.CellBlocks = append(m.CellBlocks, mesh.CellBlock{Type: et})
			nb++
		}
		m.CellBlocks[nb-1].Conn = append(m.CellBlocks[nb-1].Conn, nodes)
		start = end
	}
}

// arrayDecoder converts a DataArray's payload to numeric slices. The
// ascii and inline base64 binary formats are handled; appended data
// blocks are not.
type arrayDecoder struct {
	byteOrder  string
	headerType string
}

func (d arrayDecoder) order() binary.ByteOrder {
	if d.byteOrder == "BigEndian" {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (d arrayDecoder) floats(a vtkDataArray) []float64 {
	switch a.Format {
	case "", "ascii":
		fields := strings.Fields(a.Content)
		out := make([]float64, len(fields))
		for i, s := range fields {
			x, err := strconv.ParseFloat(s, 64)
			if err != nil {
				readErrorf("vtu: array %s: bad value %q", a.Name, s)
			}
			out[i] = x
		}
		return out
	case "binary":
		return d.binaryFloats(a)
	case "appended":
		readErrorf("vtu: array %s uses the appended data format, which is not supported", a.Name)
	default:
		readErrorf("vtu: array %s has unknown format %q", a.Name, a.Format)
	}
	return nil
}

func (d arrayDecoder) ints(a vtkDataArray) []int {
	vals := d.floats(a)
	out := make([]int, len(vals))
	for i, x := range vals {
		out[i] = int(x)
	}
	return out
}

func (d arrayDecoder) binaryFloats(a vtkDataArray) []float64 {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(a.Content))
	if err != nil {
		readErrorf("vtu: array %s: bad base64 payload: %v", a.Name, err)
	}
	headerSize := 4
	if d.headerType == "UInt64" {
		headerSize = 8
	}
	if len(raw) < headerSize {
		readErrorf("vtu: array %s: binary payload shorter than its header", a.Name)
	}
	var nbytes int
	if headerSize == 8 {
		nbytes = int(d.order().Uint64(raw))
	} else {
		nbytes = int(d.order().Uint32(raw))
	}
	body := raw[headerSize:]
	if nbytes > len(body) {
		readErrorf("vtu: array %s: header declares %d bytes, payload has %d", a.Name, nbytes, len(body))
	}
	body = body[:nbytes]

	width, ok := vtkTypeWidth[a.Type]
	if !ok {
		readErrorf("vtu: array %s has unsupported value type %q", a.Name, a.Type)
	}
	if nbytes%width != 0 {
		readErrorf("vtu: array %s: %d bytes is not a whole number of %s values", a.Name, nbytes, a.Type)
	}
	n := nbytes / width
	out := make([]float64, n)
	bo := d.order()
	for i := 0; i < n; i++ {
		chunk := body[i*width:]
		switch a.Type {
		case "Float64":
			out[i] = math.Float64frombits(bo.Uint64(chunk))
		case "Float32":
			out[i] = float64(math.Float32frombits(bo.Uint32(chunk)))
		case "Int64":
			out[i] = float64(int64(bo.Uint64(chunk)))
		case "UInt64":
			out[i] = float64(bo.Uint64(chunk))
		case "Int32":
			out[i] = float64(int32(bo.Uint32(chunk)))
		case "UInt32":
			out[i] = float64(bo.Uint32(chunk))
		case "Int16":
			out[i] = float64(int16(bo.Uint16(chunk)))
		case "UInt16":
			out[i] = float64(bo.Uint16(chunk))
		case "Int8":
			out[i] = float64(int8(chunk[0]))
		case "UInt8":
			out[i] = float64(chunk[0])
		}
	}
	return out
}

var vtkTypeWidth = map[string]int{
	"Float64": 8, "Float32": 4,
	"Int64": 8, "UInt64": 8,
	"Int32": 4, "UInt32": 4,
	"Int16": 2, "UInt16": 2,
	"Int8": 1, "UInt8": 1,
}
