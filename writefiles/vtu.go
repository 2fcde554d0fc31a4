package writefiles

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/readfiles"
)

// WriteVTU writes a generic mesh as an ascii VTK XML unstructured grid.
// Point sets are serialized as "nodeset_*" membership arrays and cell
// sets as the "block_id" cell array, matching what the reader recovers.
// An existing file is only replaced when overwrite is set.
func WriteVTU(filename string, m *mesh.Mesh, overwrite, verbose bool) error {
	if !overwrite {
		if _, err := os.Stat(filename); err == nil {
			return fmt.Errorf("output file %s exists, not overwriting", filename)
		}
	}
	if verbose {
		fmt.Printf("Writing VTU mesh file [%s]\n", filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("unable to create %s: %v", filename, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	writeVTUContent(w, m)
	if err = w.Flush(); err != nil {
		return fmt.Errorf("unable to write %s: %v", filename, err)
	}
	return nil
}

func writeVTUContent(w *bufio.Writer, m *mesh.Mesh) {
	ncells := m.NumCells()
	fmt.Fprintf(w, "<?xml version=\"1.0\"?>\n")
	fmt.Fprintf(w, "<VTKFile type=\"UnstructuredGrid\" version=\"0.1\" byte_order=\"LittleEndian\">\n")
	fmt.Fprintf(w, "  <UnstructuredGrid>\n")
	fmt.Fprintf(w, "    <Piece NumberOfPoints=\"%d\" NumberOfCells=\"%d\">\n",
		len(m.Points), ncells)

	fmt.Fprintf(w, "      <Points>\n")
	openArray(w, "Float64", "Points", 3)
	for _, p := range m.Points {
		fmt.Fprintf(w, "          %v %v %v\n", p[0], p[1], p[2])
	}
	closeArray(w)
	fmt.Fprintf(w, "      </Points>\n")

	writeVTUCells(w, m)
	writeVTUPointData(w, m)
	writeVTUCellData(w, m, ncells)

	fmt.Fprintf(w, "    </Piece>\n")
	fmt.Fprintf(w, "  </UnstructuredGrid>\n")
	fmt.Fprintf(w, "</VTKFile>\n")
}

func writeVTUCells(w *bufio.Writer, m *mesh.Mesh) {
	fmt.Fprintf(w, "      <Cells>\n")
	openArray(w, "Int64", "connectivity", 0)
	for _, blk := range m.CellBlocks {
		for _, nodes := range blk.Conn {
			fmt.Fprintf(w, "         ")
			for _, n := range nodes {
				fmt.Fprintf(w, " %d", n)
			}
			fmt.Fprintf(w, "\n")
		}
	}
	closeArray(w)
	openArray(w, "Int64", "offsets", 0)
	offset := 0
	for _, blk := range m.CellBlocks {
		for _, nodes := range blk.Conn {
			offset += len(nodes)
			fmt.Fprintf(w, "          %d\n", offset)
		}
	}
	closeArray(w)
	openArray(w, "UInt8", "types", 0)
	for _, blk := range m.CellBlocks {
		code := blk.Type.VTKCode()
		for range blk.Conn {
			fmt.Fprintf(w, "          %d\n", code)
		}
	}
	closeArray(w)
	fmt.Fprintf(w, "      </Cells>\n")
}

func writeVTUPointData(w *bufio.Writer, m *mesh.Mesh) {
	if len(m.PointData) == 0 && len(m.PointSets) == 0 {
		return
	}
	fmt.Fprintf(w, "      <PointData>\n")
	names := make([]string, 0, len(m.PointData))
	for k := range m.PointData {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		field := m.PointData[name]
		openArray(w, "Float64", name, field.Components)
		for i := 0; i < len(field.Data); i += field.Components {
			fmt.Fprintf(w, "         ")
			for j := 0; j < field.Components; j++ {
				fmt.Fprintf(w, " %v", field.Data[i+j])
			}
			fmt.Fprintf(w, "\n")
		}
		closeArray(w)
	}
	setNames := make([]string, 0, len(m.PointSets))
	for k := range m.PointSets {
		setNames = append(setNames, k)
	}
	sort.Strings(setNames)
	for _, name := range setNames {
		membership := make([]float64, len(m.Points))
		for _, i := range m.PointSets[name] {
			membership[i] = 1
		}
		openArray(w, "Float64", readfiles.PointSetPrefix+name, 1)
		for _, x := range membership {
			fmt.Fprintf(w, "          %v\n", x)
		}
		closeArray(w)
	}
	fmt.Fprintf(w, "      </PointData>\n")
}

func writeVTUCellData(w *bufio.Writer, m *mesh.Mesh, ncells int) {
	_, haveBlockIds := m.CellData[readfiles.CellSetArrayKey]
	writeSets := len(m.CellSets) > 0 && !haveBlockIds
	if len(m.CellData) == 0 && !writeSets {
		return
	}
	fmt.Fprintf(w, "      <CellData>\n")
	names := make([]string, 0, len(m.CellData))
	for k := range m.CellData {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		openArray(w, "Float64", name, 1)
		for _, x := range m.CellData[name] {
			fmt.Fprintf(w, "          %v\n", x)
		}
		closeArray(w)
	}
	if writeSets {
		blockIds := make([]int, ncells)
		for i := range blockIds {
			blockIds[i] = -1
		}
		for name, ids := range m.CellSets {
			id, err := strconv.Atoi(name)
			if err != nil {
				fmt.Printf("Warning: cell set %q has no numeric id, not serialized\n", name)
				continue
			}
			for _, i := range ids {
				blockIds[i] = id
			}
		}
		openArray(w, "Int64", readfiles.CellSetArrayKey, 1)
		for _, id := range blockIds {
			fmt.Fprintf(w, "          %d\n", id)
		}
		closeArray(w)
	}
	fmt.Fprintf(w, "      </CellData>\n")
}

func openArray(w *bufio.Writer, vtype, name string, comps int) {
	fmt.Fprintf(w, "        <DataArray type=%q Name=%q", vtype, name)
	if comps > 1 {
		fmt.Fprintf(w, " NumberOfComponents=\"%d\"", comps)
	}
	fmt.Fprintf(w, " format=\"ascii\">\n")
}

func closeArray(w *bufio.Writer) {
	fmt.Fprintf(w, "        </DataArray>\n")
}
