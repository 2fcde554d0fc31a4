package geometry

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/notargets/gomesh/InputDeck"
	"github.com/notargets/gomesh/disc"
	"github.com/notargets/gomesh/mesh"
	"github.com/notargets/gomesh/readfiles"
	"github.com/notargets/gomesh/writefiles"
)

// GeometryType tells how a deck describes its geometry
type GeometryType int

const (
	Undetermined GeometryType = iota
	Legacy                    // inline element sections
	ExternalGeometry          // referenced mesh file
)

func (g GeometryType) String() string {
	return [...]string{"Undetermined", "Legacy", "ExternalGeometry"}[g]
}

// State of a pipeline run
type State int

const (
	Uninitialized State = iota
	DetectingGeometryType
	LegacyConversion
	ExternalGeometryConversion
	Converted
	Failed
)

func (s State) String() string {
	return [...]string{
		"Uninitialized", "DetectingGeometryType", "LegacyConversion",
		"ExternalGeometryConversion", "Converted", "Failed",
	}[s]
}

// Mesh file formats the pipeline can ingest
var SupportedExtensions = map[string]bool{
	".exo": true,
	".e":   true,
	".vtu": true,
}

// UnsupportedFormatError signals a geometry file with an extension
// outside the supported set
type UnsupportedFormatError struct {
	File string
}

func (e UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported geometry file format: %s", e.File)
}

// GeometryTypeUndeterminedError signals a deck with neither a geometry
// file reference nor inline element sections
type GeometryTypeUndeterminedError struct{}

func (e GeometryTypeUndeterminedError) Error() string {
	return "unable to determine geometry type: deck has neither a geometry FILE nor inline elements"
}

// Classify decides how a deck describes its geometry. For external
// geometry the referenced file name is returned alongside. A malformed
// geometry section (no FILE, conflicting files) panics; a deck with no
// geometry at all yields Undetermined.
func Classify(dk *InputDeck.Deck) (GeometryType, string) {
	if file, ok := dk.GeometryFile(); ok {
		return ExternalGeometry, file
	}
	if dk.HasLegacyElements() {
		return Legacy, ""
	}
	return Undetermined, ""
}

// Pipeline runs one deck-to-visualization conversion. It is single use
// per Convert call and keeps no mesh state between runs; the scratch
// directory is assumed exclusive to one in-flight conversion.
type Pipeline struct {
	ScratchDir  string
	UseSetNames bool // key mesh sets by stored names instead of ordinals
	Overwrite   bool
	Verbose     bool
	NodeOrder   mesh.NodeOrderMap // nil selects the default table
	state       State
}

func NewPipeline(scratchDir string, verbose bool) *Pipeline {
	return &Pipeline{
		ScratchDir: scratchDir,
		Overwrite:  true,
		Verbose:    verbose,
		state:      Uninitialized,
	}
}

func (p *Pipeline) State() State {
	return p.state
}

// Convert runs the full pipeline for one deck and returns the path of
// the written visualization file. Any failure in any stage is caught
// here, logged with its cause, and reported as an empty path with the
// pipeline in the Failed state; errors do not propagate to the caller.
func (p *Pipeline) Convert(dk *InputDeck.Deck) (vtuPath string) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Error: geometry conversion failed: %v\n", r)
			p.state = Failed
			vtuPath = ""
		}
	}()
	p.state = DetectingGeometryType
	gt, geoFile := Classify(dk)
	outPath := filepath.Join(p.ScratchDir, deckStem(dk)+".vtu")

	var m *mesh.Mesh
	switch gt {
	case Legacy:
		p.state = LegacyConversion
		if p.Verbose {
			fmt.Printf("Converting inline geometry from [%s]\n", dk.Path)
		}
		m = disc.Export(disc.ReadLegacy(dk, p.Verbose))
	case ExternalGeometry:
		p.state = ExternalGeometryConversion
		m = p.convertExternal(dk, geoFile)
	default:
		panic(GeometryTypeUndeterminedError{})
	}

	if err := writefiles.WriteVTU(outPath, m, p.Overwrite, p.Verbose); err != nil {
		panic(err)
	}
	p.state = Converted
	if p.Verbose {
		fmt.Printf("Geometry converted to [%s]\n", outPath)
	}
	return outPath
}

func (p *Pipeline) convertExternal(dk *InputDeck.Deck, geoFile string) *mesh.Mesh {
	ext := strings.ToLower(filepath.Ext(geoFile))
	if !SupportedExtensions[ext] {
		panic(UnsupportedFormatError{File: geoFile})
	}
	meshPath := geoFile
	if !filepath.IsAbs(meshPath) {
		// referenced files are expected next to the scratch copy of the deck
		meshPath = filepath.Join(p.ScratchDir, filepath.Base(geoFile))
	}
	var m *mesh.Mesh
	switch ext {
	case ".exo", ".e":
		m = readfiles.ReadExodus(meshPath, p.UseSetNames, p.Verbose)
		m = mesh.CorrectNodeOrder(m, p.NodeOrder)
	case ".vtu":
		// pre-ordered, no node order correction
		m = readfiles.ReadVTU(meshPath, p.Verbose)
	}
	d := disc.FromMesh(m)
	disc.Enrich(d, dk, p.Verbose)
	return disc.Export(d)
}

func deckStem(dk *InputDeck.Deck) string {
	base := filepath.Base(dk.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
