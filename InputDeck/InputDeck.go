package InputDeck

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
)

// Section name markers used to classify the deck's geometry description
const (
	ConditionPrefix = "DESIGN "  // boundary condition sections
	GeometrySuffix  = " GEOMETRY" // external geometry file sections
	ElementsSuffix  = " ELEMENTS" // legacy inline element sections
)

// Deck is a parsed 4C-style YAML input file: a flat mapping from section
// name to section content
type Deck struct {
	Path     string
	Sections map[string]interface{}
}

// ReadDeck reads and parses a YAML input file
func ReadDeck(filename string, verbose bool) (dk *Deck, err error) {
	if verbose {
		fmt.Printf("Reading input file [%s]\n", filename)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to read input file %s: %v", filename, err)
	}
	dk = &Deck{Path: filename}
	if err = dk.Parse(data); err != nil {
		return nil, fmt.Errorf("unable to parse input file %s: %v", filename, err)
	}
	return dk, nil
}

func (dk *Deck) Parse(data []byte) error {
	return yaml.Unmarshal(data, &dk.Sections)
}

// Section returns the named section's content
func (dk *Deck) Section(name string) (interface{}, bool) {
	v, ok := dk.Sections[name]
	return v, ok
}

// SectionNames returns all section names in sorted order
func (dk *Deck) SectionNames() (names []string) {
	for name := range dk.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// GeometrySections returns the names of sections declaring an external
// geometry file, in sorted order
func (dk *Deck) GeometrySections() (names []string) {
	for _, name := range dk.SectionNames() {
		if strings.HasSuffix(name, GeometrySuffix) {
			names = append(names, name)
		}
	}
	return
}

// HasLegacyElements reports whether the deck carries inline element
// sections, the legacy way of describing geometry
func (dk *Deck) HasLegacyElements() bool {
	for name := range dk.Sections {
		if strings.HasSuffix(name, ElementsSuffix) {
			return true
		}
	}
	return false
}

// GeometryFile returns the external mesh file referenced by the deck's
// geometry sections. A geometry section without a FILE key, or two
// sections naming different files, panics: both indicate a malformed deck.
// ok is false when the deck has no geometry sections at all.
func (dk *Deck) GeometryFile() (file string, ok bool) {
	for _, name := range dk.GeometrySections() {
		sec, isMap := dk.Sections[name].(map[string]interface{})
		if !isMap {
			panic(fmt.Errorf("section %s is not a mapping", name))
		}
		f, present := sec["FILE"]
		if !present {
			panic(fmt.Errorf("section %s declares no FILE", name))
		}
		fname, isString := f.(string)
		if !isString || fname == "" {
			panic(fmt.Errorf("section %s: FILE must be a non-empty string", name))
		}
		if ok && fname != file {
			panic(fmt.Errorf("multiple distinct geometry files: %s and %s", file, fname))
		}
		file, ok = fname, true
	}
	return
}

func (dk *Deck) Print() {
	fmt.Printf("\"%s\"\t\t= Input file\n", dk.Path)
	for _, name := range dk.SectionNames() {
		fmt.Printf("[%s]\n", name)
	}
}
