package readfiles

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

/*
Minimal decoder for the NetCDF classic format (CDF-1 and CDF-2), which is
the container Exodus II files are written in. Only the features Exodus
uses are handled: dimensions, global and per-variable attributes, fixed
and record variables of the six classic types. 64-bit-data (CDF-5) and
HDF5-based NetCDF-4 files are rejected.

All multi-byte fields are big-endian. The header is a sequence of tagged
lists:

	magic numrecs dim_list gatt_list var_list

followed by the data section, located via each variable's begin offset.
*/

const (
	ncByte   = 1
	ncChar   = 2
	ncShort  = 3
	ncInt    = 4
	ncFloat  = 5
	ncDouble = 6

	tagDimension = 0x0A
	tagVariable  = 0x0B
	tagAttribute = 0x0C
)

var ncTypeSize = map[int32]int{
	ncByte:   1,
	ncChar:   1,
	ncShort:  2,
	ncInt:    4,
	ncFloat:  4,
	ncDouble: 8,
}

type ncDim struct {
	Name   string
	Length int // 0 for the unlimited (record) dimension
}

type ncVar struct {
	Name     string
	DimIDs   []int
	Atts     map[string]interface{}
	Type     int32
	VSize    int64
	Begin    int64
	IsRecord bool
}

type ncFile struct {
	raw     []byte
	version int
	NumRecs int
	Dims    []ncDim
	Atts    map[string]interface{}
	Vars    map[string]*ncVar
	VarList []*ncVar // header order
	recSize int64
}

type ncCursor struct {
	data []byte
	pos  int
}

func (c *ncCursor) bytes(n int) []byte {
	if c.pos+n > len(c.data) {
		readErrorf("netcdf: truncated header, need %d bytes at offset %d", n, c.pos)
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *ncCursor) int32() int32 {
	return int32(binary.BigEndian.Uint32(c.bytes(4)))
}

func (c *ncCursor) int64() int64 {
	return int64(binary.BigEndian.Uint64(c.bytes(8)))
}

// name reads a length-prefixed string padded to a 4-byte boundary
func (c *ncCursor) name() string {
	n := int(c.int32())
	s := string(c.bytes(n))
	if pad := (4 - n%4) % 4; pad > 0 {
		c.bytes(pad)
	}
	return s
}

func parseNC(data []byte) (f *ncFile) {
	if len(data) < 8 || data[0] != 'C' || data[1] != 'D' || data[2] != 'F' {
		readErrorf("netcdf: bad magic, not a classic NetCDF file")
	}
	version := int(data[3])
	if version != 1 && version != 2 {
		readErrorf("netcdf: unsupported format version %d, only CDF-1 and CDF-2 are handled", version)
	}
	f = &ncFile{
		raw:     data,
		version: version,
		Atts:    make(map[string]interface{}),
		Vars:    make(map[string]*ncVar),
	}
	c := &ncCursor{data: data, pos: 4}
	f.NumRecs = int(c.int32())
	if f.NumRecs < 0 { // streaming sentinel 0xFFFFFFFF
		f.NumRecs = 0
	}
	f.Dims = parseDimList(c)
	f.Atts = parseAttList(c)
	parseVarList(c, f)
	return
}

func parseDimList(c *ncCursor) (dims []ncDim) {
	tag := c.int32()
	nelems := int(c.int32())
	if tag == 0 && nelems == 0 {
		return nil
	}
	if tag != tagDimension {
		readErrorf("netcdf: expected dimension list tag, got 0x%X", tag)
	}
	dims = make([]ncDim, nelems)
	for i := range dims {
		dims[i].Name = c.name()
		dims[i].Length = int(c.int32())
	}
	return
}

func parseAttList(c *ncCursor) map[string]interface{} {
	tag := c.int32()
	nelems := int(c.int32())
	if tag == 0 && nelems == 0 {
		return map[string]interface{}{}
	}
	if tag != tagAttribute {
		readErrorf("netcdf: expected attribute list tag, got 0x%X", tag)
	}
	atts := make(map[string]interface{}, nelems)
	for i := 0; i < nelems; i++ {
		name := c.name()
		atype := c.int32()
		n := int(c.int32())
		size, ok := ncTypeSize[atype]
		if !ok {
			readErrorf("netcdf: attribute %s has unknown type %d", name, atype)
		}
		raw := c.bytes(n * size)
		if pad := (4 - (n*size)%4) % 4; pad > 0 {
			c.bytes(pad)
		}
		if atype == ncChar {
			atts[name] = strings.TrimRight(string(raw), "\x00")
		} else {
			atts[name] = decodeNumeric(raw, atype, n)
		}
	}
	return atts
}

func parseVarList(c *ncCursor, f *ncFile) {
	tag := c.int32()
	nelems := int(c.int32())
	if tag == 0 && nelems == 0 {
		return
	}
	if tag != tagVariable {
		readErrorf("netcdf: expected variable list tag, got 0x%X", tag)
	}
	var nRecVars int
	var lastRec *ncVar
	for i := 0; i < nelems; i++ {
		v := &ncVar{}
		v.Name = c.name()
		ndims := int(c.int32())
		v.DimIDs = make([]int, ndims)
		for j := range v.DimIDs {
			v.DimIDs[j] = int(c.int32())
		}
		v.Atts = parseAttList(c)
		v.Type = c.int32()
		v.VSize = int64(c.int32())
		if f.version == 2 {
			v.Begin = c.int64()
		} else {
			v.Begin = int64(c.int32())
		}
		if ndims > 0 && f.Dims[v.DimIDs[0]].Length == 0 {
			v.IsRecord = true
			nRecVars++
			lastRec = v
		}
		f.Vars[v.Name] = v
		f.VarList = append(f.VarList, v)
	}
	// A single record variable of a type narrower than 4 bytes is packed
	// without padding; otherwise records stride by the padded vsize sum.
	if nRecVars == 1 {
		f.recSize = int64(f.recNelems(lastRec) * ncTypeSize[lastRec.Type])
	} else {
		for _, v := range f.VarList {
			if v.IsRecord {
				f.recSize += v.VSize
			}
		}
	}
}

// nelems returns the number of elements in one read of v: the full
// variable for fixed variables, one record's worth for record variables.
func (f *ncFile) nelems(v *ncVar) int {
	n := 1
	for _, id := range v.DimIDs {
		if l := f.Dims[id].Length; l > 0 {
			n *= l
		}
	}
	return n
}

func (f *ncFile) recNelems(v *ncVar) int {
	return f.nelems(v)
}

func (f *ncFile) lookup(name string) *ncVar {
	v, ok := f.Vars[name]
	if !ok {
		readErrorf("netcdf: variable %s not present", name)
	}
	return v
}

func (f *ncFile) has(name string) bool {
	_, ok := f.Vars[name]
	return ok
}

func (f *ncFile) dimLength(name string) (int, bool) {
	for _, d := range f.Dims {
		if d.Name == name {
			return d.Length, true
		}
	}
	return 0, false
}

// slab reads nelems values of v starting at the given byte offset,
// converting any numeric type to float64
func (f *ncFile) slab(v *ncVar, offset int64, nelems int) []float64 {
	size := ncTypeSize[v.Type]
	end := offset + int64(nelems*size)
	if end > int64(len(f.raw)) {
		readErrorf("netcdf: variable %s data extends past end of file", v.Name)
	}
	return decodeNumeric(f.raw[offset:end], v.Type, nelems)
}

// Floats reads a fixed (non-record) variable as float64 values
func (f *ncFile) Floats(name string) []float64 {
	v := f.lookup(name)
	if v.IsRecord {
		readErrorf("netcdf: variable %s is a record variable", name)
	}
	return f.slab(v, v.Begin, f.nelems(v))
}

// RecordFloats reads record rec of a record variable as float64 values
func (f *ncFile) RecordFloats(name string, rec int) []float64 {
	v := f.lookup(name)
	if !v.IsRecord {
		readErrorf("netcdf: variable %s is not a record variable", name)
	}
	if rec < 0 || rec >= f.NumRecs {
		readErrorf("netcdf: record %d out of range for %s, file has %d", rec, name, f.NumRecs)
	}
	return f.slab(v, v.Begin+int64(rec)*f.recSize, f.recNelems(v))
}

// Ints reads a fixed variable as int values
func (f *ncFile) Ints(name string) []int {
	vals := f.Floats(name)
	out := make([]int, len(vals))
	for i, x := range vals {
		out[i] = int(x)
	}
	return out
}

// Strings reads a 2D char variable as one string per row, trimming NUL
// padding and surrounding whitespace
func (f *ncFile) Strings(name string) []string {
	v := f.lookup(name)
	if v.Type != ncChar {
		readErrorf("netcdf: variable %s is not a char variable", name)
	}
	if len(v.DimIDs) != 2 {
		readErrorf("netcdf: char variable %s is not two-dimensional", name)
	}
	rows := f.Dims[v.DimIDs[0]].Length
	width := f.Dims[v.DimIDs[1]].Length
	end := v.Begin + int64(rows*width)
	if end > int64(len(f.raw)) {
		readErrorf("netcdf: variable %s data extends past end of file", name)
	}
	out := make([]string, rows)
	for i := 0; i < rows; i++ {
		row := f.raw[v.Begin+int64(i*width) : v.Begin+int64((i+1)*width)]
		out[i] = strings.TrimSpace(strings.TrimRight(string(row), "\x00"))
	}
	return out
}

func decodeNumeric(raw []byte, nctype int32, nelems int) []float64 {
	out := make([]float64, nelems)
	switch nctype {
	case ncByte:
		for i := range out {
			out[i] = float64(int8(raw[i]))
		}
	case ncShort:
		for i := range out {
			out[i] = float64(int16(binary.BigEndian.Uint16(raw[2*i:])))
		}
	case ncInt:
		for i := range out {
			out[i] = float64(int32(binary.BigEndian.Uint32(raw[4*i:])))
		}
	case ncFloat:
		for i := range out {
			out[i] = float64(math.Float32frombits(binary.BigEndian.Uint32(raw[4*i:])))
		}
	case ncDouble:
		for i := range out {
			out[i] = math.Float64frombits(binary.BigEndian.Uint64(raw[8*i:]))
		}
	default:
		panic(ReadError{Msg: fmt.Sprintf("netcdf: cannot decode type %d as numeric", nctype)})
	}
	return out
}
