// Package modfile implements the module-interface (.vamod) binary codec:
// a magic number, a version byte and an entry count, then one entry per
// export. Each entry is a tag byte (function vs global), then its
// fixed-size metadata (flags, and for functions the parameter count),
// then its length-prefixed strings. The on-disk layout and its little-endian,
// explicit-offset decoding style are grounded on
// gmofishsauce/wut4/lang/yld/{types,reader,output}.go's WOF object
// format — the same fixed-header-then-tables shape, generalized from
// WOF's code/data/symbol/relocation sections down to spec.md §3's
// simpler "exported prototypes and globals" payload. Per §9's "Module
// interface format" redesign flag, this replaces the teacher's original
// third-party serialization with the explicit schema specified there.
package modfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Magic identifies a .vamod file, analogous to yld/types.go's MAGIC_WOF.
const Magic uint32 = 0x564D4F31 // "VMO1"

// Version is the current on-disk format version.
const Version uint8 = 1

// EntryTag discriminates the two exportable symbol shapes of spec.md §3.
type EntryTag uint8

const (
	TagFunction EntryTag = 0
	TagGlobal   EntryTag = 1
)

// FunctionEntry is one exported function prototype (spec.md §3: "name,
// return type name, parameter type names, mangling flag").
type FunctionEntry struct {
	Name        string
	ReturnType  string
	ParamTypes  []string
	Mangle      bool
	MangledName string
}

// GlobalEntry is one exported global variable: name, type name and
// mutability. No source location is stored for a global.
type GlobalEntry struct {
	Name     string
	TypeName string
	Mutable  bool
}

// Module is the in-memory form of a .vamod file's payload: the export
// set of one compiled source module.
type Module struct {
	Functions []FunctionEntry
	Globals   []GlobalEntry
}

// Write serializes m to path following the header in the package doc.
func Write(path string, m *Module) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "modfile: creating %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeHeader(w, len(m.Functions)+len(m.Globals)); err != nil {
		return err
	}
	for _, fn := range m.Functions {
		if err := writeFunctionEntry(w, fn); err != nil {
			return err
		}
	}
	for _, g := range m.Globals {
		if err := writeGlobalEntry(w, g); err != nil {
			return err
		}
	}
	return w.Flush()
}

func writeHeader(w io.Writer, count int) error {
	if err := binary.Write(w, binary.LittleEndian, Magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, Version); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, uint32(count))
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func writeFunctionEntry(w io.Writer, fn FunctionEntry) error {
	if err := binary.Write(w, binary.LittleEndian, uint8(TagFunction)); err != nil {
		return err
	}
	// fixed-size metadata block: mangle flag + param count
	mangleFlag := uint8(0)
	if fn.Mangle {
		mangleFlag = 1
	}
	if err := binary.Write(w, binary.LittleEndian, mangleFlag); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(fn.ParamTypes))); err != nil {
		return err
	}
	if err := writeString(w, fn.Name); err != nil {
		return err
	}
	if err := writeString(w, fn.ReturnType); err != nil {
		return err
	}
	if err := writeString(w, fn.MangledName); err != nil {
		return err
	}
	for _, pt := range fn.ParamTypes {
		if err := writeString(w, pt); err != nil {
			return err
		}
	}
	return nil
}

func writeGlobalEntry(w io.Writer, g GlobalEntry) error {
	if err := binary.Write(w, binary.LittleEndian, uint8(TagGlobal)); err != nil {
		return err
	}
	mutFlag := uint8(0)
	if g.Mutable {
		mutFlag = 1
	}
	if err := binary.Write(w, binary.LittleEndian, mutFlag); err != nil {
		return err
	}
	if err := writeString(w, g.Name); err != nil {
		return err
	}
	return writeString(w, g.TypeName)
}

// Read deserializes the .vamod file at path.
func Read(path string) (*Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "modfile: opening %s", path)
	}
	defer f.Close()
	return ReadFrom(bufio.NewReader(f))
}

// ReadFrom is the streaming counterpart of Read, used directly by tests.
func ReadFrom(r io.Reader) (*Module, error) {
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, errors.Wrap(err, "modfile: reading magic")
	}
	if magic != Magic {
		return nil, fmt.Errorf("modfile: bad magic 0x%08X (expected 0x%08X)", magic, Magic)
	}
	var version uint8
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, errors.Wrap(err, "modfile: reading version")
	}
	if version != Version {
		return nil, fmt.Errorf("modfile: unsupported version %d (expected %d)", version, Version)
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, errors.Wrap(err, "modfile: reading entry count")
	}

	m := &Module{}
	for i := uint32(0); i < count; i++ {
		var tag uint8
		if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
			return nil, errors.Wrapf(err, "modfile: reading entry %d tag", i)
		}
		switch EntryTag(tag) {
		case TagFunction:
			fn, err := readFunctionEntry(r)
			if err != nil {
				return nil, errors.Wrapf(err, "modfile: entry %d", i)
			}
			m.Functions = append(m.Functions, fn)
		case TagGlobal:
			g, err := readGlobalEntry(r)
			if err != nil {
				return nil, errors.Wrapf(err, "modfile: entry %d", i)
			}
			m.Globals = append(m.Globals, g)
		default:
			return nil, fmt.Errorf("modfile: entry %d: unknown tag %d", i, tag)
		}
	}
	return m, nil
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readFunctionEntry(r io.Reader) (FunctionEntry, error) {
	var mangleFlag uint8
	var paramCount uint16
	if err := binary.Read(r, binary.LittleEndian, &mangleFlag); err != nil {
		return FunctionEntry{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &paramCount); err != nil {
		return FunctionEntry{}, err
	}
	name, err := readString(r)
	if err != nil {
		return FunctionEntry{}, err
	}
	retType, err := readString(r)
	if err != nil {
		return FunctionEntry{}, err
	}
	mangled, err := readString(r)
	if err != nil {
		return FunctionEntry{}, err
	}
	var params []string
	if paramCount > 0 {
		params = make([]string, paramCount)
	}
	for i := range params {
		params[i], err = readString(r)
		if err != nil {
			return FunctionEntry{}, err
		}
	}
	return FunctionEntry{
		Name: name, ReturnType: retType, ParamTypes: params,
		Mangle: mangleFlag != 0, MangledName: mangled,
	}, nil
}

func readGlobalEntry(r io.Reader) (GlobalEntry, error) {
	var mutFlag uint8
	if err := binary.Read(r, binary.LittleEndian, &mutFlag); err != nil {
		return GlobalEntry{}, err
	}
	name, err := readString(r)
	if err != nil {
		return GlobalEntry{}, err
	}
	typeName, err := readString(r)
	if err != nil {
		return GlobalEntry{}, err
	}
	return GlobalEntry{Name: name, TypeName: typeName, Mutable: mutFlag != 0}, nil
}
