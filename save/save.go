// Package save implements spec.md §4.G/§6: a tagged-section, bit-packed
// save format for a simulation state, with version negotiation and an
// atomic parser that never partially mutates its target on failure.
//
// The source format is bzip2-compressed; Go's standard library only ships a
// bzip2 *reader* (compress/bzip2 has no writer), and no compression library
// appears anywhere in the example corpus this was grounded on to justify
// pulling in a third-party one for this alone. gzip is the closest stdlib
// analog that supports both directions, so the envelope here is gzip
// instead of bzip2; see DESIGN.md for the full justification.
package save

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pthm-cable/cellsand/config"
	"github.com/pthm-cable/cellsand/element"
	"github.com/pthm-cable/cellsand/grid"
	"github.com/pthm-cable/cellsand/update"
)

// ScenarioFlags is the save format's "scenario flags" section (spec.md
// §4.G): the runtime options that aren't part of the grid state itself but
// are needed to resume a simulation the way it was saved.
type ScenarioFlags struct {
	EdgeMode          config.EdgeMode
	GravityMode       config.GravityMode
	AirMode           config.AirMode
	AmbientTemp       float32
	LegacyHeat        bool
	NewtonianGravity  bool
	WaterEqualization bool
	AmbientHeat       bool
}

// Magic values identify the container version (spec.md §6). MagicLegacy
// ("OPS1") is accepted for decode only behind AllowLegacy, per spec.md §9
// open question (a): "accept only v3+ by default and gate legacy decode
// behind a flag."
var (
	MagicCurrent = [4]byte{'P', 'S', 'v', '3'}
	MagicLegacy  = [4]byte{'O', 'P', 'S', '1'}
)

// Section bits, in the optional-sections bitfield (spec.md §4.G).
const (
	sectionAir uint32 = 1 << iota
	sectionDecoration
	sectionSigns
)

// ParseErrorKind enumerates the typed failure reasons of spec.md §7
// ("ParseError{TooLarge|Truncated|BadMagic|UnknownSection|BadField(name)|Inconsistent}").
type ParseErrorKind int

const (
	TooLarge ParseErrorKind = iota
	Truncated
	BadMagic
	UnknownSection
	BadField
	Inconsistent
)

func (k ParseErrorKind) String() string {
	switch k {
	case TooLarge:
		return "TooLarge"
	case Truncated:
		return "Truncated"
	case BadMagic:
		return "BadMagic"
	case UnknownSection:
		return "UnknownSection"
	case BadField:
		return "BadField"
	case Inconsistent:
		return "Inconsistent"
	default:
		return "Unknown"
	}
}

// ParseError is the one error type the codec ever returns for decode
// failures (spec.md §7). Field is populated only for BadField.
type ParseError struct {
	Kind   ParseErrorKind
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("save: %s(%s): %s", e.Kind, e.Field, e.Reason)
	}
	return fmt.Sprintf("save: %s: %s", e.Kind, e.Reason)
}

// CheckFailed is returned when a saved grid's declared size would exceed
// the decoding target's configured maxima (spec.md §6 "fails with
// CheckFailed").
type CheckFailed struct {
	Which          string
	Value, Lo, Hi int
}

func (e CheckFailed) Error() string {
	return fmt.Sprintf("save: %s=%d out of range [%d,%d]", e.Which, e.Value, e.Lo, e.Hi)
}

// Options controls what Encode writes and what Decode accepts.
type Options struct {
	IncludePressure bool // include the air section (spec.md §4.G "includePressure")
	AllowLegacy     bool // accept MagicLegacy on decode (spec.md §9 open question a)
	MaxCx, MaxCy    int  // decode-time grid size ceiling; 0 means unbounded
}

// whitelist reports which optional particle fields element t persists,
// following spec.md §4.G "Persisted fields are chosen per element from a
// whitelist to keep save sizes small." Grounded on the same Class bitset
// package element already keys per-element behavior off of.
type whitelist struct {
	ctype, life, tmp2, tmp3, tmp4, dcolour bool
}

func whitelistFor(reg *element.Registry, t grid.ElementID) whitelist {
	e := reg.Get(t)
	if e == nil {
		return whitelist{}
	}
	return whitelist{
		ctype:    e.Class.Has(grid.ClassCtypeDraw) || e.Class.Has(grid.ClassPowered),
		life:     e.Class.Has(grid.ClassPartLifeDec) || e.Class.Has(grid.ClassLife),
		tmp2:     e.Class.Has(grid.ClassPowered) || e.Class.Has(grid.ClassRadioactive),
		tmp3:     e.Class.Has(grid.ClassPowered),
		tmp4:     e.Class.Has(grid.ClassEnergy),
		dcolour:  e.Class.Has(grid.ClassCtypeDraw),
	}
}

// Encode serializes sim's current state into the wire format (spec.md §6).
func Encode(sim *update.Sim, reg *element.Registry, opts Options) ([]byte, error) {
	st := sim.ExportState()

	var body bytes.Buffer
	sections := uint32(0)
	if opts.IncludePressure {
		sections |= sectionAir
	}
	sections |= sectionDecoration
	if len(st.Signs) > 0 {
		sections |= sectionSigns
	}

	writeU32(&body, uint32(st.Fields.Cx))
	writeU32(&body, uint32(st.Fields.Cy))
	writeU32(&body, sections)

	writeParticleSection(&body, st.Pool.Parts, reg)
	writeWallSection(&body, st.Fields.Bmap)
	if sections&sectionAir != 0 {
		writeAirSection(&body, st.Fields.Pv, st.Fields.Vx, st.Fields.Vy, st.Fields.Hv)
	}
	writeDecorationSection(&body, st.Pool.Parts)
	if sections&sectionSigns != 0 {
		writeSignSection(&body, st.Signs)
	}
	writeScenarioSection(&body, scenarioFromSim(sim))

	var out bytes.Buffer
	out.Write(MagicCurrent[:])
	gz := gzip.NewWriter(&out)
	if _, err := gz.Write(body.Bytes()); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Decode parses data into a SimState and its ScenarioFlags, validating the
// magic, grid size, and every section in sequence. On any error, both
// return values are zero and the caller's simulation is left untouched —
// Decode never partially applies a result (spec.md §7 "Save parsing is
// atomic").
func Decode(data []byte, reg *element.Registry, opts Options) (update.SimState, ScenarioFlags, error) {
	var st update.SimState
	var scenario ScenarioFlags

	if len(data) < 4 {
		return st, scenario, &ParseError{Kind: Truncated, Reason: "missing magic"}
	}
	var magic [4]byte
	copy(magic[:], data[:4])
	switch {
	case magic == MagicCurrent:
	case magic == MagicLegacy && opts.AllowLegacy:
	case magic == MagicLegacy:
		return st, scenario, &ParseError{Kind: BadMagic, Reason: "legacy OPS1 save rejected (AllowLegacy not set)"}
	default:
		return st, scenario, &ParseError{Kind: BadMagic, Reason: "unrecognized magic"}
	}

	gz, err := gzip.NewReader(bytes.NewReader(data[4:]))
	if err != nil {
		return st, scenario, &ParseError{Kind: Truncated, Reason: err.Error()}
	}
	defer gz.Close()
	body, err := io.ReadAll(gz)
	if err != nil {
		return st, scenario, &ParseError{Kind: Truncated, Reason: err.Error()}
	}

	r := bytes.NewReader(body)
	cx, err := readU32(r)
	if err != nil {
		return st, scenario, &ParseError{Kind: Truncated, Reason: "cx"}
	}
	cy, err := readU32(r)
	if err != nil {
		return st, scenario, &ParseError{Kind: Truncated, Reason: "cy"}
	}
	if opts.MaxCx > 0 && int(cx) > opts.MaxCx {
		return st, scenario, CheckFailed{Which: "Cx", Value: int(cx), Lo: 1, Hi: opts.MaxCx}
	}
	if opts.MaxCy > 0 && int(cy) > opts.MaxCy {
		return st, scenario, CheckFailed{Which: "Cy", Value: int(cy), Lo: 1, Hi: opts.MaxCy}
	}

	sections, err := readU32(r)
	if err != nil {
		return st, scenario, &ParseError{Kind: Truncated, Reason: "section bitfield"}
	}
	const knownSections = sectionAir | sectionDecoration | sectionSigns
	if sections&^knownSections != 0 {
		return st, scenario, &ParseError{Kind: UnknownSection, Reason: "reserved section bit set"}
	}

	st.Fields.Cx, st.Fields.Cy = int(cx), int(cy)

	parts, err := readParticleSection(r, reg)
	if err != nil {
		return update.SimState{}, ScenarioFlags{}, err
	}
	st.Pool.Parts = parts
	st.Pool.LastActive = len(parts) - 1
	st.Pool.ElementCount = countElements(parts)

	bmap, err := readWallSection(r, int(cx)*int(cy))
	if err != nil {
		return update.SimState{}, ScenarioFlags{}, err
	}
	st.Fields.Bmap = bmap

	if sections&sectionAir != 0 {
		pv, vx, vy, hv, err := readAirSection(r, int(cx)*int(cy))
		if err != nil {
			return update.SimState{}, ScenarioFlags{}, err
		}
		st.Fields.Pv, st.Fields.Vx, st.Fields.Vy, st.Fields.Hv = pv, vx, vy, hv
	}

	if err := readDecorationSection(r, st.Pool.Parts); err != nil {
		return update.SimState{}, ScenarioFlags{}, err
	}

	if sections&sectionSigns != 0 {
		signs, err := readSignSection(r)
		if err != nil {
			return update.SimState{}, ScenarioFlags{}, err
		}
		st.Signs = signs
	}

	scenario, err = readScenarioSection(r)
	if err != nil {
		return update.SimState{}, ScenarioFlags{}, err
	}

	return st, scenario, nil
}

func scenarioFromSim(sim *update.Sim) ScenarioFlags {
	rt := sim.Cfg.Applied.Runtime
	return ScenarioFlags{
		EdgeMode:          rt.EdgeMode,
		GravityMode:       rt.GravityMode,
		AirMode:           rt.AirMode,
		AmbientTemp:       rt.AmbientTemp,
		LegacyHeat:        rt.LegacyHeat,
		NewtonianGravity:  rt.NewtonianGravity,
		WaterEqualization: rt.WaterEqualization,
		AmbientHeat:       rt.AmbientHeat,
	}
}

func countElements(parts []grid.Particle) map[grid.ElementID]int {
	counts := make(map[grid.ElementID]int)
	for _, p := range parts {
		if !p.IsVacant() {
			counts[p.Type]++
		}
	}
	return counts
}

func writeU32(w io.Writer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}
