package save

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/pthm-cable/cellsand/config"
	"github.com/pthm-cable/cellsand/element"
	"github.com/pthm-cable/cellsand/grid"
)

func writeI32(w io.Writer, v int32) { writeU32(w, uint32(v)) }

func readI32(r io.Reader) (int32, error) {
	v, err := readU32(r)
	return int32(v), err
}

func writeF32(w io.Writer, v float32) { writeU32(w, math.Float32bits(v)) }

func readF32(r io.Reader) (float32, error) {
	v, err := readU32(r)
	return math.Float32frombits(v), err
}

func writeI16(w io.Writer, v int16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(v))
	w.Write(b[:])
}

func readI16(r io.Reader) (int16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b[:])), nil
}

// --- particle section ---
//
// Only live particles are written, each tagged with its pool index so the
// sparse array can be rebuilt; positions are delta-coded against the
// previously written live particle (spec.md §6 "delta-coded 8/16-bit
// values"). Positions are stored as whole pixels and read back at the
// pixel centre (+0.5), where CreatePart places every particle and DoMove
// keeps it. Optional fields are gated by the same per-type whitelist on
// both sides, so no separate presence bitfield is needed — the type is
// always the first field read for a record.

func writeParticleSection(w io.Writer, parts []grid.Particle, reg *element.Registry) {
	writeU32(w, uint32(len(parts)))

	live := 0
	for _, p := range parts {
		if !p.IsVacant() {
			live++
		}
	}
	writeU32(w, uint32(live))

	var prevX, prevY int32
	for i, p := range parts {
		if p.IsVacant() {
			continue
		}
		writeU32(w, uint32(i))
		writeU32(w, uint32(p.Type))

		x, y := int32(p.X), int32(p.Y)
		writeI16(w, clampDelta(x-prevX))
		writeI16(w, clampDelta(y-prevY))
		prevX, prevY = x, y

		writeF32(w, p.VX)
		writeF32(w, p.VY)
		writeF32(w, p.Temp)
		writeI32(w, p.Tmp)
		writeU32(w, p.Flags)

		wl := whitelistFor(reg, p.Type)
		if wl.life {
			writeI32(w, p.Life)
		}
		if wl.ctype {
			writeI32(w, p.Ctype)
		}
		if wl.tmp2 {
			writeI32(w, p.Tmp2)
		}
		if wl.tmp3 {
			writeI32(w, p.Tmp3)
		}
		if wl.tmp4 {
			writeI32(w, p.Tmp4)
		}
		if wl.dcolour {
			writeU32(w, p.Dcolour)
		}
	}
}

func clampDelta(d int32) int16 {
	if d > math.MaxInt16 {
		return math.MaxInt16
	}
	if d < math.MinInt16 {
		return math.MinInt16
	}
	return int16(d)
}

func readParticleSection(r io.Reader, reg *element.Registry) ([]grid.Particle, error) {
	poolSize, err := readU32(r)
	if err != nil {
		return nil, &ParseError{Kind: Truncated, Field: "particle.poolSize", Reason: err.Error()}
	}
	live, err := readU32(r)
	if err != nil {
		return nil, &ParseError{Kind: Truncated, Field: "particle.liveCount", Reason: err.Error()}
	}
	if live > poolSize {
		return nil, &ParseError{Kind: Inconsistent, Field: "particle.liveCount", Reason: "live count exceeds pool size"}
	}

	parts := make([]grid.Particle, poolSize)
	var prevX, prevY int32

	for n := uint32(0); n < live; n++ {
		idx, err := readU32(r)
		if err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "particle.index", Reason: err.Error()}
		}
		if idx >= poolSize {
			return nil, &ParseError{Kind: Inconsistent, Field: "particle.index", Reason: "index out of pool bounds"}
		}
		typ, err := readU32(r)
		if err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "particle.type", Reason: err.Error()}
		}

		dx, err := readI16(r)
		if err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "particle.dx", Reason: err.Error()}
		}
		dy, err := readI16(r)
		if err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "particle.dy", Reason: err.Error()}
		}
		prevX += int32(dx)
		prevY += int32(dy)

		vx, err := readF32(r)
		if err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "particle.vx", Reason: err.Error()}
		}
		vy, err := readF32(r)
		if err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "particle.vy", Reason: err.Error()}
		}
		temp, err := readF32(r)
		if err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "particle.temp", Reason: err.Error()}
		}
		tmp, err := readI32(r)
		if err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "particle.tmp", Reason: err.Error()}
		}
		flags, err := readU32(r)
		if err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "particle.flags", Reason: err.Error()}
		}

		p := grid.Particle{
			Type: grid.ElementID(typ),
			X:    float32(prevX) + 0.5, Y: float32(prevY) + 0.5,
			VX: vx, VY: vy, Temp: temp, Tmp: tmp, Flags: flags,
		}

		wl := whitelistFor(reg, p.Type)
		if wl.life {
			if p.Life, err = readI32(r); err != nil {
				return nil, &ParseError{Kind: Truncated, Field: "particle.life", Reason: err.Error()}
			}
		}
		if wl.ctype {
			if p.Ctype, err = readI32(r); err != nil {
				return nil, &ParseError{Kind: Truncated, Field: "particle.ctype", Reason: err.Error()}
			}
		}
		if wl.tmp2 {
			if p.Tmp2, err = readI32(r); err != nil {
				return nil, &ParseError{Kind: Truncated, Field: "particle.tmp2", Reason: err.Error()}
			}
		}
		if wl.tmp3 {
			if p.Tmp3, err = readI32(r); err != nil {
				return nil, &ParseError{Kind: Truncated, Field: "particle.tmp3", Reason: err.Error()}
			}
		}
		if wl.tmp4 {
			if p.Tmp4, err = readI32(r); err != nil {
				return nil, &ParseError{Kind: Truncated, Field: "particle.tmp4", Reason: err.Error()}
			}
		}
		if wl.dcolour {
			if p.Dcolour, err = readU32(r); err != nil {
				return nil, &ParseError{Kind: Truncated, Field: "particle.dcolour", Reason: err.Error()}
			}
		}

		parts[idx] = p
	}

	return parts, nil
}

// --- wall section: RLE over bmap ---

func writeWallSection(w io.Writer, bmap []grid.WallType) {
	runs := rleEncode(bmap)
	writeU32(w, uint32(len(runs)))
	for _, run := range runs {
		writeU32(w, uint32(run.length))
		w.Write([]byte{byte(run.value)})
	}
}

type wallRun struct {
	length int
	value  grid.WallType
}

func rleEncode(bmap []grid.WallType) []wallRun {
	var runs []wallRun
	i := 0
	for i < len(bmap) {
		v := bmap[i]
		j := i + 1
		for j < len(bmap) && bmap[j] == v {
			j++
		}
		runs = append(runs, wallRun{length: j - i, value: v})
		i = j
	}
	return runs
}

func readWallSection(r io.Reader, total int) ([]grid.WallType, error) {
	numRuns, err := readU32(r)
	if err != nil {
		return nil, &ParseError{Kind: Truncated, Field: "wall.numRuns", Reason: err.Error()}
	}
	bmap := make([]grid.WallType, 0, total)
	for i := uint32(0); i < numRuns; i++ {
		length, err := readU32(r)
		if err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "wall.runLength", Reason: err.Error()}
		}
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "wall.runValue", Reason: err.Error()}
		}
		for j := uint32(0); j < length; j++ {
			bmap = append(bmap, grid.WallType(b[0]))
		}
	}
	if len(bmap) != total {
		return nil, &ParseError{Kind: Inconsistent, Field: "wall", Reason: "decoded run lengths don't sum to Cx*Cy"}
	}
	return bmap, nil
}

// --- air section: plain per-cell float arrays ---

func writeAirSection(w io.Writer, pv, vx, vy, hv []float32) {
	for _, f := range [][]float32{pv, vx, vy, hv} {
		for _, v := range f {
			writeF32(w, v)
		}
	}
}

func readAirSection(r io.Reader, total int) (pv, vx, vy, hv []float32, err error) {
	read := func(field string) ([]float32, error) {
		out := make([]float32, total)
		for i := range out {
			v, err := readF32(r)
			if err != nil {
				return nil, &ParseError{Kind: Truncated, Field: "air." + field, Reason: err.Error()}
			}
			out[i] = v
		}
		return out, nil
	}
	if pv, err = read("pv"); err != nil {
		return
	}
	if vx, err = read("vx"); err != nil {
		return
	}
	if vy, err = read("vy"); err != nil {
		return
	}
	hv, err = read("hv")
	return
}

// --- decoration section: RLE over particle Dcolour by pool index ---

func writeDecorationSection(w io.Writer, parts []grid.Particle) {
	dcolours := make([]uint32, len(parts))
	for i, p := range parts {
		dcolours[i] = p.Dcolour
	}
	runs := rleEncodeU32(dcolours)
	writeU32(w, uint32(len(runs)))
	for _, run := range runs {
		writeU32(w, uint32(run.length))
		writeU32(w, run.value)
	}
}

type u32Run struct {
	length int
	value  uint32
}

func rleEncodeU32(vals []uint32) []u32Run {
	var runs []u32Run
	i := 0
	for i < len(vals) {
		v := vals[i]
		j := i + 1
		for j < len(vals) && vals[j] == v {
			j++
		}
		runs = append(runs, u32Run{length: j - i, value: v})
		i = j
	}
	return runs
}

func readDecorationSection(r io.Reader, parts []grid.Particle) error {
	numRuns, err := readU32(r)
	if err != nil {
		return &ParseError{Kind: Truncated, Field: "decoration.numRuns", Reason: err.Error()}
	}
	pos := 0
	for i := uint32(0); i < numRuns; i++ {
		length, err := readU32(r)
		if err != nil {
			return &ParseError{Kind: Truncated, Field: "decoration.runLength", Reason: err.Error()}
		}
		value, err := readU32(r)
		if err != nil {
			return &ParseError{Kind: Truncated, Field: "decoration.runValue", Reason: err.Error()}
		}
		for j := uint32(0); j < length; j++ {
			if pos >= len(parts) {
				return &ParseError{Kind: Inconsistent, Field: "decoration", Reason: "runs overrun particle array"}
			}
			parts[pos].Dcolour = value
			pos++
		}
	}
	if pos != len(parts) {
		return &ParseError{Kind: Inconsistent, Field: "decoration", Reason: "runs don't cover the whole particle array"}
	}
	return nil
}

// --- sign section ---

func writeSignSection(w io.Writer, signs []grid.Sign) {
	writeU32(w, uint32(len(signs)))
	for _, s := range signs {
		writeI32(w, int32(s.X))
		writeI32(w, int32(s.Y))
		w.Write([]byte{byte(s.Justification)})
		text := []byte(s.Text)
		writeU32(w, uint32(len(text)))
		w.Write(text)
	}
}

func readSignSection(r io.Reader) ([]grid.Sign, error) {
	count, err := readU32(r)
	if err != nil {
		return nil, &ParseError{Kind: Truncated, Field: "signs.count", Reason: err.Error()}
	}
	if count > grid.MaxSigns {
		return nil, &ParseError{Kind: Inconsistent, Field: "signs.count", Reason: "exceeds MaxSigns"}
	}
	signs := make([]grid.Sign, 0, count)
	for i := uint32(0); i < count; i++ {
		x, err := readI32(r)
		if err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "signs.x", Reason: err.Error()}
		}
		y, err := readI32(r)
		if err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "signs.y", Reason: err.Error()}
		}
		var jb [1]byte
		if _, err := io.ReadFull(r, jb[:]); err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "signs.justification", Reason: err.Error()}
		}
		textLen, err := readU32(r)
		if err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "signs.textLen", Reason: err.Error()}
		}
		if textLen > grid.MaxSignText {
			return nil, &ParseError{Kind: Inconsistent, Field: "signs.textLen", Reason: "exceeds MaxSignText"}
		}
		text := make([]byte, textLen)
		if _, err := io.ReadFull(r, text); err != nil {
			return nil, &ParseError{Kind: Truncated, Field: "signs.text", Reason: err.Error()}
		}
		signs = append(signs, grid.Sign{
			X: int(x), Y: int(y),
			Justification: grid.Justification(jb[0]),
			Text:          string(text),
		})
	}
	return signs, nil
}

// --- scenario section ---

func writeScenarioSection(w io.Writer, s ScenarioFlags) {
	writeString(w, string(s.EdgeMode))
	writeString(w, string(s.GravityMode))
	writeString(w, string(s.AirMode))
	writeF32(w, s.AmbientTemp)
	writeBool(w, s.LegacyHeat)
	writeBool(w, s.NewtonianGravity)
	writeBool(w, s.WaterEqualization)
	writeBool(w, s.AmbientHeat)
}

func readScenarioSection(r io.Reader) (ScenarioFlags, error) {
	var s ScenarioFlags
	var err error

	edge, err := readString(r)
	if err != nil {
		return s, &ParseError{Kind: Truncated, Field: "scenario.edgeMode", Reason: err.Error()}
	}
	gravity, err := readString(r)
	if err != nil {
		return s, &ParseError{Kind: Truncated, Field: "scenario.gravityMode", Reason: err.Error()}
	}
	air, err := readString(r)
	if err != nil {
		return s, &ParseError{Kind: Truncated, Field: "scenario.airMode", Reason: err.Error()}
	}
	s.EdgeMode = config.EdgeMode(edge)
	s.GravityMode = config.GravityMode(gravity)
	s.AirMode = config.AirMode(air)

	if s.AmbientTemp, err = readF32(r); err != nil {
		return s, &ParseError{Kind: Truncated, Field: "scenario.ambientTemp", Reason: err.Error()}
	}
	if s.LegacyHeat, err = readBool(r); err != nil {
		return s, &ParseError{Kind: Truncated, Field: "scenario.legacyHeat", Reason: err.Error()}
	}
	if s.NewtonianGravity, err = readBool(r); err != nil {
		return s, &ParseError{Kind: Truncated, Field: "scenario.newtonianGravity", Reason: err.Error()}
	}
	if s.WaterEqualization, err = readBool(r); err != nil {
		return s, &ParseError{Kind: Truncated, Field: "scenario.waterEqualization", Reason: err.Error()}
	}
	if s.AmbientHeat, err = readBool(r); err != nil {
		return s, &ParseError{Kind: Truncated, Field: "scenario.ambientHeat", Reason: err.Error()}
	}
	return s, nil
}

func writeString(w io.Writer, s string) {
	writeU32(w, uint32(len(s)))
	io.WriteString(w, s)
}

func readString(r io.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeBool(w io.Writer, b bool) {
	if b {
		w.Write([]byte{1})
	} else {
		w.Write([]byte{0})
	}
}

func readBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

var _ = bytes.MinRead // keep bytes imported for potential future buffering helpers
