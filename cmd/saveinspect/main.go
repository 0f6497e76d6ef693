// Command saveinspect is a headless diagnostic tool for the save codec
// (spec.md §4.G): it decodes a save file and prints its grid size, section
// flags, and per-element particle counts without ever constructing a Sim,
// the same "load, print, exit" shape as pthm-soup/cmd/potentialpreview's
// CLI flag handling minus its raylib loop.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/pthm-cable/cellsand/element"
	"github.com/pthm-cable/cellsand/grid"
	"github.com/pthm-cable/cellsand/save"
)

func main() {
	path := flag.String("file", "", "path to a saved simulation file")
	allowLegacy := flag.Bool("allow-legacy", false, "accept legacy OPS1 saves")
	maxCx := flag.Int("max-cx", 0, "reject saves wider than this many cells (0 = unbounded)")
	maxCy := flag.Int("max-cy", 0, "reject saves taller than this many cells (0 = unbounded)")
	flag.Parse()

	if *path == "" {
		log.Fatal("-file is required")
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("reading %s: %v", *path, err)
	}

	reg := element.NewRegistry()
	element.RegisterBuiltins(reg)

	st, scenario, err := save.Decode(data, reg, save.Options{
		AllowLegacy: *allowLegacy,
		MaxCx:       *maxCx,
		MaxCy:       *maxCy,
	})
	if err != nil {
		log.Fatalf("decode failed: %v", err)
	}

	fmt.Printf("grid: %dx%d cells\n", st.Fields.Cx, st.Fields.Cy)
	fmt.Printf("particles: %d (last active index %d)\n", len(st.Pool.Parts), st.Pool.LastActive)
	fmt.Printf("signs: %d\n", len(st.Signs))
	fmt.Printf("scenario: edge=%s gravity=%s air=%s ambient=%.1fK newtonian=%v\n",
		scenario.EdgeMode, scenario.GravityMode, scenario.AirMode, scenario.AmbientTemp, scenario.NewtonianGravity)

	ids := make([]int, 0, len(st.Pool.ElementCount))
	for id := range st.Pool.ElementCount {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	fmt.Println("element counts:")
	for _, id := range ids {
		eid := grid.ElementID(id)
		count := st.Pool.ElementCount[eid]
		name := "?"
		if e := reg.Get(eid); e != nil {
			name = e.Name
		}
		fmt.Printf("  %-6s %d\n", name, count)
	}
}
