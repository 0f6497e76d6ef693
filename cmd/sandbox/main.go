// Command sandbox is the thin interactive viewer spec.md §1 places outside
// core scope: it blits an engine.Orchestrator's renderer.Frame to a raylib
// texture and forwards mouse/keyboard to the editing primitives (package
// edit) and the pipeline orchestrator (package engine). It is intentionally
// minimal — no element browser, no sign dialogs, no color picker, no Lua
// bindings (spec.md §1 Non-goals) — deliberately thin the way the teacher's
// cmd/potentialpreview and cmd/shaderdebug are thin debug harnesses rather
// than full applications.
package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cellsand/config"
	"github.com/pthm-cable/cellsand/edit"
	"github.com/pthm-cable/cellsand/element"
	"github.com/pthm-cable/cellsand/engine"
	"github.com/pthm-cable/cellsand/grid"
	"github.com/pthm-cable/cellsand/renderer"
	"github.com/pthm-cable/cellsand/telemetry"
	"github.com/pthm-cable/cellsand/update"
)

func main() {
	configPath := flag.String("config", "", "config YAML file (empty = embedded defaults)")
	outputDir := flag.String("output", "", "directory for telemetry CSV output (empty = disabled)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "err", err)
		os.Exit(1)
	}

	reg := element.NewRegistry()
	element.RegisterBuiltins(reg)

	sim := update.NewSim(config.NewSim(cfg), reg, 1)
	orch := engine.New(sim, reg, cfg)
	orch.StartRendererThread()
	defer orch.StopRendererThread()

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("opening telemetry output", "err", err)
		os.Exit(1)
	}
	defer out.Close()
	bookmarks := telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize)

	px, py := cfg.Grid.Cx*cfg.Grid.Cell, cfg.Grid.Cy*cfg.Grid.Cell
	rl.InitWindow(int32(px), int32(py+40), "cellsand")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	img := rl.GenImageColor(px, py, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	selected := element.IDDust
	paused := false
	pixels := make([]byte, px*py*4)

	slog.Info("sandbox started", "cx", cfg.Grid.Cx, "cy", cfg.Grid.Cy, "cell", cfg.Grid.Cell)

	for !rl.WindowShouldClose() {
		handleInput(orch, &selected, &paused, cfg.Grid.Cell)

		orch.BeforeFrame()
		orch.Tick(paused)
		frame := orch.BeforeGui()
		orch.AfterFrame()

		if !paused {
			stats := telemetry.Collect(sim, 0)
			out.WriteStats(stats)
			for _, b := range bookmarks.Check(stats) {
				b.LogBookmark()
				out.WriteBookmark(b)
			}
		}

		framePixels(frame, pixels)
		rl.UpdateTexture(texture, pixels)

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		rl.DrawTexture(texture, 0, 0, rl.White)
		rl.DrawText("LMB paint  RMB erase  Ctrl+Z/Y undo/redo  Space pause  1-9 select element", 8, int32(py+10), 14, rl.LightGray)
		rl.EndDrawing()
	}
}

// framePixels converts a renderer.Frame's ARGB8888 plane into the RGBA8
// byte layout rl.UpdateTexture expects. A persistent buffer is reused
// across frames to avoid reallocating px*py*4 bytes every tick, unlike
// pthm-soup/cmd/potentialpreview/main.go's updateTexture, which builds a
// fresh []color.RGBA every call since its grid is small and rebuilt on
// every parameter change rather than every frame.
func framePixels(frame *renderer.Frame, out []byte) {
	for i, argb := range frame.Pix {
		out[i*4+0] = byte(argb >> 16) // R
		out[i*4+1] = byte(argb >> 8)  // G
		out[i*4+2] = byte(argb)       // B
		out[i*4+3] = byte(argb >> 24) // A
	}
}

// handleInput forwards mouse clicks to the editing primitives (spec.md
// §4.F) and keyboard shortcuts to undo/redo/pause. Every mutation is framed
// with PauseSim/ResumeSim; a history entry is pushed only when the right
// button is first pressed (before erasing), not for left-button painting.
func handleInput(orch *engine.Orchestrator, selected *grid.ElementID, paused *bool, cell int) {
	if rl.IsKeyPressed(rl.KeySpace) {
		*paused = !*paused
	}
	keySlots := []struct {
		key int32
		id  grid.ElementID
	}{
		{rl.KeyOne, element.IDDust}, {rl.KeyTwo, element.IDWatr}, {rl.KeyThree, element.IDFire},
		{rl.KeyFour, element.IDGlas}, {rl.KeyFive, element.IDPscn}, {rl.KeySix, element.IDNscn},
		{rl.KeySeven, element.IDSprk}, {rl.KeyEight, element.IDMetl}, {rl.KeyNine, element.IDWood},
	}
	for _, slot := range keySlots {
		if rl.IsKeyPressed(slot.key) {
			*selected = slot.id
		}
	}

	ctrl := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl)
	if ctrl && rl.IsKeyPressed(rl.KeyZ) {
		if err := orch.Undo(); err != nil {
			slog.Debug("undo", "err", err)
		}
	}
	if ctrl && rl.IsKeyPressed(rl.KeyY) {
		if err := orch.Redo(); err != nil {
			slog.Debug("redo", "err", err)
		}
	}

	pos := rl.GetMousePosition()
	x, y := int(pos.X), int(pos.Y)
	if x < 0 || y < 0 {
		return
	}

	switch {
	case rl.IsMouseButtonDown(rl.MouseLeftButton):
		orch.PauseSim()
		edit.CreatePart(orch.Sim, x, y, *selected, edit.Flags{})
		orch.ResumeSim()
	case rl.IsMouseButtonPressed(rl.MouseRightButton):
		orch.PushHistory()
	case rl.IsMouseButtonDown(rl.MouseRightButton):
		orch.PauseSim()
		orch.Sim.Pool().DeletePart(x, y)
		orch.ResumeSim()
	}
}
