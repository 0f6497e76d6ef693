// Command fieldpreview is a debug harness for tuning the air solver's
// five constants (spec.md §4.B / §6: Vadv, PLoss, TStepP, VLoss, TStepV)
// by eye: it injects a pressure pulse into an otherwise empty grid, steps
// the solver every frame, and renders the pressure field live while raygui
// sliders let the constants be nudged in place. Modeled directly on
// pthm-soup/cmd/potentialpreview/main.go's slider-panel-plus-texture-preview
// shape, substituting fields.Air for the teacher's FBM potential grid.
package main

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cellsand/fields"
)

const (
	windowWidth  = 1000
	windowHeight = 640
	gridCx       = 96
	gridCy       = 64
	cellPixels   = 6
	previewW     = gridCx * cellPixels
	previewH     = gridCy * cellPixels
	panelX       = previewW + 20
	panelWidth   = windowWidth - previewW - 30
)

func main() {
	rl.InitWindow(windowWidth, windowHeight, "air field preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	air := fields.NewAir(gridCx, gridCy, 295)
	pulse(air)

	img := rl.GenImageColor(gridCx, gridCy, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	running := true
	edge := fields.EdgeSolid
	mode := fields.AirOn

	for !rl.WindowShouldClose() {
		if running {
			air.Step(mode, edge, nil, 295, false, 0)
		}

		updateTexture(texture, air)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(gridCx), Height: float32(gridCy)},
			rl.Rectangle{X: 10, Y: 10, Width: previewW, Height: previewH},
			rl.Vector2{X: 0, Y: 0}, 0, rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)

		y := float32(10)
		rl.DrawText("Air solver constants", int32(panelX), int32(y), 20, rl.DarkGray)
		y += 35

		y = slider(&air.Constants.Vadv, "Vadv", 0, 1, y)
		y = slider(&air.Constants.PLoss, "PLoss", 0.9, 1, y)
		y = slider(&air.Constants.TStepP, "TStepP", 0, 1, y)
		y = slider(&air.Constants.VLoss, "VLoss", 0.9, 1, y)
		y = slider(&air.Constants.TStepV, "TStepV", 0, 1, y)

		y += 10
		rl.DrawText(fmt.Sprintf("running: %v (Space)  edge: %d (E)  pulse: R", running, edge), int32(panelX), int32(y), 14, rl.Gray)

		if rl.IsKeyPressed(rl.KeySpace) {
			running = !running
		}
		if rl.IsKeyPressed(rl.KeyE) {
			edge = (edge + 1) % 3
		}
		if rl.IsKeyPressed(rl.KeyR) {
			pulse(air)
		}

		rl.EndDrawing()
	}
}

// slider draws one labeled raygui slider over val and writes back any
// change, returning the y coordinate for the next control.
func slider(val *float32, label string, lo, hi, y float32) float32 {
	rl.DrawText(label, int32(panelX), int32(y), 14, rl.Gray)
	y += 18
	newVal := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: y, Width: float32(panelWidth - 80), Height: 20},
		fmt.Sprintf("%.3f", lo), fmt.Sprintf("%.3f", hi),
		*val, lo, hi,
	)
	rl.DrawText(fmt.Sprintf("%.4f", *val), int32(panelX+float32(panelWidth-70)), int32(y+2), 16, rl.DarkGray)
	*val = newVal
	return y + 35
}

// pulse seeds a single pressure spike near the grid's center, the same
// "inject and watch it relax" probe potentialpreview uses for its FBM field.
func pulse(air *fields.Air) {
	cx, cy := gridCx/2, gridCy/2
	air.Pv[cy*air.Cx+cx] = fields.MaxPressure
}

func updateTexture(texture rl.Texture2D, air *fields.Air) {
	pixels := make([]byte, gridCx*gridCy*4)
	for i := 0; i < gridCx*gridCy; i++ {
		v := air.Pv[i] / fields.MaxPressure // roughly [-1, 1]
		var r, b byte
		if v >= 0 {
			r = clampByte(v * 255)
		} else {
			b = clampByte(-v * 255)
		}
		pixels[i*4+0] = r
		pixels[i*4+1] = 0
		pixels[i*4+2] = b
		pixels[i*4+3] = 255
	}
	rl.UpdateTexture(texture, pixels)
}

func clampByte(v float32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
