package fields

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Gravity constants from spec.md §4.C / §6.
const (
	MGrav = 6.673e-1
)

// CFDS returns the gravity scale factor for a given cell size, spec.md
// §4.C: "G = 6.673e-1 · CFDS with CFDS = 4/C".
func CFDS(cellSize float32) float32 { return 4.0 / cellSize }

// Gravity is the Newtonian gravity field solver (spec.md §4.C): a per-cell
// mass field convolved against a precomputed 1/r² kernel into a per-cell
// force field. Convolution runs as a 2-D FFT via gonum's dsp/fourier
// package, the way the source prefers FFT when available; DirectConvolve
// provides the O(N²) fallback the spec explicitly allows.
type Gravity struct {
	Cx, Cy int
	G      float32

	Mass      []float32
	ForceX    []float32
	ForceY    []float32

	rowFFT *fourier.CmplxFFT
	colFFT *fourier.CmplxFFT

	kernelXHat []complex128 // FFT of the x-component kernel
	kernelYHat []complex128 // FFT of the y-component kernel
}

// NewGravity builds a solver over a Cx×Cy cell grid with the given cell
// size (used to derive G via CFDS). gravMask is accepted but not applied:
// Solve treats every cell as a mass source and leaves the force field
// unmasked. Only DirectConvolve skips masked cells, through its own
// gravMask argument.
func NewGravity(cx, cy int, cellSize float32, gravMask []bool) *Gravity {
	g := &Gravity{
		Cx: cx, Cy: cy,
		G:      MGrav * CFDS(cellSize),
		Mass:   make([]float32, cx*cy),
		ForceX: make([]float32, cx*cy),
		ForceY: make([]float32, cx*cy),
		rowFFT: fourier.NewCmplxFFT(cx),
		colFFT: fourier.NewCmplxFFT(cy),
	}
	g.buildKernel(gravMask)
	return g
}

func (g *Gravity) idx(cx, cy int) int { return cy*g.Cx + cx }

// buildKernel precomputes the transformed x/y force kernels: for each
// toroidal offset (dx,dy) the contribution of a unit mass at the origin to
// the force at (dx,dy) is -G*r̂/‖r‖², pointing back toward the mass.
func (g *Gravity) buildKernel(gravMask []bool) {
	kx := make([]complex128, g.Cx*g.Cy)
	ky := make([]complex128, g.Cx*g.Cy)
	for cy := 0; cy < g.Cy; cy++ {
		dy := wrapOffset(cy, g.Cy)
		for cx := 0; cx < g.Cx; cx++ {
			dx := wrapOffset(cx, g.Cx)
			if dx == 0 && dy == 0 {
				continue
			}
			r2 := float64(dx*dx + dy*dy)
			r := math.Sqrt(r2)
			mag := float64(g.G) / r2
			kx[g.idx(cx, cy)] = complex(-mag*float64(dx)/r, 0)
			ky[g.idx(cx, cy)] = complex(-mag*float64(dy)/r, 0)
		}
	}
	g.kernelXHat = g.fft2D(kx)
	g.kernelYHat = g.fft2D(ky)
}

func wrapOffset(i, n int) int {
	if i > n/2 {
		return i - n
	}
	return i
}

// fft2D runs a row-wise then column-wise complex FFT over a Cx×Cy grid
// stored row-major, the standard separable approach to a 2-D DFT.
func (g *Gravity) fft2D(in []complex128) []complex128 {
	out := make([]complex128, len(in))
	row := make([]complex128, g.Cx)
	for cy := 0; cy < g.Cy; cy++ {
		copy(row, in[cy*g.Cx:(cy+1)*g.Cx])
		g.rowFFT.Coefficients(row, row)
		copy(out[cy*g.Cx:(cy+1)*g.Cx], row)
	}
	col := make([]complex128, g.Cy)
	for cx := 0; cx < g.Cx; cx++ {
		for cy := 0; cy < g.Cy; cy++ {
			col[cy] = out[g.idx(cx, cy)]
		}
		g.colFFT.Coefficients(col, col)
		for cy := 0; cy < g.Cy; cy++ {
			out[g.idx(cx, cy)] = col[cy]
		}
	}
	return out
}

func (g *Gravity) ifft2D(in []complex128) []complex128 {
	out := make([]complex128, len(in))
	col := make([]complex128, g.Cy)
	for cx := 0; cx < g.Cx; cx++ {
		for cy := 0; cy < g.Cy; cy++ {
			col[cy] = in[g.idx(cx, cy)]
		}
		g.colFFT.Sequence(col, col)
		for cy := 0; cy < g.Cy; cy++ {
			out[g.idx(cx, cy)] = col[cy]
		}
	}
	row := make([]complex128, g.Cx)
	for cy := 0; cy < g.Cy; cy++ {
		copy(row, out[cy*g.Cx:(cy+1)*g.Cx])
		g.rowFFT.Sequence(row, row)
		copy(out[cy*g.Cx:(cy+1)*g.Cx], row)
	}
	n := float64(g.Cx * g.Cy)
	for i := range out {
		out[i] = complex(real(out[i])/n, imag(out[i])/n)
	}
	return out
}

// Solve convolves Mass against the precomputed kernel and writes the result
// into ForceX/ForceY. This is the request side of the request/response pair
// the orchestrator runs on a dedicated goroutine with a one-tick lag
// (spec.md §4.C, §5).
func (g *Gravity) Solve() {
	massHat := g.fft2D(toComplex(g.Mass))

	fxHat := make([]complex128, len(massHat))
	fyHat := make([]complex128, len(massHat))
	for i := range massHat {
		fxHat[i] = massHat[i] * g.kernelXHat[i]
		fyHat[i] = massHat[i] * g.kernelYHat[i]
	}

	fx := g.ifft2D(fxHat)
	fy := g.ifft2D(fyHat)
	for i := range g.ForceX {
		g.ForceX[i] = float32(real(fx[i]))
		g.ForceY[i] = float32(real(fy[i]))
	}
}

func toComplex(in []float32) []complex128 {
	out := make([]complex128, len(in))
	for i, v := range in {
		out[i] = complex(float64(v), 0)
	}
	return out
}

// DirectConvolve computes the same force field as Solve via the O(N²)
// direct sum spec.md §4.C explicitly allows as a reference implementation;
// only the tests call it, to sanity-check the FFT path's sign. Cells where
// a non-nil gravMask is false are skipped as mass sources.
func (g *Gravity) DirectConvolve(gravMask []bool) {
	for i := range g.ForceX {
		g.ForceX[i] = 0
		g.ForceY[i] = 0
	}
	for cy := 0; cy < g.Cy; cy++ {
		for cx := 0; cx < g.Cx; cx++ {
			if gravMask != nil && !gravMask[g.idx(cx, cy)] {
				continue
			}
			m := g.Mass[g.idx(cx, cy)]
			if m == 0 {
				continue
			}
			for ty := 0; ty < g.Cy; ty++ {
				for tx := 0; tx < g.Cx; tx++ {
					if tx == cx && ty == cy {
						continue
					}
					dx := float32(cx - tx)
					dy := float32(cy - ty)
					r2 := dx*dx + dy*dy
					r := float32(math.Sqrt(float64(r2)))
					mag := g.G * m / r2
					ti := g.idx(tx, ty)
					g.ForceX[ti] += mag * dx / r
					g.ForceY[ti] += mag * dy / r
				}
			}
		}
	}
}

// Reset zeroes the mass and force fields, e.g. on sim clear or scenario
// change (spec.md §4.C "the field decays to zero when the solver is
// disabled or on reset").
func (g *Gravity) Reset() {
	for i := range g.Mass {
		g.Mass[i] = 0
		g.ForceX[i] = 0
		g.ForceY[i] = 0
	}
}
