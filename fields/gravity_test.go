package fields

import "testing"

func TestGravityPullsTowardMass(t *testing.T) {
	g := NewGravity(16, 16, 4, nil)
	g.Mass[g.idx(8, 8)] = 1000
	g.Solve()

	// A cell to the left of the mass should feel a force pointing right
	// (+x), and a cell above should feel a force pointing down (+y).
	left := g.idx(4, 8)
	if g.ForceX[left] <= 0 {
		t.Fatalf("expected positive x-force pulling toward mass, got %v", g.ForceX[left])
	}
	above := g.idx(8, 4)
	if g.ForceY[above] <= 0 {
		t.Fatalf("expected positive y-force pulling toward mass, got %v", g.ForceY[above])
	}
}

func TestGravityResetZeroesFields(t *testing.T) {
	g := NewGravity(8, 8, 4, nil)
	g.Mass[3] = 50
	g.ForceX[3] = 1
	g.ForceY[3] = 1
	g.Reset()
	for i := range g.Mass {
		if g.Mass[i] != 0 || g.ForceX[i] != 0 || g.ForceY[i] != 0 {
			t.Fatalf("expected all fields zeroed after Reset, index %d", i)
		}
	}
}

func TestDirectConvolveAgreesInSignWithFFT(t *testing.T) {
	g := NewGravity(12, 12, 4, nil)
	g.Mass[g.idx(6, 6)] = 500
	g.Solve()
	fftFX := append([]float32(nil), g.ForceX...)

	g.DirectConvolve(nil)
	left := g.idx(2, 6)
	if (fftFX[left] > 0) != (g.ForceX[left] > 0) {
		t.Fatalf("FFT and direct convolution disagree on force sign: fft=%v direct=%v", fftFX[left], g.ForceX[left])
	}
}
