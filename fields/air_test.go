package fields

import "testing"

func TestAirStepClipsVelocityAndPressure(t *testing.T) {
	a := NewAir(8, 8, 295)
	for i := range a.Vx {
		a.Vx[i] = 1e9
		a.Pv[i] = 1e9
	}
	a.Step(AirOn, EdgeVoid, nil, 295, false, 0.05)
	for i, v := range a.Vx {
		if v > MaxVelocity || v < -MaxVelocity {
			t.Fatalf("Vx[%d]=%v exceeds MaxVelocity", i, v)
		}
	}
	for i, v := range a.Pv {
		if v > MaxPressure || v < -MaxPressure {
			t.Fatalf("Pv[%d]=%v exceeds MaxPressure", i, v)
		}
	}
}

func TestAirNoUpdateModeIsNoop(t *testing.T) {
	a := NewAir(4, 4, 295)
	a.Pv[5] = 12
	a.Vx[5] = 3
	a.Step(AirNoUpdate, EdgeVoid, nil, 295, true, 0.05)
	if a.Pv[5] != 12 || a.Vx[5] != 3 {
		t.Fatal("expected AirNoUpdate to leave fields untouched")
	}
}

func TestAmbientHeatDecaysTowardAmbient(t *testing.T) {
	a := NewAir(4, 4, 295)
	a.Hv[a.idx(2, 2)] = 1000
	for i := 0; i < 200; i++ {
		a.Step(AirOn, EdgeVoid, nil, 295, true, 0.1)
	}
	if a.Hv[a.idx(2, 2)] > 400 {
		t.Fatalf("expected ambient heat to relax toward 295K, got %v", a.Hv[a.idx(2, 2)])
	}
}

func TestBlockedCellsStayZeroVelocity(t *testing.T) {
	a := NewAir(6, 6, 295)
	blocked := func(cx, cy int) bool { return cx == 3 && cy == 3 }
	a.Vx[a.idx(3, 3)] = 50
	a.Step(AirOn, EdgeVoid, blocked, 295, false, 0.05)
	if a.Vx[a.idx(3, 3)] != 0 {
		t.Fatalf("expected blocked cell velocity to be zeroed, got %v", a.Vx[a.idx(3, 3)])
	}
}
