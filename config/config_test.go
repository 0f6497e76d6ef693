package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Grid.Cell != 4 || cfg.Grid.Cx != 96 || cfg.Grid.Cy != 96 {
		t.Fatalf("unexpected grid defaults: %+v", cfg.Grid)
	}
	if cfg.Runtime.AirMode != AirOn {
		t.Fatalf("expected default air mode on, got %v", cfg.Runtime.AirMode)
	}
}

func TestGridCheck(t *testing.T) {
	cases := []struct {
		name string
		g    GridConfig
		ok   bool
	}{
		{"valid", GridConfig{Cell: 4, Cx: 100, Cy: 100}, true},
		{"cell too big", GridConfig{Cell: 200, Cx: 100, Cy: 100}, false},
		{"cx zero", GridConfig{Cell: 4, Cx: 0, Cy: 100}, false},
		{"width below min", GridConfig{Cell: 1, Cx: 10, Cy: 100}, false},
		{"height below min", GridConfig{Cell: 1, Cx: 300, Cy: 10}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.g.Check()
			if (err == nil) != c.ok {
				t.Fatalf("Check() = %v, want ok=%v", err, c.ok)
			}
		})
	}
}

func TestRuntimeClamp(t *testing.T) {
	r := RuntimeConfig{AmbientTemp: -10}
	r.Clamp()
	if r.AmbientTemp != MinTemp {
		t.Fatalf("expected clamp to MinTemp, got %v", r.AmbientTemp)
	}
	r.AmbientTemp = 1e6
	r.Clamp()
	if r.AmbientTemp != MaxTemp {
		t.Fatalf("expected clamp to MaxTemp, got %v", r.AmbientTemp)
	}
}

func TestSimApplyPending(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sim := NewSim(cfg)
	sim.Pending.Grid.Cx = 200
	if changed := sim.ApplyPending(); !changed {
		t.Fatalf("expected grid change to be reported")
	}
	if sim.Applied.Grid.Cx != 200 {
		t.Fatalf("expected applied grid to update, got %+v", sim.Applied.Grid)
	}
	if changed := sim.ApplyPending(); changed {
		t.Fatalf("expected no change on second apply")
	}
}
