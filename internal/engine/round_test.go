package engine

import (
	"testing"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/domain/terminal"
)

// noPenalties resolves congestion and drops the coastal contract so that only
// the behavior under test shows up in the adjustments.
var noPenalties = Modifiers{ResolveCongestion: true, DropCoastal: true}

func newPair(volumeA, volumeB int64) (*terminal.Terminal, *terminal.Terminal) {
	a := &terminal.Terminal{ID: "A", Name: "Terminal A", Volume: volumeA}
	b := &terminal.Terminal{ID: "B", Name: "Terminal B", Volume: volumeB}
	return a, b
}

func TestMutualCooperation(t *testing.T) {
	a, b := newPair(50000, 20000)

	res := ApplyRound(terminal.Cooperate, terminal.Cooperate, a, b, noPenalties, DefaultRNG())

	if res.NetGainA != 2500 || res.NetGainB != 1000 {
		t.Errorf("net gains = (%d, %d), want (2500, 1000)", res.NetGainA, res.NetGainB)
	}
	if a.Volume != 52500 || b.Volume != 21000 {
		t.Errorf("volumes = (%d, %d), want (52500, 21000)", a.Volume, b.Volume)
	}
}

func TestUnilateralDefection(t *testing.T) {
	a, b := newPair(50000, 20000)

	res := ApplyRound(terminal.Cooperate, terminal.Defect, a, b, noPenalties, DefaultRNG())

	if res.NetGainA != -5000 || res.NetGainB != 10000 {
		t.Errorf("net gains = (%d, %d), want (-5000, 10000)", res.NetGainA, res.NetGainB)
	}
	if a.Volume != 45000 || b.Volume != 30000 {
		t.Errorf("volumes = (%d, %d), want (45000, 30000)", a.Volume, b.Volume)
	}
}

func TestPenaltiesHitTerminalAOnly(t *testing.T) {
	a, b := newPair(50000, 20000)

	// Congestion unresolved and coastal contract kept: -300 - 200 on A.
	res := ApplyRound(terminal.Cooperate, terminal.Cooperate, a, b, Modifiers{}, DefaultRNG())

	if res.NetGainA != 2000 {
		t.Errorf("net A = %d, want 2000 (2500 - 300 - 200)", res.NetGainA)
	}
	if res.NetGainB != 1000 {
		t.Errorf("net B = %d, want 1000 (penalties never hit B)", res.NetGainB)
	}
	if a.Volume != 52000 || b.Volume != 21000 {
		t.Errorf("volumes = (%d, %d), want (52000, 21000)", a.Volume, b.Volume)
	}
}

func TestCapacityClampAndSpillover(t *testing.T) {
	a, b := newPair(50000, 20000)
	a.MaxCapacity = 52000

	res := ApplyRound(terminal.Cooperate, terminal.Cooperate, a, b, noPenalties, DefaultRNG())

	if a.Volume != 52000 {
		t.Errorf("A volume = %d, want clamp at 52000", a.Volume)
	}
	// excess 500, cooperative spillover floor(500 * 0.5) = 250 on top of B's own 1000.
	if res.SpilloverToB != 250 {
		t.Errorf("spillover = %d, want 250", res.SpilloverToB)
	}
	if b.Volume != 21250 {
		t.Errorf("B volume = %d, want 21250", b.Volume)
	}
}

func TestNoSpilloverWithoutMutualCooperation(t *testing.T) {
	a, b := newPair(50000, 20000)
	a.MaxCapacity = 55000

	res := ApplyRound(terminal.Defect, terminal.Cooperate, a, b, noPenalties, DefaultRNG())

	if a.Volume != 55000 {
		t.Errorf("A volume = %d, want clamp at 55000", a.Volume)
	}
	if res.SpilloverToB != 0 {
		t.Errorf("spillover = %d, want 0 when A defected", res.SpilloverToB)
	}
	if b.Volume != 15000 {
		t.Errorf("B volume = %d, want 15000", b.Volume)
	}
}

func TestNoCapacitySkipsClampAndSpillover(t *testing.T) {
	a, b := newPair(50000, 20000)

	res := ApplyRound(terminal.Defect, terminal.Cooperate, a, b, noPenalties, DefaultRNG())

	if a.Volume != 60000 {
		t.Errorf("A volume = %d, want 60000 with no ceiling", a.Volume)
	}
	if res.SpilloverToB != 0 {
		t.Errorf("spillover = %d, want 0 with no ceiling", res.SpilloverToB)
	}
}

func TestVolumeFloorIsUnconditional(t *testing.T) {
	a, b := newPair(1000, 1000)

	ApplyRound(terminal.Defect, terminal.Defect, a, b, Modifiers{}, DefaultRNG())

	if a.Volume != 0 {
		t.Errorf("A volume = %d, want floor at 0", a.Volume)
	}
	if b.Volume != 0 {
		t.Errorf("B volume = %d, want floor at 0", b.Volume)
	}
}

func TestBertrandHalvesRawGains(t *testing.T) {
	a, b := newPair(50000, 20000)
	mods := noPenalties
	mods.BertrandMode = true

	res := ApplyRound(terminal.Cooperate, terminal.Cooperate, a, b, mods, DefaultRNG())

	if res.RawGainA != 1250 || res.RawGainB != 500 {
		t.Errorf("raw gains = (%v, %v), want (1250, 500)", res.RawGainA, res.RawGainB)
	}
	if res.NetGainA != 1250 || res.NetGainB != 500 {
		t.Errorf("net gains = (%d, %d), want (1250, 500)", res.NetGainA, res.NetGainB)
	}
}

func TestBerthPoolingBonusOnMutualCooperationOnly(t *testing.T) {
	a, b := newPair(50000, 20000)
	mods := noPenalties
	mods.BerthPooling = true

	res := ApplyRound(terminal.Cooperate, terminal.Cooperate, a, b, mods, DefaultRNG())
	if res.NetGainA != 2750 || res.NetGainB != 1100 {
		t.Errorf("net gains = (%d, %d), want (2750, 1100)", res.NetGainA, res.NetGainB)
	}

	a, b = newPair(50000, 20000)
	res = ApplyRound(terminal.Defect, terminal.Defect, a, b, mods, DefaultRNG())
	if res.NetGainA != -2000 || res.NetGainB != -2000 {
		t.Errorf("net gains = (%d, %d), bonus must not apply without mutual cooperation", res.NetGainA, res.NetGainB)
	}
}

func TestBertrandAppliesBeforeBerthPooling(t *testing.T) {
	a, b := newPair(50000, 20000)
	mods := noPenalties
	mods.BertrandMode = true
	mods.BerthPooling = true

	res := ApplyRound(terminal.Cooperate, terminal.Cooperate, a, b, mods, DefaultRNG())

	// 2500 * 0.5 * 1.10 = 1375; 1000 * 0.5 * 1.10 = 550.
	if res.RawGainA != 1375 || res.RawGainB != 550 {
		t.Errorf("raw gains = (%v, %v), want (1375, 550)", res.RawGainA, res.RawGainB)
	}
}

func TestNoiseDrawsAreIndependentAndBounded(t *testing.T) {
	mods := noPenalties
	mods.ApplyNoise = true
	rng := NewSeededRNG(7)

	sawDifferent := false
	for i := 0; i < 200; i++ {
		a, b := newPair(50000, 20000)
		res := ApplyRound(terminal.Cooperate, terminal.Cooperate, a, b, mods, rng)

		noiseA := res.NetGainA - 2500
		noiseB := res.NetGainB - 1000
		if noiseA < -NoiseRange || noiseA > NoiseRange {
			t.Fatalf("noise on A out of range: %d", noiseA)
		}
		if noiseB < -NoiseRange || noiseB > NoiseRange {
			t.Fatalf("noise on B out of range: %d", noiseB)
		}
		if noiseA != noiseB {
			sawDifferent = true
		}
	}
	if !sawDifferent {
		t.Error("noise draws appear shared between terminals; they must be independent")
	}
}
