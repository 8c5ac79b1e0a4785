package scoring

import (
	"testing"

	"github.com/vijay-prabhu/jobscout/internal/config"
)

func TestGradeFor(t *testing.T) {
	tests := []struct {
		total int
		want  Grade
	}{
		{115, GradeA},
		{98, GradeA},
		{97, GradeB},
		{80, GradeB},
		{79, GradeC},
		{63, GradeC},
		{62, GradeD},
		{46, GradeD},
		{45, GradeF},
		{0, GradeF},
	}

	for _, tt := range tests {
		if got := GradeFor(tt.total, config.DefaultGradeThresholds); got != tt.want {
			t.Errorf("GradeFor(%d) = %v, want %v", tt.total, got, tt.want)
		}
	}
}

func TestGradeFor_CustomThresholds(t *testing.T) {
	custom := config.GradeThresholds{A: 85, B: 70, C: 55, D: 40}

	if got := GradeFor(85, custom); got != GradeA {
		t.Errorf("GradeFor(85) = %v, want A", got)
	}
	if got := GradeFor(85, config.GradeThresholds{}); got != GradeB {
		t.Errorf("zero thresholds should use the default scale, got %v", got)
	}
}

func TestGradeFor_Monotonic(t *testing.T) {
	for _, th := range []config.GradeThresholds{config.DefaultGradeThresholds, {A: 85, B: 70, C: 55, D: 40}} {
		prev := GradeFor(0, th)
		for total := 1; total <= MaxTotal; total++ {
			g := GradeFor(total, th)
			if g.Rank() < prev.Rank() {
				t.Fatalf("grade dropped from %v to %v at %d", prev, g, total)
			}
			prev = g
		}
	}
}

func TestParseGrade(t *testing.T) {
	if g, err := ParseGrade(" b "); err != nil || g != GradeB {
		t.Errorf("ParseGrade(b) = %v, %v", g, err)
	}
	if _, err := ParseGrade("E"); err == nil {
		t.Error("expected error for unknown grade")
	}
}

func TestAtLeast(t *testing.T) {
	if !GradeA.AtLeast(GradeB) || !GradeB.AtLeast(GradeB) || GradeC.AtLeast(GradeB) {
		t.Error("AtLeast ordering is wrong")
	}

	got := GradesAtLeast(GradeC)
	if len(got) != 3 || got[0] != GradeA || got[2] != GradeC {
		t.Errorf("GradesAtLeast(C) = %v", got)
	}
}
