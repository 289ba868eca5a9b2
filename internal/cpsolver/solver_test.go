package cpsolver

import (
	"testing"
	"time"
)

func TestSolve_ExactlyOnePicksCheapest(t *testing.T) {
	// Two tasks, two machines; machine 1 is shared-capacity-free, so the
	// minimum of used machines is 1.
	m := NewModel()
	x00, x01 := m.NewBoolVar(), m.NewBoolVar()
	x10, x11 := m.NewBoolVar(), m.NewBoolVar()
	used0, used1 := m.NewBoolVar(), m.NewBoolVar()

	m.AddExactlyOne(x00, x01)
	m.AddExactlyOne(x10, x11)
	m.AddImplication(x00, used0)
	m.AddImplication(x10, used0)
	m.AddImplication(x01, used1)
	m.AddImplication(x11, used1)
	m.MinimizeBoolSum(used0, used1)

	result, err := m.Solve(time.Second)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if result.Status != Optimal {
		t.Fatalf("Status = %v, want OPTIMAL", result.Status)
	}
	if result.Objective != 1 {
		t.Errorf("Objective = %d, want 1", result.Objective)
	}
	if result.BoolValue(used0) && result.BoolValue(used1) {
		t.Error("both machines used in an optimal solution")
	}
}

func TestSolve_FixFalseForcesAlternative(t *testing.T) {
	m := NewModel()
	a, b := m.NewBoolVar(), m.NewBoolVar()
	m.AddExactlyOne(a, b)
	m.FixFalse(a)
	m.MinimizeBoolSum()

	result, err := m.Solve(time.Second)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if result.Status != Optimal {
		t.Fatalf("Status = %v, want OPTIMAL", result.Status)
	}
	if !result.BoolValue(b) || result.BoolValue(a) {
		t.Error("expected b=true, a=false")
	}
}

func TestSolve_InfeasibleWhenAllExcluded(t *testing.T) {
	m := NewModel()
	a, b := m.NewBoolVar(), m.NewBoolVar()
	m.AddExactlyOne(a, b)
	m.FixFalse(a)
	m.FixFalse(b)

	result, err := m.Solve(time.Second)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if result.Status != Infeasible {
		t.Errorf("Status = %v, want INFEASIBLE", result.Status)
	}
}

func TestSolve_DifferenceConstraintsScheduleSequentially(t *testing.T) {
	// One machine, two tasks; task b must start at least 30 after task a,
	// and b's start is capped at 40.
	m := NewModel()
	xa, xb := m.NewBoolVar(), m.NewBoolVar()
	ta := m.NewIntVar(0, 100)
	tb := m.NewIntVar(0, 100)

	m.AddExactlyOne(xa)
	m.AddExactlyOne(xb)
	m.AddDifferenceIf(tb, ta, 30, xa, xb)
	m.AddUpperBoundIf(tb, 40, xb)
	m.MinimizeBoolSum(xa, xb)

	result, err := m.Solve(time.Second)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if result.Status != Optimal {
		t.Fatalf("Status = %v, want OPTIMAL", result.Status)
	}
	if got := result.IntValue(tb); got < 30 || got > 40 {
		t.Errorf("tb = %d, want within [30, 40]", got)
	}
}

func TestSolve_InfeasibleDifference(t *testing.T) {
	// b >= a + 30 but b <= 10: no schedule.
	m := NewModel()
	x := m.NewBoolVar()
	ta := m.NewIntVar(0, 100)
	tb := m.NewIntVar(0, 100)

	m.AddExactlyOne(x)
	m.AddDifferenceIf(tb, ta, 30, x)
	m.AddUpperBoundIf(tb, 10, x)

	result, err := m.Solve(time.Second)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if result.Status != Infeasible {
		t.Errorf("Status = %v, want INFEASIBLE", result.Status)
	}
}

func TestSolve_PositiveCycleDetected(t *testing.T) {
	// a >= b + 1 and b >= a + 1 can never both hold.
	m := NewModel()
	x := m.NewBoolVar()
	va := m.NewIntVar(0, 100)
	vb := m.NewIntVar(0, 100)

	m.AddExactlyOne(x)
	m.AddDifferenceIf(va, vb, 1, x)
	m.AddDifferenceIf(vb, va, 1, x)

	result, err := m.Solve(time.Second)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if result.Status != Infeasible {
		t.Errorf("Status = %v, want INFEASIBLE", result.Status)
	}
}

func TestSolve_EqualityChainsAssignments(t *testing.T) {
	// Two tasks on two machines; equality forces both onto the same one.
	m := NewModel()
	x00, x01 := m.NewBoolVar(), m.NewBoolVar()
	x10, x11 := m.NewBoolVar(), m.NewBoolVar()

	m.AddExactlyOne(x00, x01)
	m.AddExactlyOne(x10, x11)
	m.AddEquality(x00, x10)
	m.AddEquality(x01, x11)
	m.MinimizeBoolSum()

	result, err := m.Solve(time.Second)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if result.Status != Optimal {
		t.Fatalf("Status = %v, want OPTIMAL", result.Status)
	}
	if result.BoolValue(x00) != result.BoolValue(x10) {
		t.Error("equality violated: tasks on different machines")
	}
}

func TestSolve_LeafObjective(t *testing.T) {
	// Leaf objective prefers machine 1 (cost 1) over machine 0 (cost 5).
	m := NewModel()
	x0, x1 := m.NewBoolVar(), m.NewBoolVar()
	m.AddExactlyOne(x0, x1)
	m.MinimizeLeafFunc(func(truth func(BoolVar) bool) int {
		if truth(x0) {
			return 5
		}
		return 1
	})

	result, err := m.Solve(time.Second)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if result.Status != Optimal {
		t.Fatalf("Status = %v, want OPTIMAL", result.Status)
	}
	if result.Objective != 1 || !result.BoolValue(x1) {
		t.Errorf("Objective = %d (x1=%v), want 1 via x1", result.Objective, result.BoolValue(x1))
	}
}

func TestSolve_TimeoutReturnsUnknown(t *testing.T) {
	// A zero budget times out before the first leaf.
	m := NewModel()
	vars := make([]BoolVar, 12)
	for i := range vars {
		vars[i] = m.NewBoolVar()
	}
	for i := 0; i+1 < len(vars); i += 2 {
		m.AddExactlyOne(vars[i], vars[i+1])
	}

	result, err := m.Solve(-time.Second)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if result.Status != Unknown {
		t.Errorf("Status = %v, want UNKNOWN", result.Status)
	}
}
