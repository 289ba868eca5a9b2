// Package cpsolver is a small constraint-programming solver for assignment
// problems: Boolean decision variables grouped into exactly-one sets,
// bounded integer variables, and linear/difference constraints that apply
// only when their enforcement literals are true.
//
// The search branches over exactly-one groups, propagates Boolean
// implications and equalities, prunes with the incumbent objective, and
// checks integer feasibility with Bellman-Ford over the active difference
// constraints. It is exact: when the search space is exhausted the result
// is OPTIMAL or INFEASIBLE; when the time budget runs out first, FEASIBLE
// (incumbent found) or UNKNOWN.
package cpsolver

import (
	"fmt"
	"time"
)

// Status is the terminal state of a solve.
type Status int

const (
	// Optimal: search exhausted, best solution proven optimal.
	Optimal Status = iota
	// Feasible: time budget hit with at least one solution found.
	Feasible
	// Infeasible: search exhausted without any solution.
	Infeasible
	// Unknown: time budget hit before any solution was found.
	Unknown
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Feasible:
		return "FEASIBLE"
	case Infeasible:
		return "INFEASIBLE"
	default:
		return "UNKNOWN"
	}
}

// BoolVar and IntVar are variable handles into a Model.
type (
	BoolVar int
	IntVar  int
)

type boolState int8

const (
	unknown boolState = iota
	setTrue
	setFalse
)

type implication struct{ a, b BoolVar } // a=true forces b=true
type equality struct{ a, b BoolVar }    // a and b take the same value

type upperBound struct {
	v      IntVar
	bound  int
	guards []BoolVar
}

// difference encodes a >= b + c, enforced when all guards are true.
type difference struct {
	a, b   IntVar
	c      int
	guards []BoolVar
}

// Model is a constraint model under construction.
type Model struct {
	numBools int
	fixed    []boolState // construction-time fixings

	intLo, intHi []int

	groups       [][]BoolVar
	implications []implication
	equalities   []equality
	uppers       []upperBound
	diffs        []difference

	objectiveVars []BoolVar
	leafObjective func(truth func(BoolVar) bool) int
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{}
}

// NewBoolVar adds a Boolean decision variable.
func (m *Model) NewBoolVar() BoolVar {
	m.numBools++
	m.fixed = append(m.fixed, unknown)
	return BoolVar(m.numBools - 1)
}

// NewIntVar adds an integer variable with inclusive bounds [lo, hi].
func (m *Model) NewIntVar(lo, hi int) IntVar {
	m.intLo = append(m.intLo, lo)
	m.intHi = append(m.intHi, hi)
	return IntVar(len(m.intLo) - 1)
}

// FixFalse pins a Boolean variable to false before the search starts.
func (m *Model) FixFalse(v BoolVar) {
	m.fixed[v] = setFalse
}

// AddExactlyOne requires exactly one of the given literals to be true.
func (m *Model) AddExactlyOne(vars ...BoolVar) {
	group := make([]BoolVar, len(vars))
	copy(group, vars)
	m.groups = append(m.groups, group)
}

// AddImplication requires b to be true whenever a is true.
func (m *Model) AddImplication(a, b BoolVar) {
	m.implications = append(m.implications, implication{a, b})
}

// AddEquality requires a and b to take the same value.
func (m *Model) AddEquality(a, b BoolVar) {
	m.equalities = append(m.equalities, equality{a, b})
}

// AddUpperBoundIf requires v <= bound whenever all guards are true.
func (m *Model) AddUpperBoundIf(v IntVar, bound int, guards ...BoolVar) {
	g := make([]BoolVar, len(guards))
	copy(g, guards)
	m.uppers = append(m.uppers, upperBound{v, bound, g})
}

// AddDifferenceIf requires a >= b + c whenever all guards are true.
func (m *Model) AddDifferenceIf(a, b IntVar, c int, guards ...BoolVar) {
	g := make([]BoolVar, len(guards))
	copy(g, guards)
	m.diffs = append(m.diffs, difference{a, b, c, g})
}

// MinimizeBoolSum minimizes the number of true literals among vars.
// Partial sums give the search a lower bound for pruning.
func (m *Model) MinimizeBoolSum(vars ...BoolVar) {
	m.objectiveVars = make([]BoolVar, len(vars))
	copy(m.objectiveVars, vars)
	m.leafObjective = nil
}

// MinimizeLeafFunc minimizes an objective evaluated on complete Boolean
// assignments. No partial bound is available, so pruning only happens at
// leaves. Overrides MinimizeBoolSum.
func (m *Model) MinimizeLeafFunc(f func(truth func(BoolVar) bool) int) {
	m.leafObjective = f
	m.objectiveVars = nil
}

// Result is the outcome of a solve.
type Result struct {
	Status    Status
	Objective int

	bools []boolState
	ints  []int
}

// BoolValue reads a Boolean variable from the best solution.
func (r *Result) BoolValue(v BoolVar) bool {
	return r.bools[v] == setTrue
}

// IntValue reads an integer variable from the best solution. For variables
// constrained by active difference constraints this is the smallest
// feasible value.
func (r *Result) IntValue(v IntVar) int {
	return r.ints[v]
}

// solver carries the mutable search state.
type solver struct {
	m        *Model
	state    []boolState
	deadline time.Time
	timedOut bool

	best      *Result
	bestFound bool
}

// Solve runs the search within the given time budget.
func (m *Model) Solve(budget time.Duration) (*Result, error) {
	s := &solver{
		m:        m,
		state:    make([]boolState, m.numBools),
		deadline: time.Now().Add(budget),
	}
	copy(s.state, m.fixed)

	// Construction-time fixings must be consistent on their own.
	if !s.propagate() {
		return &Result{Status: Infeasible}, nil
	}

	s.search()

	switch {
	case s.bestFound && !s.timedOut:
		s.best.Status = Optimal
		return s.best, nil
	case s.bestFound:
		s.best.Status = Feasible
		return s.best, nil
	case s.timedOut:
		return &Result{Status: Unknown}, nil
	default:
		return &Result{Status: Infeasible}, nil
	}
}

// propagate runs Boolean propagation to a fixpoint. Returns false on
// conflict. Rules: exactly-one groups, implications, equalities.
func (s *solver) propagate() bool {
	for changed := true; changed; {
		changed = false

		for _, group := range s.m.groups {
			trues, unknowns := 0, 0
			var lastUnknown BoolVar
			for _, v := range group {
				switch s.state[v] {
				case setTrue:
					trues++
				case unknown:
					unknowns++
					lastUnknown = v
				}
			}
			switch {
			case trues > 1:
				return false
			case trues == 1 && unknowns > 0:
				for _, v := range group {
					if s.state[v] == unknown {
						s.state[v] = setFalse
						changed = true
					}
				}
			case trues == 0 && unknowns == 0:
				return false
			case trues == 0 && unknowns == 1:
				s.state[lastUnknown] = setTrue
				changed = true
			}
		}

		for _, imp := range s.m.implications {
			if s.state[imp.a] == setTrue && s.state[imp.b] != setTrue {
				if s.state[imp.b] == setFalse {
					return false
				}
				s.state[imp.b] = setTrue
				changed = true
			}
			if s.state[imp.b] == setFalse && s.state[imp.a] != setFalse {
				if s.state[imp.a] == setTrue {
					return false
				}
				s.state[imp.a] = setFalse
				changed = true
			}
		}

		for _, eq := range s.m.equalities {
			av, bv := s.state[eq.a], s.state[eq.b]
			switch {
			case av == unknown && bv != unknown:
				s.state[eq.a] = bv
				changed = true
			case bv == unknown && av != unknown:
				s.state[eq.b] = av
				changed = true
			case av != unknown && bv != unknown && av != bv:
				return false
			}
		}
	}
	return true
}

// activeGuards reports whether every guard literal is currently true.
func (s *solver) activeGuards(guards []BoolVar) bool {
	for _, g := range guards {
		if s.state[g] != setTrue {
			return false
		}
	}
	return true
}

// checkInts verifies the integer constraints whose guards are active.
// Bellman-Ford over the difference constraints computes the smallest
// feasible value per variable; a positive cycle or a violated upper bound
// means infeasible. Returns the computed values when feasible.
func (s *solver) checkInts() ([]int, bool) {
	n := len(s.m.intLo)
	lb := make([]int, n)
	copy(lb, s.m.intLo)

	var active []difference
	for _, d := range s.m.diffs {
		if s.activeGuards(d.guards) {
			active = append(active, d)
		}
	}

	for i := 0; i <= n; i++ {
		changed := false
		for _, d := range active {
			if need := lb[d.b] + d.c; lb[d.a] < need {
				lb[d.a] = need
				changed = true
			}
		}
		if !changed {
			break
		}
		if i == n {
			// Still relaxing after n rounds: positive cycle.
			return nil, false
		}
	}

	for v := 0; v < n; v++ {
		if lb[v] > s.m.intHi[v] {
			return nil, false
		}
	}
	for _, ub := range s.m.uppers {
		if s.activeGuards(ub.guards) && lb[ub.v] > ub.bound {
			return nil, false
		}
	}
	return lb, true
}

// partialObjective is the lower bound available mid-search: the count of
// objective literals already true.
func (s *solver) partialObjective() int {
	sum := 0
	for _, v := range s.m.objectiveVars {
		if s.state[v] == setTrue {
			sum++
		}
	}
	return sum
}

// nextGroup returns the first exactly-one group without a true literal, or
// -1 when every group is resolved.
func (s *solver) nextGroup() int {
	for i, group := range s.m.groups {
		resolved := false
		for _, v := range group {
			if s.state[v] == setTrue {
				resolved = true
				break
			}
		}
		if !resolved {
			return i
		}
	}
	return -1
}

func (s *solver) search() {
	if s.timedOut || time.Now().After(s.deadline) {
		s.timedOut = true
		return
	}

	if !s.propagate() {
		return
	}
	ints, ok := s.checkInts()
	if !ok {
		return
	}
	if s.m.objectiveVars != nil && s.bestFound && s.partialObjective() >= s.best.Objective {
		return
	}

	gi := s.nextGroup()
	if gi < 0 {
		s.recordLeaf(ints)
		return
	}

	group := s.m.groups[gi]
	for _, v := range group {
		if s.state[v] != unknown {
			continue
		}
		saved := make([]boolState, len(s.state))
		copy(saved, s.state)

		s.state[v] = setTrue
		for _, other := range group {
			if other != v && s.state[other] == unknown {
				s.state[other] = setFalse
			}
		}
		s.search()

		copy(s.state, saved)
		if s.timedOut {
			return
		}
	}
}

// recordLeaf finalizes a complete assignment: remaining unknowns default to
// false, the objective is evaluated and the incumbent updated.
func (s *solver) recordLeaf(ints []int) {
	saved := make([]boolState, len(s.state))
	copy(saved, s.state)
	defer copy(s.state, saved)

	for i := range s.state {
		if s.state[i] == unknown {
			s.state[i] = setFalse
		}
	}
	if !s.propagate() {
		return
	}

	objective := 0
	switch {
	case s.m.leafObjective != nil:
		objective = s.m.leafObjective(func(v BoolVar) bool { return s.state[v] == setTrue })
	case s.m.objectiveVars != nil:
		objective = s.partialObjective()
	}

	if s.bestFound && objective >= s.best.Objective {
		return
	}

	bools := make([]boolState, len(s.state))
	copy(bools, s.state)
	intsCopy := make([]int, len(ints))
	copy(intsCopy, ints)

	s.best = &Result{Objective: objective, bools: bools, ints: intsCopy}
	s.bestFound = true
}

// Validate is a construction-time sanity check used by tests.
func (m *Model) Validate() error {
	for _, group := range m.groups {
		if len(group) == 0 {
			return fmt.Errorf("cpsolver: empty exactly-one group")
		}
	}
	return nil
}
