package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/transitly/scheduler/config"
	"github.com/transitly/scheduler/internal/model"
)

// Service is the scheduling entry point. Requests without an optimization
// block run the greedy heuristic; requests with one run the CP formulation
// over the program's fleet.
type Service struct {
	greedy    *GreedyScheduler
	cp        *CPScheduler
	defaults  config.SchedulerConfig
	debugMode bool
}

// NewService wires the two scheduler implementations.
func NewService(directions DirectionFinder, programs ProgramStore, defaults config.SchedulerConfig, debugMode bool) *Service {
	return &Service{
		greedy:    NewGreedyScheduler(directions),
		cp:        NewCPScheduler(directions, programs, defaults.SolverTimeout),
		defaults:  defaults,
		debugMode: debugMode,
	}
}

// Schedule computes a plan for the request. An infeasible CP model is not
// an error at this level: it comes back as the error envelope so clients
// can tell "no plan exists" from a failed call.
func (s *Service) Schedule(ctx context.Context, request *model.ScheduleRequest) (*model.ScheduleResponse, error) {
	sctx := NewContext(request, s.defaults, s.debugMode)

	var (
		shuttles []model.Shuttle
		err      error
	)
	if request.Optimization != nil {
		shuttles, err = s.cp.Calculate(ctx, sctx)
	} else {
		shuttles, err = s.greedy.Calculate(ctx, sctx)
	}
	if errors.Is(err, ErrNoSchedule) {
		return model.ErrorResponse(err.Error()), nil
	}
	if err != nil {
		return nil, err
	}

	sctx.Debugf("%s", textPlan(sctx, shuttles))
	return model.SuccessResponse(shuttles), nil
}

// textPlan renders the plan as the block debug logs show.
func textPlan(sctx *Context, shuttles []model.Shuttle) string {
	var b strings.Builder
	b.WriteString("=================================================\n")
	fmt.Fprintf(&b, " Plan of %s\n", sctx.DateStr())
	b.WriteString("======================BEGIN======================\n")
	for _, shuttle := range shuttles {
		fmt.Fprintf(&b, "Shuttle = %s\n", shuttle.ShuttleName)
		for idx, trip := range shuttle.Trips {
			short := ""
			if trip.Short != nil {
				short = *trip.Short
			}
			fmt.Fprintf(&b, "%d %s\n", idx, short)
		}
	}
	b.WriteString("=======================END=======================")
	return b.String()
}
