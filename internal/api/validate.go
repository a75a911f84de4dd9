package api

import (
	"fmt"

	"vrpsolve/internal/model"
)

func validateSolveRequest(req *model.SolveRequest) error {
	if req.ProblemID == "" {
		return fmt.Errorf("problemId is required")
	}
	if req.TimeBudgetMs < 0 {
		return fmt.Errorf("timeBudgetMs must be >= 0")
	}
	if req.MaxGenerations < 0 {
		return fmt.Errorf("maxGenerations must be >= 0")
	}
	if req.InitTemp < 0 {
		return fmt.Errorf("initTemp must be >= 0")
	}
	if req.Cooling != 0 && (req.Cooling <= 0 || req.Cooling >= 1) {
		return fmt.Errorf("cooling must be in (0,1)")
	}
	if req.Objectives != nil {
		// exact keys only: the solver's weight lookup is case-sensitive
		allowed := map[string]struct{}{"distance": {}, "driveTime": {}, "failed": {}}
		for k, v := range req.Objectives {
			if v < 0 {
				return fmt.Errorf("objective %s must be >= 0", k)
			}
			if _, ok := allowed[k]; !ok {
				return fmt.Errorf("unknown objective key: %s (allowed: distance,driveTime,failed)", k)
			}
		}
	}
	return nil
}
