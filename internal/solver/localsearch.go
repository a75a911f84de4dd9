package solver

// twoOptImprove reverses intra-tour segments while it reduces distance and
// stays feasible. Multi-node jobs keep their leg order via validOrder.
func twoOptImprove(p *Problem, s *Solution) {
	for _, t := range s.Tours {
		n := t.Len()
		if n < 3 {
			continue
		}
		improved := true
		for improved {
			improved = false
			for i := 0; i < n-1; i++ {
				for k := i + 1; k < n; k++ {
					cand := t.Copy()
					for a, b := i, k; a < b; a, b = a+1, b-1 {
						cand.nodes[a], cand.nodes[b] = cand.nodes[b], cand.nodes[a]
					}
					if !cand.validOrder(p) {
						continue
					}
					sc, ok := p.ScheduleTour(cand)
					if !ok {
						continue
					}
					cur, ok := p.ScheduleTour(t)
					if !ok {
						continue
					}
					if sc.DistM+1e-6 < cur.DistM {
						t.nodes = cand.nodes
						improved = true
					}
				}
			}
		}
	}
}

// orOptImprove relocates single activities within their tour when that
// reduces the tour cost. Paired jobs are left to the ruin/recreate cycle.
func orOptImprove(p *Problem, s *Solution) {
	for _, t := range s.Tours {
		n := t.Len()
		if n < 2 {
			continue
		}
		improved := true
		for improved {
			improved = false
			base, ok := p.ScheduleTour(t)
			if !ok {
				break
			}
			baseCost := p.TourCost(t, base)
			for i := 0; i < t.Len(); i++ {
				ni := t.Get(i)
				if len(p.Jobs[p.Nodes[ni].Job].Nodes) > 1 {
					continue
				}
				for j := 0; j <= t.Len(); j++ {
					if j == i || j == i+1 {
						continue
					}
					cand := t.Copy()
					cand.nodes = append(cand.nodes[:i], cand.nodes[i+1:]...)
					at := j
					if at > i {
						at--
					}
					cand.nodes = append(cand.nodes[:at], append([]int{ni}, cand.nodes[at:]...)...)
					sc, ok := p.ScheduleTour(cand)
					if !ok {
						continue
					}
					if p.TourCost(cand, sc)+1e-6 < baseCost {
						t.nodes = cand.nodes
						improved = true
						break
					}
				}
				if improved {
					break
				}
			}
		}
	}
}
