// Package scoring computes opportunity scores for discovered candidates.
package scoring

// Score rates a candidate from demand (orders or a proxy), competition
// (review count) and normalized rating. Pure and deterministic: same inputs
// always produce the same score.
//
// Components: bucketed demand 0-50 pts, inverse-bucketed competition 0-30 pts
// (fewer reviews score higher), rating 0-20 pts, plus a +10 bonus when high
// demand and low competition coincide. Clamped to [0, 100].
func Score(demand, competition int, rating float64) float64 {
	score := 0.0

	switch {
	case demand > 10_000:
		score += 50
	case demand > 5_000:
		score += 40
	case demand > 1_000:
		score += 30
	case demand > 500:
		score += 20
	case demand > 100:
		score += 10
	}

	switch {
	case competition < 50:
		score += 30
	case competition < 100:
		score += 20
	case competition < 500:
		score += 10
	case competition < 1_000:
		score += 5
	}

	switch {
	case rating >= 4.5:
		score += 20
	case rating >= 4.0:
		score += 15
	case rating >= 3.5:
		score += 10
	case rating >= 3.0:
		score += 5
	}

	// Sweet spot: strong demand against thin competition is worth more than
	// the sum of its parts.
	if demand > 500 && competition < 100 {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}
