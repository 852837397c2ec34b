package evaluation

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

type ScoreInput struct {
	Type    EvaluationType
	Records []Record
	Weights map[string]float64
	MaxRate float64
}

type itemScore struct {
	wbsItemID string
	score     float64
}

// ComputeWeightedScore normalizes each scored item against MaxRate, weights it
// by its WBS weight percentage and sums the terms. Secondary records are first
// averaged per WBS item across evaluators.
//
// A nil result means nothing can be scored yet: no completed record carries a
// score, or every matched weight is zero.
func ComputeWeightedScore(in ScoreInput) (*float64, error) {
	for wbsItemID, weight := range in.Weights {
		if err := checkWeight(weight); err != nil {
			return nil, fmt.Errorf("wbs %s: %w", wbsItemID, err)
		}
	}

	scored := make([]Record, 0, len(in.Records))
	for _, record := range in.Records {
		if !record.scored() {
			continue
		}
		if !isFinite(*record.Score) {
			return nil, fmt.Errorf("wbs %s: %w", record.WbsItemID, ErrInvalidScore)
		}
		scored = append(scored, record)
	}
	if len(scored) == 0 {
		return nil, nil
	}
	if !(in.MaxRate > 0) || math.IsInf(in.MaxRate, 0) {
		return nil, ErrInvalidMaxRate
	}

	var items []itemScore
	if in.Type == TypeSecondary {
		items = averageByItem(scored)
	} else {
		items = make([]itemScore, 0, len(scored))
		for _, record := range scored {
			items = append(items, itemScore{wbsItemID: record.WbsItemID, score: *record.Score})
		}
	}
	// fixed summation order keeps the result independent of record order
	sort.Slice(items, func(i, j int) bool {
		if items[i].wbsItemID == items[j].wbsItemID {
			return items[i].score < items[j].score
		}
		return items[i].wbsItemID < items[j].wbsItemID
	})

	var weightedSum, totalWeight float64
	for _, item := range items {
		weight := in.Weights[item.wbsItemID]
		normalized := (item.score / in.MaxRate) * maxScalePercent
		weightedSum += (weight / maxScalePercent) * normalized
		totalWeight += weight
	}
	if totalWeight == 0 {
		return nil, nil
	}

	total := round2(weightedSum)
	return &total, nil
}

func averageByItem(records []Record) []itemScore {
	grouped := make(map[string][]float64)
	for _, record := range records {
		grouped[record.WbsItemID] = append(grouped[record.WbsItemID], *record.Score)
	}
	items := make([]itemScore, 0, len(grouped))
	for wbsItemID, scores := range grouped {
		sort.Float64s(scores)
		var sum float64
		for _, score := range scores {
			sum += score
		}
		items = append(items, itemScore{wbsItemID: wbsItemID, score: sum / float64(len(scores))})
	}
	return items
}

// WeightMap indexes weights by WBS item. A later entry for the same item
// replaces an earlier one.
func WeightMap(weights []WbsWeight) map[string]float64 {
	out := make(map[string]float64, len(weights))
	for _, w := range weights {
		out[w.WbsItemID] = w.Weight
	}
	return out
}

func checkWeight(weight float64) error {
	if !isFinite(weight) {
		return ErrInvalidWeight
	}
	if weight < 0 {
		return ErrNegativeWeight
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// round2 rounds half away from zero.
func round2(v float64) float64 {
	rounded, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return rounded
}
