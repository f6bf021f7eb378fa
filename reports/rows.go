package reports

import "math"

// NPLBranchSummary is one branch row of the NPL summary report
type NPLBranchSummary struct {
	BranchCode       string  `json:"_id"`
	TotalLoans       int     `json:"total_loans"`
	TotalOutstanding float64 `json:"total_outstanding"`
	TotalArrears     float64 `json:"total_arrears"`
	AvgDaysArrears   float64 `json:"avg_days_arrears"`
}

// Promise-to-pay statuses grouped by the collection performance report
const (
	PromiseKept    = "kept"
	PromiseBroken  = "broken"
	PromisePending = "pending"
	PromiseExpired = "expired"
)

// CollectionBucket is the promise-to-pay total for one status
type CollectionBucket struct {
	Status      string  `json:"_id"`
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

// CollectionMetrics summarises the collection performance buckets
type CollectionMetrics struct {
	KeptRatePercent float64
	RecoveryAmount  float64
	BrokenCount     int
	PendingCount    int
}

func NPLBranches(records []Record) ([]NPLBranchSummary, error) {
	return project[NPLBranchSummary](records)
}

func CollectionBuckets(records []Record) ([]CollectionBucket, error) {
	return project[CollectionBucket](records)
}

func project[T any](records []Record) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		var row T
		if err := rec.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// Metrics derives the success metrics. The kept rate is 0 when there are no promises.
func Metrics(buckets []CollectionBucket) CollectionMetrics {
	var m CollectionMetrics
	total := 0
	for _, b := range buckets {
		total += b.Count
		switch b.Status {
		case PromiseKept:
			m.KeptRatePercent += float64(b.Count)
			m.RecoveryAmount += b.TotalAmount
		case PromiseBroken:
			m.BrokenCount += b.Count
		case PromisePending:
			m.PendingCount += b.Count
		}
	}
	if total == 0 {
		m.KeptRatePercent = 0
		return m
	}
	m.KeptRatePercent = math.Round(m.KeptRatePercent/float64(total)*1000) / 10
	return m
}
