package trade

import (
	"sort"
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesFilter narrows sales queries
type SalesFilter struct {
	BranchID  *uuid.UUID
	ProductID *uuid.UUID
	Source    *SaleSource
	Period    shared.DateRange
}

// SalesTotals is an aggregate over a group of sales
type SalesTotals struct {
	Count        int64
	UnitsSold    int64
	VolumeMl     int64
	TotalRevenue decimal.Decimal
}

// SourceTotals groups totals by channel
type SourceTotals struct {
	Source SaleSource
	SalesTotals
}

// ProductTotals groups totals by product
type ProductTotals struct {
	ProductID uuid.UUID
	SalesTotals
}

// SalesSummary is the report over a filtered set of sales
type SalesSummary struct {
	Period    shared.DateRange
	Totals    SalesTotals
	BySource  []SourceTotals
	ByProduct []ProductTotals
}

// TimeBucket is the granularity of a time series aggregation
type TimeBucket string

const (
	TimeBucketDay   TimeBucket = "day"
	TimeBucketMonth TimeBucket = "month"
)

// IsValid checks if the bucket is a known value
func (b TimeBucket) IsValid() bool {
	return b == TimeBucketDay || b == TimeBucketMonth
}

// Truncate returns the start of the bucket containing t, in loc
func (b TimeBucket) Truncate(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	if b == TimeBucketMonth {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Label formats a bucket start for display
func (b TimeBucket) Label(start time.Time) string {
	if b == TimeBucketMonth {
		return start.Format("2006-01")
	}
	return start.Format("2006-01-02")
}

// SalesBucket is one point of a time series
type SalesBucket struct {
	Label string
	Start time.Time
	SalesTotals
}

// AggregateByTime groups sales into day or month buckets, oldest first.
// Buckets without sales are omitted.
func AggregateByTime(records []SalesRecord, bucket TimeBucket, loc *time.Location) []SalesBucket {
	if loc == nil {
		loc = time.UTC
	}
	index := make(map[time.Time]*SalesBucket)
	for _, r := range records {
		start := bucket.Truncate(r.TransactionDate, loc)
		b, ok := index[start]
		if !ok {
			b = &SalesBucket{Label: bucket.Label(start), Start: start, SalesTotals: SalesTotals{TotalRevenue: decimal.Zero}}
			index[start] = b
		}
		b.Count++
		b.UnitsSold += int64(r.QuantitySold)
		b.VolumeMl += r.SoldMl()
		b.TotalRevenue = b.TotalRevenue.Add(r.TotalPrice)
	}

	result := make([]SalesBucket, 0, len(index))
	for _, b := range index {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result
}
