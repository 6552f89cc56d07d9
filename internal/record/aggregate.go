package record

import (
	"github.com/shopspring/decimal"
)

// Display tells the renderer how to format a KPI value.
type Display string

const (
	DisplayCurrency   Display = "currency"
	DisplayPercentage Display = "percentage"
	DisplayCount      Display = "count"
)

// KPI is a summary metric derived from a full record collection.
// Currency values are in major units, percentages in the 0-100 range.
type KPI struct {
	Key     string
	Label   string
	Display Display
	Value   decimal.Decimal
}

// Definition describes how to reduce a collection into one KPI.
type Definition struct {
	Key     string
	Label   string
	Display Display
	Reduce  func(kind Kind, records []*Record) decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

func sumWhere(pred func(Kind, Status) bool) func(Kind, []*Record) decimal.Decimal {
	return func(k Kind, records []*Record) decimal.Decimal {
		var cents int64
		for _, r := range records {
			if pred(k, r.Status) {
				cents += r.Amount
			}
		}

		return decimal.New(cents, -2)
	}
}

func sumStatus(s Status) func(Kind, []*Record) decimal.Decimal {
	return sumWhere(func(_ Kind, st Status) bool { return st == s })
}

func countWhere(pred func(Kind, Status) bool) func(Kind, []*Record) decimal.Decimal {
	return func(k Kind, records []*Record) decimal.Decimal {
		n := 0
		for _, r := range records {
			if pred(k, r.Status) {
				n++
			}
		}

		return decimal.NewFromInt(int64(n))
	}
}

func countStatus(s Status) func(Kind, []*Record) decimal.Decimal {
	return countWhere(func(_ Kind, st Status) bool { return st == s })
}

func countAll(_ Kind, records []*Record) decimal.Decimal {
	return decimal.NewFromInt(int64(len(records)))
}

func settlementRate(k Kind, records []*Record) decimal.Decimal {
	if len(records) == 0 {
		return decimal.Zero
	}

	settled := countWhere(IsSettled)(k, records)

	return settled.Mul(hundred).Div(decimal.NewFromInt(int64(len(records)))).Round(2)
}

// achievementRate averages Amount/Target over records that carry a target.
func achievementRate(_ Kind, records []*Record) decimal.Decimal {
	sum := decimal.Zero
	n := 0

	for _, r := range records {
		if r.Target == nil || *r.Target == 0 {
			continue
		}

		sum = sum.Add(decimal.NewFromInt(r.Amount).Div(decimal.NewFromInt(*r.Target)))
		n++
	}

	if n == 0 {
		return decimal.Zero
	}

	return sum.Div(decimal.NewFromInt(int64(n))).Mul(hundred).Round(2)
}

var (
	defRecordCount = Definition{Key: "record_count", Label: "Records", Display: DisplayCount, Reduce: countAll}
	defOpenTotal   = Definition{Key: "pending_total", Label: "Pending total", Display: DisplayCurrency, Reduce: sumWhere(IsOpen)}
	defSettleRate  = Definition{Key: "settlement_rate", Label: "Settlement rate", Display: DisplayPercentage, Reduce: settlementRate}
)

var definitions = map[Kind][]Definition{
	KindPayment: {
		defOpenTotal,
		{Key: "paid_total", Label: "Paid total", Display: DisplayCurrency, Reduce: sumStatus(StatusPaid)},
		{Key: "processing_count", Label: "Processing", Display: DisplayCount, Reduce: countStatus(StatusProcessing)},
		defRecordCount,
		defSettleRate,
	},
	KindQuote: {
		{Key: "open_total", Label: "Open quotes", Display: DisplayCurrency, Reduce: sumWhere(IsOpen)},
		{Key: "accepted_total", Label: "Accepted total", Display: DisplayCurrency, Reduce: sumStatus(StatusAccepted)},
		{Key: "expired_count", Label: "Expired", Display: DisplayCount, Reduce: countStatus(StatusExpired)},
		defRecordCount,
		{Key: "conversion_rate", Label: "Conversion rate", Display: DisplayPercentage, Reduce: settlementRate},
	},
	KindShipment: {
		{Key: "active_count", Label: "In progress", Display: DisplayCount, Reduce: countWhere(IsOpen)},
		{Key: "delivered_count", Label: "Delivered", Display: DisplayCount, Reduce: countStatus(StatusDelivered)},
		{Key: "incident_count", Label: "Incidents", Display: DisplayCount, Reduce: countStatus(StatusIncident)},
		{Key: "returned_count", Label: "Returned", Display: DisplayCount, Reduce: countStatus(StatusReturned)},
		{Key: "delivery_rate", Label: "Delivery rate", Display: DisplayPercentage, Reduce: settlementRate},
	},
	KindExpense: {
		defOpenTotal,
		{Key: "paid_total", Label: "Paid total", Display: DisplayCurrency, Reduce: sumStatus(StatusPaid)},
		defRecordCount,
	},
	KindReceivable: {
		defOpenTotal,
		{Key: "collected_total", Label: "Collected total", Display: DisplayCurrency, Reduce: sumStatus(StatusCollected)},
		defRecordCount,
		{Key: "collection_rate", Label: "Collection rate", Display: DisplayPercentage, Reduce: settlementRate},
	},
	KindPayroll: {
		defOpenTotal,
		{Key: "paid_total", Label: "Paid total", Display: DisplayCurrency, Reduce: sumStatus(StatusPaid)},
		{Key: "employee_count", Label: "Employees", Display: DisplayCount, Reduce: countAll},
	},
	KindCommission: {
		defOpenTotal,
		{Key: "liquidated_total", Label: "Liquidated total", Display: DisplayCurrency, Reduce: sumStatus(StatusLiquidated)},
		{Key: "achievement_rate", Label: "Achievement rate", Display: DisplayPercentage, Reduce: achievementRate},
		defRecordCount,
	},
}

// Definitions returns the KPI set for a kind.
func Definitions(k Kind) []Definition {
	return definitions[k]
}

// ComputeAggregates reduces the full collection into the KPI set of kind k.
// It never looks at filters or pagination; pass the whole collection.
func ComputeAggregates(k Kind, records []*Record) []KPI {
	defs := definitions[k]
	kpis := make([]KPI, 0, len(defs))

	for _, d := range defs {
		kpis = append(kpis, KPI{
			Key:     d.Key,
			Label:   d.Label,
			Display: d.Display,
			Value:   d.Reduce(k, records),
		})
	}

	return kpis
}

// Find returns the KPI with the given key.
func Find(kpis []KPI, key string) (KPI, bool) {
	for _, k := range kpis {
		if k.Key == key {
			return k, true
		}
	}

	return KPI{}, false
}
