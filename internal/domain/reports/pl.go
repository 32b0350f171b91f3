package reports

import (
	"github.com/shopspring/decimal"

	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
)

type rateKey struct {
	pi      id.ID
	product id.ID
}

// averageRates returns the quantity-weighted average PO rate per PI and product.
func averageRates(volumes []POVolume) map[rateKey]types.Money {
	qty := make(map[rateKey]decimal.Decimal, len(volumes))
	amt := make(map[rateKey]decimal.Decimal, len(volumes))
	for _, v := range volumes {
		k := rateKey{v.PIID, v.ProductID}
		qty[k] = qty[k].Add(v.Quantity.Decimal())
		amt[k] = amt[k].Add(v.Amount)
	}

	out := make(map[rateKey]types.Money, len(qty))
	for k, q := range qty {
		if q.IsZero() {
			continue
		}
		out[k] = amt[k].DivRound(q, 6)
	}
	return out
}

// CalculatePL computes per-invoice figures and the summary. Lines keep the
// order of the first line of each invoice. Purchase cost uses the average PO
// rate of the product across the POs linked to the invoice's PI, or zero.
func CalculatePL(lines []InvoiceLine, volumes []POVolume, expenses map[id.ID]types.Money) PLReport {
	rates := averageRates(volumes)

	byInvoice := make(map[id.ID]*PLItem)
	var order []id.ID
	for _, l := range lines {
		item, ok := byInvoice[l.OutwardID]
		if !ok {
			item = &PLItem{
				OutwardID:    l.OutwardID,
				Number:       l.Number,
				Date:         l.Date,
				ExportValue:  types.Zero(),
				PurchaseCost: types.Zero(),
				Expenses:     types.Zero(),
			}
			byInvoice[l.OutwardID] = item
			order = append(order, l.OutwardID)
		}
		item.ExportValue = item.ExportValue.Add(l.Amount)
		if l.PIID != nil {
			if rate, ok := rates[rateKey{*l.PIID, l.ProductID}]; ok {
				item.PurchaseCost = item.PurchaseCost.Add(types.LineAmount(l.Quantity, rate))
			}
		}
	}

	report := PLReport{Items: make([]PLItem, 0, len(order))}
	sum := PLSummary{
		ExportValue:  types.Zero(),
		PurchaseCost: types.Zero(),
		Expenses:     types.Zero(),
	}
	for _, outwardID := range order {
		item := byInvoice[outwardID]
		if e, ok := expenses[outwardID]; ok {
			item.Expenses = e
		}
		item.GrossProfit = item.ExportValue.Sub(item.PurchaseCost).Sub(item.Expenses)
		report.Items = append(report.Items, *item)

		sum.ExportValue = sum.ExportValue.Add(item.ExportValue)
		sum.PurchaseCost = sum.PurchaseCost.Add(item.PurchaseCost)
		sum.Expenses = sum.Expenses.Add(item.Expenses)
	}
	report.Summary = Summarize(sum.ExportValue, sum.PurchaseCost, sum.Expenses)
	return report
}

// Summarize applies the GST and percentage rules to the three totals.
func Summarize(export, purchase, expenses types.Money) PLSummary {
	gross := export.Sub(purchase).Sub(expenses)
	gst := gross.Mul(GSTRate).Round(types.MoneyScale)
	net := gross.Sub(gst)

	// Kept at division precision; rounding is left to whoever renders it.
	pct := types.Zero()
	if !export.IsZero() {
		pct = net.Mul(decimal.NewFromInt(100)).Div(export)
	}

	return PLSummary{
		ExportValue:         export,
		PurchaseCost:        purchase,
		Expenses:            expenses,
		GrossTotal:          gross,
		GSTAmount:           gst,
		NetProfit:           net,
		NetProfitPercentage: pct,
	}
}

// ProrateExpenses scales each invoice's expenses by the share of its export
// value that made it into the report. It is used when a line filter, such as
// SKU, keeps only part of an invoice. Invoices with no full value keep their
// expenses.
func ProrateExpenses(expenses, included, full map[id.ID]types.Money) map[id.ID]types.Money {
	out := make(map[id.ID]types.Money, len(expenses))
	for outwardID, e := range expenses {
		total, ok := full[outwardID]
		if !ok || total.IsZero() {
			out[outwardID] = e
			continue
		}
		out[outwardID] = e.Mul(included[outwardID]).Div(total).Round(types.MoneyScale)
	}
	return out
}
