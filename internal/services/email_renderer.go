package services

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rocjay1/burnrate/internal/models"
	"github.com/shopspring/decimal"
)

const digestTopItems = 5

// FormatMoney renders an amount as "$1,234.50" ("-$12.00" when negative).
func FormatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
}

func renderEntityRows(entities []models.RecurringEntity) string {
	if len(entities) == 0 {
		return `<tr><td colspan="3" style="padding: 6px; color: #888;">None detected</td></tr>`
	}
	var rows strings.Builder
	for i, e := range entities {
		if i == digestTopItems {
			break
		}
		fmt.Fprintf(&rows, `<tr><td style="padding: 6px;">%s</td><td style="padding: 6px;">%s</td><td style="padding: 6px; text-align: right;">%s</td></tr>`,
			html.EscapeString(e.Merchant), html.EscapeString(string(e.Frequency)), FormatMoney(e.Amount))
	}
	return rows.String()
}

// RenderDigestBody renders the HTML body of the nightly digest.
func RenderDigestBody(summary models.DisposableIncomeSummary, generatedAt time.Time) string {
	color := "#107c10"
	if summary.DisposableIncome.IsNegative() {
		color = "#d13438"
	}

	return fmt.Sprintf(`
		<html>
		<body style="font-family: 'Segoe UI', sans-serif; color: #333; line-height: 1.6; background-color: #f4f4f4; margin: 0; padding: 20px;">
			<div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden;">
				<div style="background-color: #0f172a; padding: 20px; text-align: center; color: white;">
					<h2 style="margin: 0;">Monthly cash flow</h2>
					<p style="margin: 4px 0 0;">%s</p>
				</div>
				<div style="padding: 20px;">
					<p>Recurring income: <b>%s</b></p>
					<p>Fixed costs: <b>%s</b></p>
					<p>Disposable income: <b style="color: %s;">%s</b></p>
					<h3>Recurring income</h3>
					<table style="width: 100%%; border-collapse: collapse;">%s</table>
					<h3>Recurring expenses</h3>
					<table style="width: 100%%; border-collapse: collapse;">%s</table>
				</div>
			</div>
		</body>
		</html>
	`,
		generatedAt.Format("January 2, 2006"),
		FormatMoney(summary.TotalIncome),
		FormatMoney(summary.TotalFixedCosts),
		color, FormatMoney(summary.DisposableIncome),
		renderEntityRows(summary.RecurringIncome),
		renderEntityRows(summary.RecurringExpenses),
	)
}
