package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockRanker/internal/model"
)

var bandMarks = map[model.Band]string{
	model.BandFavorable:    "🟢",
	model.BandNeutral:      "🟡",
	model.BandUnfavorable:  "🔴",
	model.BandUnclassified: "⚪",
}

var indicatorLabels = map[model.Indicator]string{
	model.IndicatorPL:               "P/L",
	model.IndicatorPVP:              "P/VP",
	model.IndicatorROE:              "ROE",
	model.IndicatorDividendYield:    "Div.Yield",
	model.IndicatorGrossDebt:        "Dív.Bruta/PL",
	model.IndicatorRevenueGrowth:    "Cresc.Rec.5a",
	model.IndicatorNetMargin:        "Marg.Líquida",
	model.IndicatorROIC:             "ROIC",
	model.IndicatorCurrentLiquidity: "Liq.Corrente",
}

// FormatLeaders formats the leaders subset into a Telegram message.
func FormatLeaders(r *model.Ranking) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Top %d Ações</b> | %s\n\n", len(r.Leaders), r.FetchedAt.Format("02/01/2006")))
	for i, s := range r.Leaders {
		b.WriteString(fmt.Sprintf("%d. <b>%s</b>  R$ %s  Score: %d\n",
			i+1, html.EscapeString(s.Symbol), html.EscapeString(s.Price), s.Score))
	}
	b.WriteString(fmt.Sprintf("\n%d ações avaliadas", len(r.Stocks)))
	return b.String()
}

// FormatStock formats a stock detail view with one line per classified indicator.
func FormatStock(v *model.StockView) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b> | #%d | Score: %d\n", html.EscapeString(v.Symbol), v.Rank, v.Score))
	b.WriteString(fmt.Sprintf("Cotação: R$ %s\n\n", html.EscapeString(v.Price)))
	for _, c := range v.Cells {
		b.WriteString(fmt.Sprintf("%s %s: %s\n", bandMarks[c.Band], indicatorLabels[c.Indicator], html.EscapeString(c.Raw)))
	}
	return b.String()
}

// FormatFailure formats a refresh failure notice.
func FormatFailure(err error, at time.Time) string {
	return fmt.Sprintf("❌ Falha ao atualizar ranking (%s): %s", at.Format("02/01 15:04"), html.EscapeString(err.Error()))
}
