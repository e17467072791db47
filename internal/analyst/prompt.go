package analyst

import (
	"fmt"

	"StockRanker/internal/model"
)

const deepPromptTemplate = `Analise detalhadamente a ação %s com base nos seguintes indicadores fundamentalistas:

P/L: %s
P/VP: %s
ROE: %s
Dividend Yield: %s
Dívida Bruta/Patrimônio: %s
Crescimento da Receita: %s
Margem Líquida: %s
ROIC: %s

Forneça:
1. Visão geral da saúde financeira
2. Análise dos múltiplos (P/L e P/VP)
3. Análise da rentabilidade (ROE, Margem Líquida e ROIC)
4. Análise da distribuição de dividendos
5. Análise do endividamento
6. Pontos fortes e fracos
7. Riscos e oportunidades
8. Recomendação final (Compra/Venda/Neutro)

Seja objetivo e use dados concretos em sua análise.`

const structurePromptTemplate = `Analise o seguinte texto sobre a ação %s e estruture uma resposta em formato JSON:

%s

Forneça a resposta APENAS no seguinte formato JSON, sem texto adicional:
{
  "overview": "Resumo geral em um parágrafo",
  "positivePoints": ["Lista de pontos positivos"],
  "negativePoints": ["Lista de pontos de atenção"],
  "keyMetrics": [
    {
      "category": "Nome da categoria",
      "metrics": [
        {
          "name": "Nome do indicador",
          "value": "Valor",
          "evaluation": "Avaliação (Positivo/Neutro/Negativo)"
        }
      ]
    }
  ],
  "recommendation": {
    "verdict": "COMPRA/VENDA/NEUTRO",
    "reasoning": ["Lista de justificativas"]
  }
}`

// percent appends "%" unless the scraped value already carries it.
func percent(v string) string {
	if v == "" || v[len(v)-1] == '%' {
		return v
	}
	return v + "%"
}

// DeepPrompt builds the narrative analysis prompt for a record.
func DeepPrompt(r model.FundamentalRecord) string {
	return fmt.Sprintf(deepPromptTemplate,
		r.Symbol, r.PL, r.PVP, percent(r.ROE), percent(r.DividendYield), r.GrossDebt,
		percent(r.RevenueGrowth), percent(r.NetMargin), percent(r.ROIC))
}

// StructurePrompt asks the model to restate a narrative as JSON.
func StructurePrompt(symbol, raw string) string {
	return fmt.Sprintf(structurePromptTemplate, symbol, raw)
}
