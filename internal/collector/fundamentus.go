package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"StockRanker/internal/model"
)

// DefaultFundamentusURL is the public screener results page.
const DefaultFundamentusURL = "https://www.fundamentus.com.br/resultado.php"

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// fundamentusColumns is the number of cells in a results row.
const fundamentusColumns = 21

// FundamentusFetcher scrapes the fundamentals results table.
type FundamentusFetcher struct {
	URL    string
	Client *http.Client
}

// NewFundamentusFetcher creates a scraper with optional proxy support.
func NewFundamentusFetcher(pageURL, proxyURL string) *FundamentusFetcher {
	if pageURL == "" {
		pageURL = DefaultFundamentusURL
	}
	return &FundamentusFetcher{
		URL:    pageURL,
		Client: newHTTPClient(proxyURL, 30*time.Second),
	}
}

func (f *FundamentusFetcher) Name() string { return "fundamentus" }

// FetchFundamentals downloads the results page and parses every data row.
func (f *FundamentusFetcher) FetchFundamentals(ctx context.Context) ([]model.FundamentalRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fundamentus fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fundamentus: status %d, body: %s", resp.StatusCode, string(body))
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("fundamentus charset: %w", err)
	}
	return ParseFundamentus(body)
}

// ParseFundamentus extracts records from the results table HTML. The header
// row and rows with missing cells are skipped.
func ParseFundamentus(r io.Reader) ([]model.FundamentalRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse fundamentus html: %w", err)
	}

	var records []model.FundamentalRecord
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		tds := row.Find("td")
		if tds.Length() < fundamentusColumns {
			return
		}
		cell := func(i int) string {
			return strings.TrimSpace(tds.Eq(i).Text())
		}
		rec := model.FundamentalRecord{
			Symbol:           cell(0),
			Price:            cell(1),
			PL:               cell(2),
			PVP:              cell(3),
			PSR:              cell(4),
			DividendYield:    cell(5),
			PAtivo:           cell(6),
			PCapGiro:         cell(7),
			PEbit:            cell(8),
			PAtivCircLiq:     cell(9),
			EVEbit:           cell(10),
			EVEbitda:         cell(11),
			EbitMargin:       cell(12),
			NetMargin:        cell(13),
			CurrentLiquidity: cell(14),
			ROIC:             cell(15),
			ROE:              cell(16),
			Liquidity2M:      cell(17),
			NetWorth:         cell(18),
			GrossDebt:        cell(19),
			RevenueGrowth:    cell(20),
		}
		if rec.Symbol == "" {
			return
		}
		records = append(records, rec)
	})

	if len(records) == 0 {
		return nil, ErrNoData
	}
	return records, nil
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
