package market

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Source produces a fresh snapshot.
type Source interface {
	Fetch(ctx context.Context) ([]Index, error)
}

// Fetcher downloads quotes from the stooq CSV endpoint.
type Fetcher struct {
	client    *http.Client
	sourceURL string
	symbols   []string
}

func NewFetcher(sourceURL string, symbols []string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		sourceURL: sourceURL,
		symbols:   symbols,
	}
}

// URL returns the quote URL for the configured symbols.
func (f *Fetcher) URL() string {
	return f.sourceURL + "?s=" + strings.Join(f.symbols, "+") + "&f=sd2t2ohlc&h&e=csv"
}

func (f *Fetcher) Fetch(ctx context.Context) ([]Index, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote source returned HTTP %d", resp.StatusCode)
	}
	return Parse(resp.Body)
}

// Parse reads a Symbol,Date,Time,Open,High,Low,Close CSV. Rows whose open
// or close is missing are skipped.
func Parse(r io.Reader) ([]Index, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	out := []Index{}
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse quotes: %w", err)
		}
		if header {
			header = false
			continue
		}
		if idx, ok := parseRow(rec); ok {
			out = append(out, idx)
		}
	}
	return out, nil
}

func parseRow(rec []string) (Index, bool) {
	if len(rec) < 7 {
		return Index{}, false
	}
	symbol := strings.TrimSpace(rec[0])
	open, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
	if err != nil || open == 0 {
		return Index{}, false
	}
	closing, err := strconv.ParseFloat(strings.TrimSpace(rec[6]), 64)
	if err != nil {
		return Index{}, false
	}

	diff := closing - open
	sign := ""
	if diff > 0 {
		sign = "+"
	}

	name, ok := displayNames[strings.ToUpper(symbol)]
	if !ok {
		name = symbol
	}
	return Index{
		Name:   name,
		Value:  strconv.FormatFloat(closing, 'f', 2, 64),
		Change: sign + strconv.FormatFloat(diff/open*100, 'f', 2, 64) + "%",
		Up:     diff >= 0,
	}, true
}
