package engine

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/repository"
)

// RowStatus classifies one parsed CSV row (spec §4.G).
type RowStatus string

const (
	RowNew       RowStatus = "new"
	RowDuplicate RowStatus = "duplicate"
	RowInvalid   RowStatus = "invalid"
)

// PreviewRow is one parsed, classified CSV row.
type PreviewRow struct {
	RowNumber   int         `json:"rowNumber"`
	Date        *time.Time  `json:"date,omitempty"`
	Amount      *money.Money `json:"amount,omitempty"`
	Payee       string      `json:"payee"`
	Memo        string      `json:"memo,omitempty"`
	Status      RowStatus   `json:"status"`
	Fingerprint string      `json:"fingerprint"`
	Error       string      `json:"error,omitempty"`
}

// PreviewResult is the CSV Import Pipeline's preview output.
type PreviewResult struct {
	Rows           []PreviewRow `json:"rows"`
	NewCount       int          `json:"newCount"`
	DuplicateCount int          `json:"duplicateCount"`
	InvalidCount   int          `json:"invalidCount"`
	MinDate        time.Time    `json:"minDate"`
	MaxDate        time.Time    `json:"maxDate"`
}

// CommitResult is the CSV Import Pipeline's commit output.
type CommitResult struct {
	InsertedCount         int `json:"insertedCount"`
	SkippedDuplicateCount int `json:"skippedDuplicateCount"`
}

// CSVImportService implements the two-phase preview/commit pipeline
// (spec §4.G). Grounded in encoding/csv for RFC-4180 tokenizing; the
// fuzzy header match, accounting-negative parsing, and fingerprinting
// layered on top are hand-rolled because no pack library offers them.
type CSVImportService struct {
	txService *TransactionService
	recalc    *RecalculationService
}

func NewCSVImportService(txService *TransactionService, recalc *RecalculationService) *CSVImportService {
	return &CSVImportService{txService: txService, recalc: recalc}
}

var headerGroups = map[string][]string{
	"date":   {"date", "transaction date", "posted date"},
	"payee":  {"payee", "description", "name", "merchant", "transaction"},
	"memo":   {"memo", "notes", "note", "details"},
	"amount": {"amount", "amt", "value"},
	"deposit": {"deposit", "credit"},
	"withdrawal": {"withdrawal", "debit"},
}

func resolveHeader(header []string) map[string]int {
	resolved := make(map[string]int)
	for i, raw := range header {
		col := strings.ToLower(strings.TrimSpace(raw))
		for group, aliases := range headerGroups {
			if _, already := resolved[group]; already {
				continue
			}
			for _, alias := range aliases {
				if col == alias {
					resolved[group] = i
				}
			}
		}
	}
	return resolved
}

func looksLikeHeader(cols map[string]int) bool {
	_, hasDate := cols["date"]
	_, hasPayee := cols["payee"]
	_, hasAmount := cols["amount"]
	_, hasDeposit := cols["deposit"]
	_, hasWithdrawal := cols["withdrawal"]
	return hasDate || hasPayee || hasAmount || hasDeposit || hasWithdrawal
}

// Preview parses accountID's CSV (reader r, currency) and classifies each
// row against the store's existing fingerprints and an in-file seen set
// (spec §4.G).
func (s *CSVImportService) Preview(ctx context.Context, uow repository.UnitOfWork, accountID string, currency string, r io.Reader) (*PreviewResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "malformed CSV: "+err.Error())
	}

	result := &PreviewResult{}
	if len(records) == 0 {
		return result, nil
	}

	cols := resolveHeader(records[0])
	dataRows := records
	hasHeader := looksLikeHeader(cols)
	if hasHeader {
		dataRows = records[1:]
	} else {
		cols = defaultPositionalColumns(len(records[0]))
	}

	type parsed struct {
		row  PreviewRow
		date time.Time
	}
	var parsedRows []parsed
	seen := make(map[string]struct{})
	var minDate, maxDate time.Time
	first := true

	for i, record := range dataRows {
		rowNum := i + 1
		if hasHeader {
			rowNum++
		}
		if isBlankRow(record) {
			continue
		}
		pr := PreviewRow{RowNumber: rowNum}

		date, dateErr := parseColumn(record, cols, "date", parseDate)
		payee := strings.TrimSpace(getColumn(record, cols, "payee"))
		memo := strings.TrimSpace(getColumn(record, cols, "memo"))
		amount, amountErr := resolveAmount(record, cols, currency)

		pr.Payee = payee
		pr.Memo = memo

		switch {
		case dateErr != nil:
			pr.Status = RowInvalid
			pr.Error = "invalid date"
		case payee == "":
			pr.Status = RowInvalid
			pr.Error = "missing payee"
		case amountErr != nil:
			pr.Status = RowInvalid
			pr.Error = amountErr.Error()
		case amount.IsZero():
			pr.Status = RowInvalid
			pr.Error = "zero amount"
		default:
			d := date.(time.Time)
			pr.Date = &d
			pr.Amount = &amount
			fp := domain.Fingerprint(accountID, d, amount, payee, memo)
			pr.Fingerprint = fp
			if first {
				minDate, maxDate = d, d
				first = false
			} else {
				if d.Before(minDate) {
					minDate = d
				}
				if d.After(maxDate) {
					maxDate = d
				}
			}
			parsedRows = append(parsedRows, parsed{row: pr, date: d})
			continue
		}
		result.Rows = append(result.Rows, pr)
		result.InvalidCount++
	}

	var existing map[string]struct{}
	if !first {
		rng, rerr := money.NewDateRange(minDate, maxDate)
		if rerr != nil {
			return nil, rerr
		}
		existing, err = uow.Transactions().ExistingFingerprints(ctx, accountID, rng)
		if err != nil {
			return nil, err
		}
		result.MinDate, result.MaxDate = minDate, maxDate
	}

	for _, p := range parsedRows {
		row := p.row
		_, dup1 := existing[row.Fingerprint]
		_, dup2 := seen[row.Fingerprint]
		if dup1 || dup2 {
			row.Status = RowDuplicate
			result.DuplicateCount++
		} else {
			row.Status = RowNew
			result.NewCount++
		}
		seen[row.Fingerprint] = struct{}{}
		result.Rows = append(result.Rows, row)
	}

	sort.SliceStable(result.Rows, func(i, j int) bool { return result.Rows[i].RowNumber < result.Rows[j].RowNumber })
	return result, nil
}

// ConfirmedRow is one caller-confirmed New row passed to Commit.
type ConfirmedRow struct {
	Date        time.Time
	Amount      money.Money
	Payee       string
	Memo        string
	Fingerprint string
}

// Commit inserts confirmed rows that are still new, skipping any whose
// fingerprint now exists in the store or has already appeared earlier in
// this batch, then recalculates every impacted period in chronological
// order (spec §4.G). Guarantees idempotence: re-committing the same rows
// inserts nothing (testable property 7).
func (s *CSVImportService) Commit(ctx context.Context, uow repository.UnitOfWork, accountID string, rows []ConfirmedRow) (*CommitResult, error) {
	result := &CommitResult{}
	if len(rows) == 0 {
		return result, nil
	}

	minDate, maxDate := rows[0].Date, rows[0].Date
	for _, r := range rows {
		if r.Date.Before(minDate) {
			minDate = r.Date
		}
		if r.Date.After(maxDate) {
			maxDate = r.Date
		}
	}
	rng, err := money.NewDateRange(minDate, maxDate)
	if err != nil {
		return nil, err
	}
	existing, err := uow.Transactions().ExistingFingerprints(ctx, accountID, rng)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	impactedCurrency := make(map[string]string)

	for _, r := range rows {
		if _, ok := existing[r.Fingerprint]; ok {
			result.SkippedDuplicateCount++
			continue
		}
		if _, ok := seen[r.Fingerprint]; ok {
			result.SkippedDuplicateCount++
			continue
		}
		seen[r.Fingerprint] = struct{}{}

		if r.Amount.IsPositive() {
			if _, err := s.txService.CreateInflow(ctx, uow, accountID, r.Date, r.Amount, r.Payee, r.Memo); err != nil {
				return nil, err
			}
		} else {
			if _, err := s.txService.CreateOutflow(ctx, uow, accountID, r.Date, r.Amount.Abs(), r.Payee, nil, nil, r.Memo); err != nil {
				return nil, err
			}
		}
		result.InsertedCount++
		impactedCurrency[periodKey(r.Date)] = r.Amount.Currency()
	}

	keys := make([]string, 0, len(impactedCurrency))
	for k := range impactedCurrency {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var year, month int
		fmt.Sscanf(k, "%04d-%02d", &year, &month)
		if _, err := EnsurePeriod(ctx, uow, year, month, impactedCurrency[k]); err != nil {
			return nil, err
		}
		if err := s.recalc.Recalculate(ctx, uow, year, month); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func periodKey(t time.Time) string { return t.Format("2006-01") }

func isBlankRow(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func defaultPositionalColumns(n int) map[string]int {
	cols := map[string]int{"date": 0, "payee": 1, "amount": 2}
	if n > 3 {
		cols["memo"] = 3
	}
	return cols
}

func getColumn(record []string, cols map[string]int, key string) string {
	idx, ok := cols[key]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func parseColumn(record []string, cols map[string]int, key string, fn func(string) (time.Time, error)) (interface{}, error) {
	raw := getColumn(record, cols, key)
	if raw == "" {
		return nil, fmt.Errorf("missing %s", key)
	}
	t, err := fn(raw)
	if err != nil {
		return nil, err
	}
	return t, nil
}

var dateLayouts = []string{
	"2006-01-02", "01/02/2006", "1/2/2006", "2006/01/02", "02-01-2006", time.RFC3339,
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

// resolveAmount implements the spec's amount-column precedence: an
// explicit amount column wins; otherwise amount = deposit - |withdrawal|.
// Currency symbols and "(123.45)" accounting-negative notation are
// stripped/interpreted before parsing.
func resolveAmount(record []string, cols map[string]int, currency string) (money.Money, error) {
	if _, ok := cols["amount"]; ok {
		raw := getColumn(record, cols, "amount")
		return parseAmount(raw, currency)
	}
	depositRaw := getColumn(record, cols, "deposit")
	withdrawalRaw := getColumn(record, cols, "withdrawal")
	if depositRaw == "" && withdrawalRaw == "" {
		return money.Money{}, fmt.Errorf("no amount, deposit, or withdrawal column")
	}
	deposit := decimal.Zero
	if depositRaw != "" {
		d, err := parseDecimal(depositRaw)
		if err != nil {
			return money.Money{}, err
		}
		deposit = d
	}
	withdrawal := decimal.Zero
	if withdrawalRaw != "" {
		w, err := parseDecimal(withdrawalRaw)
		if err != nil {
			return money.Money{}, err
		}
		withdrawal = w
	}
	return money.New(deposit.Sub(withdrawal.Abs()), currency)
}

func parseAmount(raw string, currency string) (money.Money, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return money.Money{}, err
	}
	return money.New(d, currency)
}

// parseDecimal accepts currency symbols, thousands separators, and
// "(123.45)" accounting-negative notation.
func parseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ',':
			// thousands separator, drop
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("unparseable amount %q", raw)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unparseable amount %q", raw)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
