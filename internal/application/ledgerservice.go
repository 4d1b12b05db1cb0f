package application

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/port/driven"
	"github.com/ledgerdesk/ledgerdesk/internal/fieldcrypt"
)

const dateLayout = "2006-01-02"

// EntryInput is the raw user input for adding or editing a ledger entry.
// Amount and Date arrive as strings and are validated before anything is
// persisted.
type EntryInput struct {
	Date     string
	Type     string
	Category string
	Amount   string
	Notes    string
}

// Filter narrows a ledger listing. Zero values mean "no constraint". Date
// bounds compare lexically against the ISO date text, which orders correctly
// for well-formed dates; category matches case-insensitively on substring.
type Filter struct {
	From     string
	To       string
	Category string
	Type     string
}

// LedgerService owns the invariant that transaction fields never reach the
// store in plaintext: every write passes through the field codec on the way
// in, every read on the way out. Filtering necessarily happens in plaintext
// space after decryption, so every query is O(all rows for the company) by
// construction.
type LedgerService struct {
	txns   driven.TransactionStore
	codec  *fieldcrypt.Codec
	logger *slog.Logger
}

// NewLedgerService creates a LedgerService.
func NewLedgerService(txns driven.TransactionStore, codec *fieldcrypt.Codec, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{txns: txns, codec: codec, logger: logger}
}

// validate normalizes and checks raw entry input. Type is lowercased, amount
// must parse as a positive decimal, date must be a well-formed calendar
// date, category must be non-empty. Notes may be empty; it is stored as an
// encrypted empty string, never a true absence.
func validate(in EntryInput) (EntryInput, decimal.Decimal, error) {
	in.Date = strings.TrimSpace(in.Date)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Category = strings.TrimSpace(in.Category)
	in.Amount = strings.TrimSpace(in.Amount)

	if in.Date == "" || in.Type == "" || in.Category == "" || in.Amount == "" {
		return in, decimal.Zero, validationErrorf("date, type, category, and amount are all required")
	}
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return in, decimal.Zero, validationErrorf("invalid date %q: expected YYYY-MM-DD", in.Date)
	}
	if !model.TxnType(in.Type).Valid() {
		return in, decimal.Zero, validationErrorf("type must be %q or %q", model.TxnIncome, model.TxnExpense)
	}
	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		return in, decimal.Zero, validationErrorf("invalid amount %q", in.Amount)
	}
	if amount.Sign() <= 0 {
		return in, decimal.Zero, validationErrorf("amount must be positive; direction is carried by type")
	}

	return in, amount, nil
}

// encrypt seals every sensitive field of a validated entry independently.
func (s *LedgerService) encrypt(companyID int64, in EntryInput, amount decimal.Decimal) (*model.Transaction, error) {
	t := &model.Transaction{CompanyID: companyID}

	var err error
	if t.Date, err = s.codec.EncryptText(in.Date); err != nil {
		return nil, fmt.Errorf("encrypt date: %w", err)
	}
	if t.Type, err = s.codec.EncryptText(in.Type); err != nil {
		return nil, fmt.Errorf("encrypt type: %w", err)
	}
	if t.Category, err = s.codec.EncryptText(in.Category); err != nil {
		return nil, fmt.Errorf("encrypt category: %w", err)
	}
	if t.Amount, err = s.codec.EncryptDecimal(amount); err != nil {
		return nil, fmt.Errorf("encrypt amount: %w", err)
	}
	if t.Notes, err = s.codec.EncryptText(in.Notes); err != nil {
		return nil, fmt.Errorf("encrypt notes: %w", err)
	}

	return t, nil
}

// decrypt produces the caller-facing view of a stored row. Fields that fail
// to decrypt come back as zero values; a row is never dropped or errored
// over corrupt ciphertext, so historical reports stay readable.
func (s *LedgerService) decrypt(t model.Transaction) model.Entry {
	date, _ := s.codec.DecryptText(t.Date)
	typ, _ := s.codec.DecryptText(t.Type)
	category, _ := s.codec.DecryptText(t.Category)
	notes, _ := s.codec.DecryptText(t.Notes)

	return model.Entry{
		ID:        t.ID,
		Date:      date,
		Type:      model.TxnType(typ),
		Category:  category,
		Amount:    s.codec.DecryptDecimal(t.Amount),
		Notes:     notes,
		CreatedAt: t.CreatedAt,
	}
}

// Add validates and persists a new ledger entry for the company. On
// validation failure nothing is persisted.
func (s *LedgerService) Add(ctx context.Context, companyID int64, in EntryInput) (*model.Entry, error) {
	in, amount, err := validate(in)
	if err != nil {
		return nil, err
	}

	t, err := s.encrypt(companyID, in, amount)
	if err != nil {
		return nil, err
	}
	if err := s.txns.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	entry := s.decrypt(*t)
	return &entry, nil
}

// Edit re-validates and fully overwrites an existing entry, re-encrypting
// every field. The lookup is scoped by both transaction and company id; a
// row owned by another company is driven.ErrNotFound.
func (s *LedgerService) Edit(ctx context.Context, companyID, txnID int64, in EntryInput) error {
	in, amount, err := validate(in)
	if err != nil {
		return err
	}

	existing, err := s.txns.Get(ctx, companyID, txnID)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	if existing == nil {
		return driven.ErrNotFound
	}

	t, err := s.encrypt(companyID, in, amount)
	if err != nil {
		return err
	}
	t.ID = txnID

	if err := s.txns.Update(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// Delete removes an entry scoped to its owning company. A miss (including a
// cross-tenant id) is driven.ErrNotFound.
func (s *LedgerService) Delete(ctx context.Context, companyID, txnID int64) error {
	return s.txns.Delete(ctx, companyID, txnID)
}

// List loads all of the company's rows, decrypts each, and applies the
// filter in plaintext space.
func (s *LedgerService) List(ctx context.Context, companyID int64, f Filter) ([]model.Entry, error) {
	rows, err := s.txns.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	entries := make([]model.Entry, 0, len(rows))
	for _, row := range rows {
		entry := s.decrypt(row)
		if matches(entry, f) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// matches applies filter constraints to a decrypted entry.
func matches(e model.Entry, f Filter) bool {
	if f.From != "" && e.Date < f.From {
		return false
	}
	if f.To != "" && e.Date > f.To {
		return false
	}
	if f.Category != "" && !strings.Contains(strings.ToLower(e.Category), strings.ToLower(f.Category)) {
		return false
	}
	if f.Type != "" && string(e.Type) != strings.ToLower(f.Type) {
		return false
	}
	return true
}

// ExportCSV writes the filtered ledger as plaintext CSV rows of
// date,type,category,amount.
func (s *LedgerService) ExportCSV(ctx context.Context, companyID int64, f Filter, w io.Writer) error {
	entries, err := s.List(ctx, companyID, f)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "type", "category", "amount"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		record := []string{e.Date, string(e.Type), e.Category, e.Amount.String()}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// PeriodTotals accumulates income and expense for one reporting bucket.
type PeriodTotals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Summary aggregates the filtered ledger: overall income, expense, and net,
// plus per-month (YYYY-MM) and per-year (YYYY) buckets.
type Summary struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Net          decimal.Decimal
	ByMonth      map[string]PeriodTotals
	ByYear       map[string]PeriodTotals
}

// Summarize builds a Summary over the filtered ledger. Entries whose date
// failed to decrypt fall outside every bucket but still count in the
// overall totals.
func (s *LedgerService) Summarize(ctx context.Context, companyID int64, f Filter) (*Summary, error) {
	entries, err := s.List(ctx, companyID, f)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		ByMonth:      make(map[string]PeriodTotals),
		ByYear:       make(map[string]PeriodTotals),
	}

	for _, e := range entries {
		switch e.Type {
		case model.TxnIncome:
			sum.TotalIncome = sum.TotalIncome.Add(e.Amount)
		case model.TxnExpense:
			sum.TotalExpense = sum.TotalExpense.Add(e.Amount)
		default:
			continue
		}

		if len(e.Date) < len(dateLayout) {
			continue
		}
		month, year := e.Date[:7], e.Date[:4]
		sum.ByMonth[month] = addToBucket(sum.ByMonth[month], e)
		sum.ByYear[year] = addToBucket(sum.ByYear[year], e)
	}

	sum.Net = sum.TotalIncome.Sub(sum.TotalExpense)
	return sum, nil
}

func addToBucket(b PeriodTotals, e model.Entry) PeriodTotals {
	switch e.Type {
	case model.TxnIncome:
		b.Income = b.Income.Add(e.Amount)
	case model.TxnExpense:
		b.Expense = b.Expense.Add(e.Amount)
	}
	return b
}
