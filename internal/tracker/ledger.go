package tracker

import (
	"sort"
	"strings"
	"time"

	"github.com/habitflow/project/internal/habit"
	"github.com/habitflow/project/internal/persist"
)

const (
	EntryInitial = "initial"
	EntryIncome  = "income"
	EntryExpense = "expense"
)

type AccountingProfile struct {
	StartingCapital float64   `json:"starting_capital"`
	CreatedAt       time.Time `json:"created_at"`
}

type LedgerEntry struct {
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        habit.Day `json:"date"`
}

// LedgerSummary is the derived view of the bookkeeping tracker.
type LedgerSummary struct {
	Profile AccountingProfile `json:"profile"`
	Income  float64           `json:"income"`
	Expense float64           `json:"expense"`
	Balance float64           `json:"balance"`
	Entries []LedgerEntry     `json:"entries"`
}

type LedgerService struct {
	KV  persist.KV
	Now func() time.Time
}

func NewLedgerService(kv persist.KV) *LedgerService {
	return &LedgerService{KV: kv, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *LedgerService) Profile() (AccountingProfile, bool, error) {
	var profile AccountingProfile
	ok, err := loadJSON(s.KV, persist.KeyLedgerProfile, &profile)
	return profile, ok, err
}

// SetProfile unlocks the tracker and seeds the entry list with the initial
// capital record.
func (s *LedgerService) SetProfile(startingCapital float64) error {
	if startingCapital < 0 {
		return ErrInvalidAmount
	}
	now := s.Now()
	profile := AccountingProfile{StartingCapital: startingCapital, CreatedAt: now}
	if err := storeJSON(s.KV, persist.KeyLedgerProfile, profile); err != nil {
		return err
	}
	seed := []LedgerEntry{{
		Type:        EntryInitial,
		Amount:      startingCapital,
		Description: "Starting capital",
		Date:        habit.DayOf(now),
	}}
	return storeJSON(s.KV, persist.KeyLedgerEntries, seed)
}

// AddEntry records an income or expense line.
func (s *LedgerService) AddEntry(entry LedgerEntry) error {
	if _, ok, err := s.Profile(); err != nil {
		return err
	} else if !ok {
		return ErrProfileRequired
	}
	if entry.Type != EntryIncome && entry.Type != EntryExpense {
		return ErrInvalidEntryType
	}
	if entry.Amount <= 0 {
		return ErrInvalidAmount
	}
	entry.Description = strings.TrimSpace(entry.Description)
	if entry.Description == "" {
		return ErrDescriptionRequired
	}
	entries, err := s.Entries()
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	sortLedgerEntries(entries)
	return storeJSON(s.KV, persist.KeyLedgerEntries, entries)
}

func (s *LedgerService) Entries() ([]LedgerEntry, error) {
	entries := []LedgerEntry{}
	if _, err := loadJSON(s.KV, persist.KeyLedgerEntries, &entries); err != nil {
		return nil, err
	}
	sortLedgerEntries(entries)
	return entries, nil
}

// Summary derives totals: balance = starting capital + income - expense.
func (s *LedgerService) Summary() (LedgerSummary, error) {
	profile, ok, err := s.Profile()
	if err != nil {
		return LedgerSummary{}, err
	}
	if !ok {
		return LedgerSummary{}, ErrProfileRequired
	}
	entries, err := s.Entries()
	if err != nil {
		return LedgerSummary{}, err
	}
	summary := LedgerSummary{Profile: profile, Entries: entries}
	for _, entry := range entries {
		switch entry.Type {
		case EntryIncome:
			summary.Income += entry.Amount
		case EntryExpense:
			summary.Expense += entry.Amount
		}
	}
	summary.Balance = profile.StartingCapital + summary.Income - summary.Expense
	return summary, nil
}

func sortLedgerEntries(entries []LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})
}
