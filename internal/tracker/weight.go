package tracker

import (
	"sort"

	"github.com/habitflow/project/internal/habit"
	"github.com/habitflow/project/internal/persist"
)

type WeightProfile struct {
	InitialWeight float64   `json:"initial_weight"`
	GoalWeight    float64   `json:"goal_weight"`
	StartDate     habit.Day `json:"start_date"`
}

type WeightEntry struct {
	Value float64   `json:"value"`
	Date  habit.Day `json:"date"`
}

// WeightProgress is the derived view of the tracker.
type WeightProgress struct {
	Profile WeightProfile `json:"profile"`
	Current float64       `json:"current"`
	Delta   float64       `json:"delta"`
	ToGoal  float64       `json:"to_goal"`
	Entries []WeightEntry `json:"entries"`
}

type WeightService struct {
	KV persist.KV
}

func NewWeightService(kv persist.KV) *WeightService {
	return &WeightService{KV: kv}
}

func (s *WeightService) Profile() (WeightProfile, bool, error) {
	var profile WeightProfile
	ok, err := loadJSON(s.KV, persist.KeyWeightProfile, &profile)
	return profile, ok, err
}

// SetProfile creates or replaces the profile; this is what unlocks the
// tracker.
func (s *WeightService) SetProfile(profile WeightProfile) error {
	if profile.InitialWeight <= 0 || profile.GoalWeight <= 0 {
		return ErrInvalidWeight
	}
	return storeJSON(s.KV, persist.KeyWeightProfile, profile)
}

// AddEntry records a measurement and keeps the list newest-first.
func (s *WeightService) AddEntry(entry WeightEntry) error {
	if _, ok, err := s.Profile(); err != nil {
		return err
	} else if !ok {
		return ErrProfileRequired
	}
	if entry.Value <= 0 {
		return ErrInvalidWeight
	}
	entries, err := s.Entries()
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	sortWeightEntries(entries)
	return storeJSON(s.KV, persist.KeyWeightEntries, entries)
}

func (s *WeightService) Entries() ([]WeightEntry, error) {
	entries := []WeightEntry{}
	if _, err := loadJSON(s.KV, persist.KeyWeightEntries, &entries); err != nil {
		return nil, err
	}
	sortWeightEntries(entries)
	return entries, nil
}

// Progress derives the current weight and distances from the newest entry,
// falling back to the initial weight when no entries exist.
func (s *WeightService) Progress() (WeightProgress, error) {
	profile, ok, err := s.Profile()
	if err != nil {
		return WeightProgress{}, err
	}
	if !ok {
		return WeightProgress{}, ErrProfileRequired
	}
	entries, err := s.Entries()
	if err != nil {
		return WeightProgress{}, err
	}
	current := profile.InitialWeight
	if len(entries) > 0 {
		current = entries[0].Value
	}
	return WeightProgress{
		Profile: profile,
		Current: current,
		Delta:   current - profile.InitialWeight,
		ToGoal:  current - profile.GoalWeight,
		Entries: entries,
	}, nil
}

func sortWeightEntries(entries []WeightEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})
}
