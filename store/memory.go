package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/padraicbc/racematch/models"
	"github.com/padraicbc/racematch/normalize"
)

// MemStore is an in-process Repository. All reads return copies.
type MemStore struct {
	mu sync.RWMutex

	nextID       map[string]int
	runners      map[int]models.Runner
	matches      map[int]models.RunnerMatch
	races        map[int]models.Race
	results      map[int]models.Result
	series       map[int]models.RaceSeries
	seriesRaces  []models.RaceSeriesRace
	participants map[int][]int
	users        map[string]models.User
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		nextID:       map[string]int{},
		runners:      map[int]models.Runner{},
		matches:      map[int]models.RunnerMatch{},
		races:        map[int]models.Race{},
		results:      map[int]models.Result{},
		series:       map[int]models.RaceSeries{},
		participants: map[int][]int{},
		users:        map[string]models.User{},
	}
}

func (s *MemStore) id(table string) int {
	s.nextID[table]++
	return s.nextID[table]
}

func copyRunner(r models.Runner) models.Runner {
	r.AlternateNames = slices.Clone(r.AlternateNames)
	r.MatchKeys = slices.Clone(r.MatchKeys)
	return r
}

func (s *MemStore) GetAllRunners(_ context.Context) ([]models.Runner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Runner, 0, len(s.runners))
	for _, r := range s.runners {
		out = append(out, copyRunner(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetRunnersByMatchKey(_ context.Context, keys []string) ([]models.Runner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Runner
	for _, r := range s.runners {
		if slices.ContainsFunc(r.MatchKeys, func(k string) bool { return slices.Contains(keys, k) }) {
			out = append(out, copyRunner(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetRunner(_ context.Context, id int) (*models.Runner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runners[id]
	if !ok {
		return nil, fmt.Errorf("runner %d: %w", id, ErrNotFound)
	}
	r = copyRunner(r)
	return &r, nil
}

func (s *MemStore) CreateRunner(_ context.Context, r *models.Runner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.id("runners")
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	s.runners[r.ID] = copyRunner(*r)
	return nil
}

func (s *MemStore) AddAlternateName(_ context.Context, runnerID int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runners[runnerID]
	if !ok {
		return fmt.Errorf("runner %d: %w", runnerID, ErrNotFound)
	}
	if slices.Contains(r.AlternateNames, name) {
		return nil
	}
	r.AlternateNames = append(slices.Clone(r.AlternateNames), name)
	if k := normalize.BlockingKey(name); k != "" && !slices.Contains(r.MatchKeys, k) {
		r.MatchKeys = append(slices.Clone(r.MatchKeys), k)
	}
	s.runners[runnerID] = r
	return nil
}

func (s *MemStore) CreateRunnerMatch(_ context.Context, m *models.RunnerMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.id("runner_matches")
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	cp := *m
	cp.MatchReasons = slices.Clone(m.MatchReasons)
	s.matches[m.ID] = cp
	return nil
}

func (s *MemStore) GetRunnerMatch(_ context.Context, id int) (*models.RunnerMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return nil, fmt.Errorf("runner match %d: %w", id, ErrNotFound)
	}
	return &m, nil
}

func (s *MemStore) ListRunnerMatches(_ context.Context, status models.MatchStatus) ([]models.RunnerMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.RunnerMatch
	for _, m := range s.matches {
		if status == "" || m.Status == status {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) ReviewRunnerMatch(_ context.Context, id int, status models.MatchStatus, reviewedBy string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[id]
	if !ok {
		return false, fmt.Errorf("runner match %d: %w", id, ErrNotFound)
	}
	if !m.Reviewable() {
		return false, nil
	}
	m.Status = status
	m.ReviewedBy = &reviewedBy
	m.ReviewedAt = &at
	s.matches[id] = m
	return true, nil
}

func (s *MemStore) CreateRace(_ context.Context, r *models.Race) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.id("races")
	s.races[r.ID] = *r
	return nil
}

func (s *MemStore) GetRace(_ context.Context, id int) (*models.Race, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.races[id]
	if !ok {
		return nil, fmt.Errorf("race %d: %w", id, ErrNotFound)
	}
	return &r, nil
}

// DeleteRace removes a race and its results like the Postgres cascade does.
// Series links to the race are kept, as in Postgres.
func (s *MemStore) DeleteRace(_ context.Context, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.races, id)
	for rid, res := range s.results {
		if res.RaceID == id {
			delete(s.results, rid)
		}
	}
}

func (s *MemStore) RefreshRaceStats(_ context.Context, raceID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	race, ok := s.races[raceID]
	if !ok {
		return fmt.Errorf("race %d: %w", raceID, ErrNotFound)
	}
	var times []string
	for _, res := range s.results {
		if res.RaceID == raceID {
			times = append(times, res.FinishTime)
		}
	}
	race.TotalFinishers, race.AverageTime = raceStats(times)
	s.races[raceID] = race
	return nil
}

func (s *MemStore) CreateResult(_ context.Context, r *models.Result) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runners[r.RunnerID]; !ok {
		return false, fmt.Errorf("result runner %d: %w", r.RunnerID, ErrNotFound)
	}
	if _, ok := s.races[r.RaceID]; !ok {
		return false, fmt.Errorf("result race %d: %w", r.RaceID, ErrNotFound)
	}
	if r.SourceResultID != "" {
		for _, existing := range s.results {
			if existing.SourceProvider == r.SourceProvider && existing.SourceResultID == r.SourceResultID {
				return false, nil
			}
		}
	}

	r.ID = s.id("results")
	if r.ImportedAt.IsZero() {
		r.ImportedAt = time.Now()
	}
	cp := *r
	cp.Runner, cp.Race = nil, nil
	s.results[r.ID] = cp
	return true, nil
}

func (s *MemStore) ResultExists(_ context.Context, sourceProvider, sourceResultID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sourceResultID == "" {
		return false, nil
	}
	for _, r := range s.results {
		if r.SourceProvider == sourceProvider && r.SourceResultID == sourceResultID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemStore) GetResultsForRaces(_ context.Context, raceIDs []int) ([]models.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Result
	for _, res := range s.results {
		if !slices.Contains(raceIDs, res.RaceID) {
			continue
		}
		if rn, ok := s.runners[res.RunnerID]; ok {
			rn = copyRunner(rn)
			res.Runner = &rn
		}
		if rc, ok := s.races[res.RaceID]; ok {
			res.Race = &rc
		}
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) CreateSeries(_ context.Context, rs *models.RaceSeries) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rs.ID = s.id("race_series")
	s.series[rs.ID] = *rs
	return nil
}

func (s *MemStore) GetSeries(_ context.Context, id int) (*models.RaceSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rs, ok := s.series[id]
	if !ok {
		return nil, fmt.Errorf("series %d: %w", id, ErrNotFound)
	}
	return &rs, nil
}

func (s *MemStore) AddSeriesRace(_ context.Context, sr *models.RaceSeriesRace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.series[sr.SeriesID]; !ok {
		return fmt.Errorf("series %d: %w", sr.SeriesID, ErrNotFound)
	}
	if _, ok := s.races[sr.RaceID]; !ok {
		return fmt.Errorf("race %d: %w", sr.RaceID, ErrNotFound)
	}
	cp := *sr
	cp.Race = nil
	// (series, race) is unique; a repeat updates number and multiplier.
	for i, existing := range s.seriesRaces {
		if existing.SeriesID == sr.SeriesID && existing.RaceID == sr.RaceID {
			s.seriesRaces[i] = cp
			return nil
		}
	}
	s.seriesRaces = append(s.seriesRaces, cp)
	return nil
}

func (s *MemStore) GetSeriesRaces(_ context.Context, seriesID int) ([]models.RaceSeriesRace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.RaceSeriesRace
	for _, sr := range s.seriesRaces {
		if sr.SeriesID != seriesID {
			continue
		}
		if rc, ok := s.races[sr.RaceID]; ok {
			sr.Race = &rc
		}
		out = append(out, sr)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SeriesRaceNumber < out[j].SeriesRaceNumber })
	return out, nil
}

func (s *MemStore) AddSeriesParticipant(_ context.Context, seriesID, runnerID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.series[seriesID]; !ok {
		return fmt.Errorf("series %d: %w", seriesID, ErrNotFound)
	}
	if !slices.Contains(s.participants[seriesID], runnerID) {
		s.participants[seriesID] = append(s.participants[seriesID], runnerID)
	}
	return nil
}

func (s *MemStore) GetPrivateSeriesParticipants(_ context.Context, seriesID int) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.participants[seriesID]), nil
}

func (s *MemStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[strings.TrimSpace(username)]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	return &u, nil
}

func (s *MemStore) UpsertUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.users[u.Username]; ok {
		u.ID = existing.ID
	} else {
		u.ID = s.id("users")
	}
	s.users[u.Username] = *u
	return nil
}

// WithIdentityLock runs fn directly. MemStore has a single process by
// definition and the Resolver already serialises identities in process.
func (s *MemStore) WithIdentityLock(_ context.Context, _ string, fn func(Repository) error) error {
	return fn(s)
}

// Snapshot hands fn a frozen copy of the store taken under the read lock, so
// writes made while fn runs are not visible to it.
func (s *MemStore) Snapshot(_ context.Context, fn func(Repository) error) error {
	return fn(s.clone())
}

func (s *MemStore) clone() *MemStore {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := NewMemStore()
	for k, v := range s.nextID {
		c.nextID[k] = v
	}
	for k, v := range s.runners {
		c.runners[k] = copyRunner(v)
	}
	for k, v := range s.matches {
		c.matches[k] = v
	}
	for k, v := range s.races {
		c.races[k] = v
	}
	for k, v := range s.results {
		c.results[k] = v
	}
	for k, v := range s.series {
		c.series[k] = v
	}
	c.seriesRaces = slices.Clone(s.seriesRaces)
	for k, v := range s.participants {
		c.participants[k] = slices.Clone(v)
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}
