package profile

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"hrforms/internal/platform/querier"
)

var ErrNotFound = errors.New("profile not found")

// Writer is the profile store as used by setup and the profile endpoints.
type Writer interface {
	Get(ctx context.Context, userID string) (Profile, error)
	List(ctx context.Context, userIDs []string) ([]Profile, error)
	Upsert(ctx context.Context, p Profile) error
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const selectProfile = `
    SELECT user_id, employee_id, name, employment_type, department, team, position,
           gender, civil_status, solo_parent, role, created_at
    FROM employee_profiles
  `

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.UserID, &p.EmployeeID, &p.Name, &p.EmploymentType, &p.Department, &p.Team, &p.Position,
		&p.Gender, &p.CivilStatus, &p.SoloParent, &p.Role, &p.CreatedAt)
	return p, err
}

func (s *Store) Get(ctx context.Context, userID string) (Profile, error) {
	p, err := scanProfile(s.DB.QueryRow(ctx, selectProfile+" WHERE user_id = $1", userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

func (s *Store) List(ctx context.Context, userIDs []string) ([]Profile, error) {
	rows, err := s.DB.Query(ctx, selectProfile+" WHERE user_id = ANY($1) ORDER BY name", userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Upsert(ctx context.Context, p Profile) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO employee_profiles (user_id, employee_id, name, employment_type, department, team, position, gender, civil_status, solo_parent, role)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    ON CONFLICT (user_id) DO UPDATE SET
      employee_id = EXCLUDED.employee_id,
      name = EXCLUDED.name,
      employment_type = EXCLUDED.employment_type,
      department = EXCLUDED.department,
      team = EXCLUDED.team,
      position = EXCLUDED.position,
      gender = EXCLUDED.gender,
      civil_status = EXCLUDED.civil_status,
      solo_parent = EXCLUDED.solo_parent,
      role = EXCLUDED.role
  `, p.UserID, p.EmployeeID, p.Name, p.EmploymentType, p.Department, p.Team, p.Position, p.Gender, p.CivilStatus, p.SoloParent, p.Role)
	return err
}

// MemoryStore keeps profiles in process for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewMemoryStore(profiles ...Profile) *MemoryStore {
	m := &MemoryStore{profiles: map[string]Profile{}}
	for _, p := range profiles {
		m.profiles[p.UserID] = p
	}
	return m
}

func (m *MemoryStore) Get(ctx context.Context, userID string) (Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) List(ctx context.Context, userIDs []string) ([]Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Profile, 0, len(userIDs))
	for _, id := range userIDs {
		if p, ok := m.profiles[id]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) Upsert(ctx context.Context, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
	return nil
}
