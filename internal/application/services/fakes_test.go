package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/pkg/constants"
)

// memStore is an in-memory implementation of every repository port
type memStore struct {
	mu      sync.Mutex
	txMu    sync.Mutex
	nextID  int64
	users   map[int64]*models.User
	wss     map[int64]*models.Workspace
	members []models.Membership
	mdls    map[int64]*models.Model
	recs    map[int64]*models.Record
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[int64]*models.User),
		wss:   make(map[int64]*models.Workspace),
		mdls:  make(map[int64]*models.Model),
		recs:  make(map[int64]*models.Record),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

// WithTransaction serializes transactions, which is what the model row lock gives in MySQL
func (s *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

// users

type memUsers struct{ *memStore }

func (r memUsers) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.id()
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r memUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// workspaces

type memWorkspaces struct{ *memStore }

func (r memWorkspaces) Create(ctx context.Context, ws *models.Workspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws.ID = r.id()
	ws.CreatedAt = time.Now()
	cp := *ws
	r.wss[ws.ID] = &cp
	return nil
}

func (r memWorkspaces) GetByName(ctx context.Context, name string) (*models.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ws := range r.wss {
		if ws.Name == name {
			cp := *ws
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memWorkspaces) AddMember(ctx context.Context, m *models.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.id()
	r.members = append(r.members, *m)
	return nil
}

func (r memWorkspaces) IsMember(ctx context.Context, userID, workspaceID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.UserID == userID && m.WorkspaceID == workspaceID {
			return true, nil
		}
	}
	return false, nil
}

func (r memWorkspaces) ListMemberships(ctx context.Context, userID int64) ([]models.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Membership, 0)
	for _, m := range r.members {
		if m.UserID == userID {
			cp := m
			if ws, ok := r.wss[m.WorkspaceID]; ok {
				w := *ws
				cp.Workspace = &w
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

// models

type memModels struct{ *memStore }

func cloneModel(m *models.Model) *models.Model {
	cp := *m
	cp.Fields = append([]models.Field(nil), m.Fields...)
	cp.Rules = append(models.ValidationRules(nil), m.Rules...)
	return &cp
}

func (r memModels) Create(ctx context.Context, m *models.Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.id()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	for i := range m.Fields {
		m.Fields[i].ID = r.id()
		m.Fields[i].ModelID = m.ID
	}
	r.mdls[m.ID] = cloneModel(m)
	return nil
}

func (r memModels) Get(ctx context.Context, id int64) (*models.Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.mdls[id]; ok {
		cp := cloneModel(m)
		models.DecodeFields(cp.Fields)
		return cp, nil
	}
	return nil, nil
}

func (r memModels) ListByWorkspace(ctx context.Context, workspaceID int64) ([]models.Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Model, 0)
	for _, m := range r.mdls {
		if m.WorkspaceID == workspaceID {
			out = append(out, *cloneModel(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memModels) Update(ctx context.Context, m *models.Model, replaceFields bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.mdls[m.ID]
	if !ok {
		return nil
	}
	m.UpdatedAt = time.Now()
	if replaceFields {
		for i := range m.Fields {
			m.Fields[i].ID = r.id()
			m.Fields[i].ModelID = m.ID
		}
	} else {
		m.Fields = existing.Fields
	}
	r.mdls[m.ID] = cloneModel(m)
	return nil
}

func (r memModels) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mdls, id)
	for rid, rec := range r.recs {
		if rec.ModelID == id {
			delete(r.recs, rid)
		}
	}
	return nil
}

func (r memModels) SlugExists(ctx context.Context, workspaceID int64, slug string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.mdls {
		if m.WorkspaceID == workspaceID && m.Slug == slug && m.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r memModels) LockForWrite(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.mdls[id]
	return ok, nil
}

// records

type memRecords struct{ *memStore }

func cloneRecord(rec *models.Record) *models.Record {
	cp := *rec
	b, _ := json.Marshal(rec.Data)
	var d models.Document
	_ = json.Unmarshal(b, &d)
	cp.Data = d
	return &cp
}

func (r memRecords) GetRecord(ctx context.Context, id int64) (*models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.recs[id]; ok {
		return cloneRecord(rec), nil
	}
	return nil, nil
}

func (r memRecords) ScanModelRecords(ctx context.Context, modelID int64, fn func(id int64, doc models.Document) bool) error {
	r.mu.Lock()
	ids := make([]int64, 0)
	for id, rec := range r.recs {
		if rec.ModelID == modelID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	snapshot := make([]*models.Record, 0, len(ids))
	for _, id := range ids {
		snapshot = append(snapshot, cloneRecord(r.recs[id]))
	}
	r.mu.Unlock()

	for _, rec := range snapshot {
		if !fn(rec.ID, rec.Data) {
			return nil
		}
	}
	return nil
}

func (r memRecords) Create(ctx context.Context, rec *models.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = r.id()
	now := time.Now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	r.recs[rec.ID] = cloneRecord(rec)
	return nil
}

func (r memRecords) Update(ctx context.Context, rec *models.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.UpdatedAt = time.Now()
	r.recs[rec.ID] = cloneRecord(rec)
	return nil
}

func (r memRecords) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.recs, id)
	return nil
}

func (r memRecords) CountByModel(ctx context.Context, modelID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.recs {
		if rec.ModelID == modelID {
			n++
		}
	}
	return n, nil
}

func (r memRecords) List(ctx context.Context, modelID int64, q models.RecordListQuery) ([]models.Record, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]models.Record, 0)
	for _, rec := range r.recs {
		if rec.ModelID != modelID {
			continue
		}
		if q.FilterKey != "" && q.FilterValue != nil {
			v, ok := rec.Data[q.FilterKey]
			if !ok || textOf(v) != *q.FilterValue {
				continue
			}
		}
		matched = append(matched, *cloneRecord(rec))
	}

	less := func(a, b models.Record) bool {
		switch q.SortBy {
		case "", constants.FieldCreatedAt:
			return a.ID < b.ID
		case constants.FieldUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
		return textOf(a.Data[q.SortBy]) < textOf(b.Data[q.SortBy])
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if q.SortOrder == constants.SortDesc {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	total := len(matched)
	start := q.Skip
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r memRecords) UsageByModel(ctx context.Context) ([]models.ModelUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[int64]int)
	for _, rec := range r.recs {
		counts[rec.ModelID]++
	}
	out := make([]models.ModelUsage, 0)
	for id, m := range r.mdls {
		out = append(out, models.ModelUsage{ModelID: id, WorkspaceID: m.WorkspaceID, Slug: m.Slug, Records: counts[id]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelID < out[j].ModelID })
	return out, nil
}

func textOf(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	}
	b, _ := json.Marshal(v)
	return strings.Trim(string(b), `"`)
}

// seedRecord inserts a record directly, bypassing validation
func (s *memStore) seedRecord(modelID, workspaceID int64, data string) int64 {
	var d models.Document
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		panic(err)
	}
	rec := &models.Record{ModelID: modelID, WorkspaceID: workspaceID, Data: d}
	_ = memRecords{s}.Create(context.Background(), rec)
	return rec.ID
}

func mustDoc(data string) models.Document {
	var d models.Document
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		panic(err)
	}
	return d
}
