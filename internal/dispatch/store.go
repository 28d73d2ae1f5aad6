package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

// RecordStore 保存当前加载的可用性记录（某一天，或某个员工某日之后），
// 并合并实时推送的出勤和已读状态。
//
// 每条记录都带有服务器维护的 version，合并时版本较旧的数据不会覆盖较新的数据，
// 因此推送与整体刷新谁先到达都不会让界面回退到旧状态。
type RecordStore struct {
	backend Backend

	mu      sync.Mutex
	records map[string]*domain.Disponibility
	order   []string
	reload  func(ctx context.Context) ([]*domain.Disponibility, error)
}

func NewRecordStore(backend Backend) *RecordStore {
	return &RecordStore{
		backend: backend,
		records: map[string]*domain.Disponibility{},
	}
}

// LoadByDay 加载某一天的全部记录，服务器返回 404 时得到空集合而不是错误
func (s *RecordStore) LoadByDay(ctx context.Context, day time.Time) error {
	return s.load(ctx, func(ctx context.Context) ([]*domain.Disponibility, error) {
		return s.backend.DisponibilitiesByDay(ctx, day)
	})
}

// LoadByEmployeeAfter 加载某个员工在 after 当天及之后的记录，用于选择要停职的班次
func (s *RecordStore) LoadByEmployeeAfter(ctx context.Context, employeeID string, after time.Time) error {
	return s.load(ctx, func(ctx context.Context) ([]*domain.Disponibility, error) {
		return s.backend.DisponibilitiesByEmployeeAfter(ctx, employeeID, after)
	})
}

// Reload 重复最近一次加载
func (s *RecordStore) Reload(ctx context.Context) error {
	s.mu.Lock()
	fetch := s.reload
	s.mu.Unlock()

	if fetch == nil {
		return nil
	}
	return s.load(ctx, fetch)
}

func (s *RecordStore) load(ctx context.Context, fetch func(ctx context.Context) ([]*domain.Disponibility, error)) error {
	fetched, err := fetch(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		// 失败时保留原有数据
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := make(map[string]*domain.Disponibility, len(fetched))
	order := make([]string, 0, len(fetched))
	for _, d := range fetched {
		if d == nil || d.ID == "" {
			continue
		}
		if _, dup := records[d.ID]; dup {
			continue
		}
		if local, ok := s.records[d.ID]; ok && local.Version > d.Version {
			d = local
		} else {
			d = clone(d)
		}
		records[d.ID] = d
		order = append(order, d.ID)
	}

	s.records = records
	s.order = order
	s.reload = fetch
	return nil
}

// ApplyPresenceUpdate 就地更新一条记录的出勤状态，不访问网络。
// 记录未加载或版本过旧时不做任何修改并返回 false；记录尚未确认时返回 ErrPresenceBeforeConfirmation。
// version 为 0 表示来源没有版本信息，此时直接覆盖
func (s *RecordStore) ApplyPresenceUpdate(id string, presence domain.Presence, version int32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.records[id]
	if !ok || isStale(d, version) {
		return false, nil
	}
	if d.Confirmation != domain.ConfirmationConfirmed {
		return false, ErrPresenceBeforeConfirmation
	}

	p := presence
	d.Presence = &p
	if version > 0 {
		d.Version = version
	}
	return true, nil
}

// ApplySeenUpdate 与 ApplyPresenceUpdate 相同，但 seen 与确认状态无关
func (s *RecordStore) ApplySeenUpdate(id string, seen bool, version int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.records[id]
	if !ok || isStale(d, version) {
		return false
	}

	v := seen
	d.Seen = &v
	if version > 0 {
		d.Version = version
	}
	return true
}

// MarkSuspended 在服务器确认停职后更新本地记录
func (s *RecordStore) MarkSuspended(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if d, ok := s.records[id]; ok {
			suspended := true
			d.Suspension = &suspended
		}
	}
}

// applyConfirmations 在批量确认成功后同步本地记录，随后的 Reload 会给出服务器的权威结果
func (s *RecordStore) applyConfirmations(decisions map[string]domain.Confirmation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range decisions {
		if d, ok := s.records[id]; ok {
			d.Confirmation = c
			if c != domain.ConfirmationConfirmed {
				d.Presence = nil
			}
		}
	}
}

// Records 按加载顺序返回记录的副本
func (s *RecordStore) Records() []*domain.Disponibility {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Disponibility, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(s.records[id]))
	}
	return out
}

func (s *RecordStore) Get(id string) (*domain.Disponibility, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return clone(d), true
}

func (s *RecordStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.order)
}

func isStale(d *domain.Disponibility, version int32) bool {
	return version > 0 && version <= d.Version
}

func clone(d *domain.Disponibility) *domain.Disponibility {
	cp := *d
	if d.Presence != nil {
		p := *d.Presence
		cp.Presence = &p
	}
	if d.Seen != nil {
		v := *d.Seen
		cp.Seen = &v
	}
	if d.Suspension != nil {
		v := *d.Suspension
		cp.Suspension = &v
	}
	return &cp
}
