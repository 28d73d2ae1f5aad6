package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

// BatchProcessor 在本地暂存调度员对多条记录的确认/取消决定，然后一次性提交
type BatchProcessor struct {
	backend Backend
	store   *RecordStore

	mu       sync.Mutex
	staged   map[string]domain.Confirmation
	inFlight bool
}

func NewBatchProcessor(backend Backend, store *RecordStore) *BatchProcessor {
	return &BatchProcessor{
		backend: backend,
		store:   store,
		staged:  map[string]domain.Confirmation{},
	}
}

// StageDecision 设置或覆盖某条记录的暂存决定，不访问服务器
func (p *BatchProcessor) StageDecision(recordID string, decision domain.Confirmation) error {
	if !decision.Valid() {
		return fmt.Errorf("invalid decision %q", decision)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.staged[recordID] = decision
	return nil
}

func (p *BatchProcessor) Unstage(recordID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.staged, recordID)
}

func (p *BatchProcessor) Staged() map[string]domain.Confirmation {
	p.mu.Lock()
	defer p.mu.Unlock()

	return maps.Clone(p.staged)
}

// BuildConfirmations 把暂存的决定解析为请求条目。
// 找不到记录，或记录的 employeeId、selectedDay、shiftId 任一为空的决定会被丢弃
func BuildConfirmations(staged map[string]domain.Confirmation, records []*domain.Disponibility) []domain.ConfirmationItem {
	items, _ := resolveConfirmations(staged, records)
	return items
}

// resolveConfirmations 同时返回被保留的记录 id，与 items 一一对应
func resolveConfirmations(staged map[string]domain.Confirmation, records []*domain.Disponibility) ([]domain.ConfirmationItem, map[string]domain.Confirmation) {
	byID := make(map[string]*domain.Disponibility, len(records))
	for _, d := range records {
		byID[d.ID] = d
	}

	items := make([]domain.ConfirmationItem, 0, len(staged))
	kept := make(map[string]domain.Confirmation, len(staged))
	for _, id := range slices.Sorted(maps.Keys(staged)) {
		d, ok := byID[id]
		if !ok || d.EmployeeID == "" || d.SelectedDay == "" || d.ShiftID == "" {
			continue
		}
		items = append(items, domain.ConfirmationItem{
			EmployeeID:  d.EmployeeID,
			SelectedDay: d.SelectedDay,
			ShiftID:     d.ShiftID,
			Status:      staged[id],
		})
		kept[id] = staged[id]
	}
	return items, kept
}

// SubmitBatch 用一个请求提交全部暂存决定，返回提交的条目数。
// 成功后清空已提交的决定并重新加载记录；失败时暂存内容保持不变，用户可以重试
func (p *BatchProcessor) SubmitBatch(ctx context.Context) (int, error) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return 0, ErrInFlight
	}
	p.inFlight = true
	snapshot := maps.Clone(p.staged)
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	items, submitted := resolveConfirmations(snapshot, p.store.Records())
	if len(items) == 0 {
		return 0, ErrNothingStaged
	}

	if err := p.backend.SubmitConfirmations(ctx, items); err != nil {
		return 0, err
	}

	// 提交过程中又被修改过的决定保留下来
	p.mu.Lock()
	for id, decision := range snapshot {
		if p.staged[id] == decision {
			delete(p.staged, id)
		}
	}
	p.mu.Unlock()

	// 只同步真正发送给服务器的决定
	p.store.applyConfirmations(submitted)
	if err := p.store.Reload(ctx); err != nil {
		slog.Warn("确认已提交，但重新加载记录失败", "error", err)
	}

	return len(items), nil
}
