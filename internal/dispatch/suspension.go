package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

// SuspensionCoordinator 创建停职警告并把选中的班次标记为停职。
//
// 两个请求按顺序发出：先创建警告，再标记班次。标记失败时删除刚创建的警告；
// 删除也失败时返回 *PartialFailureError，此时服务器上留有一条没有对应停职班次的警告
type SuspensionCoordinator struct {
	backend Backend
	store   *RecordStore
	timeout time.Duration
}

func NewSuspensionCoordinator(backend Backend, store *RecordStore, session *Session) *SuspensionCoordinator {
	timeout := session.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SuspensionCoordinator{backend: backend, store: store, timeout: timeout}
}

// Suspend 允许 recordIDs 为空，此时只创建 susNombre 为 0 的警告
func (c *SuspensionCoordinator) Suspend(ctx context.Context, employeeID string, recordIDs []string, draft Draft, photo *Photo) (*domain.Warning, error) {
	ids := uniqueIDs(recordIDs)

	warning := draft.toWarning(employeeID)
	warning.Type = domain.WarningTypeSuspension
	warning.Severity = ""
	warning.SusNombre = len(ids)

	created, err := c.backend.CreateWarning(ctx, warning, photo)
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return created, nil
	}

	if err := c.backend.SetSuspension(ctx, ids, true); err != nil {
		return nil, c.compensate(ctx, created, err)
	}

	c.store.MarkSuspended(ids)
	return created, nil
}

// compensate 删除已经创建的警告，调用方的 ctx 可能已经取消，所以使用独立的超时
func (c *SuspensionCoordinator) compensate(ctx context.Context, created *domain.Warning, cause error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	if err := c.backend.DeleteWarning(ctx, created.ID); err != nil {
		slog.Error("停职警告回滚失败", "warning", created.ID, "error", err, "cause", cause)
		return &PartialFailureError{WarningID: created.ID, Err: cause, CompensationErr: err}
	}

	return fmt.Errorf("suspend shifts: %w", cause)
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
