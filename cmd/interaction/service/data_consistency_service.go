package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"VidHub.com/cmd/interaction/dal/db"
	"VidHub.com/cmd/interaction/infras/redis"
	"VidHub.com/cmd/model"
	"VidHub.com/pkg/engagement"
	"VidHub.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
)

// ConsistencyOptions 对账任务参数
type ConsistencyOptions struct {
	CheckInterval time.Duration
	BatchSize     int
	ActiveWindow  time.Duration
	RetentionDays int
}

// DataConsistencyService 计数对账服务: 从行数据重算反范式计数, 写回修正值并记录审计
type DataConsistencyService struct {
	ctx    context.Context
	cancel context.CancelFunc
	store  *db.Store
	cache  *redis.CounterCache
	dirty  *redis.DirtySet
	opts   ConsistencyOptions

	mu        sync.Mutex
	isRunning bool
}

// ConsistencyCheckResult 一致性检查结果
type ConsistencyCheckResult struct {
	ResourceType string            `json:"resource_type"`
	ResourceID   string            `json:"resource_id"`
	Drifts       []db.CounterDrift `json:"drifts"`
	IsConsistent bool              `json:"is_consistent"`
	Difference   string            `json:"difference"`
	CheckTime    time.Time         `json:"check_time"`
}

// NewDataConsistencyService 创建数据一致性检查服务
func NewDataConsistencyService(store *db.Store, cache *redis.CounterCache, dirty *redis.DirtySet, opts ConsistencyOptions) *DataConsistencyService {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = 5 * time.Minute // 每5分钟检查一次
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.ActiveWindow <= 0 {
		opts.ActiveWindow = 24 * time.Hour
	}
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = 7
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DataConsistencyService{
		ctx:    ctx,
		cancel: cancel,
		store:  store,
		cache:  cache,
		dirty:  dirty,
		opts:   opts,
	}
}

// Start 启动一致性检查服务
func (dcs *DataConsistencyService) Start() error {
	dcs.mu.Lock()
	defer dcs.mu.Unlock()
	if dcs.isRunning {
		return fmt.Errorf("consistency check service is already running")
	}

	dcs.isRunning = true
	hlog.Info("Starting data consistency check service...")

	// 启动定期检查
	go dcs.runPeriodicCheck()

	hlog.Info("Data consistency check service started")
	return nil
}

// Stop 停止一致性检查服务
func (dcs *DataConsistencyService) Stop() error {
	dcs.mu.Lock()
	defer dcs.mu.Unlock()
	if !dcs.isRunning {
		return nil
	}

	dcs.isRunning = false
	dcs.cancel()

	hlog.Info("Data consistency check service stopped")
	return nil
}

// runPeriodicCheck 运行定期检查
func (dcs *DataConsistencyService) runPeriodicCheck() {
	ticker := time.NewTicker(dcs.opts.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-dcs.ctx.Done():
			hlog.Info("Periodic consistency check stopped")
			return
		case <-ticker.C:
			dcs.RunOnce(dcs.ctx)
			if err := dcs.CleanupOldRecords(dcs.ctx, dcs.opts.RetentionDays); err != nil {
				hlog.Errorf("Failed to cleanup consistency records: %v", err)
			}
		}
	}
}

// RunOnce 执行一轮对账: 优先处理被标记的视频/频道, 再抽查最近活跃的视频
func (dcs *DataConsistencyService) RunOnce(ctx context.Context) []ConsistencyCheckResult {
	hlog.CtxInfof(ctx, "Starting consistency check...")
	start := time.Now()

	dirtyIDs, activeIDs := dcs.collectVideoIDs(ctx)
	channelIDs := dcs.collectChannelIDs(ctx)

	results := make([]ConsistencyCheckResult, 0, len(dirtyIDs)+len(activeIDs)+len(channelIDs))
	checkVideos := func(ids []string, checkType string) {
		for _, id := range ids {
			result, err := dcs.checkSingleVideoConsistency(ctx, id, checkType)
			if err != nil {
				hlog.CtxErrorf(ctx, "Failed to check video %s: %v", id, err)
				continue
			}
			results = append(results, *result)
		}
	}
	checkVideos(dirtyIDs, model.CheckTypeDirty)
	checkVideos(activeIDs, model.CheckTypeScheduled)
	for _, id := range channelIDs {
		result, err := dcs.checkSingleChannelConsistency(ctx, id, model.CheckTypeDirty)
		if err != nil {
			hlog.CtxErrorf(ctx, "Failed to check channel %s: %v", id, err)
			continue
		}
		results = append(results, *result)
	}

	inconsistentCount := 0
	for _, r := range results {
		if !r.IsConsistent {
			inconsistentCount++
		}
	}
	hlog.CtxInfof(ctx, "Consistency check completed: checked=%d, inconsistent=%d, duration=%v",
		len(results), inconsistentCount, time.Since(start))
	return results
}

// collectVideoIDs 返回被标记的视频与其余最近活跃的视频, 两者不重复
func (dcs *DataConsistencyService) collectVideoIDs(ctx context.Context) (dirty, active []string) {
	seen := map[string]struct{}{}
	if dcs.dirty != nil {
		ids, err := dcs.dirty.PopVideos(ctx, int64(dcs.opts.BatchSize))
		if err != nil {
			hlog.CtxWarnf(ctx, "Failed to pop dirty videos: %v", err)
		}
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				dirty = append(dirty, id)
			}
		}
	}
	ids, err := dcs.store.ListActiveVideoIDs(ctx, time.Now().Add(-dcs.opts.ActiveWindow), dcs.opts.BatchSize)
	if err != nil {
		hlog.CtxErrorf(ctx, "Failed to get active video IDs: %v", err)
	}
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			active = append(active, id)
		}
	}
	return dirty, active
}

func (dcs *DataConsistencyService) collectChannelIDs(ctx context.Context) []string {
	if dcs.dirty == nil {
		return nil
	}
	ids, err := dcs.dirty.PopChannels(ctx, int64(dcs.opts.BatchSize))
	if err != nil {
		hlog.CtxWarnf(ctx, "Failed to pop dirty channels: %v", err)
	}
	return ids
}

// checkSingleVideoConsistency 重算单个视频的计数并修正
func (dcs *DataConsistencyService) checkSingleVideoConsistency(ctx context.Context, videoID, checkType string) (*ConsistencyCheckResult, error) {
	cached := dcs.cachedCounters(ctx, model.ResourceTypeVideo, videoID)
	drifts, err := dcs.store.ReconcileVideo(ctx, videoID, true)
	if err != nil {
		return nil, err
	}
	result := newCheckResult(model.ResourceTypeVideo, videoID, drifts)

	if !result.IsConsistent {
		hlog.CtxWarnf(ctx, "Data inconsistency detected: video %s - %s", videoID, result.Difference)
	}
	if dcs.cache != nil {
		values := make(map[engagement.Counter]int64, len(drifts))
		for _, d := range drifts {
			values[d.Counter] = d.Computed
		}
		if err := dcs.cache.SetVideoCounters(ctx, videoID, values); err != nil {
			hlog.CtxWarnf(ctx, "Failed to refresh counter cache of %s: %v", videoID, err)
		}
	}
	dcs.saveCheckResult(ctx, checkType, result, cached)
	return result, nil
}

// checkSingleChannelConsistency 重算频道订阅数并修正
func (dcs *DataConsistencyService) checkSingleChannelConsistency(ctx context.Context, channelID, checkType string) (*ConsistencyCheckResult, error) {
	cached := dcs.cachedCounters(ctx, model.ResourceTypeProfile, channelID)
	drift, err := dcs.store.ReconcileChannel(ctx, channelID, true)
	if err != nil {
		return nil, err
	}
	result := newCheckResult(model.ResourceTypeProfile, channelID, []db.CounterDrift{drift})

	if !result.IsConsistent {
		hlog.CtxWarnf(ctx, "Data inconsistency detected: channel %s - %s", channelID, result.Difference)
	}
	if dcs.cache != nil {
		values := map[engagement.Counter]int64{engagement.CounterSubscribers: drift.Computed}
		if err := dcs.cache.SetProfileCounters(ctx, channelID, values); err != nil {
			hlog.CtxWarnf(ctx, "Failed to refresh counter cache of %s: %v", channelID, err)
		}
	}
	dcs.saveCheckResult(ctx, checkType, result, cached)
	return result, nil
}

// cachedCounters 修正前的缓存值, 仅用于审计, 读取失败时忽略
func (dcs *DataConsistencyService) cachedCounters(ctx context.Context, resourceType, id string) map[engagement.Counter]int64 {
	if dcs.cache == nil {
		return nil
	}
	var (
		values map[engagement.Counter]int64
		err    error
	)
	if resourceType == model.ResourceTypeProfile {
		values, _, err = dcs.cache.GetProfileCounters(ctx, id)
	} else {
		values, _, err = dcs.cache.GetVideoCounters(ctx, id)
	}
	if err != nil {
		hlog.CtxDebugf(ctx, "Failed to read counter cache of %s: %v", id, err)
		return nil
	}
	return values
}

func newCheckResult(resourceType, resourceID string, drifts []db.CounterDrift) *ConsistencyCheckResult {
	result := &ConsistencyCheckResult{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Drifts:       drifts,
		IsConsistent: true,
		CheckTime:    time.Now(),
	}
	for _, d := range drifts {
		if d.Consistent() {
			continue
		}
		result.IsConsistent = false
		if result.Difference != "" {
			result.Difference += "; "
		}
		result.Difference += fmt.Sprintf("%s stored=%d computed=%d", d.Counter, d.Stored, d.Computed)
	}
	return result
}

// saveCheckResult 每个计数保存一条审计记录, 不一致的记录同时写入修复时间
func (dcs *DataConsistencyService) saveCheckResult(ctx context.Context, checkType string, result *ConsistencyCheckResult, cached map[engagement.Counter]int64) {
	now := time.Now()
	checks := make([]model.DataConsistencyCheck, 0, len(result.Drifts))
	for _, d := range result.Drifts {
		check := model.DataConsistencyCheck{
			CheckType:     checkType,
			ResourceType:  result.ResourceType,
			ResourceID:    result.ResourceID,
			CounterName:   string(d.Counter),
			StoredValue:   d.Stored,
			ComputedValue: d.Computed,
			IsConsistent:  d.Consistent(),
			CheckTime:     result.CheckTime,
			CreatedAt:     now,
		}
		if v, ok := cached[d.Counter]; ok {
			check.CacheValue = &v
		}
		if !check.IsConsistent {
			fixedAt := now
			check.FixedAt = &fixedAt
		}
		checks = append(checks, check)
	}
	if err := dcs.store.SaveConsistencyChecks(ctx, checks); err != nil {
		hlog.CtxErrorf(ctx, "Failed to save consistency check result: %v", err)
	}
}

// ConsistencyReport 一致性报告
type ConsistencyReport struct {
	TimeRange         string             `json:"time_range"`
	TotalChecks       int                `json:"total_checks"`
	ConsistentCount   int                `json:"consistent_count"`
	InconsistentCount int                `json:"inconsistent_count"`
	ConsistencyRate   float64            `json:"consistency_rate"`
	InconsistentItems []InconsistentItem `json:"inconsistent_items"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// InconsistentItem 不一致项目
type InconsistentItem struct {
	ResourceType  string    `json:"resource_type"`
	ResourceID    string    `json:"resource_id"`
	CounterName   string    `json:"counter_name"`
	StoredValue   int64     `json:"stored_value"`
	ComputedValue int64     `json:"computed_value"`
	CacheValue    *int64    `json:"cache_value,omitempty"`
	CheckTime     time.Time `json:"check_time"`
	Fixed         bool      `json:"fixed"`
}

// GetConsistencyReport 获取一致性报告
func (dcs *DataConsistencyService) GetConsistencyReport(ctx context.Context, hours int) (*ConsistencyReport, error) {
	if hours <= 0 {
		hours = 24
	}
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	checks, err := dcs.store.ListConsistencyChecks(ctx, since)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to get consistency checks")
	}

	report := &ConsistencyReport{
		TimeRange:   fmt.Sprintf("Last %d hours", hours),
		TotalChecks: len(checks),
		GeneratedAt: time.Now(),
	}

	for _, check := range checks {
		if check.IsConsistent {
			report.ConsistentCount++
			continue
		}
		report.InconsistentCount++
		report.InconsistentItems = append(report.InconsistentItems, InconsistentItem{
			ResourceType:  check.ResourceType,
			ResourceID:    check.ResourceID,
			CounterName:   check.CounterName,
			StoredValue:   check.StoredValue,
			ComputedValue: check.ComputedValue,
			CacheValue:    check.CacheValue,
			CheckTime:     check.CheckTime,
			Fixed:         check.FixedAt != nil,
		})
	}

	if report.TotalChecks > 0 {
		report.ConsistencyRate = float64(report.ConsistentCount) / float64(report.TotalChecks) * 100
	}

	return report, nil
}

// ManualCheck 手动检查指定资源的一致性, 不一致时自动修复
func (dcs *DataConsistencyService) ManualCheck(ctx context.Context, resourceType string, resourceID string) (*ConsistencyCheckResult, error) {
	switch resourceType {
	case model.ResourceTypeVideo:
		return dcs.checkSingleVideoConsistency(ctx, resourceID, model.CheckTypeManual)
	case model.ResourceTypeProfile:
		return dcs.checkSingleChannelConsistency(ctx, resourceID, model.CheckTypeManual)
	}
	return nil, errors.WithStack(errno.ValidationErr.WithMessage("unsupported resource type: " + resourceType))
}

// CleanupOldRecords 清理旧的检查记录
func (dcs *DataConsistencyService) CleanupOldRecords(ctx context.Context, days int) error {
	cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)

	deleted, err := dcs.store.DeleteConsistencyChecksBefore(ctx, cutoff)
	if err != nil {
		return errors.WithMessage(err, "failed to cleanup old records")
	}

	hlog.CtxInfof(ctx, "Cleaned up %d old consistency check records", deleted)
	return nil
}
