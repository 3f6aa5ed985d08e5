package model

import "time"

const (
	ResourceTypeVideo   = "video"
	ResourceTypeProfile = "profile"

	CheckTypeScheduled = "scheduled"
	CheckTypeManual    = "manual"
	CheckTypeDirty     = "dirty"
)

// DataConsistencyCheck 对账审计记录, 每个被检查的计数一条
type DataConsistencyCheck struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	CheckType     string     `gorm:"not null;size:20;index" json:"check_type"`
	ResourceType  string     `gorm:"not null;size:20" json:"resource_type"`
	ResourceID    string     `gorm:"not null;size:36;index" json:"resource_id"`
	CounterName   string     `gorm:"not null;size:32" json:"counter_name"`
	StoredValue   int64      `json:"stored_value"`
	ComputedValue int64      `json:"computed_value"`
	CacheValue    *int64     `json:"cache_value"`
	IsConsistent  bool       `gorm:"not null;index" json:"is_consistent"`
	CheckTime     time.Time  `gorm:"not null;index" json:"check_time"`
	FixedAt       *time.Time `json:"fixed_at"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
}

func (DataConsistencyCheck) TableName() string {
	return "data_consistency_checks"
}

// Tables 需要迁移的全部表
func Tables() []interface{} {
	return []interface{}{
		&Profile{},
		&Video{},
		&Comment{},
		&VideoLike{},
		&Subscription{},
		&WatchHistory{},
		&Playlist{},
		&PlaylistVideo{},
		&DataConsistencyCheck{},
	}
}
