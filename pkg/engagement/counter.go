package engagement

import (
	"fmt"

	"VidHub.com/pkg/errno"
)

// Counter 反范式计数字段名, 仅允许白名单内的列参与 SQL 拼接
type Counter string

const (
	CounterViews       Counter = "view_count"
	CounterLikes       Counter = "like_count"
	CounterDislikes    Counter = "dislike_count"
	CounterComments    Counter = "comment_count"
	CounterSubscribers Counter = "subscriber_count"
	CounterTotalViews  Counter = "total_views"
)

var videoCounters = map[Counter]struct{}{
	CounterViews:    {},
	CounterLikes:    {},
	CounterDislikes: {},
	CounterComments: {},
}

var profileCounters = map[Counter]struct{}{
	CounterSubscribers: {},
	CounterTotalViews:  {},
}

func (c Counter) IsVideoCounter() bool {
	_, ok := videoCounters[c]
	return ok
}

func (c Counter) IsProfileCounter() bool {
	_, ok := profileCounters[c]
	return ok
}

// CheckVideoCounter 校验视频计数列名
func CheckVideoCounter(c Counter) error {
	if !c.IsVideoCounter() {
		return errno.ValidationErr.WithMessage(fmt.Sprintf("unknown video counter %q", string(c)))
	}
	return nil
}

// CheckProfileCounter 校验频道计数列名
func CheckProfileCounter(c Counter) error {
	if !c.IsProfileCounter() {
		return errno.ValidationErr.WithMessage(fmt.Sprintf("unknown profile counter %q", string(c)))
	}
	return nil
}

// Delta 点赞/点踩计数增量
type Delta struct {
	Like    int64 `json:"like"`
	Dislike int64 `json:"dislike"`
}

func (d Delta) Add(o Delta) Delta {
	return Delta{Like: d.Like + o.Like, Dislike: d.Dislike + o.Dislike}
}

func (d Delta) Sub(o Delta) Delta {
	return Delta{Like: d.Like - o.Like, Dislike: d.Dislike - o.Dislike}
}

func (d Delta) IsZero() bool {
	return d.Like == 0 && d.Dislike == 0
}

// Counts 视频点赞/点踩计数快照
type Counts struct {
	LikeCount    int64 `json:"like_count"`
	DislikeCount int64 `json:"dislike_count"`
}

// Apply 应用增量并在零处截断
func (c Counts) Apply(d Delta) Counts {
	return Counts{
		LikeCount:    ClampAdd(c.LikeCount, d.Like),
		DislikeCount: ClampAdd(c.DislikeCount, d.Dislike),
	}
}

// Clamp 对外暴露的计数永远不为负
func Clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func ClampAdd(v, delta int64) int64 {
	return Clamp(v + delta)
}

// ClampExpr 生成在数据库端截断的更新表达式, 参数为两次 delta
func ClampExpr(c Counter) string {
	return fmt.Sprintf("CASE WHEN %s + ? < 0 THEN 0 ELSE %s + ? END", c, c)
}
