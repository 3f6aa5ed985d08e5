package engagement

import (
	"sync"

	"VidHub.com/pkg/errno"
)

// Phase 乐观覆盖层阶段
type Phase int8

const (
	PhaseConfirmed Phase = iota
	PhasePending
	PhaseRolledBack
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseRolledBack:
		return "rolled_back"
	}
	return "confirmed"
}

var ErrVoteInFlight = errno.RequestErr.WithMessage("a vote is already in flight")

// Snapshot 页面展示的投票状态与计数
type Snapshot struct {
	State  State  `json:"state"`
	Counts Counts `json:"counts"`
}

// Overlay 客户端乐观更新: 待确认期间展示预测值, 成功后替换为服务端确认值, 失败回滚到上次确认值
type Overlay struct {
	mu        sync.Mutex
	confirmed Snapshot
	pending   *Snapshot
	phase     Phase
	lastErr   error
}

func NewOverlay(confirmed Snapshot) *Overlay {
	return &Overlay{confirmed: confirmed, phase: PhaseConfirmed}
}

// Begin 开始一次投票并返回预测值, 同一时刻只允许一个未完成的投票
func (o *Overlay) Begin(intent Intent) (Snapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase == PhasePending {
		return o.confirmed, ErrVoteInFlight
	}
	eff, err := Transition(o.confirmed.State, intent)
	if err != nil {
		return o.confirmed, err
	}
	predicted := Snapshot{State: eff.To, Counts: o.confirmed.Counts.Apply(eff.Delta)}
	o.pending = &predicted
	o.phase = PhasePending
	o.lastErr = nil
	return predicted, nil
}

// Confirm 用服务端返回值替换覆盖层
func (o *Overlay) Confirm(s Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s.Counts = Counts{LikeCount: Clamp(s.Counts.LikeCount), DislikeCount: Clamp(s.Counts.DislikeCount)}
	o.confirmed = s
	o.pending = nil
	o.phase = PhaseConfirmed
}

// Rollback 丢弃预测值, 展示回到上次确认状态
func (o *Overlay) Rollback(cause error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.pending = nil
	o.phase = PhaseRolledBack
	o.lastErr = cause
}

// View 当前应展示的值
func (o *Overlay) View() (Snapshot, Phase) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase == PhasePending && o.pending != nil {
		return *o.pending, o.phase
	}
	return o.confirmed, o.phase
}

func (o *Overlay) Confirmed() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.confirmed
}

func (o *Overlay) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}
