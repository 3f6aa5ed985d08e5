package engagement

import (
	"fmt"

	"VidHub.com/pkg/errno"
)

// RowOp 对 video_likes 行的操作
type RowOp int8

const (
	RowNone RowOp = iota
	RowInsert
	RowUpdate
	RowDelete
)

func (op RowOp) String() string {
	switch op {
	case RowInsert:
		return "insert"
	case RowUpdate:
		return "update"
	case RowDelete:
		return "delete"
	}
	return "none"
}

// Effect 一次状态迁移的完整副作用, 行操作与计数增量必须同时落库
type Effect struct {
	From   State
	To     State
	Op     RowOp
	IsLike bool
	Delta  Delta
}

// Transition 根据当前状态与意图计算下一状态, 重复同一意图即取消
func Transition(current State, intent Intent) (Effect, error) {
	if !current.Valid() {
		return Effect{}, errno.ValidationErr.WithMessage(fmt.Sprintf("invalid engagement state %d", int8(current)))
	}
	if !intent.Valid() {
		return Effect{}, errno.ValidationErr.WithMessage(fmt.Sprintf("invalid vote intent %q", string(intent)))
	}
	target := intent.Target()
	if current == target {
		target = StateNone
	}
	return Settle(current, target)
}

// Settle 计算从 current 直接迁移到 target 的副作用
// 并发首投冲突时按目标状态落库, 后写者生效
func Settle(current, target State) (Effect, error) {
	if !current.Valid() || !target.Valid() {
		return Effect{}, errno.ValidationErr.WithMessage(fmt.Sprintf("invalid engagement transition %d -> %d", int8(current), int8(target)))
	}
	eff := Effect{
		From:   current,
		To:     target,
		IsLike: target == StateLiked,
		Delta:  contribution(target).Sub(contribution(current)),
	}
	switch {
	case current == target:
		eff.Op = RowNone
	case current == StateNone:
		eff.Op = RowInsert
	case target == StateNone:
		eff.Op = RowDelete
	default:
		eff.Op = RowUpdate
	}
	return eff, nil
}

// Fold 从 NONE 开始依次应用意图, 返回最终状态与累计增量
func Fold(intents []Intent) (State, Delta, error) {
	state := StateNone
	var total Delta
	for _, intent := range intents {
		eff, err := Transition(state, intent)
		if err != nil {
			return state, total, err
		}
		state = eff.To
		total = total.Add(eff.Delta)
	}
	return state, total, nil
}

func contribution(s State) Delta {
	switch s {
	case StateLiked:
		return Delta{Like: 1}
	case StateDisliked:
		return Delta{Dislike: 1}
	}
	return Delta{}
}
