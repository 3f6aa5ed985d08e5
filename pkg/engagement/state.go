package engagement

import (
	"fmt"
	"strings"

	"VidHub.com/pkg/errno"
)

// State 用户对单个视频的当前投票状态
type State int8

const (
	StateNone State = iota
	StateLiked
	StateDisliked
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "NONE"
	case StateLiked:
		return "LIKED"
	case StateDisliked:
		return "DISLIKED"
	}
	return fmt.Sprintf("State(%d)", int8(s))
}

func (s State) Valid() bool {
	return s == StateNone || s == StateLiked || s == StateDisliked
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, errno.ValidationErr.WithMessage(fmt.Sprintf("invalid engagement state %d", int8(s)))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func ParseState(v string) (State, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "NONE", "":
		return StateNone, nil
	case "LIKED":
		return StateLiked, nil
	case "DISLIKED":
		return StateDisliked, nil
	}
	return StateNone, errno.ValidationErr.WithMessage(fmt.Sprintf("invalid engagement state %q", v))
}

// StateOf 将存储层记录映射为状态, 记录不存在时为 NONE
func StateOf(exists, isLike bool) State {
	if !exists {
		return StateNone
	}
	if isLike {
		return StateLiked
	}
	return StateDisliked
}

// Intent 投票意图
type Intent string

const (
	IntentLike    Intent = "like"
	IntentDislike Intent = "dislike"
)

func ParseIntent(v string) (Intent, error) {
	switch Intent(strings.ToLower(strings.TrimSpace(v))) {
	case IntentLike:
		return IntentLike, nil
	case IntentDislike:
		return IntentDislike, nil
	}
	return "", errno.ValidationErr.WithMessage(fmt.Sprintf("invalid vote intent %q", v))
}

func (i Intent) Valid() bool {
	return i == IntentLike || i == IntentDislike
}

// Target 意图对应的非空状态
func (i Intent) Target() State {
	if i == IntentDislike {
		return StateDisliked
	}
	return StateLiked
}
