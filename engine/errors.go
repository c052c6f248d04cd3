package engine

import "fmt"

// InvalidActionError 玩家尝试了不合法的操作（非当前回合、牌不在手中、
// 缺门优先规则违反等）。校验先于任何状态变更，返回此错误时传入的
// GameState 保证未被修改。
type InvalidActionError struct {
	Msg string
}

func (e *InvalidActionError) Error() string {
	return e.Msg
}

func invalidAction(format string, args ...any) error {
	return &InvalidActionError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidGameStateError 游戏状态本身不允许该操作（阶段错误、玩家数
// 不足等），属于调用方或引擎缺陷，不是用户输入错误。
type InvalidGameStateError struct {
	Msg string
}

func (e *InvalidGameStateError) Error() string {
	return e.Msg
}

func invalidState(format string, args ...any) error {
	return &InvalidGameStateError{Msg: fmt.Sprintf(format, args...)}
}
