package timer

import "fmt"

// Action 用户意图类型
type Action string

const (
	ActionSetTime  Action = "set_time"
	ActionSetAngle Action = "set_angle"
	ActionStart    Action = "start"
	ActionPause    Action = "pause"
	ActionStop     Action = "stop"
	ActionReset    Action = "reset"
)

// Intent 表示层发送的用户意图
// TimeMs 仅用于 set_time，Angle 仅用于 set_angle
type Intent struct {
	Action Action   `json:"action"`
	TimeMs *int64   `json:"time_ms,omitempty"`
	Angle  *float64 `json:"angle,omitempty"`
}

// Validate 检查意图是否携带必要参数
func (i Intent) Validate() error {
	switch i.Action {
	case ActionSetTime:
		if i.TimeMs == nil {
			return fmt.Errorf("%w: %s requires time_ms", ErrMissingArgument, i.Action)
		}
	case ActionSetAngle:
		if i.Angle == nil {
			return fmt.Errorf("%w: %s requires angle", ErrMissingArgument, i.Action)
		}
	case ActionStart, ActionPause, ActionStop, ActionReset:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, i.Action)
	}
	return nil
}
