package engine

import "encoding/json"

// ActionType 玩家动作类型
type ActionType int

const (
	ActionPass ActionType = iota
	ActionPong
	ActionKongExposed
	ActionKongConcealed
	ActionKongUpgrade
	ActionHu
)

func (a ActionType) String() string {
	switch a {
	case ActionPong:
		return "PONG"
	case ActionKongExposed:
		return "KONG_EXPOSED"
	case ActionKongConcealed:
		return "KONG_CONCEALED"
	case ActionKongUpgrade:
		return "KONG_UPGRADE"
	case ActionHu:
		return "HU"
	case ActionPass:
		return "PASS"
	default:
		return "UNKNOWN"
	}
}

// IsKong 是否为杠类动作
func (a ActionType) IsKong() bool {
	return a == ActionKongExposed || a == ActionKongConcealed || a == ActionKongUpgrade
}

func (a ActionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *ActionType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "PONG":
		*a = ActionPong
	case "KONG_EXPOSED":
		*a = ActionKongExposed
	case "KONG_CONCEALED":
		*a = ActionKongConcealed
	case "KONG_UPGRADE":
		*a = ActionKongUpgrade
	case "HU":
		*a = ActionHu
	default:
		*a = ActionPass
	}
	return nil
}

// Priority 响应优先级：胡 > 杠 > 碰 > 过
func (a ActionType) Priority() int {
	switch a {
	case ActionHu:
		return 3
	case ActionKongExposed, ActionKongConcealed, ActionKongUpgrade:
		return 2
	case ActionPong:
		return 1
	default:
		return 0
	}
}

// Meld 明示的面子（碰/杠），归属唯一玩家，所有人可见
type Meld struct {
	Type        ActionType `json:"meldType"`
	Tiles       []Tile     `json:"tiles"`
	IsConcealed bool       `json:"isConcealed"` // 暗杠为 true，不破坏门清
}

func (m *Meld) clone() *Meld {
	tiles := make([]Tile, len(m.Tiles))
	copy(tiles, m.Tiles)
	return &Meld{Type: m.Type, Tiles: tiles, IsConcealed: m.IsConcealed}
}
