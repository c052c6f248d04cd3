package engine

// ScoreTable 番型表与各类结算价格。番型目录由产品规则定义，
// 这里作为配置数据承载，默认值与规则文档一致。
type ScoreTable struct {
	InitialScore int `mapstructure:"initialScore"` // 每家初始分

	BaseFan        int `mapstructure:"baseFan"`        // 基本胡
	MenQing        int `mapstructure:"menQing"`        // 门清
	SelfDrawn      int `mapstructure:"selfDrawn"`      // 自摸
	KongFlower     int `mapstructure:"kongFlower"`     // 杠上花/杠上炮
	LastTile       int `mapstructure:"lastTile"`       // 海底捞月
	TianHu         int `mapstructure:"tianHu"`         // 天胡
	DiHu           int `mapstructure:"diHu"`           // 地胡
	AllTriplets    int `mapstructure:"allTriplets"`    // 对对胡
	PureSuit       int `mapstructure:"pureSuit"`       // 清一色
	PureTriplets   int `mapstructure:"pureTriplets"`   // 清对，替代清一色+对对胡
	GoldenHook     int `mapstructure:"goldenHook"`     // 金钩钓
	PureGoldenHook int `mapstructure:"pureGoldenHook"` // 清金钩钓
	GenPerQuad     int `mapstructure:"genPerQuad"`     // 带根，每坎+1

	KongExposedPrice   int `mapstructure:"kongExposedPrice"`   // 明杠，点杠者付
	KongConcealedPrice int `mapstructure:"kongConcealedPrice"` // 暗杠，每家付
	KongUpgradePrice   int `mapstructure:"kongUpgradePrice"`   // 补杠，每家付
	FlowerPigPenalty   int `mapstructure:"flowerPigPenalty"`   // 查花猪，向每家非花猪付
}

// DefaultScoreTable 默认番型表
func DefaultScoreTable() ScoreTable {
	return ScoreTable{
		InitialScore:       100,
		BaseFan:            1,
		MenQing:            1,
		SelfDrawn:          1,
		KongFlower:         1,
		LastTile:           1,
		TianHu:             5,
		DiHu:               5,
		AllTriplets:        1,
		PureSuit:           2,
		PureTriplets:       3,
		GoldenHook:         1,
		PureGoldenHook:     4,
		GenPerQuad:         1,
		KongExposedPrice:   2,
		KongConcealedPrice: 2,
		KongUpgradePrice:   1,
		FlowerPigPenalty:   16,
	}
}

// WinContext 胡牌时的上下文标志，影响附加番
type WinContext struct {
	ExtraTile  *Tile // 点炮的牌，自摸为 nil
	SelfDrawn  bool  // 自摸
	KongFlower bool  // 杠上花/杠上炮
	LastTile   bool  // 海底
	TianHu     bool  // 天胡
	DiHu       bool  // 地胡
}

// Scorer 番数计算器。纯函数，不修改任何状态，可独立于对局调用。
type Scorer struct {
	table ScoreTable
}

func NewScorer(table ScoreTable) *Scorer {
	return &Scorer{table: table}
}

// Table 当前生效的番型表
func (s *Scorer) Table() ScoreTable {
	return s.table
}

// CalculateScore 计算一手胡牌的番数，保底为基本胡1番。
// 返回值是单家应付的分数，自摸×3由结算层处理。
func (s *Scorer) CalculateScore(p *Player, ctx WinContext) int {
	fan := s.table.BaseFan

	all := make([]Tile, 0, len(p.Hand)+1+len(p.Melds)*4)
	all = append(all, p.Hand...)
	if ctx.ExtraTile != nil {
		all = append(all, *ctx.ExtraTile)
	}
	for _, m := range p.Melds {
		all = append(all, m.Tiles...)
	}

	counts := countTiles(all)
	suits := map[Suit]bool{}
	for _, t := range all {
		suits[t.Suit] = true
	}
	pureSuit := len(suits) == 1

	if ctx.TianHu || ctx.DiHu {
		if ctx.TianHu {
			fan += s.table.TianHu
		} else {
			fan += s.table.DiHu
		}
	}

	// 复合大番互斥：金钩钓/清对 替代内部的 清一色+对对胡 组合
	if allTriplets(&counts) {
		goldenHook := len(p.Hand) == 1 || (len(p.Hand) == 0 && ctx.ExtraTile != nil)
		switch {
		case goldenHook && pureSuit:
			fan += s.table.PureGoldenHook
		case goldenHook:
			fan += s.table.GoldenHook
		case pureSuit:
			fan += s.table.PureTriplets
		default:
			fan += s.table.AllTriplets
		}
	} else if pureSuit {
		fan += s.table.PureSuit
	}

	// 带根：每种凑满4张的牌算一坎
	for _, n := range counts {
		if n == 4 {
			fan += s.table.GenPerQuad
		}
	}

	if !p.hasOpenMelds() {
		fan += s.table.MenQing
	}
	if ctx.SelfDrawn {
		fan += s.table.SelfDrawn
	}
	if ctx.KongFlower {
		fan += s.table.KongFlower
	}
	if ctx.LastTile {
		fan += s.table.LastTile
	}

	if fan < 1 {
		fan = 1
	}
	return fan
}

// allTriplets 全部牌（含面子）能否只用 将+刻子/杠 覆盖，即对对胡
func allTriplets(counts *tileCounts) bool {
	for kind := range counts {
		if counts[kind] < 2 {
			continue
		}
		counts[kind] -= 2
		if onlyTriplets(counts) {
			counts[kind] += 2
			return true
		}
		counts[kind] += 2
	}
	return false
}

func onlyTriplets(counts *tileCounts) bool {
	kind := -1
	for i, n := range counts {
		if n > 0 {
			kind = i
			break
		}
	}
	if kind == -1 {
		return true
	}
	if counts[kind] >= 4 {
		counts[kind] -= 4
		if onlyTriplets(counts) {
			counts[kind] += 4
			return true
		}
		counts[kind] += 4
	}
	if counts[kind] >= 3 {
		counts[kind] -= 3
		if onlyTriplets(counts) {
			counts[kind] += 3
			return true
		}
		counts[kind] += 3
	}
	return false
}
