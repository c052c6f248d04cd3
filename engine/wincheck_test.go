package engine

import "testing"

func TestIsHuAllTriplets(t *testing.T) {
	p := testPlayer("p1", SuitTiao,
		tong(1), tong(1), tong(1),
		tong(2), tong(2), tong(2),
		wan(5), wan(5), wan(5),
		wan(9), wan(9),
	)
	if !NewWinChecker().IsHu(p, nil) {
		t.Fatal("对对胡手牌应判胡")
	}
}

func TestIsHuWithSequences(t *testing.T) {
	p := testPlayer("p1", SuitTiao,
		tong(1), tong(2), tong(3),
		tong(4), tong(5), tong(6),
		tong(7), tong(8), tong(9),
		tong(1), tong(1),
	)
	if !NewWinChecker().IsHu(p, nil) {
		t.Fatal("顺子手牌应判胡")
	}
}

func TestIsHuWithQuadInHand(t *testing.T) {
	p := testPlayer("p1", SuitTiao,
		tong(1), tong(1), tong(1), tong(1),
		tong(2), tong(2), tong(2),
		wan(5), wan(5), wan(5),
		wan(9), wan(9),
	)
	if !NewWinChecker().IsHu(p, nil) {
		t.Fatal("手牌含四张一样的牌也应判胡")
	}
}

func TestIsHuWithExtraTile(t *testing.T) {
	p := testPlayer("p1", SuitTiao,
		tong(1), tong(1), tong(1),
		tong(2), tong(2), tong(2),
		wan(5), wan(5), wan(5),
		wan(9),
	)
	extra := wan(9)
	checker := NewWinChecker()
	if !checker.IsHu(p, &extra) {
		t.Fatal("点炮牌补齐将对应判胡")
	}
	if checker.IsHu(p, nil) {
		t.Fatal("缺一张将牌不应判胡")
	}
}

func TestIsHuMissingSuitViolation(t *testing.T) {
	p := testPlayer("p1", SuitTiao,
		tong(1), tong(1), tong(1),
		tong(2), tong(2), tong(2),
		wan(5), wan(5), wan(5),
		tiao(9), tiao(9),
	)
	if NewWinChecker().IsHu(p, nil) {
		t.Fatal("手牌含缺门牌不应判胡")
	}
}

func TestIsHuThreeSuits(t *testing.T) {
	p := testPlayer("p1", SuitTong,
		tong(1), tong(1), tong(1),
		tiao(2), tiao(2), tiao(2),
		wan(5), wan(5), wan(5),
		wan(9), wan(9),
	)
	if NewWinChecker().IsHu(p, nil) {
		t.Fatal("三门齐全不应判胡")
	}
}

func TestIsHuInvalidStructure(t *testing.T) {
	p := testPlayer("p1", SuitTiao,
		tong(1), tong(2), tong(3),
		tong(4), tong(5), tong(6),
		tong(7), tong(8),
		tong(1), tong(1),
	)
	if NewWinChecker().IsHu(p, nil) {
		t.Fatal("残缺结构不应判胡")
	}
}

func TestIsHuEmptyHand(t *testing.T) {
	p := testPlayer("p1", SuitTiao)
	if NewWinChecker().IsHu(p, nil) {
		t.Fatal("空手牌不应判胡")
	}
}

func TestIsHuNoMissingSuitSet(t *testing.T) {
	p := NewPlayer("p1", 100)
	p.Hand = []Tile{
		tong(1), tong(1), tong(1),
		tong(2), tong(2), tong(2),
		wan(5), wan(5), wan(5),
		wan(9), wan(9),
	}
	if NewWinChecker().IsHu(p, nil) {
		t.Fatal("未定缺不应判胡")
	}
}

func TestIsHuWithMelds(t *testing.T) {
	p := testPlayer("p1", SuitTiao,
		tong(1), tong(1), tong(1),
		wan(5), wan(5),
	)
	p.Melds = []*Meld{
		{Type: ActionPong, Tiles: []Tile{tong(4), tong(4), tong(4)}},
		{Type: ActionKongExposed, Tiles: []Tile{wan(1), wan(1), wan(1), wan(1)}},
	}
	if !NewWinChecker().IsHu(p, nil) {
		t.Fatal("副露后小手牌应判胡")
	}
}

func TestCanWinOn(t *testing.T) {
	p := testPlayer("p1", SuitTiao,
		tong(1), tong(1), tong(1),
		tong(2), tong(2), tong(2),
		wan(5), wan(5), wan(5),
		wan(9),
	)
	wins := NewWinChecker().CanWinOn(p)
	if len(wins) != 1 || wins[0] != wan(9) {
		t.Fatalf("听牌应为 9万, got %v", wins)
	}
}

func TestCanWinOnMultiWait(t *testing.T) {
	p := testPlayer("p1", SuitTiao,
		tong(1), tong(2), tong(3),
		tong(4), tong(5), tong(6),
		tong(7), tong(8),
		wan(5), wan(5),
	)
	wins := NewWinChecker().CanWinOn(p)
	want := map[Tile]bool{tong(6): true, tong(9): true}
	if len(wins) != 2 {
		t.Fatalf("两面听应有 2 张胡牌, got %v", wins)
	}
	for _, w := range wins {
		if !want[w] {
			t.Errorf("非预期的胡牌 %s", w)
		}
	}
}

func TestCanWinOnNotTing(t *testing.T) {
	p := testPlayer("p1", SuitTiao,
		tong(1), tong(4), tong(7),
		wan(2), wan(5), wan(8),
		tong(9), wan(9), tong(2), wan(1),
	)
	if wins := NewWinChecker().CanWinOn(p); len(wins) != 0 {
		t.Fatalf("散牌不应听牌, got %v", wins)
	}
}
