package engine

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Suit 花色
type Suit int

const (
	SuitWan  Suit = iota // 万
	SuitTiao             // 条
	SuitTong             // 筒
)

// NumSuits 三种花色，血战到底不使用字牌
const NumSuits = 3

// TotalTiles 整副牌张数（3花色 × 9点数 × 4张）
const TotalTiles = 108

func (s Suit) String() string {
	switch s {
	case SuitWan:
		return "WAN"
	case SuitTiao:
		return "TIAO"
	case SuitTong:
		return "TONG"
	default:
		return "UNKNOWN"
	}
}

// Chinese 花色中文名，用于面向玩家的错误提示
func (s Suit) Chinese() string {
	switch s {
	case SuitWan:
		return "万"
	case SuitTiao:
		return "条"
	case SuitTong:
		return "筒"
	default:
		return "?"
	}
}

// ParseSuit 解析花色名（WAN/TIAO/TONG）
func ParseSuit(name string) (Suit, error) {
	switch name {
	case "WAN":
		return SuitWan, nil
	case "TIAO":
		return SuitTiao, nil
	case "TONG":
		return SuitTong, nil
	default:
		return 0, fmt.Errorf("unknown suit %q", name)
	}
}

func (s Suit) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Suit) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSuit(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Tile 一张麻将牌，值语义，(花色, 点数) 相等即为同一种牌
type Tile struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"` // 1-9
}

func (t Tile) String() string {
	return fmt.Sprintf("%d%s", t.Rank, t.Suit.Chinese())
}

// kindIndex 牌种序号（0-26），用于计数数组和缓存键
func (t Tile) kindIndex() int {
	return int(t.Suit)*9 + t.Rank - 1
}

func tileFromKind(kind int) Tile {
	return Tile{Suit: Suit(kind / 9), Rank: kind%9 + 1}
}

// NewWall 构建整副 108 张牌，未洗牌
func NewWall() []Tile {
	wall := make([]Tile, 0, TotalTiles)
	for suit := SuitWan; suit <= SuitTong; suit++ {
		for rank := 1; rank <= 9; rank++ {
			for i := 0; i < 4; i++ {
				wall = append(wall, Tile{Suit: suit, Rank: rank})
			}
		}
	}
	return wall
}

// SortTiles 按 (花色, 点数) 排序
func SortTiles(tiles []Tile) {
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Suit != tiles[j].Suit {
			return tiles[i].Suit < tiles[j].Suit
		}
		return tiles[i].Rank < tiles[j].Rank
	})
}

// tileCounts 27 种牌各自的张数
type tileCounts [NumSuits * 9]int

func countTiles(tiles []Tile) tileCounts {
	var counts tileCounts
	for _, t := range tiles {
		counts[t.kindIndex()]++
	}
	return counts
}

// key 计数的规范化表示，用作胡牌判定的缓存键
func (c *tileCounts) key() string {
	buf := make([]byte, len(c))
	for i, n := range c {
		buf[i] = byte('0' + n)
	}
	return string(buf)
}

func (c *tileCounts) total() int {
	sum := 0
	for _, n := range c {
		sum += n
	}
	return sum
}
