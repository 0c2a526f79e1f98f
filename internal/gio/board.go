package gio

import (
	"errors"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/taobot/pkg/generals"
)

// ErrBadDiff is returned for a diff that does not fit the state it patches.
var ErrBadDiff = errors.New("gio: malformed diff")

// Terrain values of the raw map.
const (
	terrainEmpty       = -1
	terrainMountain    = -2
	terrainFog         = -3
	terrainFogObstacle = -4
)

// update is the payload of a game_update event.
type update struct {
	Turn       int   `json:"turn"`
	MapDiff    []int `json:"map_diff"`
	CitiesDiff []int `json:"cities_diff"`
	Generals   []int `json:"generals"`
}

// board is the raw state kept by patching game updates. The map is laid
// out as [width, height, armies..., terrain...] in row-major order.
type board struct {
	mapRaw   []int
	cities   []int
	generals []int
	turn     int

	warnedOwner bool
}

// patch applies a diff of alternating (keep n, replace with the next n
// values) runs to old.
func patch(old, diff []int) ([]int, error) {
	out := make([]int, 0, len(old))
	i := 0
	for i < len(diff) {
		keep := diff[i]
		i++
		if keep < 0 || len(out)+keep > len(old) {
			return nil, ErrBadDiff
		}
		out = append(out, old[len(out):len(out)+keep]...)
		if i >= len(diff) {
			break
		}
		n := diff[i]
		i++
		if n < 0 || i+n > len(diff) {
			return nil, ErrBadDiff
		}
		out = append(out, diff[i:i+n]...)
		i += n
	}
	return out, nil
}

func (b *board) apply(u update) error {
	m, err := patch(b.mapRaw, u.MapDiff)
	if err != nil {
		return err
	}
	cities, err := patch(b.cities, u.CitiesDiff)
	if err != nil {
		return err
	}
	if len(m) < 2 || len(m) != 2+2*m[0]*m[1] {
		return ErrBadDiff
	}
	b.mapRaw, b.cities, b.turn = m, cities, u.Turn
	if len(u.Generals) > 0 {
		b.generals = u.Generals
	}
	return nil
}

func (b *board) ready() bool { return len(b.mapRaw) >= 2 }

func (b *board) width() int  { return b.mapRaw[0] }
func (b *board) height() int { return b.mapRaw[1] }

func (b *board) index(c generals.Coord) int { return c.Row*b.width() + c.Col }

// snapshot renders the raw state into the class/text form of the board.
func (b *board) snapshot() *generals.Snapshot {
	w, h := b.width(), b.height()
	snap := generals.NewSnapshot(h, w)

	isCity := make(map[int]bool, len(b.cities))
	for _, i := range b.cities {
		isCity[i] = true
	}
	isGeneral := make(map[int]bool, len(b.generals))
	for _, i := range b.generals {
		if i >= 0 {
			isGeneral[i] = true
		}
	}

	for i := 0; i < w*h; i++ {
		army := b.mapRaw[2+i]
		terrain := b.mapRaw[2+w*h+i]
		c := generals.Coord{Row: i / w, Col: i % w}

		var class string
		switch {
		case terrain == terrainMountain:
			class = "mountain"
		case terrain == terrainFog:
			class = "fog"
		case terrain == terrainFogObstacle:
			class = "fog obstacle"
		case terrain == terrainEmpty:
			if isCity[i] {
				class = "city"
			}
		default:
			class = b.ownerTag(terrain)
			if isGeneral[i] {
				class = "general " + class
			} else if isCity[i] {
				class = "city " + class
			}
		}

		text := ""
		if army > 0 && terrain != terrainFog && terrain != terrainFogObstacle {
			text = strconv.Itoa(army)
		}
		snap.Set(c, class, text)
	}
	return snap
}

// ownerTag maps an owner index to its color, or to the generic enemy tag
// for players past the known palette.
func (b *board) ownerTag(owner int) string {
	if color := generals.ColorOf(owner); color != "" {
		return color
	}
	if !b.warnedOwner {
		b.warnedOwner = true
		log.Warn().Int("owner", owner).Msg("Owner has no color, treating as enemy")
	}
	return generals.EnemyTag
}
