package world

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"sentinel/internal/tile"
)

// ErrBadLayout is returned for layouts that cannot form a map.
var ErrBadLayout = errors.New("bad layout")

// DemoLayout is a three-room facility used when no layout file is configured.
var DemoLayout = []string{
	"##################",
	"#1.....f#.......t#",
	"#.x.....#........#",
	"#...d...D....P...#",
	"#.......#........#",
	"#4.....2#==#r#####",
	"#########.......3#",
	"#.f.....=...d....#",
	"#...............t#",
	"##################",
}

type patrolMark struct {
	order int
	coord tile.Coord
}

// ParseLayout builds a map from ASCII rows:
//
//	#  wall        .  floor       D  door        x  crate
//	=  glass       r/g/b  locked door (red/green/blue)
//	1-9  patrol point, visited in digit order
//	f  focus point P  player start d  drone spawn t  turret spawn
//
// Spaces and short rows are padded with wall. Rooms are 4-connected regions of
// non-solid, non-door tiles; doors belong to no room.
func ParseLayout(rows []string, tileSize float64) (*Map, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows: %w", ErrBadLayout)
	}
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil, fmt.Errorf("empty rows: %w", ErrBadLayout)
	}

	m := newMap(width, len(rows), tileSize)
	patrolAt := make(map[tile.Coord]int)
	for z, row := range rows {
		for x := 0; x < width; x++ {
			ch := byte(' ')
			if x < len(row) {
				ch = row[x]
			}
			c := tile.C(x, z)
			i := m.index(c)
			switch {
			case ch == '#' || ch == ' ':
				m.tiles[i] = tile.Wall
			case ch == '.':
				m.tiles[i] = tile.Floor
			case ch == 'D':
				m.tiles[i] = tile.Door
			case ch == 'r' || ch == 'g' || ch == 'b':
				m.tiles[i] = tile.Door
				m.funcs[i] = map[byte]tile.Function{'r': tile.FuncLockRed, 'g': tile.FuncLockGreen, 'b': tile.FuncLockBlue}[ch]
			case ch == 'x':
				m.tiles[i] = tile.Crate
			case ch == '=':
				m.tiles[i] = tile.Glass
			case ch >= '1' && ch <= '9':
				m.tiles[i] = tile.Floor
				patrolAt[c] = int(ch - '0')
			case ch == 'f':
				m.funcs[i] = tile.FuncFocus
			case ch == 'P':
				m.funcs[i] = tile.FuncPlayerStart
			case ch == 'd':
				m.funcs[i] = tile.FuncDroneSpawn
			case ch == 't':
				m.funcs[i] = tile.FuncTurretSpawn
			default:
				return nil, fmt.Errorf("unknown tile %q at (%d,%d): %w", ch, x, z, ErrBadLayout)
			}
		}
	}

	m.floodRooms()
	for _, room := range m.rooms {
		room.collectMarkers(patrolAt)
		room.buildGeometry()
	}
	return m, nil
}

// LoadLayout reads layout rows from a text file. Blank trailing lines are dropped.
func LoadLayout(path string, tileSize float64) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout: %w", err)
	}
	defer f.Close()

	var rows []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		rows = append(rows, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	for len(rows) > 0 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	return ParseLayout(rows, tileSize)
}

func roomable(c tile.Code) bool {
	return !c.IsSolid() && c != tile.Door
}

func (m *Map) floodRooms() {
	for z := 0; z < m.depth; z++ {
		for x := 0; x < m.width; x++ {
			start := tile.C(x, z)
			if m.roomOf[m.index(start)] != tile.NoRoom || !roomable(m.TileAt(start)) {
				continue
			}
			room := newRoom(len(m.rooms), m)
			m.rooms = append(m.rooms, room)

			queue := []tile.Coord{start}
			m.roomOf[m.index(start)] = room.ID
			for len(queue) > 0 {
				c := queue[0]
				queue = queue[1:]
				for _, n := range c.Neighbors4() {
					if !m.InBounds(n) || m.roomOf[m.index(n)] != tile.NoRoom || !roomable(m.TileAt(n)) {
						continue
					}
					m.roomOf[m.index(n)] = room.ID
					queue = append(queue, n)
				}
			}
		}
	}
	for z := 0; z < m.depth; z++ {
		for x := 0; x < m.width; x++ {
			c := tile.C(x, z)
			if id := m.RoomIndex(c); id != tile.NoRoom {
				m.rooms[id].tiles = append(m.rooms[id].tiles, c)
			}
		}
	}
}

func (r *Room) collectMarkers(patrolAt map[tile.Coord]int) {
	var marks []patrolMark
	for _, c := range r.tiles {
		if order, ok := patrolAt[c]; ok {
			marks = append(marks, patrolMark{order: order, coord: c})
		}
		switch fn := r.m.FunctionAt(c); fn {
		case tile.FuncFocus:
			r.focus = append(r.focus, r.m.TileToWorld(c))
		case tile.FuncPlayerStart, tile.FuncDroneSpawn, tile.FuncTurretSpawn:
			r.m.spawns = append(r.m.spawns, Spawn{Kind: fn, Coord: c, Room: r.ID})
		}
	}
	sort.SliceStable(marks, func(i, j int) bool { return marks[i].order < marks[j].order })
	for _, mk := range marks {
		r.patrol = append(r.patrol, mk.coord)
	}
}

// PlayerStart returns the first player start marker.
func (m *Map) PlayerStart() (tile.Coord, bool) {
	for _, s := range m.spawns {
		if s.Kind == tile.FuncPlayerStart {
			return s.Coord, true
		}
	}
	return tile.Coord{}, false
}
