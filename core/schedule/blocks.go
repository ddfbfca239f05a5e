package schedule

import "sort"

// UnnamedGroup is the display fallback for groups whose first scheduled
// member carries no name.
const UnnamedGroup = "Unnamed Group"

// BlockKind discriminates the two block variants.
type BlockKind string

const (
	BlockGroup   BlockKind = "group"
	BlockSession BlockKind = "session"
)

// Block is one display unit in a day column: either a persistent group
// (sessions sharing a group id) or a standalone session.
type Block struct {
	Kind      BlockKind `json:"kind"`
	GroupID   string    `json:"group_id,omitempty"`
	GroupName string    `json:"group_name,omitempty"`
	Start     string    `json:"start"` // earliest member start for groups
	End       string    `json:"end"`   // latest member end for groups
	Color     string    `json:"color"`
	Sessions  []Session `json:"sessions"`
}

// blockCategory resolves a block's delegation category: the highest-priority
// category among its member sessions (same ladder as Classify).
func blockCategory(sessions []Session, currentUserID string) DelegationCategory {
	best := CategoryOwn
	for _, s := range sessions {
		if c := Classify(s, currentUserID); c < best {
			best = c
		}
	}
	return best
}

// DayBlocks partitions one day's scheduled sessions into group blocks and
// standalone blocks, sorted by start time. Every scheduled session lands in
// exactly one block; unscheduled sessions are dropped.
func DayBlocks(sessions []Session, currentUserID string) []Block {
	groups := make(map[string]*Block)
	groupOrder := make([]string, 0)
	blocks := make([]Block, 0, len(sessions))

	for _, s := range sessions {
		if !s.IsScheduled() {
			continue
		}
		if !s.GroupID.Valid {
			blocks = append(blocks, Block{
				Kind:     BlockSession,
				Start:    s.Start(),
				End:      s.End(),
				Color:    Classify(s, currentUserID).Color(),
				Sessions: []Session{s},
			})
			continue
		}

		gid := s.GroupID.String
		blk, ok := groups[gid]
		if !ok {
			name := UnnamedGroup
			if s.GroupName.Valid && s.GroupName.String != "" {
				name = s.GroupName.String
			}
			blk = &Block{
				Kind:      BlockGroup,
				GroupID:   gid,
				GroupName: name,
				Start:     s.Start(),
				End:       s.End(),
			}
			groups[gid] = blk
			groupOrder = append(groupOrder, gid)
		}
		blk.Sessions = append(blk.Sessions, s)
		// zero-padded HH:MM makes lexical min/max correct
		if s.Start() < blk.Start {
			blk.Start = s.Start()
		}
		if s.End() > blk.End {
			blk.End = s.End()
		}
	}

	for _, gid := range groupOrder {
		blk := groups[gid]
		blk.Color = blockCategory(blk.Sessions, currentUserID).Color()
		blocks = append(blocks, *blk)
	}

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Start < blocks[j].Start })
	return blocks
}
