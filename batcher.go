package sprite

import (
	"github.com/gogpu/sprite/atlas"
)

// Freshness reports the current generation of an atlas page, letting the
// batcher drop commands whose regions went stale between recording and
// finish. Canvas implements it over its two atlases.
type Freshness interface {
	Generation(kind atlas.Kind, page atlas.PageID) uint32
}

// Batcher accumulates draw commands in submission order and groups them
// into batches at frame end.
//
// Batching is a single linear pass, not a sort: adjacent commands sharing
// (page, blend, clip) merge into one batch, and nothing is ever moved
// across a command with different state. Reordering non-adjacent same-state
// commands could change compositing results under alpha blending, so
// correctness never depends on submission patterns. Callers that want
// maximal batching submit same-state draws contiguously.
type Batcher struct {
	commands []DrawCommand
}

// Record appends one command. The command's z order is its position in the
// recorded sequence.
func (b *Batcher) Record(cmd DrawCommand) {
	b.commands = append(b.commands, cmd)
}

// Len returns the number of commands recorded so far this frame.
func (b *Batcher) Len() int { return len(b.commands) }

// Finish groups the recorded commands into ordered batches and resets the
// batcher. An empty frame yields nil. Commands whose region generation no
// longer matches the page (per fresh) are dropped with a warning rather
// than drawn with wrong texture coordinates; pass nil to skip the check.
//
// Finish is consumed exactly once per frame.
func (b *Batcher) Finish(fresh Freshness) []Batch {
	cmds := b.commands
	b.commands = nil
	if len(cmds) == 0 {
		return nil
	}

	var batches []Batch
	var cur *Batch
	dropped := 0
	for _, cmd := range cmds {
		if fresh != nil && cmd.Region.Generation != fresh.Generation(cmd.Region.Kind, cmd.Region.Page) {
			dropped++
			continue
		}
		key := cmd.key()
		if cur == nil || key != (batchKey{kind: cur.Kind, page: cur.Page, blend: cur.Blend, clip: cur.Clip}) {
			batches = append(batches, Batch{
				Kind:  key.kind,
				Page:  key.page,
				Blend: key.blend,
				Clip:  key.clip,
			})
			cur = &batches[len(batches)-1]
		}
		cur.Commands = append(cur.Commands, cmd)
	}
	if dropped > 0 {
		Logger().Warn("dropped stale draw commands", "err", ErrStaleRegion, "count", dropped)
	}
	return batches
}
