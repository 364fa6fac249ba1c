package layout

import "sort"

const (
	// HorizontalMargin and VerticalMargin are the minimum gaps kept between
	// node cards.
	HorizontalMargin = 24
	VerticalMargin   = 24

	DefaultNodeWidth  = 240
	DefaultNodeHeight = 140
	// DetailsHeight is added to the estimated height while details are shown.
	DetailsHeight = 140
)

// Item is one node as seen by the layout pass. Zero Width or Height means
// the card size is estimated.
type Item struct {
	ID     string
	Pos    Point
	Width  float64
	Height float64
}

// Footprint returns the card size used for collision tests.
func Footprint(it Item, showDetails bool) (w, h float64) {
	w, h = it.Width, it.Height
	if w <= 0 {
		w = DefaultNodeWidth
	}
	if h <= 0 {
		h = DefaultNodeHeight
		if showDetails {
			h += DetailsHeight
		}
	}
	return w, h
}

func overlaps(a, b Item, showDetails bool) bool {
	aw, ah := Footprint(a, showDetails)
	bw, bh := Footprint(b, showDetails)
	return a.Pos.X < b.Pos.X+bw+HorizontalMargin &&
		a.Pos.X+aw+HorizontalMargin > b.Pos.X &&
		a.Pos.Y < b.Pos.Y+bh+VerticalMargin &&
		a.Pos.Y+ah+VerticalMargin > b.Pos.Y
}

// ResolveOverlaps pushes items apart so no two cards overlap (margins
// included). Items are placed in (y, x) order; a colliding item first tries
// the slot right of the obstacle and otherwise drops below it. The returned
// slice keeps the input order and changed reports whether any position moved.
func ResolveOverlaps(items []Item, showDetails bool) ([]Item, bool) {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := items[order[i]].Pos, items[order[j]].Pos
		if a.Y == b.Y {
			return a.X < b.X
		}
		return a.Y < b.Y
	})

	out := make([]Item, len(items))
	copy(out, items)
	placed := make([]Item, 0, len(items))
	attempts := len(items) * 4

	for _, idx := range order {
		candidate := items[idx]
		for i := 0; i < attempts; i++ {
			colliding, ok := firstCollision(candidate, placed, showDetails)
			if !ok {
				break
			}
			cw, ch := Footprint(colliding, showDetails)

			right := candidate
			right.Pos = Snap(Point{X: colliding.Pos.X + cw + HorizontalMargin, Y: candidate.Pos.Y})
			if !overlaps(right, colliding, showDetails) {
				candidate = right
				continue
			}
			candidate.Pos = Snap(Point{X: candidate.Pos.X, Y: colliding.Pos.Y + ch + VerticalMargin})
		}
		candidate.Pos = Snap(candidate.Pos)
		placed = append(placed, candidate)
		out[idx] = candidate
	}

	changed := false
	for i := range out {
		if out[i].Pos != items[i].Pos {
			changed = true
			break
		}
	}
	return out, changed
}

func firstCollision(c Item, placed []Item, showDetails bool) (Item, bool) {
	for _, other := range placed {
		if overlaps(c, other, showDetails) {
			return other, true
		}
	}
	return Item{}, false
}
