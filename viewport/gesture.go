package viewport

import (
	"github.com/go-gl/mathgl/mgl64"
)

// GestureTracker turns absolute pointer and touch positions into the
// per-event pan and pinch deltas taken by Controller.Gesture. Each contact
// is identified by an id; the mouse and every touch sequence use distinct
// ids. The pan is the movement of the contacts' centroid and the scale is
// the change in their mean distance from it.
//
// Adding or removing a contact resets the baseline, so the view does not
// jump when a second finger lands or lifts.
type GestureTracker struct {
	points   map[uintptr]mgl64.Vec2
	centroid mgl64.Vec2
	spread   float64
}

// Begin starts tracking contact id at pos.
func (t *GestureTracker) Begin(id uintptr, pos mgl64.Vec2) {
	if t.points == nil {
		t.points = make(map[uintptr]mgl64.Vec2)
	}
	t.points[id] = pos
	t.centroid, t.spread = t.measure()
}

// Move updates contact id and returns the pan and scale since the previous
// event. ok is false if id is not being tracked.
func (t *GestureTracker) Move(id uintptr, pos mgl64.Vec2) (pan mgl64.Vec2, scale float64, ok bool) {
	if _, tracked := t.points[id]; !tracked {
		return mgl64.Vec2{}, 1, false
	}
	t.points[id] = pos

	centroid, spread := t.measure()
	pan = centroid.Sub(t.centroid)
	scale = 1
	if len(t.points) > 1 && t.spread > 0 && spread > 0 {
		scale = spread / t.spread
	}

	t.centroid, t.spread = centroid, spread
	return pan, scale, true
}

// End stops tracking contact id.
func (t *GestureTracker) End(id uintptr) {
	delete(t.points, id)
	t.centroid, t.spread = t.measure()
}

// Active is the number of contacts being tracked.
func (t *GestureTracker) Active() int {
	return len(t.points)
}

func (t *GestureTracker) measure() (centroid mgl64.Vec2, spread float64) {
	if len(t.points) == 0 {
		return mgl64.Vec2{}, 0
	}

	n := float64(len(t.points))
	for _, p := range t.points {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1 / n)

	for _, p := range t.points {
		spread += p.Sub(centroid).Len()
	}
	return centroid, spread / n
}
