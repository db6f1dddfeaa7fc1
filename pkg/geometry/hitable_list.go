package geometry

import "github.com/df07/go-sphere-pathtracer/pkg/core"

// HitableList is an ordered collection of hitables. It owns nothing.
type HitableList struct {
	Items []Hitable
}

// NewHitableList creates a list over the given hitables
func NewHitableList(items ...Hitable) *HitableList {
	return &HitableList{Items: items}
}

// Add appends a hitable to the list
func (l *HitableList) Add(item Hitable) {
	l.Items = append(l.Items, item)
}

// Len returns the number of children
func (l *HitableList) Len() int {
	return len(l.Items)
}

// Hit returns the nearest intersection among all children.
// On exact ties the child scanned first wins.
func (l *HitableList) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	var closest core.HitRecord
	closestSoFar := tMax
	hitAnything := false

	for _, item := range l.Items {
		if hit, isHit := item.Hit(ray, tMin, closestSoFar); isHit {
			hitAnything = true
			closestSoFar = hit.T
			closest = hit
		}
	}

	return closest, hitAnything
}
