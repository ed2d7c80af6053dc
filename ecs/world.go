package ecs

import "github.com/milk9111/grapplehook/ecs/component"

// World owns entities and their component stores.
type World struct {
	slots  slots
	stores map[component.ComponentID]store
	events EventQueue
}

func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]store)}
}

func CreateEntity(w *World) Entity {
	return w.slots.create()
}

// DestroyEntity strips every component from e and frees its slot. It
// returns false for stale or already destroyed handles.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.slots.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.remove(e)
	}
	return w.slots.release(e)
}

func IsAlive(w *World, e Entity) bool {
	if w == nil {
		return false
	}
	return w.slots.isAlive(e)
}

// Entities lists live entities in slot order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, w.slots.live)
	for i, alive := range w.slots.alive {
		if alive {
			out = append(out, makeEntity(entityID(i+1), w.slots.gens[i]))
		}
	}
	return out
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func storeFor[T any](w *World, kind component.ComponentKind[T], create bool) *sparseStore[T] {
	if w.stores == nil {
		w.stores = make(map[component.ComponentID]store)
	}
	if s, ok := w.stores[kind.ID()]; ok {
		typed, _ := s.(*sparseStore[T])
		return typed
	}
	if !create {
		return nil
	}
	s := newSparseStore[T]()
	w.stores[kind.ID()] = s
	return s
}
