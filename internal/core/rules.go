package core

import "poms/pkg/domain"

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in integrity policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewRoomOccupancyUniqueRule())
	engine.Register(NewRoomOccupancyConsistencyRule())
	engine.Register(NewPatientStatusRule())
	engine.Register(NewDanglingReferencesRule())
	return engine
}

// NewDefaultTriggerEngine builds a trigger engine carrying the billing trigger.
func NewDefaultTriggerEngine() *TriggerEngine {
	engine := domain.NewTriggerEngine()
	engine.Register(NewBillingTrigger())
	return engine
}

// changedRooms returns the post-change state of rooms created or updated in
// the transaction.
func changedRooms(changes []Change) []Room {
	var out []Room
	for _, ch := range changes {
		if ch.Entity != EntityRoom {
			continue
		}
		if room, ok := ch.After.(Room); ok {
			out = append(out, room)
		}
	}
	return out
}

func deletedIDs(changes []Change, entity EntityType) map[int]struct{} {
	out := map[int]struct{}{}
	for _, ch := range changes {
		if ch.Entity != entity || ch.Action != ActionDelete {
			continue
		}
		switch before := ch.Before.(type) {
		case Patient:
			out[before.ID] = struct{}{}
		case Doctor:
			out[before.ID] = struct{}{}
		}
	}
	return out
}
