// Package ecs provides ECS adapters for evergreen.
package ecs

import (
	"github.com/phanxgames/evergreen"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// ModeEventType is the Donburi event type for evergreen mode changes.
// Subscribe to this in your ECS systems to react to forming, scattering and
// focusing.
var ModeEventType = events.NewEventType[evergreen.ModeEvent]()

// ModeState is the component holding the latest mode on the sink's singleton
// entity.
type ModeState struct {
	Mode    evergreen.Mode
	FocusID string
	Source  evergreen.Source
	Changes int
}

// ModeComponent is the component type for ModeState.
var ModeComponent = donburi.NewComponentType[ModeState]()

type donburiSink struct {
	world donburi.World
	state donburi.Entity
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Mode events
// are published to ModeEventType and can be consumed with events.Subscribe
// and ProcessEvents. The sink also keeps one entity with a ModeComponent
// current, so systems can query the mode without subscribing.
func NewDonburiSink(world donburi.World) evergreen.EventSink {
	return &donburiSink{world: world, state: world.Create(ModeComponent)}
}

func (s *donburiSink) EmitEvent(event evergreen.ModeEvent) {
	if entry := s.world.Entry(s.state); entry.Valid() {
		st := ModeComponent.Get(entry)
		st.Mode = event.To
		st.FocusID = event.FocusID
		st.Source = event.Source
		st.Changes++
	}
	ModeEventType.Publish(s.world, event)
}

// CurrentMode returns the ModeState kept by a sink created on world, if any.
func CurrentMode(world donburi.World) (ModeState, bool) {
	entry, ok := donburi.NewQuery(filter.Contains(ModeComponent)).First(world)
	if !ok {
		return ModeState{}, false
	}
	return *ModeComponent.Get(entry), true
}
