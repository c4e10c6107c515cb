// Package ecs provides ECS adapters for evergreen's mode-change events.
//
// The primary adapter is [NewDonburiSink], which bridges evergreen mode
// changes (formed, scattered, focus) into a [Donburi] world as typed events.
// Subscribe to [ModeEventType] in your ECS systems to receive them, or read
// [CurrentMode] for the latest state.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	scene.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
