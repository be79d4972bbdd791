package event

import (
	"fmt"
	"log/slog"
)

var loggedEvents = []string{
	EventJump,
	EventLanded,
	EventModifierStart,
	EventModifierEnd,
	EventDespawn,
}

// LogHandler writes events published under eventName to the default logger.
func LogHandler(eventName string) HandlerFunc {
	return func(raw any) {
		switch e := raw.(type) {
		case JumpEvent:
			slog.Debug("Jump", "character", e.Character, "vy", e.Velocity.Y())
		case LandedEvent:
			slog.Debug("Landed", "character", e.Character, "impact", e.ImpactSpeed)
		case ModifierEvent:
			slog.Debug("Modifier", "event", eventName, "character", e.Character, "modifier", e.Modifier)
		case DespawnEvent:
			slog.Info("Character despawned", "character", e.Character, "dropped", e.Dropped)
		default:
			slog.Error("Unexpected event payload", "event", eventName, "type", fmt.Sprintf("%T", raw))
		}
	}
}

// LogAll subscribes LogHandler to every locomotion and lifecycle event.
func LogAll(bus *Bus) []Subscription {
	subs := make([]Subscription, 0, len(loggedEvents))
	for _, name := range loggedEvents {
		subs = append(subs, bus.Subscribe(name, LogHandler(name)))
	}
	return subs
}
