package services

// Narrative event keys consumed through the game's event history.
const (
	EventMayConflict = "may_conflict"
)

// MayConflictEvent is the backstory reveal: in May, if the coach asks the
// right questions, the trainee admits why he freezes on the basepaths.
// One-shot; once consumed it never fires again.
var MayConflictEvent = EventDefinition{
	Key:  EventMayConflict,
	Name: "The Truth About Last Summer",
	Conditions: "The coach asks about the player's past, his fear of running the bases, " +
		"why he hesitates on steals, or what happened last summer. The question must be " +
		"direct and personal, not generic small talk about baseball.",
	TriggerMessage: "...Fine. You want to know why I never run? Last summer, regionals. " +
		"I got the steal sign, went on the pitch, and wrecked my ankle sliding into second. " +
		"Season over. The seniors never made it back. Everyone said it wasn't my fault. " +
		"Everyone lied.",
	Hints: []string{
		"Ask him about last summer.",
		"He tenses up whenever someone mentions stealing bases.",
	},
}
