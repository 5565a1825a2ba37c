package comms

// Canned reply pools keyed by the type of the original message. Unknown
// types fall back to genericReplies.
var defaultReplyPools = map[Type][]string{
	TypeCommand: {
		"Roger, moving to position.",
		"Copy, executing now.",
		"Wilco. ETA five minutes.",
	},
	TypeIntel: {
		"Copy intel, updating overlay.",
		"Received, cross-checking sector.",
		"Good copy, eyes on.",
	},
	TypeMedical: {
		"Medic en route.",
		"Copy, casualty status noted.",
		"Standing by for MEDEVAC.",
	},
	TypeLogistics: {
		"Resupply acknowledged.",
		"Copy, inventory updated.",
		"Will confirm on delivery.",
	},
	TypeSitrep: {
		"SITREP received.",
		"Copy your status.",
		"Acknowledged, continue mission.",
	},
}

var genericReplies = []string{"Roger, message received."}

// DefaultStatusPhrases seed the periodic status generator when the
// configuration does not override them.
var DefaultStatusPhrases = []string{
	"All quiet in sector.",
	"Holding position.",
	"Perimeter secure.",
	"Moving to next checkpoint.",
	"Comms check complete.",
	"Awaiting further orders.",
}
