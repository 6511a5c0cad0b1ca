package tutor

import _ "embed"

// instructionPrompt is the fixed tutoring instruction seeded into every new
// session as its first user-role message. It is configuration, not user
// input, but once stored it is ordinary history: without PinInstruction it
// slides out of the trim window like any other message.
//
//go:embed prompt.txt
var instructionPrompt string
