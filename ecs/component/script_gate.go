package component

// ScriptGate attaches a tengo gate script to an ability. The script runs during
// the check phase and clears usability by assigning `usable = false`.
type ScriptGate struct {
	// Path is the script name under prefabs/scripts, used when Source is empty.
	Path   string
	Source string
}

var ScriptGateComponent = NewComponent[ScriptGate]()
