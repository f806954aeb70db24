package bridge

// EventKind enumerates the inbound protocol events the bridge understands.
// Both the receive path and the registration methods share this taxonomy.
type EventKind int

const (
	TriggerConfigurationUpdate EventKind = iota
	UpdateRequirement
	UpdateRequirements
	UpdateImageValue
	UpdateTextValue
	UpdateLinkedConfigurationCardinality
	RemoveLinkedConfiguration
	DragStarted

	numEventKinds
)

// kindNames holds the inbound wire name for each kind, indexed by ordinal.
var kindNames = [numEventKinds]string{
	TriggerConfigurationUpdate:           "triggerConfigurationUpdate",
	UpdateRequirement:                    "updateRequirement",
	UpdateRequirements:                   "updateRequirements",
	UpdateImageValue:                     "updateImageValue",
	UpdateTextValue:                      "updateTextValue",
	UpdateLinkedConfigurationCardinality: "updateLinkedConfigurationCardinality",
	RemoveLinkedConfiguration:            "removeLinkedConfiguration",
	DragStarted:                          "dragStarted",
}

var kindByName = func() map[string]EventKind {
	m := make(map[string]EventKind, numEventKinds)
	for k, name := range kindNames {
		m[name] = EventKind(k)
	}
	return m
}()

func (k EventKind) String() string {
	if k < 0 || k >= numEventKinds {
		return "unknown"
	}
	return kindNames[k]
}

// KindForName maps an inbound envelope name to its event kind. Names outside
// the table report ok=false and are ignored by the receiver.
func KindForName(name string) (EventKind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

// Outbound protocol names. These live in a distinct namespace from the
// inbound names above.
const (
	NameConfigurationUpdated = "elfsquad.configurationUpdated"
	NameStepChanged          = "elfsquad.stepChanged"
)
