package activity

// Verbs emitted for configuration loads.
const (
	VerbLoadStarted   = "config.load.started"
	VerbLoadSucceeded = "config.load.succeeded"
	VerbLoadFailed    = "config.load.failed"
	VerbLoadDiscarded = "config.load.discarded"

	ObjectTypeLoad = "config.load"
)

// BuildLoadStartedEvent describes a load entering the loading phase.
func BuildLoadStartedEvent(event Event) Event {
	return buildLoadEvent(VerbLoadStarted, event)
}

// BuildLoadSucceededEvent describes a load that produced a resolution.
func BuildLoadSucceededEvent(event Event) Event {
	event = buildLoadEvent(VerbLoadSucceeded, event)
	event.Error, event.Reason = "", ""
	return event
}

// BuildLoadFailedEvent describes a load that ended with an error.
func BuildLoadFailedEvent(event Event) Event {
	event = buildLoadEvent(VerbLoadFailed, event)
	event.Overrides, event.Reason = nil, ""
	return event
}

// BuildLoadDiscardedEvent describes a record the store refused to apply.
func BuildLoadDiscardedEvent(event Event) Event {
	event = buildLoadEvent(VerbLoadDiscarded, event)
	event.Overrides, event.Error = nil, ""
	return event
}

func buildLoadEvent(verb string, event Event) Event {
	event.Verb = verb
	event.ObjectType = ObjectTypeLoad
	event = NormalizeEvent(event)
	if event.ObjectID == "" {
		event.ObjectID = ObjectTypeLoad
	}
	return event
}
