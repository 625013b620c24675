package driver

// Stage identifies a step of the per-file pipeline.
type Stage uint8

const (
	StageLoad Stage = iota
	StageTranslate
)

// Status describes what a file is doing in a given stage.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
	StatusCached
)

// Event is a progress notification emitted during batch translation. File
// is empty for batch-level events.
type Event struct {
	File   string
	Stage  Stage
	Status Status
}

func emit(events chan<- Event, ev Event) {
	if events != nil {
		events <- ev
	}
}
