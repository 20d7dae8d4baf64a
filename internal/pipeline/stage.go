package pipeline

// Stage is a step of the one-shot chain. Each stage is entered at most
// once per Pending.
type Stage int32

const (
	StageIdle Stage = iota
	StageFetching
	StageInstantiating
	StageInvoking
	StagePresenting
	StageDone
	StageFailed
)

var stageNames = [...]string{
	StageIdle:          "idle",
	StageFetching:      "fetching",
	StageInstantiating: "instantiating",
	StageInvoking:      "invoking",
	StagePresenting:    "presenting",
	StageDone:          "done",
	StageFailed:        "failed",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}
