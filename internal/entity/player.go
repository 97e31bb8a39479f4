package entity

type LossReason int

const (
	LosingMove LossReason = iota
	TimeOut
	InvalidInput
)

func (that LossReason) String() string {
	switch that {
	case LosingMove:
		return "losing move"
	case TimeOut:
		return "timeout"
	case InvalidInput:
		return "invalid input"
	default:
		return "unknown"
	}
}

// PlayerStatus is either alive or dead with the cause of elimination.
type PlayerStatus struct {
	Dead  bool
	Cause LossReason
}

func Alive() PlayerStatus {
	return PlayerStatus{}
}

func Dead(cause LossReason) PlayerStatus {
	return PlayerStatus{Dead: true, Cause: cause}
}

func (that PlayerStatus) IsAlive() bool {
	return !that.Dead
}

func (that PlayerStatus) String() string {
	if that.IsAlive() {
		return "alive"
	}
	return "dead (" + that.Cause.String() + ")"
}

// CountAlive returns how many statuses are alive.
func CountAlive(statuses []PlayerStatus) int {
	alive := 0
	for _, status := range statuses {
		if status.IsAlive() {
			alive++
		}
	}
	return alive
}
