// internal/core/domain/entities/tendency.go

package entities

// Tendency - текущее направление тренда
type Tendency int

const (
	TendencyUnknown Tendency = iota
	TendencyUp
	TendencyDown
)

func (t Tendency) String() string {
	switch t {
	case TendencyUp:
		return "up"
	case TendencyDown:
		return "down"
	default:
		return "unknown"
	}
}

// Diff - направление изменения ведущей цены между соседними свечами
type Diff int

const (
	DiffGreater Diff = iota
	DiffLess
)

func (d Diff) String() string {
	if d == DiffLess {
		return "less"
	}

	return "greater"
}
