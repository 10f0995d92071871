// internal/core/domain/entities/corridor.go

package entities

// CorridorType - тип коридора около рабочего уровня
type CorridorType int

const (
	CorridorTypeSmall CorridorType = iota // Малый коридор у цены уровня
	CorridorTypeBig                       // Большой коридор в заданном диапазоне от уровня
)

func (t CorridorType) String() string {
	if t == CorridorTypeBig {
		return "big"
	}

	return "small"
}
