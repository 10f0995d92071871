// internal/core/domain/store/store.go

package store

import (
	"step-strategy-backtester/internal/core/domain/entities"
)

// AngleSlot - именованный слот угла в состоянии стратегии
type AngleSlot int

const (
	SlotMinAngle AngleSlot = iota
	SlotMaxAngle
	SlotVirtualMinAngle
	SlotVirtualMaxAngle
	SlotMinAngleBeforeBargainingCorridor
	SlotMaxAngleBeforeBargainingCorridor
	SlotTendencyChangeAngle
	SlotAngleOfSecondLevelAfterBargainingTendencyChange
)

type tickRecord struct {
	tick *entities.Tick
	refs int
}

type candleRecord struct {
	candle *entities.Candle
	refs   int
}

type angleRecord struct {
	angle *entities.Angle
	refs  int
}

// Store - хранилище состояния стратегии в памяти.
// Свечи, тики и углы удерживаются счётчиками ссылок: сущность живёт,
// пока на неё ссылается слот, коридор или позиция текущей/предыдущей.
type Store struct {
	ticks   map[string]*tickRecord
	candles map[string]*candleRecord
	angles  map[string]*angleRecord

	currentTickID    string
	previousTickID   string
	currentCandleID  string
	previousCandleID string

	angleSlots map[AngleSlot]string

	currentDiff  *entities.Diff
	previousDiff *entities.Diff

	tendency                                          entities.Tendency
	tendencyChangedOnCrossingBargainingCorridor       bool
	secondLevelAfterBargainingTendencyChangeIsCreated bool

	generalCorridor []string

	levels      map[string]*entities.WorkingLevel
	levelStatus map[string]entities.LevelStatus
	levelOrder  []string // Порядок создания уровней для стабильного обхода

	levelCorridors map[string]map[entities.CorridorType][]string
	levelChains    map[string][]string
	orders         map[string]*entities.Order

	maxCrossingValues map[string]float64
	takeProfitsMoved  map[string]bool
}

// NewStore создаёт пустое хранилище
func NewStore() *Store {
	return &Store{
		ticks:             make(map[string]*tickRecord),
		candles:           make(map[string]*candleRecord),
		angles:            make(map[string]*angleRecord),
		angleSlots:        make(map[AngleSlot]string),
		tendency:          entities.TendencyUnknown,
		levels:            make(map[string]*entities.WorkingLevel),
		levelStatus:       make(map[string]entities.LevelStatus),
		levelCorridors:    make(map[string]map[entities.CorridorType][]string),
		levelChains:       make(map[string][]string),
		orders:            make(map[string]*entities.Order),
		maxCrossingValues: make(map[string]float64),
		takeProfitsMoved:  make(map[string]bool),
	}
}

// ---------------------------------------------------------------------------
// Тики

// CreateTick сохраняет тик в хранилище
func (s *Store) CreateTick(tick *entities.Tick) {
	s.ticks[tick.ID] = &tickRecord{tick: tick}
}

// GetTickByID возвращает тик по идентификатору
func (s *Store) GetTickByID(id string) (*entities.Tick, error) {
	record, ok := s.ticks[id]
	if !ok {
		return nil, ErrTickNotFound
	}

	return record.tick, nil
}

// UpdateCurrentTick делает тик текущим, прежний текущий становится предыдущим
func (s *Store) UpdateCurrentTick(id string) error {
	record, ok := s.ticks[id]
	if !ok {
		return ErrTickNotFound
	}

	if s.previousTickID != "" {
		s.ticks[s.previousTickID].refs--
	}

	s.previousTickID = s.currentTickID
	s.currentTickID = id
	record.refs++

	return nil
}

// GetCurrentTick возвращает текущий тик
func (s *Store) GetCurrentTick() (*entities.Tick, error) {
	if s.currentTickID == "" {
		return nil, ErrNoCurrentTick
	}

	return s.ticks[s.currentTickID].tick, nil
}

// GetPreviousTick возвращает предыдущий тик
func (s *Store) GetPreviousTick() (*entities.Tick, error) {
	if s.previousTickID == "" {
		return nil, ErrNoPreviousTick
	}

	return s.ticks[s.previousTickID].tick, nil
}

// ---------------------------------------------------------------------------
// Свечи

// CreateCandle сохраняет свечу в хранилище
func (s *Store) CreateCandle(candle *entities.Candle) {
	s.candles[candle.ID] = &candleRecord{candle: candle}
}

// GetCandleByID возвращает свечу по идентификатору
func (s *Store) GetCandleByID(id string) (*entities.Candle, error) {
	record, ok := s.candles[id]
	if !ok {
		return nil, ErrCandleNotFound
	}

	return record.candle, nil
}

// UpdateCurrentCandle делает свечу текущей, прежняя текущая становится предыдущей
func (s *Store) UpdateCurrentCandle(id string) error {
	record, ok := s.candles[id]
	if !ok {
		return ErrCandleNotFound
	}

	if s.previousCandleID != "" {
		s.candles[s.previousCandleID].refs--
	}

	s.previousCandleID = s.currentCandleID
	s.currentCandleID = id
	record.refs++

	return nil
}

// GetCurrentCandle возвращает текущую свечу
func (s *Store) GetCurrentCandle() (*entities.Candle, error) {
	if s.currentCandleID == "" {
		return nil, ErrNoCurrentCandle
	}

	return s.candles[s.currentCandleID].candle, nil
}

// GetPreviousCandle возвращает предыдущую свечу
func (s *Store) GetPreviousCandle() (*entities.Candle, error) {
	if s.previousCandleID == "" {
		return nil, ErrNoPreviousCandle
	}

	return s.candles[s.previousCandleID].candle, nil
}

// ---------------------------------------------------------------------------
// Общий коридор

// AddCandleToGeneralCorridor добавляет свечу в общий коридор
func (s *Store) AddCandleToGeneralCorridor(id string) error {
	record, ok := s.candles[id]
	if !ok {
		return ErrCandleNotFound
	}

	for _, corridorCandleID := range s.generalCorridor {
		if corridorCandleID == id {
			return ErrCandleAlreadyInCorridor
		}
	}

	s.generalCorridor = append(s.generalCorridor, id)
	record.refs++

	return nil
}

// GetGeneralCorridor возвращает свечи общего коридора в порядке добавления
func (s *Store) GetGeneralCorridor() []*entities.Candle {
	corridor := make([]*entities.Candle, 0, len(s.generalCorridor))
	for _, id := range s.generalCorridor {
		corridor = append(corridor, s.candles[id].candle)
	}

	return corridor
}

// ClearGeneralCorridor очищает общий коридор, освобождая ссылки на свечи
func (s *Store) ClearGeneralCorridor() {
	for _, id := range s.generalCorridor {
		s.candles[id].refs--
	}

	s.generalCorridor = nil
}

// ---------------------------------------------------------------------------
// Углы

// CreateAngle сохраняет угол, удерживая его свечу
func (s *Store) CreateAngle(angle *entities.Angle) error {
	candle, ok := s.candles[angle.CandleID]
	if !ok {
		return ErrCandleNotFound
	}

	s.angles[angle.ID] = &angleRecord{angle: angle}
	candle.refs++

	return nil
}

// GetAngleByID возвращает угол по идентификатору
func (s *Store) GetAngleByID(id string) (*entities.Angle, error) {
	record, ok := s.angles[id]
	if !ok {
		return nil, ErrAngleNotFound
	}

	return record.angle, nil
}

// UpdateAngleSlot помещает угол в слот, освобождая прежнего владельца слота
func (s *Store) UpdateAngleSlot(slot AngleSlot, angleID string) error {
	record, ok := s.angles[angleID]
	if !ok {
		return ErrAngleNotFound
	}

	if previousID, occupied := s.angleSlots[slot]; occupied {
		s.angles[previousID].refs--
	}

	s.angleSlots[slot] = angleID
	record.refs++

	return nil
}

// AngleInSlot возвращает угол из слота, если слот занят
func (s *Store) AngleInSlot(slot AngleSlot) (*entities.Angle, bool) {
	id, ok := s.angleSlots[slot]
	if !ok {
		return nil, false
	}

	return s.angles[id].angle, true
}

// AngleCandle возвращает свечу угла
func (s *Store) AngleCandle(angle *entities.Angle) *entities.Candle {
	return s.candles[angle.CandleID].candle
}

// ---------------------------------------------------------------------------
// Разницы ведущих цен

// UpdateDiffs сдвигает разницы: текущая становится предыдущей
func (s *Store) UpdateDiffs(current entities.Diff) {
	s.previousDiff = s.currentDiff
	s.currentDiff = &current
}

// CurrentDiff возвращает текущую разницу
func (s *Store) CurrentDiff() (entities.Diff, bool) {
	if s.currentDiff == nil {
		return 0, false
	}

	return *s.currentDiff, true
}

// PreviousDiff возвращает предыдущую разницу
func (s *Store) PreviousDiff() (entities.Diff, bool) {
	if s.previousDiff == nil {
		return 0, false
	}

	return *s.previousDiff, true
}

// ---------------------------------------------------------------------------
// Тенденция и флаги

// Tendency возвращает текущую тенденцию
func (s *Store) Tendency() entities.Tendency {
	return s.tendency
}

// UpdateTendency устанавливает тенденцию
func (s *Store) UpdateTendency(tendency entities.Tendency) {
	s.tendency = tendency
}

// TendencyChangedOnCrossingBargainingCorridor возвращает признак смены
// тенденции на пересечении торгового коридора
func (s *Store) TendencyChangedOnCrossingBargainingCorridor() bool {
	return s.tendencyChangedOnCrossingBargainingCorridor
}

// UpdateTendencyChangedOnCrossingBargainingCorridor устанавливает признак
// смены тенденции на пересечении торгового коридора
func (s *Store) UpdateTendencyChangedOnCrossingBargainingCorridor(value bool) {
	s.tendencyChangedOnCrossingBargainingCorridor = value
}

// SecondLevelAfterBargainingTendencyChangeIsCreated возвращает признак
// создания второго уровня после смены тенденции в торговом коридоре
func (s *Store) SecondLevelAfterBargainingTendencyChangeIsCreated() bool {
	return s.secondLevelAfterBargainingTendencyChangeIsCreated
}

// UpdateSecondLevelAfterBargainingTendencyChangeIsCreated устанавливает признак
// создания второго уровня после смены тенденции в торговом коридоре
func (s *Store) UpdateSecondLevelAfterBargainingTendencyChangeIsCreated(value bool) {
	s.secondLevelAfterBargainingTendencyChangeIsCreated = value
}

// ---------------------------------------------------------------------------
// Сборка неиспользуемых сущностей

// RemoveUnusedEntities удаляет сущности, на которые не осталось ссылок.
// Сначала углы, затем свечи, затем тики: удаление угла может освободить свечу.
func (s *Store) RemoveUnusedEntities() {
	for id, record := range s.angles {
		if record.refs > 0 {
			continue
		}

		s.candles[record.angle.CandleID].refs--
		delete(s.angles, id)
	}

	for id, record := range s.candles {
		if record.refs > 0 || id == s.currentCandleID || id == s.previousCandleID {
			continue
		}

		delete(s.candles, id)
	}

	for id, record := range s.ticks {
		if record.refs > 0 || id == s.currentTickID || id == s.previousTickID {
			continue
		}

		delete(s.ticks, id)
	}
}
