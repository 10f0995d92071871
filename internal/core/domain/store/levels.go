// internal/core/domain/store/levels.go

package store

import (
	"step-strategy-backtester/internal/core/domain/entities"
)

// CreateWorkingLevel сохраняет рабочий уровень в статусе Created
func (s *Store) CreateWorkingLevel(level *entities.WorkingLevel) {
	s.levels[level.ID] = level
	s.levelStatus[level.ID] = entities.LevelStatusCreated
	s.levelOrder = append(s.levelOrder, level.ID)
	s.levelCorridors[level.ID] = make(map[entities.CorridorType][]string)
}

// GetWorkingLevelByID возвращает рабочий уровень по идентификатору
func (s *Store) GetWorkingLevelByID(id string) (*entities.WorkingLevel, error) {
	level, ok := s.levels[id]
	if !ok {
		return nil, ErrWorkingLevelNotFound
	}

	return level, nil
}

// WorkingLevelStatus возвращает статус рабочего уровня
func (s *Store) WorkingLevelStatus(id string) (entities.LevelStatus, error) {
	status, ok := s.levelStatus[id]
	if !ok {
		return 0, ErrWorkingLevelNotFound
	}

	return status, nil
}

// GetCreatedWorkingLevels возвращает созданные уровни в порядке создания
func (s *Store) GetCreatedWorkingLevels() []*entities.WorkingLevel {
	return s.workingLevelsWithStatus(entities.LevelStatusCreated)
}

// GetActiveWorkingLevels возвращает активные уровни в порядке создания
func (s *Store) GetActiveWorkingLevels() []*entities.WorkingLevel {
	return s.workingLevelsWithStatus(entities.LevelStatusActive)
}

func (s *Store) workingLevelsWithStatus(status entities.LevelStatus) []*entities.WorkingLevel {
	var levels []*entities.WorkingLevel
	for _, id := range s.levelOrder {
		if s.levelStatus[id] == status {
			levels = append(levels, s.levels[id])
		}
	}

	return levels
}

// MoveWorkingLevelToActive переводит уровень в статус Active
func (s *Store) MoveWorkingLevelToActive(id string) error {
	if _, ok := s.levels[id]; !ok {
		return ErrWorkingLevelNotFound
	}

	s.levelStatus[id] = entities.LevelStatusActive

	return nil
}

// RemoveWorkingLevel удаляет уровень вместе с его коридорами и цепочкой ордеров
func (s *Store) RemoveWorkingLevel(id string) error {
	if _, ok := s.levels[id]; !ok {
		return ErrWorkingLevelNotFound
	}

	for corridorType := range s.levelCorridors[id] {
		if err := s.ClearWorkingLevelCorridor(id, corridorType); err != nil {
			return err
		}
	}

	for _, orderID := range s.levelChains[id] {
		delete(s.orders, orderID)
	}

	delete(s.levels, id)
	delete(s.levelStatus, id)
	delete(s.levelCorridors, id)
	delete(s.levelChains, id)
	delete(s.maxCrossingValues, id)
	delete(s.takeProfitsMoved, id)

	for i, levelID := range s.levelOrder {
		if levelID == id {
			s.levelOrder = append(s.levelOrder[:i], s.levelOrder[i+1:]...)
			break
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Коридоры уровней

// AddCandleToWorkingLevelCorridor добавляет свечу в коридор уровня
func (s *Store) AddCandleToWorkingLevelCorridor(levelID string, corridorType entities.CorridorType, candleID string) error {
	if _, ok := s.levels[levelID]; !ok {
		return ErrWorkingLevelNotFound
	}

	record, ok := s.candles[candleID]
	if !ok {
		return ErrCandleNotFound
	}

	for _, id := range s.levelCorridors[levelID][corridorType] {
		if id == candleID {
			return ErrCandleAlreadyInCorridor
		}
	}

	s.levelCorridors[levelID][corridorType] = append(s.levelCorridors[levelID][corridorType], candleID)
	record.refs++

	return nil
}

// GetWorkingLevelCorridor возвращает свечи коридора уровня в порядке добавления
func (s *Store) GetWorkingLevelCorridor(levelID string, corridorType entities.CorridorType) ([]*entities.Candle, error) {
	corridors, ok := s.levelCorridors[levelID]
	if !ok {
		return nil, ErrWorkingLevelNotFound
	}

	corridor := make([]*entities.Candle, 0, len(corridors[corridorType]))
	for _, id := range corridors[corridorType] {
		corridor = append(corridor, s.candles[id].candle)
	}

	return corridor, nil
}

// ClearWorkingLevelCorridor очищает коридор уровня, освобождая ссылки на свечи
func (s *Store) ClearWorkingLevelCorridor(levelID string, corridorType entities.CorridorType) error {
	corridors, ok := s.levelCorridors[levelID]
	if !ok {
		return ErrWorkingLevelNotFound
	}

	for _, id := range corridors[corridorType] {
		s.candles[id].refs--
	}

	delete(corridors, corridorType)

	return nil
}

// ---------------------------------------------------------------------------
// Максимальное пересечение уровня и перенос take profit

// UpdateMaxCrossingValue запоминает наибольшую глубину пересечения уровня в пунктах
func (s *Store) UpdateMaxCrossingValue(levelID string, value float64) error {
	if _, ok := s.levels[levelID]; !ok {
		return ErrWorkingLevelNotFound
	}

	current, ok := s.maxCrossingValues[levelID]
	if !ok || value > current {
		s.maxCrossingValues[levelID] = value
	}

	return nil
}

// MaxCrossingValue возвращает наибольшую глубину пересечения уровня
func (s *Store) MaxCrossingValue(levelID string) (float64, bool) {
	value, ok := s.maxCrossingValues[levelID]
	return value, ok
}

// TakeProfitsMoved возвращает признак переноса take profit у цепочки уровня
func (s *Store) TakeProfitsMoved(levelID string) bool {
	return s.takeProfitsMoved[levelID]
}

// MarkTakeProfitsMoved отмечает перенос take profit; повторный перенос запрещён
func (s *Store) MarkTakeProfitsMoved(levelID string) error {
	if _, ok := s.levels[levelID]; !ok {
		return ErrWorkingLevelNotFound
	}

	if s.takeProfitsMoved[levelID] {
		return ErrTakeProfitsAlreadyMoved
	}

	s.takeProfitsMoved[levelID] = true

	return nil
}
