// internal/stats/stats.go

package stats

// Statistics - счётчики событий стратегии за прогон бэктеста
type Statistics struct {
	NumberOfWorkingLevels   int // Текущее количество живых рабочих уровней
	NumberOfTendencyChanges int

	DeletedByBeingCloseToAnotherOne     int
	DeletedByAnotherActiveChainOfOrders int
	DeletedByExpirationByDistance       int
	DeletedByExpirationByTime           int
	DeletedByPriceBeingBeyondStopLoss   int

	DeletedByExceedingAmountOfCandlesInSmallCorridor int
	DeletedByExceedingAmountOfCandlesInBigCorridor   int
	DeletedByExceedingActivationCrossingDistance     int
}

// New создаёт статистику с нулевыми счётчиками
func New() *Statistics {
	return &Statistics{}
}
