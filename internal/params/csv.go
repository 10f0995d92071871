// internal/params/csv.go

package params

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"unicode"
)

// LoadCSV читает параметры стратегии из csv-файла вида "имя,значение".
// Значение, оканчивающееся буквой, трактуется как множитель волатильности,
// буквенный суффикс при этом отбрасывается.
func LoadCSV(path string) (*Params, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open params file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 2

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read params file: %w", err)
	}

	p := New()

	for _, row := range rows {
		name, rawValue := row[0], row[1]

		isRatio, numeric := splitRatioSuffix(rawValue)

		value, err := strconv.ParseFloat(numeric, 64)
		if err != nil {
			return nil, fmt.Errorf("parse param %q value %q: %w", name, rawValue, err)
		}

		if isRatio {
			p.SetRatio(RatioParam(name), value)
		} else {
			p.SetPoint(PointParam(name), value)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// splitRatioSuffix отделяет буквенный суффикс множителя от числовой части
func splitRatioSuffix(value string) (bool, string) {
	runes := []rune(value)

	end := len(runes)
	for end > 0 && unicode.IsLetter(runes[end-1]) {
		end--
	}

	return end != len(runes), string(runes[:end])
}
