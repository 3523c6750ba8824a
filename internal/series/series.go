// Пакет series отвечает за загрузку ценовой серии из внешних источников.
// Ядро разметки получает от него неизменяемый срез свечей и таблицу
// индикаторов и само с источниками не работает.
package series

import (
	"errors"
)

var (
	// ErrNoClose означает, что во входных данных нет колонки close
	ErrNoClose = errors.New("series: входные данные не содержат колонку close")

	// ErrBadPrice означает нечисловое значение цены во входных данных
	ErrBadPrice = errors.New("series: нечисловое значение цены")

	// ErrEmpty означает, что входные данные не содержат ни одного бара
	ErrEmpty = errors.New("series: входные данные пусты")
)
