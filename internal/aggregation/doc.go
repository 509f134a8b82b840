// Package aggregation содержит чистые функции расчёта статистики тренировок:
// сводки по подходам, план применения правок тренировки, серии, гистограммы
// по месяцам, тренд веса и самые частые упражнения.
//
// Функции не обращаются к хранилищу и не зависят от текущего времени, кроме как
// через явно переданный параметр now.
package aggregation
