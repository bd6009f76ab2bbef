package scheduling

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Result содержит результат разбора свободного текста.
// Пустая строка означает «не найдено»: разбор никогда не возвращает ошибку.
// Отсутствующая дата остается отсутствующей: решение «считать сегодняшним
// днем» принимает вызывающая сторона, а не парсер.
type Result struct {
	Date string // в формате DateLayout
	Time string // в формате TimeLayout
}

// HasDate сообщает, найдена ли дата
func (r Result) HasDate() bool { return r.Date != "" }

// HasTime сообщает, найдено ли время
func (r Result) HasTime() bool { return r.Time != "" }

var (
	timeColonRe = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	timeDotRe   = regexp.MustCompile(`\b(\d{1,2})\.(\d{2})\b`)
	isoDateRe = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	// Дефисная запись требует полный год: иначе хвост «13-05» от невалидной
	// ISO даты вида «2026-13-05» читался бы как 13 мая
	numDateRes = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,2})[./](\d{1,2})(?:[./](\d{2,4}))?\b`),
		regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})\b`),
	}
	monthDateRe = regexp.MustCompile(`\b(\d{1,2})\s+(января|февраля|марта|апреля|мая|июня|июля|августа|сентября|октября|ноября|декабря)(?:\s+(\d{4}))?`)

	timeTokenRe = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})$`)
)

var monthNames = map[string]time.Month{
	"января": time.January, "февраля": time.February, "марта": time.March,
	"апреля": time.April, "мая": time.May, "июня": time.June,
	"июля": time.July, "августа": time.August, "сентября": time.September,
	"октября": time.October, "ноября": time.November, "декабря": time.December,
}

// relativeDays перечисляет ключевые слова относительных дат.
// Порядок важен: «послезавтра» содержит «завтра» как подстроку.
var relativeDays = []struct {
	word   string
	offset int
}{
	{"послезавтра", 2},
	{"завтра", 1},
	{"сегодня", 0},
	{"tomorrow", 1},
	{"today", 0},
}

// Parser извлекает дату и время из свободного текста
type Parser struct {
	clock *Clock
}

// NewParser создает парсер, привязанный к часам ядра
func NewParser(clock *Clock) *Parser {
	return &Parser{clock: clock}
}

// Parse разбирает свободный текст в пару (дата, время).
// Приоритет даты: относительное слово > ISO > числовая дата > день с названием
// месяца. Числовые кандидаты, лексически пересекающиеся с уже найденным
// временем, пропускаются, чтобы «18.30» не превращалось в дату.
func (p *Parser) Parse(text string) Result {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return Result{}
	}

	res := Result{}
	timeSpan := [2]int{-1, -1}

	if hh, mm, span, ok := p.findTime(t); ok {
		res.Time = fmt.Sprintf("%02d:%02d", hh, mm)
		timeSpan = span
	}

	if date, ok := p.findDate(t, timeSpan); ok {
		res.Date = date
	}

	return res
}

// ParseDateToken разбирает одиночный ответ пользователя на вопрос о дате
func (p *Parser) ParseDateToken(token string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return "", false
	}
	return p.findDate(t, [2]int{-1, -1})
}

// ParseTimeToken разбирает одиночный ответ пользователя на вопрос о времени
func (p *Parser) ParseTimeToken(token string) (string, bool) {
	m := timeTokenRe.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return "", false
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if hh > 23 || mm > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hh, mm), true
}

// findTime ищет первое валидное время.
// Сначала сканируются варианты с двоеточием; точечная запись вида «18.30»
// принимается за время только если пара не читается как календарная дата,
// иначе «17.01» перестало бы быть датой.
func (p *Parser) findTime(t string) (hh, mm int, span [2]int, ok bool) {
	for _, m := range timeColonRe.FindAllStringSubmatchIndex(t, -1) {
		h, _ := strconv.Atoi(t[m[2]:m[3]])
		min, _ := strconv.Atoi(t[m[4]:m[5]])
		if h <= 23 && min <= 59 {
			return h, min, [2]int{m[0], m[1]}, true
		}
	}

	for _, m := range timeDotRe.FindAllStringSubmatchIndex(t, -1) {
		h, _ := strconv.Atoi(t[m[2]:m[3]])
		min, _ := strconv.Atoi(t[m[4]:m[5]])
		if h > 23 || min > 59 {
			continue
		}
		if validDate(p.clock.Now().Year(), time.Month(min), h) {
			// читается как день.месяц, оставляем кандидата дате
			continue
		}
		return h, min, [2]int{m[0], m[1]}, true
	}

	return 0, 0, [2]int{-1, -1}, false
}

// findDate ищет дату по убыванию приоритета, пропуская пересечения с временем
func (p *Parser) findDate(t string, timeSpan [2]int) (string, bool) {
	base := p.clock.Now()

	for _, rel := range relativeDays {
		if strings.Contains(t, rel.word) {
			return base.AddDate(0, 0, rel.offset).Format(DateLayout), true
		}
	}

	for _, m := range isoDateRe.FindAllStringSubmatchIndex(t, -1) {
		if overlaps(m[0], m[1], timeSpan) {
			continue
		}
		y, _ := strconv.Atoi(t[m[2]:m[3]])
		mo, _ := strconv.Atoi(t[m[4]:m[5]])
		d, _ := strconv.Atoi(t[m[6]:m[7]])
		if !validDate(y, time.Month(mo), d) {
			continue
		}
		return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, p.clock.Location()).Format(DateLayout), true
	}

	for _, re := range numDateRes {
		for _, m := range re.FindAllStringSubmatchIndex(t, -1) {
			if overlaps(m[0], m[1], timeSpan) {
				continue
			}
			d, _ := strconv.Atoi(t[m[2]:m[3]])
			mo, _ := strconv.Atoi(t[m[4]:m[5]])
			year := base.Year()
			yearGiven := m[6] >= 0
			if yearGiven {
				year, _ = strconv.Atoi(t[m[6]:m[7]])
				if year < 100 {
					year += 2000
				}
			}
			if date, ok := p.resolveDayMonth(base, year, time.Month(mo), d, yearGiven); ok {
				return date, true
			}
		}
	}

	for _, m := range monthDateRe.FindAllStringSubmatchIndex(t, -1) {
		if overlaps(m[0], m[1], timeSpan) {
			continue
		}
		d, _ := strconv.Atoi(t[m[2]:m[3]])
		mo := monthNames[t[m[4]:m[5]]]
		year := base.Year()
		yearGiven := m[6] >= 0
		if yearGiven {
			year, _ = strconv.Atoi(t[m[6]:m[7]])
		}
		if date, ok := p.resolveDayMonth(base, year, mo, d, yearGiven); ok {
			return date, true
		}
	}

	return "", false
}

// resolveDayMonth валидирует дату и переносит прошедшие даты без явного
// года на следующий год
func (p *Parser) resolveDayMonth(base time.Time, year int, month time.Month, day int, yearGiven bool) (string, bool) {
	if !validDate(year, month, day) {
		return "", false
	}
	date := time.Date(year, month, day, 0, 0, 0, 0, p.clock.Location())
	if !yearGiven && beforeDay(date, base) {
		if !validDate(year+1, month, day) {
			return "", false
		}
		date = time.Date(year+1, month, day, 0, 0, 0, 0, p.clock.Location())
	}
	return date.Format(DateLayout), true
}

// validDate проверяет, что тройка год/месяц/день образует существующую дату
func validDate(year int, month time.Month, day int) bool {
	if month < time.January || month > time.December || day < 1 {
		return false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return d.Year() == year && d.Month() == month && d.Day() == day
}

// beforeDay сравнивает только календарные дни, игнорируя время суток
func beforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

// overlaps проверяет пересечение отрезков [aStart, aEnd) и span
func overlaps(aStart, aEnd int, span [2]int) bool {
	if span[0] < 0 {
		return false
	}
	return aStart < span[1] && aEnd > span[0]
}
