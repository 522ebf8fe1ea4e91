package format

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supported = []language.Tag{
	language.English,
	language.German,
	language.French,
	language.Spanish,
}

var matcher = language.NewMatcher(supported)

type calendarNames struct {
	weekdays      [7]string
	shortWeekdays [7]string
	months        [12]string
	shortMonths   [12]string
}

var calendars = map[language.Tag]calendarNames{
	language.English: {
		weekdays:      [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		shortWeekdays: [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		months:        [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
		shortMonths:   [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	},
	language.German: {
		weekdays:      [7]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
		shortWeekdays: [7]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"},
		months:        [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
		shortMonths:   [12]string{"Jan", "Feb", "Mär", "Apr", "Mai", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Dez"},
	},
	language.French: {
		weekdays:      [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
		shortWeekdays: [7]string{"dim", "lun", "mar", "mer", "jeu", "ven", "sam"},
		months:        [12]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		shortMonths:   [12]string{"janv", "févr", "mars", "avr", "mai", "juin", "juil", "août", "sept", "oct", "nov", "déc"},
	},
	language.Spanish: {
		weekdays:      [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
		shortWeekdays: [7]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"},
		months:        [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		shortMonths:   [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
	},
}

const (
	keyToday    = "Today"
	keyTomorrow = "Tomorrow"
)

func init() {
	// English uses the keys as-is
	for tag, labels := range map[language.Tag][2]string{
		language.German:  {"Heute", "Morgen"},
		language.French:  {"Aujourd'hui", "Demain"},
		language.Spanish: {"Hoy", "Mañana"},
	} {
		_ = message.SetString(tag, keyToday, labels[0])
		_ = message.SetString(tag, keyTomorrow, labels[1])
	}
}

// Locale carries the language used for day labels and descriptions.
// The zero value is not usable; call NewLocale.
type Locale struct {
	tag     language.Tag
	printer *message.Printer
	names   calendarNames
}

// NewLocale picks the closest supported language for a BCP 47 name such
// as "de-AT". Unknown or empty names fall back to English.
func NewLocale(name string) Locale {
	tag := language.English
	if name != "" {
		if parsed, err := language.Parse(name); err == nil {
			tag = parsed
		}
	}
	_, idx, _ := matcher.Match(tag)
	base := supported[idx]

	return Locale{
		tag:     base,
		printer: message.NewPrinter(base),
		names:   calendars[base],
	}
}

// Tag returns the matched language
func (l Locale) Tag() language.Tag {
	return l.tag
}

// Next returns the following supported language, wrapping to the first
func (l Locale) Next() Locale {
	for i, tag := range supported {
		if tag == l.tag {
			return NewLocale(supported[(i+1)%len(supported)].String())
		}
	}
	return NewLocale("")
}

// Today returns the localized "Today" label
func (l Locale) Today() string {
	return l.printer.Sprintf(keyToday)
}

// Tomorrow returns the localized "Tomorrow" label
func (l Locale) Tomorrow() string {
	return l.printer.Sprintf(keyTomorrow)
}

// Description title-cases an upstream description ("light rain" -> "Light Rain")
func (l Locale) Description(s string) string {
	return cases.Title(l.tag).String(s)
}
