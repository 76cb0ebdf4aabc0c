package domain

import (
	"sort"
	"strings"
)

// amenityAliases сопоставляет разговорные названия категорий со словарём amenity OSM.
// Ключи хранятся в нормализованном виде (lower-case, без пробелов по краям).
var amenityAliases = map[string]string{
	// топливо
	"petrol":          "fuel",
	"petrol pump":     "fuel",
	"petrol station":  "fuel",
	"gas":             "fuel",
	"gas station":     "fuel",
	"fuel station":    "fuel",
	"filling station": "fuel",

	// медицина
	"doctor":        "doctors",
	"clinic":        "clinic",
	"hospital":      "hospital",
	"chemist":       "pharmacy",
	"medical store": "pharmacy",
	"medicine":      "pharmacy",
	"dentist":       "dentist",

	// религия
	"temple":    "place_of_worship",
	"church":    "place_of_worship",
	"mosque":    "place_of_worship",
	"gurudwara": "place_of_worship",
	"synagogue": "place_of_worship",
	"mandir":    "place_of_worship",

	// еда
	"food":        "restaurant",
	"restaurants": "restaurant",
	"dhaba":       "restaurant",
	"coffee":      "cafe",
	"coffee shop": "cafe",
	"tea":         "cafe",
	"fast food":   "fast_food",
	"bar":         "bar",
	"pub":         "pub",

	// деньги
	"atm":          "atm",
	"cash machine": "atm",
	"bank":         "bank",

	// транспорт
	"bus stop":       "bus_station",
	"bus stand":      "bus_station",
	"bus station":    "bus_station",
	"parking":        "parking",
	"car park":       "parking",
	"taxi":           "taxi",
	"ev charging":    "charging_station",
	"charging point": "charging_station",

	// сервисы
	"police station": "police",
	"fire station":   "fire_station",
	"post office":    "post_office",
	"toilet":         "toilets",
	"washroom":       "toilets",
	"restroom":       "toilets",
	"school":         "school",
	"college":        "college",
	"university":     "university",
	"library":        "library",
	"cinema":         "cinema",
	"movie theatre":  "cinema",
	"hotel":          "hotel",
}

// ResolveAmenity приводит произвольный текст категории к тегу amenity.
// Неизвестные значения возвращаются нормализованными без изменений: словарь открытый.
func ResolveAmenity(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if tag, ok := amenityAliases[normalized]; ok {
		return tag
	}
	return normalized
}

// Categories возвращает отсортированный список тегов, на которые отображаются алиасы
func Categories() []string {
	seen := make(map[string]struct{}, len(amenityAliases))
	for _, tag := range amenityAliases {
		seen[tag] = struct{}{}
	}

	result := make([]string, 0, len(seen))
	for tag := range seen {
		result = append(result, tag)
	}
	sort.Strings(result)
	return result
}
