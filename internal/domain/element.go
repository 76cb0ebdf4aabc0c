package domain

// GeometryKind - тип геометрии элемента от провайдера
type GeometryKind int

const (
	// GeometryUnknown - провайдер не сообщил ни координату, ни центр
	GeometryUnknown GeometryKind = iota
	// GeometryPoint - точечный объект с собственной координатой (node, результат геокодера)
	GeometryPoint
	// GeometryArea - way/relation, от которого известен только центр
	GeometryArea
)

func (k GeometryKind) String() string {
	switch k {
	case GeometryPoint:
		return "point"
	case GeometryArea:
		return "area"
	}
	return "unknown"
}

// RawElement - запись провайдера после декодирования, до нормализации.
// Kind явно различает точечную и площадную геометрию.
type RawElement struct {
	Kind        GeometryKind
	Type        string // node, way, relation или класс объекта геокодера
	ID          string
	Coordinate  *GeoPoint
	Center      *GeoPoint
	DisplayName string
	Category    string
	Tags        map[string]string
}

// Position возвращает координату, соответствующую типу геометрии
func (e RawElement) Position() (GeoPoint, bool) {
	switch e.Kind {
	case GeometryPoint:
		if e.Coordinate != nil {
			return *e.Coordinate, true
		}
	case GeometryArea:
		if e.Center != nil {
			return *e.Center, true
		}
	}
	return GeoPoint{}, false
}
