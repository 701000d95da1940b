package entity

// UnknownLabel метка для классов, которых нет в словаре модели
const UnknownLabel = "unknown"

// LabelSet словарь class id -> название класса модели
type LabelSet map[int]string

// Resolve возвращает название класса или UnknownLabel.
func (l LabelSet) Resolve(classID int) string {
	if name, ok := l[classID]; ok && name != "" {
		return name
	}
	return UnknownLabel
}
