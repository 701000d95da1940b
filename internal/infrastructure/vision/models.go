package vision

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"pcb-vision/internal/domain/entity"
)

// ModelExt расширение файлов моделей ансамбля
const ModelExt = ".onnx"

// IsRemote сообщает, что ссылка на модель указывает на HTTP-сервис инференса
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// ResolveModelPaths раскрывает ссылку на модель: один .onnx файл или каталог с ними.
// Файлы каталога возвращаются в порядке имён.
func ResolveModelPaths(ref string) ([]string, error) {
	info, err := os.Stat(ref)
	if err != nil {
		return nil, fmt.Errorf("model reference %s: %w", ref, err)
	}

	if !info.IsDir() {
		if !strings.EqualFold(filepath.Ext(ref), ModelExt) {
			return nil, fmt.Errorf("model reference %s: unsupported model format", ref)
		}
		return []string{ref}, nil
	}

	entries, err := os.ReadDir(ref)
	if err != nil {
		return nil, fmt.Errorf("read model dir: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ModelExt) {
			continue
		}
		paths = append(paths, filepath.Join(ref, e.Name()))
	}

	return paths, nil
}

// LabelsPath путь к файлу с названиями классов рядом с моделью (<model>.yaml)
func LabelsPath(modelPath string) string {
	return strings.TrimSuffix(modelPath, filepath.Ext(modelPath)) + ".yaml"
}

// LoadLabels читает названия классов модели из ключа names: списком или картой id -> имя.
// Отсутствие файла не ошибка: все классы такой модели станут "unknown".
func LoadLabels(modelPath string) (entity.LabelSet, error) {
	data, err := os.ReadFile(LabelsPath(modelPath))
	if errors.Is(err, os.ErrNotExist) {
		return entity.LabelSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}

	return ParseLabels(data)
}

// ParseLabels разбирает YAML с ключом names.
func ParseLabels(data []byte) (entity.LabelSet, error) {
	var doc struct {
		Names yaml.Node `yaml:"names"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}

	labels := entity.LabelSet{}
	switch doc.Names.Kind {
	case 0:
		return labels, nil
	case yaml.SequenceNode:
		var list []string
		if err := doc.Names.Decode(&list); err != nil {
			return nil, fmt.Errorf("parse labels: %w", err)
		}
		for i, name := range list {
			labels[i] = name
		}
	case yaml.MappingNode:
		var byID map[int]string
		if err := doc.Names.Decode(&byID); err != nil {
			return nil, fmt.Errorf("parse labels: %w", err)
		}
		for id, name := range byID {
			labels[id] = name
		}
	default:
		return nil, errors.New("parse labels: names must be a list or a mapping")
	}

	return labels, nil
}
