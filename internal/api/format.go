package telegram

import (
	"fmt"
	"sort"
	"strings"

	"pcb-vision/internal/domain/entity"
)

// formatResult сводка проверки для подписи к размеченному фото
func formatResult(result *entity.PipelineResult) string {
	total := result.DefectSummary.Total()
	if total == 0 {
		return "✅ Дефекты не обнаружены."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🔴 Найдено дефектов: %d\n", total)
	for _, label := range sortedLabels(result.DefectSummary) {
		fmt.Fprintf(&sb, "• %s: %d\n", label, result.DefectSummary[label])
	}

	if len(result.DefectsPerModel) > 1 {
		sb.WriteString("\n🧠 До объединения по моделям:\n")
		models := make([]string, 0, len(result.DefectsPerModel))
		for model := range result.DefectsPerModel {
			models = append(models, model)
		}
		sort.Strings(models)
		for _, model := range models {
			fmt.Fprintf(&sb, "• %s: %d\n", model, result.DefectsPerModel[model].Total())
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// sortedLabels метки по убыванию количества, при равенстве по алфавиту
func sortedLabels(summary entity.DefectSummary) []string {
	labels := make([]string, 0, len(summary))
	for label := range summary {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if summary[labels[i]] != summary[labels[j]] {
			return summary[labels[i]] > summary[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}

func formatProfiles(current string, names []string) string {
	if current == "" {
		current = entity.DefaultProfile
	}
	if len(names) == 0 {
		return fmt.Sprintf("⚙️ Текущий набор: %s\nДругие наборы не настроены.", current)
	}
	return fmt.Sprintf("⚙️ Текущий набор: %s\nДоступные: %s\nВыбор: /model <имя>", current, strings.Join(names, ", "))
}
