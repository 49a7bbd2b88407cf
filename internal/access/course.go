package access

import (
	"sort"

	"github.com/google/uuid"

	"school-bot/internal/model"
)

// VisibleModules фильтрует модули по тарифам пользователя.
// Платина видит всё, стандарт — только модули с min_tariff = 'standard'.
// Фильтр применяется до вычисления цепочки: уроки невидимого модуля
// не оцениваются вообще и считаются закрытыми.
func VisibleModules(tariffSlugs []string, modules []model.Module) []model.Module {
	var hasPlatinum, hasStandard bool
	for _, slug := range tariffSlugs {
		switch slug {
		case model.TariffPlatinum:
			hasPlatinum = true
		case model.TariffStandard:
			hasStandard = true
		}
	}

	visible := make([]model.Module, 0, len(modules))
	for _, m := range modules {
		if hasPlatinum || (hasStandard && m.MinTariff == model.TariffStandard) {
			visible = append(visible, m)
		}
	}
	return visible
}

// ModuleCompleted сообщает, завершён ли модуль: сдано ДЗ последнего урока с ДЗ.
// Модуль без уроков с ДЗ считается завершённым.
func ModuleCompleted(lessons []model.Lesson, hasSubmission SubmissionFunc) bool {
	var last *model.Lesson
	for i := range lessons {
		if lessons[i].HasHomework {
			last = &lessons[i]
		}
	}
	if last == nil {
		return true
	}
	return hasSubmission(last.ID)
}

// EvaluateCourse вычисляет открытые уроки по всем переданным модулям.
//
// Сид первого урока модуля m>0 — завершённость предыдущего модуля
// (ModuleCompleted), первый модуль открыт безусловно. Эта политика сида
// каноническая и используется и навигатором курса, и проверкой одного урока.
// Модули без уроков пропускаются и не влияют на сид следующего.
func EvaluateCourse(modules []model.Module, lessonsByModule map[uuid.UUID][]model.Lesson, hasSubmission SubmissionFunc, overrides Overrides) (map[uuid.UUID]struct{}, error) {
	sorted := make([]model.Module, len(modules))
	copy(sorted, modules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderIndex < sorted[j].OrderIndex
	})

	unlocked := make(map[uuid.UUID]struct{})
	prevCompleted := true // Первый модуль всегда доступен

	for _, m := range sorted {
		lessons := lessonsByModule[m.ID]
		if len(lessons) == 0 {
			continue
		}

		moduleUnlocked, err := Evaluate(lessons, hasSubmission, overrides, prevCompleted)
		if err != nil {
			return nil, err
		}
		for id := range moduleUnlocked {
			unlocked[id] = struct{}{}
		}

		prevCompleted = ModuleCompleted(lessons, hasSubmission)
	}

	return unlocked, nil
}
