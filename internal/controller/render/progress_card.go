package render

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/google/uuid"
	"golang.org/x/image/font/basicfont"

	"school-bot/internal/model"
)

// Константы размеров и отступов
const (
	cardWidth    = 900
	headerHeight = 60
	rowHeight    = 64
	labelWidth   = 90
	cellWidth    = 74.0
	cellHeight   = 44.0
	cellGap      = 8.0
	cellRadius   = 6.0
	paddingX     = 20.0
	footerHeight = 46
)

// Цветовая схема
var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	headerColor    = color.RGBA{80, 85, 90, 255}
	labelColor     = color.RGBA{110, 115, 120, 255}
	cellTextColor  = color.RGBA{20, 24, 28, 230}
	lockedColor    = color.RGBA{220, 220, 220, 255} // Закрытый урок
	openColor      = color.RGBA{200, 225, 255, 255} // Открыт, сдачи нет
	pendingColor   = color.RGBA{255, 224, 150, 255} // Сдача на проверке
	approvedColor  = color.RGBA{133, 193, 85, 220}  // Принято
	rejectedColor  = color.RGBA{255, 182, 193, 255} // Отклонено
	legendTextRGBA = color.RGBA{90, 95, 100, 220}
)

// progressRow — один модуль с уроками для отрисовки
type progressRow struct {
	label   string
	lessons []model.Lesson
}

// ProgressView — минимальный срез состояния курса, который нужен карточке.
// Структурно совпадает с service.CourseView, но пакет render не должен
// зависеть от сервисного слоя.
type ProgressView struct {
	Modules  []model.Module
	Lessons  map[uuid.UUID][]model.Lesson
	Unlocked map[uuid.UUID]struct{}
	Statuses map[uuid.UUID]string
}

// ProgressCard рисует PNG-карточку прогресса: строка на модуль, ячейка на урок.
// basicfont не содержит кириллицы, поэтому на карточке только короткие
// ASCII-подписи ("M1", "1.2"); названия модулей идут текстом в подписи к фото.
func ProgressCard(view *ProgressView) ([]byte, error) {
	if len(view.Modules) == 0 {
		return nil, fmt.Errorf("no modules to render")
	}

	rows := make([]progressRow, 0, len(view.Modules))
	maxLessons := 0
	for i, m := range view.Modules {
		lessons := view.Lessons[m.ID]
		rows = append(rows, progressRow{
			label:   fmt.Sprintf("M%d", i+1),
			lessons: lessons,
		})
		if len(lessons) > maxLessons {
			maxLessons = len(lessons)
		}
	}

	width := cardWidth
	needed := int(paddingX*2) + labelWidth + maxLessons*int(cellWidth+cellGap)
	if needed > width {
		width = needed
	}
	height := headerHeight + len(rows)*rowHeight + footerHeight

	dc := gg.NewContext(width, height)
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(bgColor)
	dc.Clear()

	dc.SetColor(headerColor)
	dc.DrawString("COURSE PROGRESS", paddingX, float64(headerHeight)/2+4)

	for i, row := range rows {
		drawModuleRow(dc, i, row, view)
	}

	drawLegend(dc, float64(height-footerHeight)+28)

	return encodeImage(dc)
}

func drawModuleRow(dc *gg.Context, rowIdx int, row progressRow, view *ProgressView) {
	y := float64(headerHeight + rowIdx*rowHeight)

	dc.SetColor(labelColor)
	dc.DrawString(row.label, paddingX, y+cellHeight/2+4)

	for j, lesson := range row.lessons {
		x := paddingX + float64(labelWidth) + float64(j)*(cellWidth+cellGap)

		dc.SetColor(cellColor(lesson, view))
		dc.DrawRoundedRectangle(x, y, cellWidth, cellHeight, cellRadius)
		dc.Fill()

		// Подпись вида "1.2": номер модуля и номер урока внутри него
		label := fmt.Sprintf("%d.%d", rowIdx+1, j+1)
		dc.SetColor(cellTextColor)
		dc.DrawStringAnchored(label, x+cellWidth/2, y+cellHeight/2, 0.5, 0.35)
	}
}

// cellColor выбирает цвет ячейки: статус сдачи важнее факта открытости
func cellColor(lesson model.Lesson, view *ProgressView) color.RGBA {
	if status, ok := view.Statuses[lesson.ID]; ok {
		switch status {
		case model.SubmissionStatusApproved:
			return approvedColor
		case model.SubmissionStatusRejected:
			return rejectedColor
		case model.SubmissionStatusPending:
			return pendingColor
		}
	}
	if _, unlocked := view.Unlocked[lesson.ID]; unlocked {
		return openColor
	}
	return lockedColor
}

func drawLegend(dc *gg.Context, y float64) {
	items := []struct {
		c    color.RGBA
		text string
	}{
		{approvedColor, "done"},
		{pendingColor, "review"},
		{rejectedColor, "redo"},
		{openColor, "open"},
		{lockedColor, "locked"},
	}

	x := paddingX
	for _, item := range items {
		dc.SetColor(item.c)
		dc.DrawRoundedRectangle(x, y-10, 14, 14, 3)
		dc.Fill()

		dc.SetColor(legendTextRGBA)
		dc.DrawString(item.text, x+20, y+2)
		x += 30 + float64(len(item.text))*8
	}
}

func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode progress card: %w", err)
	}
	return buf.Bytes(), nil
}
