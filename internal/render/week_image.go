// Package render draws an availability week as a PNG grid.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Размеры и отступы
const (
	imageWidth       = 1200
	imageHeight      = 800
	headerHeight     = 70
	leftLabelsWidth  = 60
	legendWidth      = 110
	dayPaddingX      = 6
	minSlotHeight    = 6.0
	slotBorderRadius = 4.0
	shadowOffset     = 2.0
	totalDaysInWeek  = 7
	hourPadding      = 1
	defaultMinHour   = 8
	defaultMaxHour   = 20
)

// Цветовая схема
var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 255}
	hourLabelColor   = color.RGBA{110, 115, 120, 255}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 99, 71, 90}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{228, 228, 228, 255}
	blockedDayColor  = color.NRGBA{200, 200, 200, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}

	slotFreeColor     = color.RGBA{133, 193, 85, 230}
	slotInactiveColor = color.RGBA{158, 158, 158, 200}
	slotTextColor     = color.RGBA{20, 24, 28, 230}
	slotShadowColor   = color.RGBA{0, 0, 0, 20}
)

// hourRange диапазон часов по вертикали
type hourRange struct {
	start int
	end   int
	total int
}

// WeekImage рисует неделю доступности отчёта. now задаёт подсветку текущего дня
// и линию текущего времени; report должен начинаться с понедельника.
func WeekImage(report model.AvailabilityReport, now time.Time) ([]byte, error) {
	if len(report.Availability) == 0 {
		return nil, fmt.Errorf("render week: report has no days")
	}
	days := report.Availability
	if len(days) > totalDaysInWeek {
		days = days[:totalDaysInWeek]
	}

	today := timeslot.Day(now)
	hours := calculateHourRange(days)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / totalDaysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, report)
	drawHourLabels(dc, hours, cellHeight)

	for i, day := range days {
		x := float64(leftLabelsWidth + i*dayWidth)
		y := float64(headerHeight)
		isToday := day.Date.Equal(today)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, i, isToday, len(day.TimeSlots) == 0)
		drawDayHeader(dc, day, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, hours, cellHeight)
		for _, slot := range day.TimeSlots {
			drawSlot(dc, slot, x, y, dayWidth, hours, cellHeight)
		}
		if isToday {
			drawCurrentTimeLine(dc, now, x, dayWidth, hours, cellHeight)
		}
	}

	drawLegend(dc, dayWidth)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// calculateHourRange подбирает часы так, чтобы уместить все слоты недели
func calculateHourRange(days []model.DayAvailability) hourRange {
	minHour, maxHour := 24, 0
	for _, d := range days {
		for _, s := range d.TimeSlots {
			startH := s.StartTime.Hour()
			endH := s.EndTime.Hour()
			if s.EndTime.Minute() > 0 || s.EndTime.Second() > 0 {
				endH++
			}
			minHour = min(minHour, startH)
			maxHour = max(maxHour, endH)
		}
	}

	if minHour == 24 {
		minHour, maxHour = defaultMinHour, defaultMaxHour
	}

	start := max(minHour-hourPadding, 0)
	end := min(maxHour+hourPadding, 24)
	return hourRange{start: start, end: end, total: end - start}
}

func drawHeader(dc *gg.Context, report model.AvailabilityReport) {
	title := fmt.Sprintf("%s  %s - %s  (%d min)",
		report.TeacherName,
		report.StartDate.Format("02 Jan"),
		report.EndDate.Format("02 Jan 2006"),
		report.SlotDurationMinutes)

	dc.SetColor(textColor)
	dc.DrawStringAnchored(title, float64(leftLabelsWidth), float64(headerHeight)/4, 0, 0.5)
}

func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	dc.SetColor(hourLabelColor)
	for i := 0; i <= hours.total; i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		label := fmt.Sprintf("%02d:00", hours.start+i)
		dc.DrawStringAnchored(label, float64(leftLabelsWidth)-8, y, 1, 0.5)
	}
}

func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int, isToday, empty bool) {
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case empty:
		dc.SetColor(blockedDayColor)
	case dayIndex%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

func drawDayHeader(dc *gg.Context, day model.DayAvailability, x, y float64, dayWidth int) {
	dc.SetColor(textColor)
	cx := x + float64(dayWidth)/2
	dc.DrawStringAnchored(day.Date.Weekday().String()[:3], cx, y-28, 0.5, 0.5)
	dc.DrawStringAnchored(day.Date.Format("02.01"), cx, y-12, 0.5, 0.5)
}

func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)
	for i := 0; i <= hours.total; i++ {
		hy := y + float64(i)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

// hourOffset переводит время суток в дробные часы от начала сетки
func hourOffset(c timeslot.Clock, hours hourRange) float64 {
	return float64(c)/3600.0 - float64(hours.start)
}

func drawSlot(dc *gg.Context, slot model.AvailabilitySlot, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	slotY := y + hourOffset(slot.StartTime, hours)*cellHeight
	slotHeight := (hourOffset(slot.EndTime, hours) - hourOffset(slot.StartTime, hours)) * cellHeight
	if slotHeight < minSlotHeight {
		slotHeight = minSlotHeight
	}

	fill := slotFreeColor
	if !slot.IsActive {
		fill = slotInactiveColor
	}
	slotWidth := float64(dayWidth) - float64(dayPaddingX*2)
	left := x + float64(dayPaddingX)

	// Тень
	dc.SetColor(slotShadowColor)
	dc.DrawRoundedRectangle(left+shadowOffset, slotY+1+shadowOffset, slotWidth, slotHeight-2, slotBorderRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(left, slotY+1, slotWidth, slotHeight-2, slotBorderRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(left, slotY+1, slotWidth, slotHeight-2, slotBorderRadius)
	dc.Stroke()

	// Подпись помещается только в достаточно высокий слот
	if slotHeight >= 16 {
		dc.SetColor(slotTextColor)
		dc.DrawStringAnchored(slot.StartTime.HHMM()+"-"+slot.EndTime.HHMM(), left+4, slotY+slotHeight/2, 0, 0.35)
	}
}

func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

func drawCurrentTimeLine(dc *gg.Context, now time.Time, x float64, dayWidth int, hours hourRange, cellHeight float64) {
	current := timeslot.Clock(now.Hour()*3600 + now.Minute()*60)
	offset := hourOffset(current, hours)
	if offset < 0 || offset > float64(hours.total) {
		return
	}

	lineY := float64(headerHeight) + offset*cellHeight
	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2)
	dc.DrawLine(x, lineY, x+float64(dayWidth), lineY)
	dc.Stroke()
}

func drawLegend(dc *gg.Context, dayWidth int) {
	legendX := float64(leftLabelsWidth+totalDaysInWeek*dayWidth) + 12
	legendY := float64(imageHeight) - 90

	items := []struct {
		label string
		clr   color.Color
	}{
		{"Free", slotFreeColor},
		{"Inactive", slotInactiveColor},
		{"No slots", blockedDayColor},
	}

	const boxW, boxH = 18.0, 12.0
	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(legendX, legendY, boxW, boxH, 3)
		dc.Fill()

		dc.SetColor(textColor)
		dc.DrawStringAnchored(item.label, legendX+boxW+6, legendY+boxH/2, 0, 0.35)
		legendY += boxH + 12
	}
}
