package grid

import (
	"bytes"
	"image/color"
	"strconv"
	"sync"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/formatting"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/timeutil"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/text/language"
)

// Константы размеров и отступов
const (
	imageWidth        = 1400
	imageHeight       = 900
	headerHeight      = 100
	leftLabelsWidth   = 80
	legendWidth       = 140
	dayPaddingX       = 8
	minBlockHeight    = 8.0
	blockBorderRadius = 6.0
	shadowOffset      = 3.0
)

// Константы шрифтов
const (
	titleFontSize      = 25.0
	dayFontSize        = 24.0
	hourLabelFontSize  = 16.0
	blockTimeFontSize  = 15.0
	legendItemFontSize = 12.0
)

// Цветовая схема
var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 99, 71, 125}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{220, 220, 220, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}

	plannedColor   = color.RGBA{133, 193, 85, 220}
	completedColor = color.RGBA{120, 160, 220, 230}
	cancelledColor = color.RGBA{158, 158, 158, 200}
	defaultColor   = color.RGBA{220, 220, 220, 200}
	blockTextColor = color.RGBA{20, 24, 28, 230}
	shadowColor    = color.RGBA{0, 0, 0, 20}

	legendItemColor = color.RGBA{70, 74, 78, 220}
)

// WeekImage - входные данные для картинки недели
type WeekImage struct {
	Anchor   time.Time        // любой день недели
	Lessons  []*model.Lesson  // занятия недели
	Labels   map[int64]string // подпись по package_id (обычно имя ученика)
	Now      time.Time        // для подсветки сегодняшнего дня и линии времени
	Location *time.Location
	Locale   language.Tag
	Config   Config
}

var (
	fontsOnce    sync.Once
	regularFont  *opentype.Font
	boldFont     *opentype.Font
	fontsLoadErr error
)

// loadFont устанавливает шрифт или basicfont как fallback
func loadFont(dc *gg.Context, size float64, bold bool) {
	fontsOnce.Do(func() {
		regularFont, fontsLoadErr = opentype.Parse(goregular.TTF)
		if fontsLoadErr != nil {
			return
		}
		boldFont, fontsLoadErr = opentype.Parse(gobold.TTF)
	})

	parsed := regularFont
	if bold {
		parsed = boldFont
	}
	if fontsLoadErr != nil || parsed == nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}
	dc.SetFontFace(face)
}

// RenderWeekPNG рисует недельную сетку с занятиями
func RenderWeekPNG(week WeekImage) ([]byte, error) {
	loc := week.Location
	if loc == nil {
		loc = time.Local
	}
	cfg := week.Config
	if cfg.Rows() == 0 {
		cfg = DefaultConfig()
	}

	weekStart := timeutil.StartOfWeek(week.Anchor, loc)
	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / timeutil.DaysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(cfg.Rows())

	// Раскладка считается тем же алгоритмом, что и для API, в пикселях картинки
	cfg.RowHeight = cellHeight
	blocks := Layout(ModeWeek, weekStart, week.Lessons, cfg, loc)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()

	drawHeader(dc, weekStart, week.Locale)
	drawHourLabels(dc, cfg, cellHeight)

	todayIndex := -1
	if !week.Now.IsZero() && !week.Now.Before(weekStart) && week.Now.Before(weekStart.AddDate(0, 0, timeutil.DaysInWeek)) {
		todayIndex = timeutil.WeekdayIndex(week.Now.In(loc))
	}

	for dayIndex := 0; dayIndex < timeutil.DaysInWeek; dayIndex++ {
		x := float64(leftLabelsWidth + dayIndex*dayWidth)
		drawDayBackground(dc, x, dayWidth, dayHeight, dayIndex, dayIndex == todayIndex)
		drawDayHeader(dc, weekStart.AddDate(0, 0, dayIndex), x, dayWidth, week.Locale)
		drawHourLines(dc, x, dayWidth, cfg, cellHeight)
	}

	for _, block := range blocks {
		drawBlock(dc, block, dayWidth, week.Labels, loc)
	}

	if todayIndex >= 0 {
		drawCurrentTimeLine(dc, week.Now, cfg, dayWidth, loc)
	}
	drawLegend(dc, dayWidth)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawHeader рисует заголовок с названием месяца
func drawHeader(dc *gg.Context, weekStart time.Time, locale language.Tag) {
	weekEnd := weekStart.AddDate(0, 0, timeutil.DaysInWeek-1)

	title := formatting.MonthName(weekStart.Month(), locale)
	if weekEnd.Month() != weekStart.Month() {
		title += " - " + formatting.MonthName(weekEnd.Month(), locale)
	}
	title += " " + strconv.Itoa(weekEnd.Year())

	loadFont(dc, titleFontSize, true)
	dc.SetColor(textColor)
	w, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, w/2+10, float64(headerHeight)/8+h/2, 0, 0)
}

// drawHourLabels рисует колонку с часами слева
func drawHourLabels(dc *gg.Context, cfg Config, cellHeight float64) {
	loadFont(dc, hourLabelFontSize, false)
	dc.SetColor(hourLabelColor)

	for idx := 0; idx <= cfg.Rows(); idx++ {
		y := float64(headerHeight) + float64(idx)*cellHeight
		dc.DrawStringAnchored(formatHourLabel(cfg.StartHour+idx), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

// drawDayBackground рисует фон дня
func drawDayBackground(dc *gg.Context, x float64, dayWidth, dayHeight, dayIndex int, isToday bool) {
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case dayIndex%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, float64(headerHeight), float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

// drawDayHeader рисует название дня недели и дату
func drawDayHeader(dc *gg.Context, date time.Time, x float64, dayWidth int, locale language.Tag) {
	loadFont(dc, dayFontSize, true)
	dc.SetColor(textColor)
	y := float64(headerHeight)
	dc.DrawStringAnchored(date.Format("02.01"), x+float64(dayWidth)/2, y, 0.5, -1)
	dc.DrawStringAnchored(formatting.WeekdayShort(date.Weekday(), locale), x+float64(dayWidth)/2, y, 0.5, -0.2)
}

// drawHourLines рисует горизонтальные линии часов
func drawHourLines(dc *gg.Context, x float64, dayWidth int, cfg Config, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)

	for idx := 0; idx <= cfg.Rows(); idx++ {
		y := float64(headerHeight) + float64(idx)*cellHeight
		dc.DrawLine(x, y, x+float64(dayWidth), y)
		dc.Stroke()
	}
}

// drawBlock рисует одно занятие
func drawBlock(dc *gg.Context, block Block, dayWidth int, labels map[int64]string, loc *time.Location) {
	x := float64(leftLabelsWidth + block.Column*dayWidth)
	y := float64(headerHeight) + block.Top
	height := block.Height
	if height < minBlockHeight {
		height = minBlockHeight
	}
	width := float64(dayWidth) - float64(dayPaddingX*2)
	fill := blockColor(block.Status)

	// Тень
	dc.SetColor(shadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, y+2+shadowOffset, width, height-4, blockBorderRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x+dayPaddingX, y+2, width, height-4, blockBorderRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+dayPaddingX, y+2, width, height-4, blockBorderRadius)
	dc.Stroke()

	loadFont(dc, blockTimeFontSize, false)
	dc.SetColor(blockTextColor)
	txtX := x + dayPaddingX + 8
	txtY := y + 18
	dc.DrawStringAnchored(formatting.FormatTimeRange(block.Start.In(loc), block.End.In(loc)), txtX, txtY, 0, 0)

	label := labels[block.PackageID]
	if label != "" && height > 40 {
		runes := []rune(label)
		if len(runes) > 18 {
			label = string(runes[:15]) + "..."
		}
		loadFont(dc, blockTimeFontSize-2, false)
		dc.DrawStringAnchored(label, txtX, txtY+16, 0, 0)
	}
}

// blockColor возвращает цвет занятия по статусу
func blockColor(status model.LessonStatus) color.RGBA {
	switch status {
	case model.LessonStatusPlanned:
		return plannedColor
	case model.LessonStatusCompleted:
		return completedColor
	case model.LessonStatusCancelled:
		return cancelledColor
	default:
		return defaultColor
	}
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// drawCurrentTimeLine рисует красную линию текущего времени
func drawCurrentTimeLine(dc *gg.Context, now time.Time, cfg Config, dayWidth int, loc *time.Location) {
	hour := timeutil.HourOfDay(now, loc)
	if hour < float64(cfg.StartHour) || hour > float64(cfg.EndHour) {
		return
	}

	y := float64(headerHeight) + Top(now, cfg, loc)
	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2.0)
	dc.DrawLine(float64(leftLabelsWidth), y, float64(leftLabelsWidth+timeutil.DaysInWeek*dayWidth), y)
	dc.Stroke()
}

// drawLegend рисует легенду справа
func drawLegend(dc *gg.Context, dayWidth int) {
	items := []struct {
		status model.LessonStatus
		clr    color.Color
	}{
		{model.LessonStatusPlanned, plannedColor},
		{model.LessonStatusCompleted, completedColor},
		{model.LessonStatusCancelled, cancelledColor},
	}

	boxW, boxH := 20.0, 14.0
	x := float64(leftLabelsWidth + timeutil.DaysInWeek*dayWidth + 10)
	y := float64(imageHeight) - 78.0

	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(x, y, boxW, boxH, 3)
		dc.Fill()

		loadFont(dc, legendItemFontSize, false)
		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(formatting.LessonStatusDisplay(item.status).Text, x+boxW+8, y+boxH/2+1, 0, 0.2)
		y += boxH + 14
	}
}

func formatHourLabel(h int) string {
	if h < 10 {
		return "0" + strconv.Itoa(h) + ":00"
	}
	return strconv.Itoa(h) + ":00"
}
