// Package render draws a calendar view as a PNG grid: one column per
// resource and date, one row per hour of the visible time axis.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/Freeeeeet/practice_scheduler/internal/availability"
	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

const (
	imageWidth       = 1400
	imageHeight      = 900
	headerHeight     = 100
	leftLabelsWidth  = 80
	legendWidth      = 150
	columnPaddingX   = 6
	minItemHeight    = 8.0
	itemBorderRadius = 6.0
	shadowOffset     = 3.0
	bottomPadding    = 10
)

const (
	titleFontSize     = 25.0
	columnFontSize    = 16.0
	hourLabelFontSize = 18.0
	itemFontSize      = 14.0
	legendFontSize    = 12.0
)

var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	evenColumnColor  = color.NRGBA{240, 240, 240, 255}
	oddColumnColor   = color.NRGBA{225, 225, 225, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}
	shadowColor      = color.RGBA{0, 0, 0, 20}
	itemTextColor    = color.RGBA{20, 24, 28, 230}
	legendTextColor  = color.RGBA{90, 95, 100, 220}

	breakColor   = color.RGBA{200, 200, 200, 160}
	absenceColor = color.RGBA{255, 182, 193, 230}

	statusColors = map[model.AppointmentStatus]color.RGBA{
		model.StatusPlanned:     {120, 170, 230, 235},
		model.StatusCompleted:   {133, 193, 85, 235},
		model.StatusReadyToBill: {240, 200, 90, 235},
		model.StatusBilled:      {170, 140, 210, 235},
		model.StatusCancelled:   {158, 158, 158, 200},
		model.StatusNoShow:      {230, 120, 90, 235},
	}
	defaultItemColor = color.RGBA{220, 220, 220, 200}
)

type fontStyle int

const (
	fontRegular fontStyle = iota
	fontBold
)

var (
	fontsOnce sync.Once
	fonts     map[fontStyle]*opentype.Font
)

func parsedFont(style fontStyle) *opentype.Font {
	fontsOnce.Do(func() {
		fonts = make(map[fontStyle]*opentype.Font, 2)
		if f, err := opentype.Parse(goregular.TTF); err == nil {
			fonts[fontRegular] = f
		}
		if f, err := opentype.Parse(gobold.TTF); err == nil {
			fonts[fontBold] = f
		}
	})
	return fonts[style]
}

// loadFont sets a Go font face of the given size, falling back to the
// built-in bitmap face.
func loadFont(dc *gg.Context, size float64, style fontStyle) {
	if f := parsedFont(style); f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			dc.SetFontFace(face)
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// Grid is everything needed to draw one calendar image.
type Grid struct {
	Title     string
	View      calendar.View
	Resources []calendar.ResourceInfo
	Items     []calendar.Item
	Bounds    availability.Window
	Location  *time.Location
	// Now draws the current-time line when it falls on a visible date.
	Now time.Time
	// Labels optionally replace the patient number shown on appointments.
	Labels map[int64]string
}

// GridOf captures the current state of e.
func GridOf(e *calendar.Engine, title string, now time.Time) Grid {
	view, _ := e.View()
	return Grid{
		Title:     title,
		View:      view,
		Resources: e.Resources(),
		Items:     e.Items(),
		Bounds:    e.Bounds(),
		Location:  e.Location(),
		Now:       now,
	}
}

type column struct {
	date     model.Date
	resource calendar.ResourceInfo
}

// hourRange is the visible axis in whole hours, end exclusive.
type hourRange struct {
	start int
	end   int
}

func (h hourRange) count() int { return h.end - h.start }

func hoursOf(w availability.Window) hourRange {
	start, err := model.ParseTimeOfDay(w.Start)
	if err != nil {
		start = model.MustTimeOfDay(availability.DefaultStart)
	}
	end, err := model.ParseTimeOfDay(w.End)
	if err != nil || !start.Before(end) {
		start = model.MustTimeOfDay(availability.DefaultStart)
		end = model.MustTimeOfDay(availability.DefaultEnd)
	}
	h := hourRange{
		start: start.Seconds() / 3600,
		end:   int(math.Ceil(float64(end.Seconds()) / 3600)),
	}
	if h.end <= h.start {
		h.end = h.start + 1
	}
	return h
}

// Calendar renders g as a PNG.
func Calendar(g Grid) ([]byte, error) {
	if g.Location == nil {
		g.Location = time.UTC
	}

	var cols []column
	for _, d := range g.View.Dates() {
		for _, r := range g.Resources {
			cols = append(cols, column{date: d, resource: r})
		}
	}

	hours := hoursOf(g.Bounds)
	cellHeight := float64(imageHeight-headerHeight-bottomPadding) / float64(hours.count())

	dc := createCanvas()
	drawHeader(dc, g)
	drawHourLabels(dc, hours, cellHeight)

	if len(cols) == 0 {
		loadFont(dc, columnFontSize, fontRegular)
		dc.SetColor(textColor)
		dc.DrawStringAnchored("No resources to show", imageWidth/2, imageHeight/2, 0.5, 0.5)
		return encodeImage(dc)
	}

	colWidth := float64(imageWidth-leftLabelsWidth-legendWidth) / float64(len(cols))
	index := make(map[column]int, len(cols))
	for i, c := range cols {
		x := float64(leftLabelsWidth) + float64(i)*colWidth
		drawColumnBackground(dc, x, colWidth, i)
		drawColumnHeader(dc, c, x, colWidth)
		drawHourLines(dc, x, colWidth, hours, cellHeight)
		index[c] = i
	}

	for _, it := range g.Items {
		i, ok := index[column{date: it.Date, resource: resourceInfo(g.Resources, it.Resource)}]
		if !ok {
			continue
		}
		x := float64(leftLabelsWidth) + float64(i)*colWidth
		drawItem(dc, g, it, x, colWidth, hours, cellHeight)
	}

	drawCurrentTimeLine(dc, g, cols, colWidth, hours, cellHeight)
	drawLegend(dc)
	return encodeImage(dc)
}

func resourceInfo(list []calendar.ResourceInfo, r model.Resource) calendar.ResourceInfo {
	for _, info := range list {
		if info.Resource == r {
			return info
		}
	}
	return calendar.ResourceInfo{}
}

func createCanvas() *gg.Context {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	return dc
}

func drawHeader(dc *gg.Context, g Grid) {
	loadFont(dc, titleFontSize, fontBold)
	dc.SetColor(textColor)

	title := g.Title
	if !g.View.From.IsZero() {
		span := g.View.From.String()
		if g.View.To != g.View.From {
			span += " to " + g.View.To.String()
		}
		if title != "" {
			title += ", "
		}
		title += span
	}
	w, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, w/2+10, float64(headerHeight)/8+h/2, 0, 0)
}

// yOf maps minutes since midnight to the canvas.
func yOf(minutes float64, hours hourRange, cellHeight float64) float64 {
	return float64(headerHeight) + (minutes/60-float64(hours.start))*cellHeight
}

func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	loadFont(dc, hourLabelFontSize, fontRegular)
	dc.SetColor(hourLabelColor)
	for h := hours.start; h <= hours.end; h++ {
		y := yOf(float64(h*60), hours, cellHeight)
		dc.DrawStringAnchored(fmt.Sprintf("%02d:00", h), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawColumnBackground(dc *gg.Context, x, width float64, i int) {
	if i%2 == 0 {
		dc.SetColor(evenColumnColor)
	} else {
		dc.SetColor(oddColumnColor)
	}
	dc.DrawRectangle(x, float64(headerHeight), width, float64(imageHeight-headerHeight-bottomPadding))
	dc.Fill()
}

func drawColumnHeader(dc *gg.Context, c column, x, width float64) {
	loadFont(dc, columnFontSize, fontBold)
	dc.SetColor(textColor)
	name := truncate(dc, c.resource.Name, width-4)
	day := c.date.In(time.UTC).Format("Mon 02 Jan")
	dc.DrawStringAnchored(day, x+width/2, float64(headerHeight)-30, 0.5, 0)
	loadFont(dc, columnFontSize, fontRegular)
	dc.DrawStringAnchored(name, x+width/2, float64(headerHeight)-10, 0.5, 0)
}

func drawHourLines(dc *gg.Context, x, width float64, hours hourRange, cellHeight float64) {
	dc.SetColor(hourLineColor)
	dc.SetLineWidth(1)
	for h := hours.start; h <= hours.end; h++ {
		y := yOf(float64(h*60), hours, cellHeight)
		dc.DrawLine(x, y, x+width, y)
		dc.Stroke()
	}
}

// minutesInto returns how far t lies into date d, clamped to the day.
func minutesInto(t time.Time, d model.Date, loc *time.Location) float64 {
	m := t.Sub(d.In(loc)).Minutes()
	return math.Max(0, math.Min(m, 24*60))
}

func drawItem(dc *gg.Context, g Grid, it calendar.Item, x, width float64, hours hourRange, cellHeight float64) {
	top := yOf(minutesInto(it.Start, it.Date, g.Location), hours, cellHeight)
	bottom := yOf(minutesInto(it.End, it.Date, g.Location), hours, cellHeight)
	minY := float64(headerHeight)
	maxY := float64(imageHeight - bottomPadding)
	top = math.Max(top, minY)
	bottom = math.Min(bottom, maxY)
	if bottom <= top {
		return
	}
	height := math.Max(bottom-top, minItemHeight)

	fill := itemColor(it)
	if it.Pending {
		fill.A /= 2
	}

	itemX := x + columnPaddingX
	itemW := width - 2*columnPaddingX

	if it.Kind == calendar.ItemAppointment {
		dc.SetColor(shadowColor)
		dc.DrawRoundedRectangle(itemX+shadowOffset, top+2+shadowOffset, itemW, height-4, itemBorderRadius)
		dc.Fill()
	}

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(itemX, top+2, itemW, height-4, itemBorderRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fill, 0.7))
	dc.SetLineWidth(1.5)
	dc.DrawRoundedRectangle(itemX, top+2, itemW, height-4, itemBorderRadius)
	dc.Stroke()

	if height < 20 {
		return
	}
	loadFont(dc, itemFontSize, fontRegular)
	dc.SetColor(itemTextColor)
	label := fmt.Sprintf("%s-%s", it.Start.In(g.Location).Format("15:04"), it.End.In(g.Location).Format("15:04"))
	dc.DrawStringAnchored(truncate(dc, label, itemW-8), itemX+4, top+16, 0, 0)

	if height < 36 {
		return
	}
	dc.DrawStringAnchored(truncate(dc, itemText(g, it), itemW-8), itemX+4, top+32, 0, 0)
}

func itemText(g Grid, it calendar.Item) string {
	switch it.Kind {
	case calendar.ItemBreak:
		return "Break"
	case calendar.ItemAbsence:
		return string(it.AbsenceType)
	}
	if name, ok := g.Labels[it.PatientID]; ok {
		return name
	}
	return fmt.Sprintf("#%d patient %d", it.AppointmentID, it.PatientID)
}

func itemColor(it calendar.Item) color.RGBA {
	switch it.Kind {
	case calendar.ItemBreak:
		return breakColor
	case calendar.ItemAbsence:
		return absenceColor
	}
	if c, ok := statusColors[it.Status]; ok {
		return c
	}
	return defaultItemColor
}

func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// truncate shortens s with an ellipsis until it fits width.
func truncate(dc *gg.Context, s string, width float64) string {
	if w, _ := dc.MeasureString(s); w <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if w, _ := dc.MeasureString(candidate); w <= width {
			return candidate
		}
	}
	return ""
}

func drawCurrentTimeLine(dc *gg.Context, g Grid, cols []column, width float64, hours hourRange, cellHeight float64) {
	if g.Now.IsZero() {
		return
	}
	now := g.Now.In(g.Location)
	today := model.DateOf(now)
	y := yOf(minutesInto(now, today, g.Location), hours, cellHeight)
	if y < float64(headerHeight) || y > float64(imageHeight-bottomPadding) {
		return
	}

	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2)
	for i, c := range cols {
		if c.date != today {
			continue
		}
		x := float64(leftLabelsWidth) + float64(i)*width
		dc.DrawLine(x, y, x+width, y)
		dc.Stroke()
	}
}

type legendItem struct {
	label string
	color color.RGBA
}

var legendItems = []legendItem{
	{"Planned", statusColors[model.StatusPlanned]},
	{"Completed", statusColors[model.StatusCompleted]},
	{"Ready to bill", statusColors[model.StatusReadyToBill]},
	{"Billed", statusColors[model.StatusBilled]},
	{"Cancelled", statusColors[model.StatusCancelled]},
	{"No-show", statusColors[model.StatusNoShow]},
	{"Break", breakColor},
	{"Absence", absenceColor},
}

func drawLegend(dc *gg.Context) {
	x := float64(imageWidth-legendWidth) + 15
	y := float64(headerHeight) + 10
	const boxW, boxH = 18.0, 14.0

	loadFont(dc, legendFontSize, fontRegular)
	for i, item := range legendItems {
		liY := y + float64(i)*26
		dc.SetColor(item.color)
		dc.DrawRoundedRectangle(x, liY, boxW, boxH, 3)
		dc.Fill()

		dc.SetColor(legendTextColor)
		dc.DrawStringAnchored(item.label, x+boxW+8, liY+boxH/2+1, 0, 0.2)
	}
}

func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode calendar image: %w", err)
	}
	return buf.Bytes(), nil
}
