package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/kinoplan/internal/config"
	"github.com/san-kum/kinoplan/internal/control"
	"github.com/san-kum/kinoplan/internal/state"
	"github.com/san-kum/kinoplan/internal/systems"
)

type trailPoint struct {
	x, y float64
}

// Watch drives a vehicle with sampled controls and renders the run as
// a top-down terminal view, one propagation step per animation tick.
type Watch struct {
	cfg     *config.Config
	vehicle *systems.Vehicle
	sampler control.Sampler

	start *state.Composite
	cur   *state.Composite
	next  *state.Composite
	ctrl  control.Control
	prev  control.Control

	step    int
	paused  bool
	done    bool
	runErr  error
	trail   []trailPoint
	heading []float64

	width  int
	height int
}

func NewWatch(cfg *config.Config, vehicle *systems.Vehicle, sampler control.Sampler) (*Watch, error) {
	ctrl, err := vehicle.AllocControl()
	if err != nil {
		return nil, err
	}
	prev, err := vehicle.AllocControl()
	if err != nil {
		vehicle.FreeControl(ctrl)
		return nil, err
	}

	start := vehicle.StartState(cfg.Start.X, cfg.Start.Y, cfg.Start.Heading, cfg.Start.Gear)
	cur := vehicle.States().AllocState().(*state.Composite)
	vehicle.States().CopyState(cur, start)

	return &Watch{
		cfg:     cfg,
		vehicle: vehicle,
		sampler: sampler,
		start:   start,
		cur:     cur,
		next:    vehicle.States().AllocState().(*state.Composite),
		ctrl:    ctrl,
		prev:    prev,
		trail:   make([]trailPoint, 0, 200),
		heading: make([]float64, 0, 60),
		width:   80,
		height:  24,
	}, nil
}

// Free releases the controls held for the run loop.
func (w *Watch) Free() {
	w.vehicle.FreeControl(w.ctrl)
	w.vehicle.FreeControl(w.prev)
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (w *Watch) Init() tea.Cmd { return tick() }

func (w *Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "escape":
			return w, tea.Quit
		case " ", "p":
			w.paused = !w.paused
		case "r":
			w.reset()
			return w, tick()
		}
		return w, nil
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		return w, nil
	case tickMsg:
		if !w.paused && !w.done {
			w.advance()
		}
		if w.done {
			return w, nil
		}
		return w, tick()
	}
	return w, nil
}

func (w *Watch) advance() {
	if w.step >= w.cfg.Steps {
		w.done = true
		return
	}

	resample := w.cfg.Resample
	if resample < 1 {
		resample = 1
	}

	var err error
	if w.step%resample == 0 {
		err = w.sampler.Sample(w.ctrl)
	} else {
		err = w.sampler.SampleNext(w.ctrl, w.prev)
	}
	if err != nil {
		w.runErr = err
		w.done = true
		return
	}
	w.vehicle.CopyControl(w.prev, w.ctrl)

	if err := w.vehicle.Propagate(w.cur, w.ctrl, w.cfg.Dt, w.next); err != nil {
		w.runErr = err
		w.done = true
		return
	}
	w.cur, w.next = w.next, w.cur
	w.step++

	pose := w.pose()
	w.trail = append(w.trail, trailPoint{pose.Values[0], pose.Values[1]})
	if len(w.trail) > 200 {
		w.trail = w.trail[1:]
	}
	w.heading = append(w.heading, pose.Values[2])
	if len(w.heading) > 60 {
		w.heading = w.heading[1:]
	}
}

func (w *Watch) reset() {
	w.vehicle.States().CopyState(w.cur, w.start)
	w.step = 0
	w.done = false
	w.paused = false
	w.runErr = nil
	w.trail = w.trail[:0]
	w.heading = w.heading[:0]
}

func (w *Watch) pose() *state.Vector {
	return w.cur.Components[0].(*state.Vector)
}

func (w *Watch) gear() int {
	return w.cur.Components[1].(*state.Integer).Value
}

func (w *Watch) View() string {
	cw := w.width - 6
	ch := w.height - 10
	if cw < 50 {
		cw = 50
	}
	if ch < 14 {
		ch = 14
	}

	canvas := NewCanvas(cw, ch)

	extent := w.cfg.Vehicle.Extent
	toCell := func(x, y float64) (int, int) {
		cx := int((x + extent) / (2 * extent) * float64(cw-1))
		cy := int((extent - y) / (2 * extent) * float64(ch-1))
		return cx, cy
	}

	for i := 0; i < cw; i++ {
		canvas.Set(i, 0, '─')
		canvas.Set(i, ch-1, '─')
	}
	for i := 0; i < ch; i++ {
		canvas.Set(0, i, '│')
		canvas.Set(cw-1, i, '│')
	}
	ox, oy := toCell(0, 0)
	canvas.Set(ox, oy, '+')

	for _, pt := range w.trail {
		x, y := toCell(pt.x, pt.y)
		canvas.Set(x, y, '·')
	}

	pose := w.pose()
	vx, vy := toCell(pose.Values[0], pose.Values[1])
	canvas.Set(vx, vy, headingRune(pose.Values[2]))

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	if w.runErr != nil {
		statusIcon = yellow.Render("!")
		statusText = yellow.Render(w.runErr.Error())
	} else if w.done {
		statusIcon = dim.Render("○")
		statusText = dim.Render("done")
	} else if w.paused {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s\n",
		statusIcon, cyan.Render(w.cfg.Scenario), statusText))

	progress := float64(w.step) / float64(w.cfg.Steps)
	if progress > 1 {
		progress = 1
	}
	barWidth := 36
	filled := int(progress * float64(barWidth))
	timeStr := fmt.Sprintf("%.1fs/%.1fs", float64(w.step)*w.cfg.Dt, float64(w.cfg.Steps)*w.cfg.Dt)
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s\n\n", bar, dim.Render(timeStr)))

	for _, row := range strings.Split(canvas.String(), "\n") {
		b.WriteString("   " + row + "\n")
	}

	b.WriteString(fmt.Sprintf("\n   %s%s  %s%s  %s%s  %s%s\n",
		dim.Render("x="), white.Render(fmt.Sprintf("%.2f", pose.Values[0])),
		dim.Render("y="), white.Render(fmt.Sprintf("%.2f", pose.Values[1])),
		dim.Render("θ="), white.Render(fmt.Sprintf("%.2f", pose.Values[2])),
		dim.Render("gear="), white.Render(fmt.Sprintf("%d", w.gear()))))

	if len(w.heading) > 1 {
		b.WriteString(fmt.Sprintf("   %s %s\n", dim.Render("θ"), cyan.Render(sparkline(w.heading, 24))))
	}

	b.WriteString("\n" + dim.Render("   space pause  r reset  q quit") + "\n")

	return b.String()
}

func headingRune(theta float64) rune {
	arrows := []rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}
	sector := int(math.Round(theta/(math.Pi/4))) % 8
	if sector < 0 {
		sector += 8
	}
	return arrows[sector]
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}
