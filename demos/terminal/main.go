// terminal draws the evergreen scene as characters in a tcell screen and plays
// a short chime on every mode change. A stress test for running the scene
// without any GPU.
//
// Keys: space toggles, f focuses a random photo, +/- zoom, 1/2/3 inject a fist,
// an open hand and a pinch, q or Esc quits.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/chewxy/math32"
	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/phanxgames/evergreen"
)

const (
	sampleRate = beep.SampleRate(44100)
	frameRate  = 30
)

// chimes maps the target mode to a tone.
var chimes = map[evergreen.Mode]float64{
	evergreen.ModeScattered: 440,
	evergreen.ModeFormed:    660,
	evergreen.ModeFocus:     880,
}

// glyphs by category, nearest to farthest.
var glyphs = map[evergreen.Category][]rune{
	evergreen.CategoryFoliage:  []rune("*+."),
	evergreen.CategoryOrnament: []rune("@Oo"),
	evergreen.CategoryGift:     []rune("#=-"),
	evergreen.CategoryLight:    []rune("o°."),
	evergreen.CategoryPhoto:    []rune("▣□▫"),
	evergreen.CategoryTopper:   []rune("★☆*"),
}

type cell struct {
	r     rune
	style tcell.Style
	depth float32
}

// view is the render and event collaborator.
type view struct {
	screen tcell.Screen
	scene  *evergreen.Scene
	audio  bool
	cells  []cell
	w, h   int
	last   evergreen.ModeEvent
}

func (v *view) GroupCreated(*evergreen.Group) {}

// SubmitFrame is unused: draw reads the groups' instances after Tick.
func (v *view) SubmitFrame(*evergreen.Group, []evergreen.InstanceTransform, evergreen.Uniforms) {}

func (v *view) EmitEvent(ev evergreen.ModeEvent) {
	v.last = ev
	if !v.audio {
		return
	}
	tone, err := generators.SineTone(sampleRate, chimes[ev.To])
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(120*time.Millisecond), tone))
}

func (v *view) resize() {
	v.w, v.h = v.screen.Size()
	v.cells = make([]cell, v.w*v.h)
	// Cells are about twice as tall as wide; project onto half-rows.
	v.scene.Camera().Viewport = evergreen.Rect{Width: float64(v.w), Height: float64(2 * v.h)}
}

func (v *view) draw() {
	for i := range v.cells {
		v.cells[i] = cell{depth: math32.Inf(1)}
	}

	s := v.scene
	parent := s.ParentFrame()
	proj := s.Camera().Projector()
	for _, g := range s.Groups() {
		set := glyphs[g.Category()]
		instances := g.Instances()
		for i := range instances {
			x, y, depth, ok := proj.Project(parent.ToWorld(instances[i].Position))
			if !ok {
				continue
			}
			cx, cy := int(x), int(y/2)
			if cx < 0 || cy < 0 || cx >= v.w || cy >= v.h {
				continue
			}
			d := float32(depth)
			c := &v.cells[cy*v.w+cx]
			if d >= c.depth {
				continue
			}
			// Fade with distance: 15 units is full brightness, 60 is dim.
			t := math32.Min(math32.Max((d-15)/45, 0), 1)
			glyph := set[int(t*float32(len(set)-1)+0.5)]
			col := g.Entity(i).Color
			shade := 1 - 0.6*t
			c.r = glyph
			c.depth = d
			c.style = tcell.StyleDefault.Foreground(tcell.NewRGBColor(
				int32(col.R*float64(shade)*255),
				int32(col.G*float64(shade)*255),
				int32(col.B*float64(shade)*255),
			))
		}
	}

	v.screen.Clear()
	for y := 0; y < v.h; y++ {
		for x := 0; x < v.w; x++ {
			if c := v.cells[y*v.w+x]; c.r != 0 {
				v.screen.SetContent(x, y, c.r, nil, c.style)
			}
		}
	}
	status := fmt.Sprintf(" %s  focus:%q  zoom:%.1f  last:%s->%s (%s) ",
		s.Mode(), s.FocusID(), s.Focus().Zoom(), v.last.From, v.last.To, v.last.Source)
	for i, r := range status {
		if i >= v.w {
			break
		}
		v.screen.SetContent(i, v.h-1, r, nil, tcell.StyleDefault.Reverse(true))
	}
	v.screen.Show()
}

// handleInput reports false when the demo should quit.
func (v *view) handleInput(ev tcell.Event) bool {
	s := v.scene
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			s.Toggle()
		case 'f':
			s.SetMode(evergreen.ModeFocus)
		case '+':
			s.Zoom(2)
		case '-':
			s.Zoom(-2)
		case '1':
			_ = s.InjectPose(evergreen.PoseFist, 1)
		case '2':
			_ = s.InjectPose(evergreen.PoseOpen, 1)
		case '3':
			_ = s.InjectPose(evergreen.PosePinch, 1)
		}
	case *tcell.EventResize:
		v.resize()
		v.screen.Sync()
	}
	return true
}

func (v *view) run() {
	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			events <- v.screen.PollEvent()
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-events:
			if !v.handleInput(ev) {
				return
			}
		case now := <-ticker.C:
			v.scene.Tick(now.Sub(last).Seconds())
			last = now
			v.draw()
		}
	}
}

func main() {
	cfg := evergreen.DefaultConfig()
	cfg.Population = evergreen.Population{Foliage: 1500, Ornaments: 60, Gifts: 20, Lights: 80}
	cfg.Photos = []evergreen.Photo{{ID: "one", URL: "one.jpg"}, {ID: "two", URL: "two.jpg"}}
	scene := evergreen.NewScene(cfg)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	v := &view{screen: screen, scene: scene}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		// Non-fatal, the demo runs silently.
		log.Printf("audio initialization failed: %v", err)
	} else {
		v.audio = true
		defer speaker.Close()
	}

	v.resize()
	scene.SetRenderSink(v)
	scene.SetEventSink(v)
	v.run()
}
