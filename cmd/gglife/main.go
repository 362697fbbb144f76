// Command gglife runs Conway's Game of Life on the GPU in a gogpu window.
//
// The automaton is advanced by a compute shader every frame and drawn
// through a viewport transform into the area right of the control panel.
//
// Usage:
//
//	gglife [-grid-width 1024] [-grid-height 1024] [-live #fff] [-dead #000]
//	       [-seed 1] [-scale 1] [-offset-x 0] [-offset-y 0] [-spirv] [-cpu] [-v]
//
// Press Space to pause and resume. Drag the panel sliders to pan and zoom.
package main

import (
	"log"
	"os"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/life"
)

const (
	windowWidth  = 700
	windowHeight = 500
	windowTitle  = "Conway's Game of Life"
)

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}
	life.SetLogger(opts.logger(os.Stderr))

	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle(windowTitle).
		WithSize(windowWidth, windowHeight).
		WithContinuousRender(false))

	s := newSession(opts)
	var animToken *gogpu.AnimationToken

	app.OnDraw(func(dc *gogpu.Context) {
		if !s.ready() {
			provider := app.GPUContextProvider()
			if provider == nil {
				return
			}
			if err := s.init(provider); err != nil {
				log.Fatalf("Failed to initialize: %v", err)
			}
			animToken = app.StartAnimation()
		}
		if err := s.frame(dc); err != nil {
			frames := s.loop.Frames()
			s.close()
			log.Fatalf("Frame %d: %v", frames, err)
		}
	})

	app.EventSource().OnKeyPress(func(key gpucontext.Key, _ gpucontext.Modifiers) {
		if key != gpucontext.KeySpace {
			return
		}
		if s.togglePause() {
			if animToken != nil {
				animToken.Stop()
				animToken = nil
			}
			life.Logger().Info("paused")
			return
		}
		animToken = app.StartAnimation()
		life.Logger().Info("resumed")
	})

	events := app.EventSource()
	events.OnMousePress(func(button gpucontext.MouseButton, x, y float64) {
		if button == gpucontext.MouseButtonLeft && s.press(x, y) {
			app.RequestRedraw()
		}
	})
	events.OnMouseMove(func(x, _ float64) {
		if s.move(x) {
			app.RequestRedraw()
		}
	})
	events.OnMouseRelease(func(button gpucontext.MouseButton, _, _ float64) {
		if button == gpucontext.MouseButtonLeft {
			s.release()
		}
	})

	app.OnClose(func() {
		if animToken != nil {
			animToken.Stop()
		}
		s.close()
	})

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
