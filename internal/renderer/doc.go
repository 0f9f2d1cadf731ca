// Package renderer provides the display adapter for an emulated display
// device.
//
// The device writes text cells, cursor state and graphics layers; the
// adapter keeps the display state and reconciles it with two surfaces
// (text and graphics) using as few surface operations as it can:
//   - Text mode redraws only rows changed since the last tick, one
//     color-uniform run at a time, with the cursor cell split out
//   - Graphics mode composites the layers submitted by the device in order
//   - Scale follows the requested factor, an autoscale heuristic for small
//     resolutions and the host device pixel ratio
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│             Screen (Facade)             │
//	├─────────────────────────────────────────┤
//	│ TextGrid  │ RowRenderer │ Cursor        │
//	│ DirtyRows │ Compositor  │ Scale         │
//	├─────────────────────────────────────────┤
//	│      Scheduler (Running/Paused/...)     │
//	├─────────────────────────────────────────┤
//	│  Surface: Recorder │ Canvas │ tcell     │
//	│           ebiten window                 │
//	└─────────────────────────────────────────┘
//
// Usage:
//
//	term, _ := backend.NewTerminal()
//	s, _ := renderer.New(renderer.Surfaces{
//		Text:     term.Text(),
//		Graphics: term.Graphics(),
//	}, renderer.Options{Requester: ticker})
//	s.PutChar(0, 0, 'A', false, 0x000000, 0xFFFFFF)
//	s.Start()
//	ticker.Run(ctx, 0, func() { s.Tick() })
package renderer
