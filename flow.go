package main

import (
	"log"

	"github.com/milk9111/brawler/fsm"
)

// Match flow runs on a lockable machine because the spec watcher goroutine
// requests reloads by changing state. Hooks run under the machine lock, so
// none of them may call back into the flow; anything that needs another
// transition sets a flag on the game and Update applies it after the tick.
const (
	flowPlaying   fsm.StateID = "playing"
	flowPaused    fsm.StateID = "paused"
	flowReloading fsm.StateID = "reloading"
)

type playingState struct{}

func (playingState) ID() fsm.StateID { return flowPlaying }
func (playingState) Enter(*Game)     {}
func (playingState) Exit(*Game)      {}

func (playingState) Update(g *Game) {
	if g == nil || g.world == nil {
		return
	}
	g.world.Update()
}

type pausedState struct{}

func (pausedState) ID() fsm.StateID { return flowPaused }
func (pausedState) Enter(*Game)     {}
func (pausedState) Exit(*Game)      {}

func (pausedState) Update(g *Game) {
	if g == nil || g.pauseUI == nil {
		return
	}
	g.pauseUI.Update()
}

// reloadingState applies spec changes on the next game tick. Enter may run
// on the watcher goroutine, so the actual reload work waits for Update,
// which the game loop drives.
type reloadingState struct{}

func (reloadingState) ID() fsm.StateID { return flowReloading }

func (reloadingState) Enter(g *Game) {
	log.Println("flow: reload queued")
}

func (reloadingState) Update(g *Game) {
	if g == nil {
		return
	}
	g.applyReload()
	// Returning to the interrupted state is deferred to the game loop; a
	// hook must not transition its own machine.
	g.queueRevert = true
}

func (reloadingState) Exit(*Game) {}
