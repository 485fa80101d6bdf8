package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nclalperen/game-tracker-mvp/internal/library"
	"github.com/nclalperen/game-tracker-mvp/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgLibraryLoaded MsgKind = iota
	MsgPlanReady
	MsgProgressUpdate
	MsgImportComplete
)

type libraryLoaded struct {
	rows []library.Row
	err  error
}

type planReady struct {
	plan *tasks.Plan
	err  error
}

type importComplete struct {
	result *tasks.ImportResult
	err    error
}

// libraryLoadedMsg is the constructor for [MsgLibraryLoaded]
func libraryLoadedMsg(rows []library.Row, err error) Msg {
	return Msg{kind: MsgLibraryLoaded, data: libraryLoaded{rows, err}}
}

// planReadyMsg is the constructor for [MsgPlanReady]
func planReadyMsg(plan *tasks.Plan, err error) Msg {
	return Msg{kind: MsgPlanReady, data: planReady{plan, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// importCompleteMsg is the constructor for [MsgImportComplete]
func importCompleteMsg(result *tasks.ImportResult, err error) Msg {
	return Msg{kind: MsgImportComplete, data: importComplete{result, err}}
}
