// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has two workflows:
//
// Browsing:
//  1. [LibraryView] : Browse the library, filterable by title
//  2. [SuggestView] : Ranked PlayNext and BuyClaim suggestions
//
// Import wizard, entered when a file is handed to [Model.WithImport]:
//  1. [MappingView] : Review and adjust the guessed column for each field
//  2. [ConfirmView] : Review what the import would write
//  3. [ImportView] : Monitor progress while the batch is committed
//  4. [ResultView] : Summary, or the failure with the ids that were not written
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the ImportEngine, providing non-blocking status reporting during imports.
//
// Keyboard navigation uses vim-style bindings (j/k, h/l, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
