package repl

import (
	"os"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
)

const defaultEditor = "vi"

// editDoneMsg is sent when the editor exits.
type editDoneMsg struct{ err error }

// editorCommand returns the command that opens path in $EDITOR.
func editorCommand(path string) *exec.Cmd {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	return exec.Command(editor, path) //nolint:gosec
}

// editState opens the state file in the user's editor. The model reloads the
// state once the editor exits.
func editState(path string) tea.Cmd {
	return tea.ExecProcess(editorCommand(path), func(err error) tea.Msg {
		return editDoneMsg{err: err}
	})
}
