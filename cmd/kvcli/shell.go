package kvcli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

// ShellCmd opens an interactive REPL for ad-hoc get/set/rm/sub-get/sub-set/
// flush commands, grounded on the pack's peterh/liner-based sloty REPL.
var ShellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive bufkv shell",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		return runShell()
	},
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".bufkv_history")
}

func runShell() error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(completer)

	if f, err := os.Open(historyFile()); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}

	fmt.Println("bufkv shell — type 'help' for commands, 'exit' to quit")

	for {
		input, err := line.Prompt("bufkv> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nbye")
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		parts := strings.Fields(input)
		cmdName, args := strings.ToLower(parts[0]), parts[1:]

		if err := dispatch(cmdName, args); err != nil {
			if err == errExit {
				break
			}
			fmt.Println("error:", err)
		}
	}

	saveHistory(line)
	return nil
}

var errExit = fmt.Errorf("exit")

func dispatch(cmdName string, args []string) error {
	switch cmdName {
	case "exit", "quit", "q":
		return errExit
	case "help", "?":
		printHelp()
		return nil
	case "get":
		if len(args) != 1 {
			return fmt.Errorf("usage: get <key>")
		}
		return runGet(args[0])
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("usage: set <key> <value>")
		}
		return runSet(args[0], args[1])
	case "rm", "del":
		if len(args) != 1 {
			return fmt.Errorf("usage: rm <key>")
		}
		return runRemove(args[0])
	case "sub-get":
		if len(args) != 2 {
			return fmt.Errorf("usage: sub-get <key> <dot.separated.path>")
		}
		return runSubGet(args[0], args[1])
	case "sub-set":
		if len(args) != 3 {
			return fmt.Errorf("usage: sub-set <key> <dot.separated.path> <value>")
		}
		return runSubSet(args[0], args[1], args[2])
	case "flush":
		return runFlush()
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for commands)", cmdName)
	}
}

func printHelp() {
	fmt.Println(`commands:
  get <key>
  set <key> <value>
  rm <key>
  sub-get <key> <dot.separated.path>
  sub-set <key> <dot.separated.path> <value>
  flush
  help
  exit`)
}

func completer(line string) []string {
	commands := []string{"get", "set", "rm", "sub-get", "sub-set", "flush", "help", "exit"}
	var matches []string
	for _, c := range commands {
		if strings.HasPrefix(c, line) {
			matches = append(matches, c)
		}
	}
	return matches
}

func saveHistory(line *liner.State) {
	path := historyFile()
	if path == "" {
		return
	}
	if f, err := os.Create(path); err == nil {
		_, _ = line.WriteHistory(f)
		_ = f.Close()
	}
}
