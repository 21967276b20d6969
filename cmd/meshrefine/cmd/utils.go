package cmd

import (
	"bufio"
	"fmt"
	"os"
)

// confirmIfExists checks whether path exists; if it does, it asks the user
// msg and returns their answer. If path doesn't exist, it returns true
// without prompting, so a fresh write never blocks on input.
func confirmIfExists(path, msg string) (ok bool, err error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return askForConfirmation(msg), nil
}

// askForConfirmation prints msg and reads a y/n answer from stdin, with
// ENTER defaulting to no.
func askForConfirmation(msg string) bool {
	fmt.Println(msg)
	reader := bufio.NewReader(os.Stdin)
	for {
		input, err := reader.ReadString('\n')
		if err != nil || len(input) == 0 {
			return false
		}
		switch input[0] {
		case 'Y', 'y':
			return true
		case 'N', 'n', '\n':
			return false
		}
	}
}

func check(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
