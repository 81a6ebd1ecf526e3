// Package confirm provides interactive confirmation prompts for the CLI.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samsarahq/go/oops"
)

// Prompt asks for y/n confirmation on stdin.
// Returns nil if confirmed, error if declined or on input failure.
func Prompt(message string) error {
	return prompt(os.Stdin, os.Stdout, message)
}

func prompt(in io.Reader, out io.Writer, message string) error {
	fmt.Fprintf(out, "⚠️  %s [y/N]: ", message)

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(err == io.EOF && response != "") {
		return oops.Wrapf(err, "failed to read confirmation")
	}

	response = strings.TrimSpace(strings.ToLower(response))
	if response != "y" && response != "yes" {
		return oops.Errorf("operation cancelled by user")
	}
	return nil
}
