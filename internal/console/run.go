package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// Run drives the session from in until the user exits, in is exhausted or
// ctx is cancelled. Values on refresh trigger a refresh between commands;
// a nil channel disables it. All ledger calls happen on the caller's
// goroutine.
//
// Lines are read on a separate goroutine. When ctx is cancelled Run returns
// at once and that goroutine is abandoned: it stays blocked in Read until in
// yields data, hits EOF or is closed by the caller. With os.Stdin it lives
// until the process exits.
func Run(ctx context.Context, s *Session, in io.Reader, out io.Writer, refresh <-chan struct{}) error {
	lines := make(chan string)
	done := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		done <- sc.Err()
	}()

	fmt.Fprint(out, s.Prompt())
	for {
		select {
		case <-ctx.Done():
			return nil
		case line := <-lines:
			reply, quit := s.HandleLine(line)
			fmt.Fprint(out, reply)
			if quit {
				return nil
			}
			fmt.Fprint(out, s.Prompt())
		case <-refresh:
			fmt.Fprint(out, "\n"+s.Refresh())
			fmt.Fprint(out, s.Prompt())
		case err := <-done:
			fmt.Fprintln(out)
			return err
		}
	}
}
