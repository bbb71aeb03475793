package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ymakino/TsubameDB/tsubame"
)

// handleSignals finalizes the database when the process receives
// SIGTERM. SIGINT stays with liner, which turns it into a prompt abort.
func handleSignals(db *tsubame.TsubameDB) chan<- struct{} {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigChan:
			db.Finalize()
			os.Exit(0)
		case <-done:
			signal.Stop(sigChan)
		}
	}()
	return done
}
