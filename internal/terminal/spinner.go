// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package terminal

import (
	"fmt"
	"os"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

var frames = []string{"|", "/", "-", "\\"}

// StartSpinner draws text with a rotating frame until the returned
// function is called. Nothing is drawn when stdout is not a terminal.
func StartSpinner(text string) (stop func()) {
	if !IsTerminal(os.Stdout) {
		return func() {}
	}
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		return func() {}
	}
	cursor.Hide()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for i := 0; ; i++ {
			area.Update(fmt.Sprintf("%s %s", frames[i%len(frames)], text))
			select {
			case <-t.C:
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
			_ = area.Stop()
			cursor.Show()
		})
	}
}
