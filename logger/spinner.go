package logger

import (
	"fmt"
	"time"
)

// Spinner animates a message on interactive consoles. On anything else it
// degrades to a single Info line.
type Spinner struct {
	Frames  []string
	Message string
	Console *Console
	done    chan struct{}
	stopped chan struct{}
}

func (s *Spinner) Start() {
	if !s.Console.Interactive {
		close(s.stopped)
		s.Console.Info("%s", s.Message)
		return
	}

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			fmt.Fprintf(s.Console.Output, "\r%s %s ", s.Frames[i%len(s.Frames)], s.Message)
			select {
			case <-s.done:
				fmt.Fprint(s.Console.Output, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop halts the animation and reports the outcome. It blocks until the
// animation goroutine has cleared its line.
func (s *Spinner) Stop(success bool, message string) {
	close(s.done)
	<-s.stopped

	if success {
		s.Console.Success("%s", message)
	} else {
		s.Console.Error("%s", message)
	}
}
