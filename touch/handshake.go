package touch

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/mobile-next/touchcli/utils"
)

// Capabilities are taken verbatim from the helper's "^" header line.
type Capabilities struct {
	MaxContacts string `json:"maxContacts"`
	MaxX        string `json:"maxX"`
	MaxY        string `json:"maxY"`
	MaxPressure string `json:"maxPressure"`
}

type header struct {
	lines        []string
	capabilities Capabilities
	pid          string
}

// parseHeaderLine folds one header line into h. Short lines are ignored.
func (h *header) parseHeaderLine(line string) {
	h.lines = append(h.lines, line)

	parts := strings.Split(line, " ")
	switch {
	case strings.HasPrefix(line, "^"):
		if len(parts) < 5 {
			return
		}
		h.capabilities = Capabilities{
			MaxContacts: parts[1],
			MaxX:        parts[2],
			MaxY:        parts[3],
			MaxPressure: parts[4],
		}
	case strings.HasPrefix(line, "$"):
		if len(parts) < 2 {
			return
		}
		h.pid = parts[1]
	}
}

type lineResult struct {
	line string
	err  error
}

// readHeader reads at most maxLines lines from r, giving up on the first
// line that does not arrive within timeout. Missing lines leave fields unset.
func readHeader(r io.Reader, maxLines int, timeout time.Duration) header {
	var h header

	lines := make(chan lineResult, maxLines)
	go func() {
		reader := bufio.NewReader(r)
		for i := 0; i < maxLines; i++ {
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				lines <- lineResult{err: err}
				return
			}
			lines <- lineResult{line: line}
		}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

read:
	for i := 0; i < maxLines; i++ {
		if i > 0 {
			timer.Reset(timeout)
		}

		select {
		case <-timer.C:
			utils.Warn("%v; continuing", ErrHandshakeTimeout)
			break read
		case res := <-lines:
			if res.err != nil {
				utils.Verbose("helper header ended: %v", res.err)
				break read
			}
			h.parseHeaderLine(strings.TrimSpace(res.line))
		}
	}

	utils.Verbose("helper header: %s", strings.Join(h.lines, " | "))
	return h
}
