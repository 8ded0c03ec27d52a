package touch

import (
	"fmt"
	"strings"
	"time"

	"github.com/mobile-next/touchcli/utils"
)

// Sender writes raw protocol text to a helper process.
type Sender interface {
	Send(content string) error
}

// CommandBuilder accumulates protocol lines for the helper (minitouch
// compatible) and publishes them as one chunk.
type CommandBuilder struct {
	lines       []string
	delay       int
	settleDelay time.Duration
	sleep       func(time.Duration)
}

// NewCommandBuilder returns an empty builder that pauses settleDelay after every publish.
func NewCommandBuilder(settleDelay time.Duration) *CommandBuilder {
	return &CommandBuilder{
		settleDelay: settleDelay,
		sleep:       time.Sleep,
	}
}

// Append adds a raw protocol line.
func (b *CommandBuilder) Append(line string) {
	b.lines = append(b.lines, line)
}

// Commit adds "c".
func (b *CommandBuilder) Commit() {
	b.Append("c")
}

// Wait adds "w <ms>" and counts ms towards the pause taken on publish.
func (b *CommandBuilder) Wait(ms int) {
	b.Append(fmt.Sprintf("w %d", ms))
	b.delay += ms
}

// Up adds "u <contact>".
func (b *CommandBuilder) Up(contact int) {
	b.Append(fmt.Sprintf("u %d", contact))
}

// Down adds "d <contact> <x> <y> <pressure>".
func (b *CommandBuilder) Down(contact, x, y, pressure int) {
	b.Append(fmt.Sprintf("d %d %d %d %d", contact, x, y, pressure))
}

// Move adds "m <contact> <x> <y> <pressure>".
func (b *CommandBuilder) Move(contact, x, y, pressure int) {
	b.Append(fmt.Sprintf("m %d %d %d %d", contact, x, y, pressure))
}

// Delay returns the sum of all waits in the buffer, in milliseconds.
func (b *CommandBuilder) Delay() int {
	return b.delay
}

// String returns the buffer as newline terminated protocol text.
func (b *CommandBuilder) String() string {
	if len(b.lines) == 0 {
		return ""
	}
	return strings.Join(b.lines, "\n") + "\n"
}

// Publish commits the buffer, sends it, waits for the device to settle and
// resets the builder. The buffer is reset even when sending fails.
func (b *CommandBuilder) Publish(sender Sender) error {
	b.Commit()
	content := b.String()
	pause := time.Duration(b.delay)*time.Millisecond + b.settleDelay
	b.Reset()

	utils.Verbose("send operation: %s", strings.ReplaceAll(content, "\n", "\\n"))
	if err := sender.Send(content); err != nil {
		return err
	}

	b.sleep(pause)
	return nil
}

// Reset clears the buffer and the accumulated delay.
func (b *CommandBuilder) Reset() {
	b.lines = nil
	b.delay = 0
}
