package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/adi-253/roomline/internal/directory"
	"github.com/adi-253/roomline/internal/failure"
	"github.com/adi-253/roomline/internal/session"
)

const timeLayout = "15:04"

// chat renders a session to a terminal and turns input lines into
// session operations.
type chat struct {
	controller *session.Controller
	dir        directory.Directory

	mu         sync.Mutex
	out        io.Writer
	roomID     int64
	printed    int
	titled     bool
	lastStatus session.ConnectionStatus
	lastError  string
}

func newChat(controller *session.Controller, dir directory.Directory, out io.Writer) *chat {
	return &chat{controller: controller, dir: dir, out: out}
}

// render prints whatever changed since the previous snapshot.
func (c *chat) render(snap session.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if snap.RoomID != c.roomID || len(snap.Messages) < c.printed {
		c.roomID = snap.RoomID
		c.printed = 0
		c.titled = false
		c.lastError = ""
	}
	if !c.titled && snap.Title != "" {
		c.titled = true
		fmt.Fprintf(c.out, "== %s ==\n", snap.Title)
	}
	for _, msg := range snap.Messages[c.printed:] {
		fmt.Fprintf(c.out, "[%s] %s: %s\n", msg.SentAt.Local().Format(timeLayout), msg.SenderNickname, msg.Content)
	}
	c.printed = len(snap.Messages)

	if snap.ConnectionStatus != c.lastStatus {
		c.lastStatus = snap.ConnectionStatus
		fmt.Fprintf(c.out, "* %s\n", snap.ConnectionStatus)
	}
	if snap.Error != c.lastError {
		c.lastError = snap.Error
		if snap.Error != "" {
			fmt.Fprintf(c.out, "! %s\n", snap.Error)
		}
	}
}

func (c *chat) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// handle runs one input line. It reports false when the user asked to quit.
func (c *chat) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "/quit":
		c.controller.ForceTeardown()
		return false

	case "/leave":
		if _, err := c.controller.Leave(ctx); err != nil {
			c.printf("! leave failed: %s\n", failure.Describe(err))
		} else {
			c.printf("* left the room\n")
		}

	case "/retry":
		if err := c.controller.Retry(ctx); err != nil && !errors.Is(err, session.ErrSuperseded) {
			c.printf("! %s\n", failure.Describe(err))
		}

	case "/join":
		var roomID int64
		if _, err := fmt.Sscan(arg, &roomID); err != nil {
			c.printf("! usage: /join <room id>\n")
			return true
		}
		c.enter(ctx, roomID)

	case "/rooms":
		page, err := c.dir.ListRooms(ctx, 0, 20, strings.TrimSpace(arg))
		if err != nil {
			c.printf("! %s\n", failure.Describe(err))
			return true
		}
		for _, room := range page.Content {
			c.printf("  #%d %s (%s, %d)\n", room.RoomID, room.Title, room.Region, room.ParticipantCount)
		}

	default:
		if strings.HasPrefix(cmd, "/") {
			c.printf("! unknown command %s\n", cmd)
			return true
		}
		if err := c.controller.Send(line); err != nil {
			c.printf("! not sent: %s\n", failure.Describe(err))
		}
	}
	return true
}

// enter opens roomID. A transport failure keeps the history on screen.
func (c *chat) enter(ctx context.Context, roomID int64) {
	err := c.controller.Enter(ctx, roomID)
	switch {
	case err == nil, errors.Is(err, session.ErrSuperseded):
	case errors.Is(err, failure.ErrTransport):
		c.printf("! live updates unavailable, retrying in the background\n")
	default:
		c.printf("! could not open room %d: %s (/retry to try again)\n", roomID, failure.Describe(err))
	}
}
