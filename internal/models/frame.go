package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Broker frame commands.
const (
	CommandConnect    = "CONNECT"
	CommandConnected  = "CONNECTED"
	CommandSubscribe  = "SUBSCRIBE"
	CommandSend       = "SEND"
	CommandMessage    = "MESSAGE"
	CommandError      = "ERROR"
	CommandDisconnect = "DISCONNECT"
)

const (
	topicPrefix = "/topic/rooms/"
	sendPrefix  = "/app/rooms/"
	sendSuffix  = "/send"
)

// Frame is one JSON text frame exchanged with the message broker
type Frame struct {
	Command     string          `json:"command"`
	Destination string          `json:"destination,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// TopicDestination is where a room's messages are delivered.
func TopicDestination(roomID int64) string {
	return topicPrefix + strconv.FormatInt(roomID, 10)
}

// SendDestination is where a room's outbound messages are published.
func SendDestination(roomID int64) string {
	return fmt.Sprintf("%s%d%s", sendPrefix, roomID, sendSuffix)
}

// ParseTopicDestination extracts the room id from a topic destination.
func ParseTopicDestination(dest string) (int64, bool) {
	rest, ok := strings.CutPrefix(dest, topicPrefix)
	if !ok {
		return 0, false
	}
	return parseRoomID(rest)
}

// ParseSendDestination extracts the room id from a send destination.
func ParseSendDestination(dest string) (int64, bool) {
	rest, ok := strings.CutPrefix(dest, sendPrefix)
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, sendSuffix)
	if !ok {
		return 0, false
	}
	return parseRoomID(rest)
}

func parseRoomID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
