package mqtt

import (
	"strings"

	"github.com/robotalks/swerve.go/pkg/l1"
)

// Channels of a controller, topics are <prefix><type>/<id>/<channel>.
const (
	// ChannelCmd carries commands to the controller.
	ChannelCmd = "cmd"
	// ChannelMsg carries replies and events from the controller.
	ChannelMsg = "msg"
	// ChannelMeta holds the retained ControllerMeta while the controller
	// is online, and is emptied when it goes offline.
	ChannelMeta = "meta"
)

// Topic returns the topic of a controller channel without the broker prefix.
func Topic(ref l1.ControllerRef, channel string) string {
	return ref.Name() + "/" + channel
}

// TopicPattern matches a channel of all controllers.
func TopicPattern(channel string) string {
	return "+/+/" + channel
}

// ParseTopic splits a topic without the broker prefix.
func ParseTopic(topic string) (ref l1.ControllerRef, channel string, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 || items[0] == "" || items[1] == "" {
		return
	}
	return l1.ControllerRef{Type: items[0], ID: items[1]}, items[2], true
}
