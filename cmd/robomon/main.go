package main

import (
	"flag"
	"log"
	"os"
	"reflect"
	"strings"

	"github.com/robotalks/swerve.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/swerve.go/pkg/l1/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/robo/"
	topic   = "#"
	noMeta  bool
)

func init() {
	if val := os.Getenv("ROBO_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&topic, "topic", topic, "Topic pattern under the prefix, e.g. sim-swerve/+/msg.")
	flag.BoolVar(&noMeta, "no-meta", noMeta, "Skip controller metadata.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub(topic, mqtt.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/meta") {
			if !noMeta {
				log.Printf("%s: %s", topic, string(payload))
			}
			return
		}
		typed, err := msgs.DecodeTyped(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		msg, err := typed.Decode()
		if err != nil {
			log.Printf("%s: decode error: (type_id=%x) %v", topic, typed.TypeId, err)
			return
		}
		kind := "cmd"
		switch {
		case typed.IsReply():
			kind = "reply"
		case typed.IsEvent():
			kind = "event"
		}
		log.Printf("%s: #%d %s [%s] %s", topic, typed.Sequence, kind,
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
			msg.(msgs.SerializableMessage).Serializable().String())
	}))
	<-(chan struct{})(nil)
}
