// Command csl-tail is a standalone consumer that tails the multiset
// pop-notification topic and prints each event as it arrives. It pairs
// with jobs/broadcaster the way a tailing CLI pairs with a producer:
// broadcaster writes with sarama, csl-tail reads with kafka-go, so
// nothing about the wire format assumes a particular client library.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/segmentio/kafka-go"
)

func main() {
	brokers := flag.String("kafka-brokers", "localhost:9092", "comma-separated Kafka broker addresses")
	topic := flag.String("kafka-topic", "multiset-pops", "Kafka topic to tail")
	groupID := flag.String("group-id", "csl-tail", "consumer group ID")
	flag.Parse()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: strings.Split(*brokers, ","),
		Topic:   *topic,
		GroupID: *groupID,
	})
	defer reader.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("csl-tail: consuming %q via group %q", *topic, *groupID)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("csl-tail: shutting down")
				return
			}
			log.Printf("csl-tail: fetch error: %v", err)
			continue
		}

		seq, key, value, err := decodeEvent(msg.Key, msg.Value)
		if err != nil {
			log.Printf("csl-tail: malformed event at offset %d: %v", msg.Offset, err)
		} else {
			fmt.Printf("seq=%d key=%d value=%q\n", seq, key, value)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Printf("csl-tail: commit error: %v", err)
		}
	}
}

// decodeEvent unpacks a broadcaster payload: the message key is the
// decimal sequence number as text, and the value is the exit-WAL
// record payload, itself [keyLen:4][key][value] as written by
// service.encodeKV.
func decodeEvent(rawKey, rawValue []byte) (seq uint64, key uint64, value []byte, err error) {
	seq, err = parseDecimalUint64(rawKey)
	if err != nil {
		return 0, 0, nil, err
	}

	if len(rawValue) < 4 {
		return seq, 0, nil, fmt.Errorf("payload too short: %d bytes", len(rawValue))
	}
	keyLen := binary.BigEndian.Uint32(rawValue[:4])
	rest := rawValue[4:]
	if uint32(len(rest)) < keyLen {
		return seq, 0, nil, fmt.Errorf("payload truncated: want %d key bytes, have %d", keyLen, len(rest))
	}
	keyBytes := rest[:keyLen]
	value = rest[keyLen:]

	if len(keyBytes) != 8 {
		return seq, 0, value, fmt.Errorf("unexpected key width: %d bytes", len(keyBytes))
	}
	key = binary.BigEndian.Uint64(keyBytes)
	return seq, key, value, nil
}

func parseDecimalUint64(b []byte) (uint64, error) {
	var v uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-decimal byte %q in sequence key", c)
		}
		v = v*10 + uint64(c-'0')
	}
	return v, nil
}
