package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartWelcomeConsumer connects to the broker, declares the durable
// mail.welcome queue and delivers each event through deliver.  It
// runs a reconnect loop with exponential backoff and keeps the server
// operating through broker outages; bad messages are rejected without
// requeue so a poison message cannot wedge the queue.
func StartWelcomeConsumer(url string, deliver func(WelcomeEmailEvent) error) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("mail-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, deliver); err != nil {
			log.Printf("mail-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, deliver func(WelcomeEmailEvent) error) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("mail-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(WelcomeQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(WelcomeQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		var ev WelcomeEmailEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			log.Printf("mail-consumer: unmarshal failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue
			continue
		}
		if err := deliver(ev); err != nil {
			log.Printf("mail-consumer: deliver to %s failed: %v", ev.Email, err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}
