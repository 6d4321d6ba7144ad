package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/thepradipthapa/livechat/models"
)

// MessageEvent is the fan-out record for a freshly appended message,
// routed to the receiver as chat_events / user.<receiver_id>.
type MessageEvent struct {
	EventID        string    `json:"event_id"`
	MessageID      int64     `json:"message_id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	ReceiverID     int64     `json:"receiver_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// PublishMessageEvent fans out an appended message to the receiver's event
// stream. Best effort: the database row is already committed, failures are
// only logged.
func PublishMessageEvent(ctx context.Context, msg *models.Message) {
	if rabbitChannel == nil {
		return
	}

	event := MessageEvent{
		EventID:        uuid.NewString(),
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		ReceiverID:     msg.ReceiverID,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Println("Failed to marshal message event:", err)
		return
	}

	routingKey := fmt.Sprintf("user.%d", event.ReceiverID)
	err = rabbitChannel.PublishWithContext(ctx,
		chatExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   event.EventID,
			Body:        body,
		},
	)
	if err != nil {
		log.Println("Failed to publish message event:", err)
	}
}

// StartMessageEventConsumer binds a queue to the chat exchange and pushes
// incoming events to the receiver's live WebSocket connections.
func StartMessageEventConsumer(ctx context.Context, queueName string) error {
	if rabbitChannel == nil {
		return fmt.Errorf("RabbitMQ channel not initialized")
	}

	q, err := rabbitChannel.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := rabbitChannel.QueueBind(
		q.Name,
		"user.*",
		chatExchange,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := rabbitChannel.Consume(
		q.Name,
		"",
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event MessageEvent
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					log.Println("Failed to unmarshal message event:", err)
					continue
				}
				if !GlobalWSConnManager.HasConnections(event.ReceiverID) {
					continue
				}
				push := struct {
					Event string       `json:"event"`
					Data  MessageEvent `json:"data"`
				}{
					Event: "message",
					Data:  event,
				}
				if err := PushToUser(event.ReceiverID, push); err != nil {
					log.Println("Failed to push message event:", err)
				}
			}
		}
	}()
	return nil
}
