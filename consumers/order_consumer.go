package consumers

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"ecommerce-backend/config"
	"ecommerce-backend/models"
	"ecommerce-backend/services"
)

type OrderConsumer struct {
	Orders *services.OrderService
}

func (oc *OrderConsumer) Start(ch *amqp.Channel, cfg *config.Config) {
	// 消费主订单队列
	msgs, err := ch.Consume(
		cfg.OrderQueue,
		"ecommerce-backend", // consumer tag
		false,               // auto-ack
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("Failed to register consumer: %v", err)
	}

	go func() {
		for msg := range msgs {
			oc.processOrderMessage(msg)
		}
	}()

	// 消费死信队列
	dlqMsgs, err := ch.Consume(
		cfg.DeadLetterQueue,
		"ecommerce-backend-dlq", // consumer tag
		false,                   // auto-ack
		false,                   // exclusive
		false,                   // no-local
		false,                   // no-wait
		nil,
	)
	if err != nil {
		log.Printf("Failed to register DLQ consumer: %v", err)
		return
	}

	go func() {
		for msg := range dlqMsgs {
			processDeadLetterMessage(msg)
		}
	}()
}

func (oc *OrderConsumer) processOrderMessage(msg amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in message processing: %v", r)
		}
	}()

	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("Invalid message format: %s", msg.Body)
		err := msg.Nack(false, false)
		if err != nil {
			return
		} // 拒绝消息，不重新入队
		return
	}

	log.Printf("Processing order event: ID=%d, Type=%s", event.OrderID, event.Type)

	switch event.Type {
	case "created":
		handleOrderCreated(event)
	case "status_updated":
		handleStatusUpdated(event)
	case "payment_check":
		oc.handlePaymentCheck(event)
	case "refund_requested":
		// 结算方的事件，这里只做记录
		log.Printf("Refund requested event observed for order event %s", event.EventID)
	default:
		log.Printf("Unknown event type: %s", event.Type)
	}

	err := msg.Ack(false)
	if err != nil {
		return
	}
}

func processDeadLetterMessage(msg amqp.Delivery) {
	log.Printf("Received dead letter: %s", msg.Body)
	err := msg.Ack(false)
	if err != nil {
		return
	}
}

func handleOrderCreated(event models.OrderEvent) {
	// 下游通知服务消费同一事件，这里不用做事
	log.Printf("Handling order created: %d", event.OrderID)
}

func handleStatusUpdated(event models.OrderEvent) {
	log.Printf("Handling status update for order %d: %s", event.OrderID, event.Status)
}

// 支付检查事件：到期仍未支付的订单自动取消并归还库存
func (oc *OrderConsumer) handlePaymentCheck(event models.OrderEvent) {
	cancelled, err := oc.Orders.CancelIfUnpaid(context.Background(), event.OrderID)
	if err != nil {
		log.Printf("Failed payment check for order %d: %v", event.OrderID, err)
		return
	}
	if cancelled {
		log.Printf("Auto-cancelled order %d due to non-payment", event.OrderID)
	}
}
