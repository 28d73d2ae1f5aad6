package broker

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

const (
	MailQueue      = "email_queue"
	EventsExchange = "disponibility_events"
)

// DeclareTopology 声明邮件队列和可用性事件交换机，API 服务、邮件 worker 和 CLI 都会调用
func DeclareTopology(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(
		MailQueue,
		true,  // 持久化
		false, // 不自动删除
		false, // 非独占
		false,
		nil,
	); err != nil {
		return err
	}

	return ch.ExchangeDeclare(
		EventsExchange,
		amqp.ExchangeFanout,
		true,
		false,
		false,
		false,
		nil,
	)
}

// BindEvents 为当前消费者创建一个独占的临时队列并绑定到事件交换机
func BindEvents(ch *amqp.Channel) (<-chan amqp.Delivery, error) {
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, err
	}

	if err := ch.QueueBind(q.Name, "", EventsExchange, false, nil); err != nil {
		return nil, err
	}

	return ch.Consume(q.Name, "", true, true, false, false, nil)
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	ch      channel
	timeout time.Duration
}

func NewPublisher(ch *amqp.Channel, timeout time.Duration) *Publisher {
	return &Publisher{ch: ch, timeout: timeout}
}

func (p *Publisher) publish(exchange, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		exchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
}

func (p *Publisher) PublishMail(msg domain.MailMessage) error {
	return p.publish("", MailQueue, msg)
}

func (p *Publisher) PublishEvent(evt domain.DisponibilityEvent) error {
	return p.publish(EventsExchange, "", evt)
}
