package main

import (
	"context"
	"fmt"
	"os"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dspworks/dispatch/backend/internal/broker"
	"github.com/dspworks/dispatch/backend/internal/cli"
	"github.com/dspworks/dispatch/backend/internal/config"
	"github.com/dspworks/dispatch/backend/internal/dispatch"
	"github.com/dspworks/dispatch/backend/internal/i18n"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	bundle, err := i18n.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	session := dispatch.NewSession(cfg)
	app := &cli.App{
		Session: session,
		Backend: dispatch.NewHTTPBackend(session),
		Bundle:  bundle,
		In:      os.Stdin,
		Out:     os.Stdout,
		Err:     os.Stderr,
	}
	if cfg.Client.EventsDSN != "" {
		app.Events = amqpEvents(cfg.Client.EventsDSN)
	}

	os.Exit(cli.Execute(app, os.Args[1:]))
}

// amqpEvents 连接 RabbitMQ 并订阅可用性事件
func amqpEvents(dsn string) cli.EventSource {
	return func(ctx context.Context) (<-chan amqp.Delivery, func(), error) {
		conn, err := amqp.Dial(dsn)
		if err != nil {
			return nil, nil, err
		}

		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			return nil, nil, err
		}

		closeAll := func() {
			ch.Close()
			conn.Close()
		}

		if err := broker.DeclareTopology(ch); err != nil {
			closeAll()
			return nil, nil, err
		}
		deliveries, err := broker.BindEvents(ch)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		return deliveries, closeAll, nil
	}
}
