package cache

import (
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/tidwall/gjson"
)

// Invalidator flushes cache entries when mapping or configuration change
// events arrive. Messages carry either a "key" for a single entry or a
// "prefix" for a whole keyspace; an empty payload flushes the topic prefix.
type Invalidator struct {
	con  *nats.Conn
	subs []*nats.Subscription
}

func ListenInvalidation(url string, topics []string, c Cache) (*Invalidator, error) {
	con, err := nats.Connect(url,
		nats.ErrorHandler(errorHandler),
		nats.DisconnectHandler(disconnectHandler),
		nats.ReconnectHandler(reconnectHandler),
	)
	if err != nil {
		return nil, err
	}

	inv := &Invalidator{con: con}
	for _, topic := range topics {
		prefix := topic
		sub, err := con.Subscribe(topic, func(msg *nats.Msg) {
			invalidate(c, prefix, msg.Data)
		})
		if err != nil {
			inv.Close()
			return nil, err
		}
		inv.subs = append(inv.subs, sub)
	}

	return inv, nil
}

func invalidate(c Cache, topic string, data []byte) {
	key := gjson.GetBytes(data, "key").String()
	if key != "" {
		if err := c.Delete(key); err != nil {
			slog.Error("cache invalidation failed",
				"err", err.Error(),
				"key", key,
			)
		}
		return
	}

	prefix := gjson.GetBytes(data, "prefix").String()
	if prefix == "" {
		prefix = topic
	}
	if err := c.DeleteAll(prefix); err != nil {
		slog.Error("cache invalidation failed",
			"err", err.Error(),
			"prefix", prefix,
		)
	}
}

func (i *Invalidator) Close() {
	for _, sub := range i.subs {
		_ = sub.Unsubscribe()
	}
	if i.con != nil {
		i.con.Close()
	}
}

func errorHandler(con *nats.Conn, sub *nats.Subscription, err error) {
	slog.Error("nats error", "err", err.Error())
}

func disconnectHandler(con *nats.Conn) {
	slog.Warn("nats disconnected")
}

func reconnectHandler(con *nats.Conn) {
	slog.Info("nats reconnected", "url", con.ConnectedUrl())
}
