package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"serialx/internal/serial"
	"serialx/sink"
)

type Config struct {
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientID string   `yaml:"client_id"`
	Acks     int16    `yaml:"required_acks"` // 0,1,-1
}

// record is the JSON value published per unit; the key is the original serial.
type record struct {
	Unit     int    `json:"unit"`
	Original string `json:"original"`
	Public   string `json:"public"`
	Product  string `json:"product"`
	Model    string `json:"model"`
	Batch    string `json:"batch"`
}

type driver struct {
	cfg Config
	p   sarama.SyncProducer
}

// NewWithProducer skips dialing; the producer is owned by the driver.
func NewWithProducer(cfg Config, p sarama.SyncProducer) sink.Adapter {
	return &driver{cfg: cfg, p: p}
}

func (d *driver) Configure(c any) error {
	cfg, ok := c.(Config)
	if !ok {
		return fmt.Errorf("kafka-sink: want Config, got %T", c)
	}
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return fmt.Errorf("kafka-sink: brokers and topic are required")
	}
	d.cfg = cfg

	sc := sarama.NewConfig()
	if cfg.ClientID != "" {
		sc.ClientID = cfg.ClientID
	}
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Acks)
	sc.Producer.Return.Successes = true
	var err error
	d.p, err = sarama.NewSyncProducer(cfg.Brokers, sc)
	return err
}

func (d *driver) Location(*serial.Batch) string {
	return "kafka topic " + d.cfg.Topic
}

func (d *driver) Push(ctx context.Context, b *serial.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msgs := make([]*sarama.ProducerMessage, 0, len(b.Items))
	for _, it := range b.Items {
		val, err := json.Marshal(record{
			Unit:     it.Unit,
			Original: it.Original,
			Public:   it.Public,
			Product:  b.Product.Name,
			Model:    b.Model.Name,
			Batch:    b.Request.ID(),
		})
		if err != nil {
			return err
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: d.cfg.Topic,
			Key:   sarama.StringEncoder(it.Original),
			Value: sarama.ByteEncoder(val),
		})
	}
	if err := d.p.SendMessages(msgs); err != nil {
		return fmt.Errorf("kafka-sink: %w", err)
	}
	return nil
}

func (d *driver) Close() error {
	if d.p == nil {
		return nil
	}
	err := d.p.Close()
	d.p = nil
	return err
}

func init() { sink.Register("kafka", func() sink.Adapter { return &driver{} }) }
